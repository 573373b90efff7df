package i18n

import (
	"regexp"
	"strings"
)

// Script-range checks run before any Latin heuristic so that mixed input
// like "hola مرحبا" classifies by script, not by the Latin greeting.
var scriptChecks = []struct {
	re   *regexp.Regexp
	lang Lang
}{
	{regexp.MustCompile(`[\x{0600}-\x{06FF}]`), Arabic},
	{regexp.MustCompile(`[\x{0900}-\x{097F}]`), Hindi},
	// Kana before unified CJK: Japanese text mixes kanji with kana.
	{regexp.MustCompile(`[\x{3040}-\x{30FF}]`), Japanese},
	{regexp.MustCompile(`[\x{AC00}-\x{D7AF}\x{1100}-\x{11FF}]`), Korean},
	{regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`), Chinese},
	{regexp.MustCompile(`[\x{0400}-\x{04FF}]`), Russian},
}

var diacriticChecks = []struct {
	re   *regexp.Regexp
	lang Lang
}{
	{regexp.MustCompile(`[áéíóúñ¿¡]`), Spanish},
	// Portuguese before French: ç alone is ambiguous, ã/õ are not.
	{regexp.MustCompile(`[ãõ]`), Portuguese},
	{regexp.MustCompile(`[àâçèêëîïôùûüÿœ]`), French},
}

// keywordLangs fixes the tie-break order for the keyword intersection.
var keywordLangs = []Lang{Spanish, English, Portuguese, French}

var keywords = map[Lang]map[string]bool{
	Spanish: wordSet("hola", "buenas", "gracias", "precio", "precios", "cuanto",
		"cuesta", "diente", "dientes", "protesis", "corona", "coronas",
		"implante", "urgencia", "laboratorio", "dental", "favor"),
	English: wordSet("hi", "hello", "hey", "thanks", "please", "price",
		"pricing", "crown", "implant", "urgent"),
	Portuguese: wordSet("oi", "ola", "obrigado", "obrigada", "preco",
		"quanto", "dente", "protese", "coroa", "implante"),
	French: wordSet("bonjour", "salut", "merci", "prix", "combien",
		"dent", "couronne", "implant"),
}

const keywordThreshold = 1

var wordRe = regexp.MustCompile(`\p{L}+`)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Detect maps free text to a language code. It is pure and total: every
// input yields a valid code, defaulting to English on no signal.
//
// Checks run in priority order, first match wins:
//  1. Unicode script ranges for non-Latin scripts.
//  2. Latin diacritic heuristics (es, pt, fr).
//  3. Keyword intersection against small per-language word sets.
//  4. English.
func Detect(text string) Lang {
	if text == "" {
		return Default
	}
	lower := strings.ToLower(text)

	for _, c := range scriptChecks {
		if c.re.MatchString(lower) {
			return c.lang
		}
	}

	for _, c := range diacriticChecks {
		if c.re.MatchString(lower) {
			return c.lang
		}
	}

	var best Lang
	bestCount := 0
	tokens := wordRe.FindAllString(lower, -1)
	for _, lang := range keywordLangs {
		count := 0
		for _, tok := range tokens {
			if keywords[lang][tok] {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = lang, count
		}
	}
	if bestCount >= keywordThreshold {
		return best
	}

	return Default
}
