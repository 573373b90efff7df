// Package i18n provides language detection and the localized message catalog
// for user-facing replies.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Lang is a two-letter language code.
type Lang string

// Supported language codes. Korean is detected by script but has no catalog
// rows, so its replies fall back to English.
const (
	Spanish    Lang = "es"
	English    Lang = "en"
	Portuguese Lang = "pt"
	French     Lang = "fr"
	Hindi      Lang = "hi"
	Arabic     Lang = "ar"
	Russian    Lang = "ru"
	Japanese   Lang = "ja"
	Chinese    Lang = "zh"
	Korean     Lang = "ko"
)

// Default is the fallback language when detection finds no signal.
const Default = English

var catalogLangs = map[Lang]bool{
	Spanish:    true,
	English:    true,
	Portuguese: true,
	French:     true,
	Hindi:      true,
	Arabic:     true,
	Russian:    true,
	Japanese:   true,
	Chinese:    true,
}

// Supported reports whether lang has catalog rows of its own.
func Supported(lang Lang) bool {
	return catalogLangs[lang]
}

// Normalize maps a free-form language tag ("es-MX", "PT", "Spanish") to a
// supported Lang. Unknown or empty input returns Default.
func Normalize(tag string) Lang {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Default
	}
	if parsed, err := language.Parse(tag); err == nil {
		if base, conf := parsed.Base(); conf != language.No {
			if l := Lang(base.String()); Supported(l) {
				return l
			}
		}
	}
	if l := Lang(strings.ToLower(tag)); Supported(l) {
		return l
	}
	return Default
}

// DisplayName returns the English name of the language ("Spanish"),
// used in the reply-language instruction for the completion model.
func DisplayName(lang Lang) string {
	tag, err := language.Parse(string(lang))
	if err != nil {
		return string(lang)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return string(lang)
}
