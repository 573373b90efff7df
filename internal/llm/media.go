package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"

	"github.com/nochlab/nochgpt/internal/config"
	apperrors "github.com/nochlab/nochgpt/internal/errors"
	"github.com/nochlab/nochgpt/internal/i18n"
)

// visionPrompts ask for a short clinical read of the image, per language.
var visionPrompts = map[i18n.Lang]string{
	i18n.Spanish:    "Eres un asistente dental. Resume en 3–5 puntos clínicos lo más relevante de la imagen.",
	i18n.English:    "You are a dental assistant. Summarize the most relevant clinical points from the image in 3–5 bullets.",
	i18n.Portuguese: "Você é um assistente odontológico. Resuma 3–5 pontos clínicos relevantes da imagem.",
	i18n.French:     "Assistant dentaire : résume 3–5 points cliniques pertinents de l’image.",
	i18n.Hindi:      "आप एक डेंटल सहायक हैं। छवि से 3–5 मुख्य क्लिनिकल बिंदु बताएँ।",
	i18n.Arabic:     "أنت مساعد أسنان. لخّص 3–5 نقاط سريرية مهمة من الصورة.",
	i18n.Russian:    "Вы стоматологический ассистент. Опишите 3–5 ключевых клинических пунктов на изображении.",
	i18n.Japanese:   "歯科アシスタントとして、画像から重要な臨床ポイントを3–5個にまとめてください。",
	i18n.Chinese:    "你是牙科助理。用3–5条总结这张图片的关键临床要点。",
}

// Transcribe converts audio bytes to text. On failure the secondary model
// gets one try before giving up with ErrTranscriptionFailed.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	text, err := c.transcribeOnce(ctx, audio, mimeType, c.transcribeModel)
	if err == nil {
		return text, nil
	}
	if c.log != nil {
		c.log.WithError(err).WithField("model", c.transcribeModel).Warn("transcription failed, retrying with secondary model")
	}

	if c.transcribeRetry != "" && c.transcribeRetry != c.transcribeModel {
		if text, err = c.transcribeOnce(ctx, audio, mimeType, c.transcribeRetry); err == nil {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: %v", apperrors.ErrTranscriptionFailed, err)
}

func (c *Client) transcribeOnce(ctx context.Context, audio []byte, mimeType, model string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.TranscribeRequest)
	defer cancel()

	start := time.Now()
	resp, err := c.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(model),
		File:  openai.File(bytes.NewReader(audio), "audio"+extensionFor(mimeType), mimeType),
	})
	duration := time.Since(start).Seconds()

	if err != nil {
		c.recordRequest("transcribe", "error", duration)
		return "", fmt.Errorf("transcription call failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		c.recordRequest("transcribe", "error", duration)
		return "", apperrors.ErrEmptyCompletion
	}
	c.recordRequest("transcribe", "success", duration)
	return text, nil
}

// extensionFor picks a filename extension the transcription endpoint
// recognizes. WhatsApp voice notes arrive as audio/ogg.
func extensionFor(mimeType string) string {
	base := mimeType
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	switch strings.TrimSpace(base) {
	case "audio/ogg", "application/ogg":
		return ".ogg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/webm":
		return ".webm"
	}
	if exts, err := mime.ExtensionsByType(base); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".ogg"
}

// DescribeImage runs a vision completion over the image bytes, embedded as
// a base64 data URL, and returns a clinical summary in lang.
func (c *Client) DescribeImage(ctx context.Context, image []byte, mimeType string, lang i18n.Lang) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	prompt, ok := visionPrompts[lang]
	if !ok {
		prompt = visionPrompts[i18n.English]
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	return c.complete(ctx, "vision", []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		}),
	})
}

// Summarize condenses extracted document text into a short summary in lang.
func (c *Client) Summarize(ctx context.Context, text string, lang i18n.Lang) (string, error) {
	instruction := fmt.Sprintf(
		"You are a dental laboratory assistant. Summarize the key points of the following document in %s, in at most 5 bullets.",
		i18n.DisplayName(lang))

	// Bound the prompt; webhook documents can be arbitrarily long.
	const maxChars = 12000
	if len(text) > maxChars {
		text = text[:maxChars]
	}

	return c.complete(ctx, "summarize", []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(instruction),
		openai.UserMessage(text),
	})
}
