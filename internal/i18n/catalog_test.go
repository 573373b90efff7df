package i18n

import (
	"fmt"
	"strings"
	"testing"

	apperrors "github.com/nochlab/nochgpt/internal/errors"
)

func TestTr_EnglishRowComplete(t *testing.T) {
	t.Parallel()

	for key, row := range catalog {
		if row[English] == "" {
			t.Errorf("key %q has no English text", key)
		}
	}
}

func TestTr_FallsBackToEnglish(t *testing.T) {
	t.Parallel()

	// Plans has no Japanese row.
	if got := Tr(KeyPlans, Japanese); got != Tr(KeyPlans, English) {
		t.Errorf("Tr(plans, ja) = %q, want English fallback", got)
	}
	// Korean has no catalog rows at all.
	if got := Tr(KeyGreeting, Korean); got != Tr(KeyGreeting, English) {
		t.Errorf("Tr(greeting, ko) = %q, want English fallback", got)
	}
}

func TestTr_LocalizedRows(t *testing.T) {
	t.Parallel()

	if got := Tr(KeyGreeting, Spanish); !strings.Contains(got, "Hola") {
		t.Errorf("Tr(greeting, es) = %q, want Spanish greeting", got)
	}
	if got := Tr(KeyButtonHuman, Russian); got != "Связаться с человеком" {
		t.Errorf("Tr(button_human, ru) = %q", got)
	}
	if got := Tr(KeyHandoffOK, Arabic); got == Tr(KeyHandoffOK, English) {
		t.Error("Tr(handoff_ok, ar) should not fall back to English")
	}
}

func TestTr_UnknownKey(t *testing.T) {
	t.Parallel()

	if got := Tr(MessageKey("nope"), English); got != "" {
		t.Errorf("Tr(unknown key) = %q, want empty", got)
	}
}

func TestUserFacing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want MessageKey
	}{
		{"timeout", apperrors.ErrProviderTimeout, KeyErrTimeout},
		{"vision", apperrors.ErrVisionFailed, KeyErrImage},
		{"transcription", apperrors.ErrTranscriptionFailed, KeyErrTranscription},
		{"too large", apperrors.ErrMediaTooLarge, KeyErrMediaTooLarge},
		{"rate limited", apperrors.ErrRateLimited, KeyErrRateLimited},
		{"unsupported", apperrors.ErrUnsupportedType, KeyErrUnsupported},
		{"unknown", apperrors.ErrEmptyCompletion, KeyErrGeneric},
	}
	for _, tt := range tests {
		if got := UserFacing(tt.err, Spanish); got != Tr(tt.want, Spanish) {
			t.Errorf("%s: UserFacing = %q, want %q", tt.name, got, Tr(tt.want, Spanish))
		}
	}
}

func TestUserFacing_WrappedError(t *testing.T) {
	t.Parallel()

	wrapped := apperrors.NewGraphError("https://example.invalid", 0, apperrors.ErrProviderTimeout)
	if got := UserFacing(wrapped, English); got != Tr(KeyErrTimeout, English) {
		t.Errorf("UserFacing(wrapped) = %q, want timeout apology", got)
	}
}

func TestUserFacing_VisionBeatsTimeout(t *testing.T) {
	t.Parallel()

	// A vision call that timed out carries both sentinels; the sender
	// should still hear about the image.
	err := fmt.Errorf("%w: %w", apperrors.ErrVisionFailed, apperrors.ErrProviderTimeout)
	if got := UserFacing(err, Spanish); got != Tr(KeyErrImage, Spanish) {
		t.Errorf("UserFacing(vision+timeout) = %q, want image apology", got)
	}
}
