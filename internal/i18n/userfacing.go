package i18n

import (
	"errors"

	apperrors "github.com/nochlab/nochgpt/internal/errors"
)

// UserFacing maps an internal error to the localized apology shown to the
// user. Every error maps to something; unknown errors get the generic line.
func UserFacing(err error, lang Lang) string {
	switch {
	// Vision first: a timed-out image analysis still apologizes about the
	// image, not about a generic slow reply.
	case errors.Is(err, apperrors.ErrVisionFailed):
		return Tr(KeyErrImage, lang)
	case errors.Is(err, apperrors.ErrProviderTimeout):
		return Tr(KeyErrTimeout, lang)
	case errors.Is(err, apperrors.ErrTranscriptionFailed):
		return Tr(KeyErrTranscription, lang)
	case errors.Is(err, apperrors.ErrMediaTooLarge):
		return Tr(KeyErrMediaTooLarge, lang)
	case errors.Is(err, apperrors.ErrRateLimited):
		return Tr(KeyErrRateLimited, lang)
	case errors.Is(err, apperrors.ErrUnsupportedType):
		return Tr(KeyErrUnsupported, lang)
	default:
		return Tr(KeyErrGeneric, lang)
	}
}
