package domain

import "errors"

// User-facing failure kinds. Operations wrap these so callers can classify
// failures with errors.Is.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrDecode          = errors.New("image decode failed")
	ErrEncode          = errors.New("image encode failed")
	ErrNoImageLoaded   = errors.New("no image loaded")
)

var (
	ErrUnknownAdjustment = errors.New("unknown adjustment")
	ErrUnknownPreset     = errors.New("unknown preset")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

const (
	KindUnsupportedType = "UnsupportedType"
	KindTooLarge        = "TooLarge"
	KindDecodeError     = "DecodeError"
	KindEncodeError     = "EncodeError"
	KindNoImageLoaded   = "NoImageLoaded"
	KindInvalidInput    = "InvalidInput"
	KindInternal        = "Internal"
)

// Kind names the failure kind of err for user notifications and metric
// labels. A nil error has no kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedType):
		return KindUnsupportedType
	case errors.Is(err, ErrTooLarge):
		return KindTooLarge
	case errors.Is(err, ErrDecode):
		return KindDecodeError
	case errors.Is(err, ErrEncode):
		return KindEncodeError
	case errors.Is(err, ErrNoImageLoaded):
		return KindNoImageLoaded
	case errors.Is(err, ErrUnknownAdjustment), errors.Is(err, ErrUnknownPreset), errors.Is(err, ErrUnsupportedFormat):
		return KindInvalidInput
	default:
		return KindInternal
	}
}
