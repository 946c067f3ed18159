package errorz

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrNotConfigured         = errors.New("api credentials not configured")
	ErrFormDisabled          = errors.New("form disabled")
	ErrFileFieldsUnsupported = errors.New("form has file fields the transport cannot receive")
	ErrTooManyOptions        = errors.New("choice field has more options than there are markers")
)
