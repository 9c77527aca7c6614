package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidScore    = errors.New("score must be between 0 and 5")
	ErrUnknownModel    = errors.New("unknown model")
	ErrNoModels        = errors.New("at least one model must be selected")
	ErrTooManyModels   = errors.New("too many models selected")
	ErrEmptyQuestion   = errors.New("question is required")
	ErrBadTemperature  = errors.New("temperature must be between 0 and 1")
	ErrEmptyUsername   = errors.New("username is required")
	ErrSessionExpired  = errors.New("session expired")
	ErrMissingSecrets  = errors.New("missing critical secrets")
	ErrSecretNotFound  = errors.New("secret not found")
	ErrNotDurablySaved = errors.New("conversation turn was not saved")
)
