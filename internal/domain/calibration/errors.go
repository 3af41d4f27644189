package calibration

import "errors"

var (
	ErrSessionNotFound  = errors.New("calibration session not found")
	ErrSessionNotActive = errors.New("calibration session is not in progress")
	ErrMissingRationale = errors.New("calibration rationale is required")
	ErrValueOutOfRange  = errors.New("override value must be between 1.00 and 3.00")
	ErrUnknownField     = errors.New("override field must be what or how")
)
