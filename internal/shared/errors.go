package shared

import "fmt"

var (
	// Quota and credential errors. ErrQuotaExhausted always means a clean,
	// resumable stop: every API key (or the OAuth daily budget) is spent and
	// the calling stage must checkpoint and exit with the quota exit code.
	ErrQuotaExhausted = fmt.Errorf("quota exhausted")
	ErrAuthInvalid    = fmt.Errorf("authorization invalid")
	ErrTransient      = fmt.Errorf("transient failure")
	ErrNotFound       = fmt.Errorf("resource not found")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Pipeline state errors
	ErrMissingPlan     = fmt.Errorf("mutation plan not found")
	ErrMissingSnapshot = fmt.Errorf("playlist snapshot not found")
)
