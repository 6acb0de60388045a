package services

import (
	"errors"
	"fmt"
)

// AuditFailedMessage is shown to the user whenever a submission fails.
const AuditFailedMessage = "Audit failed. System bottleneck. Try again."

var (
	ErrNoActiveUser   = errors.New("no active user")
	ErrForbidden      = errors.New("operation not permitted for this user")
	ErrNotFound       = errors.New("not found")
	ErrExportDisabled = errors.New("report export is not configured")

	// ErrValidation is wrapped by every input rejection below.
	ErrValidation        = errors.New("validation failed")
	ErrInvalidRating     = fmt.Errorf("%w: rating must be between 1 and 10", ErrValidation)
	ErrInvalidSuggestion = fmt.Errorf("%w: suggestion must be 1 to %d characters", ErrValidation, MaxSuggestionLen)
	ErrInvalidProduct    = fmt.Errorf("%w: product name and description are required", ErrValidation)
	ErrInvalidInput      = fmt.Errorf("%w: a product name or link is required", ErrValidation)
	ErrInvalidView       = fmt.Errorf("%w: unknown or unreachable view", ErrValidation)
	ErrInvalidSort       = fmt.Errorf("%w: unknown feed sort", ErrValidation)
	ErrCompareSelection  = fmt.Errorf("%w: select exactly two reports to compare", ErrValidation)
)
