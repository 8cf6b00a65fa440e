package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrUnauthorized is returned when a request lacks a valid account token.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrInvalidCredentials is returned when login credentials do not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAlreadyExists is returned when a unique value is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrUnknownAction is returned for a timer action outside the known set.
	ErrUnknownAction = errors.New("application: unknown action")
	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	ErrInsufficientFunds = errors.New("application: insufficient funds")
	// ErrBonusClaimed is returned when the welcome bonus was already taken.
	ErrBonusClaimed = errors.New("application: bonus already claimed")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// Message returns the first recorded field message, for single-field APIs
// that surface one line of text rather than a field map.
func (v *ValidationError) Message() string {
	if v == nil {
		return ""
	}
	for _, msg := range v.FieldErrors {
		return msg
	}
	return "validation failed"
}
