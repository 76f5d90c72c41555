package authapi

import (
	"errors"
	"fmt"
)

// Failures of the remote auth API. Every error returned by Client matches
// exactly one of the first three with errors.Is.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRegistrationFailed  = errors.New("registration failed")
	ErrAuthProviderFailure = errors.New("auth provider failure")

	// ErrEmailTaken refines ErrRegistrationFailed when the API explicitly
	// reports a duplicate email
	ErrEmailTaken = errors.New("email already registered")
)

// emailTakenError matches both ErrRegistrationFailed and ErrEmailTaken
type emailTakenError struct {
	status int
}

func (e *emailTakenError) Error() string {
	return fmt.Sprintf("registration failed: email already registered (status %d)", e.status)
}

func (e *emailTakenError) Is(target error) bool {
	return target == ErrRegistrationFailed || target == ErrEmailTaken
}
