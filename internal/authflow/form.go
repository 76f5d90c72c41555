package authflow

import (
	"context"
	"fmt"
)

// Form is the state of one auth screen: the entered values, the submit
// state and the inline error. Each request builds its own Form.
type Form struct {
	Email    string
	Password string
	State    State
	Message  string
}

// Transition moves the form to next or returns ErrInvalidTransition
func (f *Form) Transition(next State) error {
	if !CanTransition(f.State, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.State, next)
	}
	f.State = next
	return nil
}

// Validate reports whether both fields are filled in. Values are not
// trimmed: whitespace counts as input.
func Validate(email, password string) bool {
	return email != "" && password != ""
}

// Validate checks the form's fields. An incomplete form stays in its current
// state with MsgRequired and no call is issued.
func (f *Form) Validate() bool {
	if !Validate(f.Email, f.Password) {
		f.Message = MsgRequired
		return false
	}
	return true
}

// Attempt runs call once: Idle/Error → Submitting → Success or Error. On
// failure the inline message comes from messageFor; on success it is
// cleared. A form that is already submitting or done is rejected without
// calling.
func Attempt(ctx context.Context, f *Form, call func(context.Context) error, messageFor func(error) string) error {
	if err := f.Transition(Submitting); err != nil {
		return err
	}

	if err := call(ctx); err != nil {
		f.State = Error
		f.Message = messageFor(err)
		return err
	}

	f.State = Success
	f.Message = ""
	return nil
}
