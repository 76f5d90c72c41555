package authflow

import (
	"errors"

	"github.com/dgellow/auth-front/internal/authapi"
)

// Messages shown inline on the auth screens
const (
	MsgInvalidCredentials = "Invalid email or password. Please try again."
	MsgEmailTaken         = "Registration failed. Email might be taken."
	MsgGenericFailure     = "Something went wrong. Please try again."
	MsgGoogleFailed       = "Google authentication failed."
	MsgRegistered         = "Registration successful! Please login."
	MsgRequired           = "Email and password are required."
)

// LoginMessage maps a login failure to its inline message
func LoginMessage(error) string {
	return MsgInvalidCredentials
}

// RegisterMessage maps a registration failure to its inline message
func RegisterMessage(err error) string {
	if errors.Is(err, authapi.ErrEmailTaken) {
		return MsgEmailTaken
	}
	return MsgGenericFailure
}

// OAuthMessage maps an OAuth failure to its inline message
func OAuthMessage(error) string {
	return MsgGoogleFailed
}
