package server

import "github.com/dgellow/auth-front/internal/config"

// Browser-facing paths
const (
	PathLogin         = "/"
	PathRegister      = "/register"
	PathDashboard     = "/dashboard"
	PathLogout        = "/logout"
	PathOAuthStart    = "/oauth/google"
	PathOAuthCallback = config.CallbackPath
	PathOAuthToken    = "/oauth/google/token"
	PathAPISession    = "/api/session"
	PathHealth        = "/health"
)

// Screens an auth flow can return to
const (
	ScreenLogin     = "login"
	ScreenRegister  = "register"
	screenDashboard = "dashboard"
)

// screenPath maps a screen to its path. Unknown screens fall back to login.
func screenPath(screen string) string {
	if screen == ScreenRegister {
		return PathRegister
	}
	return PathLogin
}

// normalizeScreen restricts client-supplied screen names to known ones
func normalizeScreen(screen string) string {
	if screen == ScreenRegister {
		return ScreenRegister
	}
	return ScreenLogin
}

// Attempt flows and outcomes reported to the AttemptRecorder
const (
	FlowLogin    = "login"
	FlowRegister = "register"
	FlowOAuth    = "oauth"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
)
