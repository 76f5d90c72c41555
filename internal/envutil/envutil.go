package envutil

import (
	"os"
	"strings"
)

// EnvVar selects the runtime environment of auth-front.
const EnvVar = "AUTH_FRONT_ENV"

// IsDev checks if we're running in development mode, where cookies may be
// sent over plain HTTP
func IsDev() bool {
	env := strings.ToLower(os.Getenv(EnvVar))
	return env == "development" || env == "dev"
}
