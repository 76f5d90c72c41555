package integration

import (
	"os"
	"testing"

	"github.com/dgellow/auth-front/internal/envutil"
	"github.com/dgellow/auth-front/internal/log"
)

// TestMain runs every test in development mode so session cookies travel
// over the plain HTTP test servers
func TestMain(m *testing.M) {
	os.Setenv(envutil.EnvVar, "development")
	if os.Getenv("LOG_LEVEL") == "" {
		_ = log.Configure("error", "")
	}
	os.Exit(m.Run())
}
