package cache

import (
	"os"
	"testing"
)

// requireEnv returns an environment variable or skips the test if missing.
func requireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}
