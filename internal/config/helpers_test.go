// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"strings"
	"testing"
)

// withCleanEnv clears the environment, points the XDG config and state dirs at temp dirs,
// sets extra, and returns a cleanup function that restores the original env.
// Use with t.Cleanup().
func withCleanEnv(t *testing.T, extra map[string]string) func() {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()
	os.Setenv("XDG_CONFIG_HOME", t.TempDir())
	os.Setenv("XDG_STATE_HOME", t.TempDir())

	for key, value := range extra {
		os.Setenv(key, value)
	}

	return func() {
		os.Clearenv()
		for _, env := range originalEnv {
			if key, value, ok := strings.Cut(env, "="); ok {
				os.Setenv(key, value)
			}
		}
	}
}
