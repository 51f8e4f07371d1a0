// Package testutil starts throwaway backend containers for integration
// tests. Each container is started at most once per test binary and shared by
// every test that asks for it.
package testutil

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// requireDocker skips t in -short mode or when no container runtime is
// reachable.
func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// skipOnStartError skips t if the shared container could not be started.
func skipOnStartError(t *testing.T, name string, err error) {
	t.Helper()
	if err != nil {
		t.Skipf("%s container unavailable: %v", name, err)
	}
}
