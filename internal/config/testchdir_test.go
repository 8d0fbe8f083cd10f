package config

import (
	"os"
	"testing"
)

// testChdir stands in for t.Chdir (Go 1.24+): chdir for the test, restored on cleanup
func testChdir(t testing.TB, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("testChdir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("testChdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("testChdir: restore: %v", err)
		}
	})
}
