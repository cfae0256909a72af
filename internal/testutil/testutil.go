// Package testutil provides test helpers for composer tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CapmgrSystem is a capability manager with two clients. b declares one
// parameter.
const CapmgrSystem = `
[[components]]
name = "cm"
source = "capmgr.simple"
provides = ["capmgr"]

[[components]]
name = "a"
source = "tests.unit_a"
capmgr = "cm"

[[components]]
name = "b"
source = "tests.unit_b"
capmgr = "cm"
params = [{ key = "verbose", value = "1" }]
`

// SchedulerSystem adds a scheduler between the capability manager and two
// applications sharing an address space.
const SchedulerSystem = `
[[components]]
name = "root"
source = "sched.root"
provides = ["scheduler"]

[[components]]
name = "cm"
source = "capmgr.simple"
provides = ["capmgr"]
scheduler = "root"

[[components]]
name = "sched"
source = "sched.pfprr"
provides = ["scheduler"]
scheduler = "root"
capmgr = "cm"

[[components]]
name = "x"
source = "tests.x"
scheduler = "sched"

[[components]]
name = "y"
source = "tests.y"
scheduler = "sched"

[[address_spaces]]
name = "apps"
components = ["x", "y"]
`

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// WriteSystem writes a TOML system specification into a fresh temporary
// directory and returns its path.
func WriteSystem(t *testing.T, content string) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), "system.toml", content)
}

// ReadFile returns the content of path, failing the test if it cannot be
// read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
