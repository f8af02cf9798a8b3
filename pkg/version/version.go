package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var embedded string

// Commit is set at link time with -ldflags "-X github.com/amoylab/huddle/pkg/version.Commit=<sha>"
var Commit string

// Get returns the release version embedded from the VERSION file
func Get() string {
	return strings.TrimSpace(embedded)
}

// String returns the version followed by the commit when one was linked in
func String() string {
	if Commit == "" {
		return Get()
	}
	return Get() + " (" + Commit + ")"
}
