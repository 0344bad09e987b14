package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNewer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a        string
		b        string
		expected bool
	}{
		{name: "newer major version", a: "2.0.0", b: "1.0.0", expected: true},
		{name: "newer minor version", a: "1.2.0", b: "1.1.0", expected: true},
		{name: "newer patch version", a: "1.0.2", b: "1.0.1", expected: true},
		{name: "older version", a: "1.0.0", b: "2.0.0", expected: false},
		{name: "equal versions", a: "1.0.0", b: "1.0.0", expected: false},
		{name: "release beats prerelease", a: "1.0.0", b: "1.0.0-alpha", expected: true},
		{name: "prerelease loses to release", a: "1.0.0-alpha", b: "1.0.0", expected: false},
		{name: "v prefix", a: "v2.0.0", b: "v1.0.0", expected: true},
		{name: "non-semver falls back to string order", a: "rev-b", b: "rev-a", expected: true},
		{name: "non-semver equal", a: "snapshot", b: "snapshot", expected: false},
		{name: "empty versions", a: "", b: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, IsNewer(tt.a, tt.b))
		})
	}
}

func TestVersionInfoWithValues(t *testing.T) {
	t.Parallel()

	info := versionInfoWithValues("1.2.3", "abcdef1234567890", "2026-01-15T10:30:00Z")
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abcdef1234567890", info.Commit)
	assert.Equal(t, "2026-01-15 10:30:00 UTC", info.BuildDate)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestVersionInfoDevBuild(t *testing.T) {
	t.Parallel()

	info := versionInfoWithValues("dev", "abcdef1234567890", unknownStr)
	assert.Equal(t, "build-abcdef12", info.Version)
}
