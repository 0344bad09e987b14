package versions

import "github.com/Masterminds/semver/v3"

// IsNewer reports whether version a is strictly greater than version b.
// Both are compared as semantic versions when they parse as such, with a
// lexicographic fallback for free-form version strings.
func IsNewer(a, b string) bool {
	av, errA := semver.NewVersion(a)
	bv, errB := semver.NewVersion(b)

	if errA != nil || errB != nil {
		return a > b
	}

	return av.GreaterThan(bv)
}
