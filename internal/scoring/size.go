package scoring

import (
	"strings"

	"github.com/trustmodel/registry-server/internal/artifact"
)

// Model size classes inferred from common naming patterns. Checked in
// order: huge patterns first so that "llama-2-70b" is not caught by the
// large "7b" pattern.
var (
	hugePatterns  = []string{"70b", "175b", "llama-2-70", "falcon-40", "gpt-j", "gpt-neo"}
	largePatterns = []string{"large", "xl", "xxl", "7b", "13b"}
	tinyPatterns  = []string{"tiny", "mini", "small", "distil", "mobile", "lite"}
)

// SizeScore estimates how deployable a model is on each hardware class,
// from size hints in the model name and URL. Non-model resources get a
// zero map.
func SizeScore(res *Resource) artifact.HardwareScores {
	if res.Category != artifact.CategoryModel {
		return artifact.HardwareScores{}
	}

	combined := strings.ToLower(res.Name + " " + res.URL)
	switch {
	case matchesAny(combined, hugePatterns):
		return artifact.HardwareScores{RaspberryPi: 0.0, JetsonNano: 0.0, DesktopPC: 0.2, AWSServer: 0.5}
	case matchesAny(combined, largePatterns):
		return artifact.HardwareScores{RaspberryPi: 0.0, JetsonNano: 0.1, DesktopPC: 0.5, AWSServer: 0.8}
	case matchesAny(combined, tinyPatterns):
		return artifact.HardwareScores{RaspberryPi: 0.8, JetsonNano: 0.9, DesktopPC: 1.0, AWSServer: 1.0}
	default:
		// bert-base, gpt2 and friends land here.
		return artifact.HardwareScores{RaspberryPi: 0.1, JetsonNano: 0.4, DesktopPC: 0.8, AWSServer: 0.9}
	}
}

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
