package scoring

import (
	"context"
	"regexp"
	"strings"
)

var (
	installHeadingRe = regexp.MustCompile(`(?im)(^|\n)\s*(?:#{1,6}\s*)?(installation|install|setup|getting started|quickstart|usage)\b`)
	wordRe           = regexp.MustCompile(`\w+`)
	indentedCodeRe   = regexp.MustCompile(`(?m)^( {4}|\t).+`)
)

var installPhrases = []string{
	"pip install",
	"conda install",
	"docker",
	"docker-compose",
	"requirements.txt",
	"setup.py",
	"poetry add",
}

// rampUpTimeMetric scores how quickly a newcomer could start using the
// artifact, from its README alone: length tiers up to 0.40, an install
// or usage section worth 0.35, and example code worth 0.25.
type rampUpTimeMetric struct{}

func (*rampUpTimeMetric) Name() string { return "ramp_up_time" }

func (*rampUpTimeMetric) Compute(_ context.Context, res *Resource) (float64, error) {
	readme := res.Readme
	if readme == "" && res.Repo != nil {
		readme, _ = res.Repo.Readme()
	}
	if readme == "" {
		return 0, nil
	}

	score := lengthScore(len(wordRe.FindAllString(readme, -1)))
	if hasInstallSection(readme) {
		score += 0.35
	}
	if hasCodeSnippet(readme) {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

func lengthScore(words int) float64 {
	switch {
	case words < 50:
		return 0
	case words < 200:
		return 0.1
	case words < 500:
		return 0.25
	default:
		return 0.4
	}
}

func hasInstallSection(readme string) bool {
	if installHeadingRe.MatchString(readme) {
		return true
	}
	low := strings.ToLower(readme)
	for _, phrase := range installPhrases {
		if strings.Contains(low, phrase) {
			return true
		}
	}
	return false
}

func hasCodeSnippet(readme string) bool {
	return strings.Contains(readme, "```") || indentedCodeRe.MatchString(readme)
}
