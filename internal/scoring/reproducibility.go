package scoring

import (
	"context"
	"strings"
)

// demoScripts are the entry points a runnable demo usually ships with.
var demoScripts = []string{"inference.py", "demo.py", "run.py", "app.py", "example.py"}

// reproducibilityMetric scores whether the artifact ships runnable demo
// code. Presence of a known demo entry point or a notebook scores 1.0;
// nothing runs, nothing scores. Demo scripts are never executed.
type reproducibilityMetric struct{}

func (*reproducibilityMetric) Name() string { return "reproducibility" }

func (*reproducibilityMetric) Compute(_ context.Context, res *Resource) (float64, error) {
	if res.Repo != nil {
		for _, name := range demoScripts {
			if res.Repo.HasFile(name) {
				return 1.0, nil
			}
		}
		if repoHasNotebook(res) {
			return 1.0, nil
		}
	}
	if res.Model != nil {
		for _, sibling := range res.Model.Siblings {
			if strings.HasSuffix(sibling.Rfilename, ".ipynb") {
				return 1.0, nil
			}
		}
	}
	return 0, nil
}

func repoHasNotebook(res *Resource) bool {
	for _, name := range []string{"demo.ipynb", "example.ipynb", "notebook.ipynb"} {
		if res.Repo.HasFile(name) {
			return true
		}
	}
	return false
}
