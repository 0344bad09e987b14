package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/config"
	"github.com/trustmodel/registry-server/internal/gitrepo"
	"github.com/trustmodel/registry-server/internal/httpclient"
	"github.com/trustmodel/registry-server/internal/hub"
	"github.com/trustmodel/registry-server/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score URL_FILE",
	Short: "Score a batch of artifact URLs",
	Long: `Score every URL listed in URL_FILE, one per line, and print one
compact JSON rating per line to stdout. Logs go to stderr, or to the
file named by LOG_FILE.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	// Execute reports the error and the process exits non-zero, which is
	// the contract for an unreadable URL file.
	cmd.SilenceUsage = true

	urls, err := readURLFile(args[0])
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := context.Background()
	ratings := scoreURLs(ctx, cfg, urls)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)
	for i := range ratings {
		if err := enc.Encode(&ratings[i]); err != nil {
			return fmt.Errorf("failed to encode rating: %w", err)
		}
	}
	return nil
}

// readURLFile returns the non-empty lines of the file, in order.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}
	return urls, nil
}

// scoreURLs rates the URLs with the evaluator's bounded batch mode,
// preserving input order in the result.
func scoreURLs(ctx context.Context, cfg *config.Config, urls []string) []artifact.Rating {
	hubOpts := []hub.Option{hub.WithEndpoint(cfg.Hub.Endpoint)}
	if cfg.Hub.Token != "" {
		hubOpts = append(hubOpts, hub.WithHTTPClient(
			httpclient.NewDefaultClient(httpclient.WithBearerToken(cfg.Hub.Token))))
	}
	resolver := scoring.NewResolver(hub.NewClient(hubOpts...), gitrepo.NewDefaultClient())

	registry := scoring.DefaultRegistry(
		scoring.WithGitHubClient(scoring.NewGitHubClient(ctx, cfg.GitHub.Token)),
	)
	evaluator := scoring.NewEvaluator(registry, scoring.WithWorkers(cfg.GetScoringWorkers()))

	return evaluator.EvaluateURLs(ctx, resolver, urls)
}
