package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/greenstart/esgscope/pkg/config"
	"github.com/greenstart/esgscope/pkg/logger"
	"github.com/greenstart/esgscope/pkg/scoring"
	"github.com/greenstart/esgscope/pkg/submission"
	"github.com/greenstart/esgscope/pkg/surface"
)

type scoreOpts struct {
	inputPath     string
	environmental string
	social        string
	governance    string
	policy        string
	industry      string
	outputFmt     string
	configPath    string
}

func newScoreCmd() *cobra.Command {
	var opts scoreOpts

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score ESG metrics from JSON files",
		Long: `Reads category metrics from JSON files, scores each category, and prints
the overall score and rating. Metrics may be given per category with
--environmental, --social and --governance, or together with --input as
{"environmental": {...}, "social": {...}, "governance": {...}}.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(logger.Config{Level: "warn", Pretty: true, Out: cmd.ErrOrStderr()})
			return runScore(opts, cmd.OutOrStdout(), log)
		},
	}

	cmd.Flags().StringVar(&opts.inputPath, "input", "", "JSON file with all categories")
	cmd.Flags().StringVar(&opts.environmental, "environmental", "", "JSON file with environmental metrics")
	cmd.Flags().StringVar(&opts.social, "social", "", "JSON file with social metrics")
	cmd.Flags().StringVar(&opts.governance, "governance", "", "JSON file with governance metrics")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "Overall policy: weighted or reported_average (default from config)")
	cmd.Flags().StringVar(&opts.industry, "industry", "", "Industry benchmark to compare against (default from config)")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: text, markdown or json")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config file (default: .esgscope/config.yaml)")

	return cmd
}

func runScore(opts scoreOpts, w io.Writer, log zerolog.Logger) error {
	cwd, _ := os.Getwd()
	cfg, err := config.LoadFrom(cwd, opts.configPath)
	if err != nil {
		return err
	}

	policy, err := scoring.ParsePolicy(firstNonEmpty(opts.policy, cfg.Scoring.OverallPolicy))
	if err != nil {
		return err
	}

	raw, err := collectInputs(opts)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("no metrics given: use --input or at least one of --environmental, --social, --governance")
	}

	var in scoring.Input
	for _, c := range scoring.Categories() {
		data, ok := raw[c]
		if !ok {
			continue
		}
		m, issues, err := submission.Decode(c, data)
		if err != nil {
			return fmt.Errorf("%s metrics: %w", categoryFlag(c), err)
		}
		for _, is := range issues {
			log.Warn().Str("category", string(c)).Str("metric", is.Key).Msg("metric missing or invalid, scored as 0")
		}
		switch v := m.(type) {
		case scoring.EnvironmentalMetrics:
			in.Environmental = &v
		case scoring.SocialMetrics:
			in.Social = &v
		case scoring.GovernanceMetrics:
			in.Governance = &v
		}
	}

	card, err := scoring.NewEngine(policy).Score(in)
	if err != nil {
		return err
	}

	bench := scoring.Benchmark(firstNonEmpty(opts.industry, cfg.Scoring.Industry))
	renderer, err := surface.New(opts.outputFmt, surface.Options{Benchmark: &bench})
	if err != nil {
		return err
	}
	return renderer.Render(w, card)
}

// collectInputs reads the raw JSON for each category that was given.
// Per-category files override the matching section of --input.
func collectInputs(opts scoreOpts) (map[scoring.Category][]byte, error) {
	raw := make(map[scoring.Category][]byte)

	if opts.inputPath != "" {
		data, err := os.ReadFile(opts.inputPath)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("%s: invalid JSON", opts.inputPath)
		}
		doc := gjson.ParseBytes(data)
		for _, c := range scoring.Categories() {
			if section := doc.Get(categoryFlag(c)); section.Exists() && section.Type != gjson.Null {
				raw[c] = []byte(section.Raw)
			}
		}
	}

	files := map[scoring.Category]string{
		scoring.Environmental: opts.environmental,
		scoring.Social:        opts.social,
		scoring.Governance:    opts.governance,
	}
	for c, path := range files {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s metrics: %w", categoryFlag(c), err)
		}
		raw[c] = data
	}
	return raw, nil
}

// categoryFlag is the lower-case name used for flags and input keys.
func categoryFlag(c scoring.Category) string {
	switch c {
	case scoring.Environmental:
		return "environmental"
	case scoring.Social:
		return "social"
	case scoring.Governance:
		return "governance"
	}
	return string(c)
}
