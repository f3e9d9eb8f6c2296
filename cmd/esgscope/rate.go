package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/greenstart/esgscope/pkg/scoring"
)

func newRateCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "rate <score>",
		Short: "Map a score in [0,100] to its rating tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRate(args[0], outputFmt, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	return cmd
}

func runRate(arg, outputFmt string, w io.Writer) error {
	score, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("score must be a number: %q", arg)
	}
	info, err := scoring.Rate(score)
	if err != nil {
		return err
	}

	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintf(w, "%s (%s)\n%s\n", info.Rating, info.Category, info.Description)
	return nil
}

func newBenchmarkCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "benchmark [industry]",
		Short: "Show the reference benchmark for an industry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			industry := ""
			if len(args) == 1 {
				industry = args[0]
			}
			return runBenchmark(industry, outputFmt, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	return cmd
}

func runBenchmark(industry, outputFmt string, w io.Writer) error {
	b := scoring.Benchmark(industry)

	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	fmt.Fprintf(w, "%s: average %d, leaders %d, laggards %d\n", b.Industry, b.Average, b.Leaders, b.Laggards)
	fmt.Fprintln(w, "Rating distribution:")
	for _, t := range scoring.Tiers() {
		fmt.Fprintf(w, "  %-4s %3d%%\n", t.Rating, b.Distribution[t.Rating])
	}
	return nil
}
