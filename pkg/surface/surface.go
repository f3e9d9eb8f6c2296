// Package surface renders score cards for different output targets:
// terminal, Markdown reports and JSON.
package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/greenstart/esgscope/pkg/scoring"
)

// Renderer produces formatted output from a ScoreCard.
type Renderer interface {
	// Render writes the formatted score card to the writer.
	Render(w io.Writer, card *scoring.ScoreCard) error
}

// Options customizes renderers. Benchmark adds a peer comparison and Plain
// turns off terminal colors.
type Options struct {
	Benchmark *scoring.IndustryBenchmark
	Plain     bool
}

// New returns the renderer for an output format: text, markdown or json.
func New(format string, opts Options) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &TerminalRenderer{Benchmark: opts.Benchmark, Plain: opts.Plain}, nil
	case "markdown", "md":
		return &MarkdownRenderer{Benchmark: opts.Benchmark}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, markdown or json)", format)
	}
}

// categoryLabel is the display name for a category.
func categoryLabel(c scoring.Category) string {
	switch c {
	case scoring.Environmental:
		return "Environmental"
	case scoring.Social:
		return "Social"
	case scoring.Governance:
		return "Governance"
	default:
		return string(c)
	}
}

// signed formats a difference with an explicit sign.
func signed(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}
