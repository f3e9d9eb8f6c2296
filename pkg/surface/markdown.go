package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/greenstart/esgscope/pkg/scoring"
)

// MarkdownRenderer renders a ScoreCard as a Markdown report.
type MarkdownRenderer struct {
	Benchmark *scoring.IndustryBenchmark
}

func (r *MarkdownRenderer) Render(w io.Writer, card *scoring.ScoreCard) error {
	_, err := io.WriteString(w, r.Summary(card))
	return err
}

// Summary builds the Markdown body.
func (r *MarkdownRenderer) Summary(card *scoring.ScoreCard) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## ESG Rating: %s %s (overall %d)\n\n",
		ratingIcon(card.Rating.Category), card.Rating.Rating, card.OverallScore)
	fmt.Fprintf(&sb, "%s\n\n", card.Rating.Description)

	sb.WriteString("| Category | Score | Rating |\n|----------|-------|--------|\n")
	for _, c := range scoring.Categories() {
		cr, ok := card.Breakdown[c]
		if !ok {
			fmt.Fprintf(&sb, "| %s | - | not reported |\n", categoryLabel(c))
			continue
		}
		fmt.Fprintf(&sb, "| %s | %d | %s |\n", categoryLabel(c), cr.Score, card.CategoryRatings[c].Rating)
	}
	sb.WriteString("\n")

	// Metrics with a sub-score under 50 are listed as improvement areas.
	var weak []scoring.MetricResult
	for _, c := range scoring.Categories() {
		for _, m := range card.Breakdown[c].Breakdown {
			if m.SubScore < 50 {
				weak = append(weak, m)
			}
		}
	}
	if len(weak) > 0 {
		sb.WriteString("### Improvement areas\n\n")
		max := 5
		if len(weak) < max {
			max = len(weak)
		}
		for _, m := range weak[:max] {
			fmt.Fprintf(&sb, "- **%s**: sub-score %.1f (reported %g)\n", m.Name, m.SubScore, m.Raw)
		}
		if len(weak) > 5 {
			fmt.Fprintf(&sb, "_... and %d more_\n", len(weak)-5)
		}
		sb.WriteString("\n")
	}

	if b := r.Benchmark; b != nil {
		fmt.Fprintf(&sb, "### Benchmark: %s\n\n", b.Industry)
		fmt.Fprintf(&sb, "Industry average %d (%s), leaders %d, laggards %d.\n",
			b.Average, signed(card.OverallScore-b.Average), b.Leaders, b.Laggards)
	}

	return sb.String()
}

func ratingIcon(c scoring.RatingCategory) string {
	switch c {
	case scoring.Leader:
		return ":green_circle:"
	case scoring.Average:
		return ":yellow_circle:"
	default:
		return ":red_circle:"
	}
}
