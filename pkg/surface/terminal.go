package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/greenstart/esgscope/pkg/scoring"
)

// TerminalRenderer renders a ScoreCard as colored terminal output.
// Plain disables ANSI escapes regardless of NO_COLOR.
type TerminalRenderer struct {
	Benchmark *scoring.IndustryBenchmark
	Plain     bool
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func (r *TerminalRenderer) ratingColor(c scoring.RatingCategory) string {
	if r.noColor() {
		return ""
	}
	switch c {
	case scoring.Leader:
		return colorGreen
	case scoring.Average:
		return colorYellow
	case scoring.Laggard:
		return colorRed
	default:
		return ""
	}
}

func (r *TerminalRenderer) noColor() bool {
	if r.Plain {
		return true
	}
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func (r *TerminalRenderer) bold(s string) string {
	if r.noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func (r *TerminalRenderer) dim(s string) string {
	if r.noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func (r *TerminalRenderer) colored(s, color string) string {
	if r.noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, card *scoring.ScoreCard) error {
	rc := r.ratingColor(card.Rating.Category)

	// Header
	fmt.Fprintf(w, "%s\n",
		r.bold(fmt.Sprintf("ESG Rating: %s (%s) - Overall %d",
			r.colored(string(card.Rating.Rating), rc), card.Rating.Category, card.OverallScore)))
	for _, line := range wrapText(card.Rating.Description, 70) {
		fmt.Fprintf(w, "  %s\n", r.dim(line))
	}
	fmt.Fprintln(w)

	// Categories
	fmt.Fprintln(w, "Categories:")
	for _, c := range scoring.Categories() {
		cr, ok := card.Breakdown[c]
		if !ok {
			fmt.Fprintf(w, "  %-14s %s\n", categoryLabel(c), r.dim("not reported"))
			continue
		}
		info := card.CategoryRatings[c]
		fmt.Fprintf(w, "  %-14s %3d  %s\n",
			categoryLabel(c), cr.Score, r.colored(string(info.Rating), r.ratingColor(info.Category)))

		for _, m := range cr.Breakdown {
			fmt.Fprintf(w, "    %s\n", r.dim(fmt.Sprintf("%-28s raw %-10g score %5.1f x %.2f = %5.2f",
				m.Name, m.Raw, m.SubScore, m.Weight, m.Contribution)))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Overall policy: %s\n", card.Policy)

	// Benchmark
	if b := r.Benchmark; b != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Benchmark (%s):\n", b.Industry)
		fmt.Fprintf(w, "  Industry average %d (%s)\n", b.Average, signed(card.OverallScore-b.Average))
		fmt.Fprintf(w, "  Leaders %d, laggards %d\n", b.Leaders, b.Laggards)
	}

	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
