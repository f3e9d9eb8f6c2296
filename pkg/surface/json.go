package surface

import (
	"encoding/json"
	"io"

	"github.com/greenstart/esgscope/pkg/scoring"
)

// JSONRenderer marshals a ScoreCard to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, card *scoring.ScoreCard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(card)
}
