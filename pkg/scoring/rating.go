package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidScore is returned when a score handed to the rating classifier
// lies outside [0,100]. It indicates a missing clamp upstream.
var ErrInvalidScore = errors.New("invalid score")

// Rating is an ESG letter rating, AAA best.
type Rating string

const (
	RatingAAA Rating = "AAA"
	RatingAA  Rating = "AA"
	RatingA   Rating = "A"
	RatingBBB Rating = "BBB"
	RatingBB  Rating = "BB"
	RatingB   Rating = "B"
	RatingCCC Rating = "CCC"
)

// RatingCategory groups ratings into peer bands.
type RatingCategory string

const (
	Leader  RatingCategory = "Leader"
	Average RatingCategory = "Average"
	Laggard RatingCategory = "Laggard"
)

// RatingInfo describes the tier a score falls into.
type RatingInfo struct {
	Rating      Rating         `json:"rating"`
	Category    RatingCategory `json:"category"`
	Description string         `json:"description"`
	Color       string         `json:"color"`
}

// Tier is one band of the rating scale. A score s belongs to the tier when
// Min <= s, and s < the next higher tier's Min.
type Tier struct {
	Min float64
	RatingInfo
}

// tiers is ordered from best to worst; the scale is exhaustive over [0,100].
var tiers = []Tier{
	{85, RatingInfo{RatingAAA, Leader, "Leading performance with exceptional ESG management and minimal risks", "text-green-600"}},
	{75, RatingInfo{RatingAA, Leader, "Strong performance with robust ESG management and low risks", "text-green-500"}},
	{65, RatingInfo{RatingA, Average, "Above average performance with adequate ESG management", "text-green-400"}},
	{55, RatingInfo{RatingBBB, Average, "Average performance with moderate ESG management and risks", "text-yellow-500"}},
	{45, RatingInfo{RatingBB, Average, "Below average performance with some ESG management challenges", "text-yellow-600"}},
	{35, RatingInfo{RatingB, Laggard, "Poor performance with significant ESG management gaps and high risks", "text-red-400"}},
	{0, RatingInfo{RatingCCC, Laggard, "Very poor performance with severe ESG management deficiencies and very high risks", "text-red-600"}},
}

// Tiers returns a copy of the rating scale, best tier first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Rate maps a score in [0,100] to its rating tier.
func Rate(score float64) (RatingInfo, error) {
	if math.IsNaN(score) || score < 0 || score > 100 {
		return RatingInfo{}, fmt.Errorf("%w: %v is outside [0,100]", ErrInvalidScore, score)
	}
	for _, t := range tiers {
		if score >= t.Min {
			return t.RatingInfo, nil
		}
	}
	// unreachable: the lowest tier starts at 0
	return tiers[len(tiers)-1].RatingInfo, nil
}

// MustRate is Rate for scores the caller has already clamped. It panics on
// an out-of-range score.
func MustRate(score float64) RatingInfo {
	info, err := Rate(score)
	if err != nil {
		panic(err)
	}
	return info
}

// LookupRating returns the static info for a rating letter.
func LookupRating(r Rating) (RatingInfo, bool) {
	for _, t := range tiers {
		if t.Rating == r {
			return t.RatingInfo, true
		}
	}
	return RatingInfo{}, false
}
