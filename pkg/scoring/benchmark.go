package scoring

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Industry names a benchmark peer group.
type Industry string

const (
	IndustryGeneral       Industry = "General"
	IndustryTechnology    Industry = "Technology"
	IndustryManufacturing Industry = "Manufacturing"
)

// IndustryBenchmark is a reference score profile for an industry.
// Distribution holds the percentage of companies in each rating.
type IndustryBenchmark struct {
	Industry     Industry       `json:"industry"`
	Average      int            `json:"average"`
	Leaders      int            `json:"leaders"`
	Laggards     int            `json:"laggards"`
	Distribution map[Rating]int `json:"distribution"`
}

// Benchmark returns the reference profile for an industry. Names are
// matched case-insensitively; unknown industries fall back to General.
func Benchmark(industry string) IndustryBenchmark {
	name := strings.TrimSpace(industry)
	switch {
	case strings.EqualFold(name, string(IndustryTechnology)):
		return IndustryBenchmark{
			Industry: IndustryTechnology,
			Average:  62, Leaders: 78, Laggards: 45,
			Distribution: map[Rating]int{
				RatingAAA: 8, RatingAA: 12, RatingA: 20, RatingBBB: 25,
				RatingBB: 18, RatingB: 12, RatingCCC: 5,
			},
		}
	case strings.EqualFold(name, string(IndustryManufacturing)):
		return IndustryBenchmark{
			Industry: IndustryManufacturing,
			Average:  54, Leaders: 68, Laggards: 38,
			Distribution: map[Rating]int{
				RatingAAA: 3, RatingAA: 8, RatingA: 12, RatingBBB: 25,
				RatingBB: 25, RatingB: 18, RatingCCC: 9,
			},
		}
	default:
		return IndustryBenchmark{
			Industry: IndustryGeneral,
			Average:  58, Leaders: 72, Laggards: 42,
			Distribution: map[Rating]int{
				RatingAAA: 5, RatingAA: 10, RatingA: 15, RatingBBB: 30,
				RatingBB: 20, RatingB: 15, RatingCCC: 5,
			},
		}
	}
}

// PeerStats summarizes the overall scores of a peer group.
type PeerStats struct {
	Count        int            `json:"count"`
	Mean         float64        `json:"mean"`
	StdDev       float64        `json:"stdDev"`
	Median       float64        `json:"median"`
	TopQuartile  float64        `json:"topQuartile"`    // 75th percentile
	LowQuartile  float64        `json:"bottomQuartile"` // 25th percentile
	Distribution map[Rating]int `json:"distribution"`   // company counts
}

// ComputePeerStats summarizes a set of overall scores. Scores outside
// [0,100] are ignored.
func ComputePeerStats(scores []int) PeerStats {
	ps := PeerStats{Distribution: make(map[Rating]int)}

	var xs []float64
	for _, s := range scores {
		info, err := Rate(float64(s))
		if err != nil {
			continue
		}
		ps.Distribution[info.Rating]++
		xs = append(xs, float64(s))
	}
	ps.Count = len(xs)
	if ps.Count == 0 {
		return ps
	}

	sort.Float64s(xs)
	ps.Mean = stat.Mean(xs, nil)
	if ps.Count > 1 {
		ps.StdDev = stat.StdDev(xs, nil)
	}
	ps.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	ps.TopQuartile = stat.Quantile(0.75, stat.Empirical, xs, nil)
	ps.LowQuartile = stat.Quantile(0.25, stat.Empirical, xs, nil)
	return ps
}
