package scoring

import (
	"fmt"
	"math"
)

// Engine scores category metrics and combines them into a ScoreCard.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	policy  OverallPolicy
	metrics map[Category][]WeightedMetric
}

// NewEngine creates a scoring engine with the default metrics and the given
// overall aggregation policy.
func NewEngine(policy OverallPolicy) *Engine {
	if policy == "" {
		policy = PolicyWeighted
	}
	metrics := make(map[Category][]WeightedMetric)
	for _, c := range Categories() {
		metrics[c] = DefaultMetrics(c)
	}
	return &Engine{policy: policy, metrics: metrics}
}

// Policy returns the engine's overall aggregation policy.
func (e *Engine) Policy() OverallPolicy { return e.policy }

// ScoreCategory normalizes every metric of m and returns the rounded
// weighted sum together with the per-metric breakdown.
func (e *Engine) ScoreCategory(m Metrics) CategoryResult {
	c := m.Category()
	values := m.Values()
	result := CategoryResult{Category: c}

	var total float64
	for _, wm := range e.metrics[c] {
		raw := values[wm.Key()]
		sub := wm.Normalize(raw)
		contribution := sub * wm.Weight
		total += contribution

		result.Breakdown = append(result.Breakdown, MetricResult{
			Key:          wm.Key(),
			Name:         wm.Name(),
			Raw:          raw,
			SubScore:     sub,
			Weight:       wm.Weight,
			Contribution: contribution,
		})
	}

	result.Score = roundScore(total)
	return result
}

// Score evaluates every supplied category and produces a complete ScoreCard.
// At least one category must be present.
func (e *Engine) Score(in Input) (*ScoreCard, error) {
	metrics := in.Metrics()
	if len(metrics) == 0 {
		return nil, fmt.Errorf("no category metrics supplied")
	}

	card := &ScoreCard{
		Breakdown:       make(map[Category]CategoryResult, len(metrics)),
		CategoryRatings: make(map[Category]RatingInfo, len(metrics)),
		Policy:          e.policy,
	}

	var scores CategoryScores
	for _, m := range metrics {
		cr := e.ScoreCategory(m)
		card.Breakdown[cr.Category] = cr
		scores.Set(cr.Category, cr.Score)

		switch cr.Category {
		case Environmental:
			card.EnvironmentalScore = cr.Score
		case Social:
			card.SocialScore = cr.Score
		case Governance:
			card.GovernanceScore = cr.Score
		}

		info, err := Rate(float64(cr.Score))
		if err != nil {
			return nil, fmt.Errorf("rating %s: %w", cr.Category, err)
		}
		card.CategoryRatings[cr.Category] = info
	}

	card.OverallScore = Overall(scores, e.policy)

	info, err := Rate(float64(card.OverallScore))
	if err != nil {
		return nil, fmt.Errorf("rating overall: %w", err)
	}
	card.Rating = info

	return card, nil
}

// Overall combines category scores into one overall score under policy.
func Overall(scores CategoryScores, policy OverallPolicy) int {
	switch policy {
	case PolicyReportedAverage:
		var sum float64
		var n int
		for _, c := range Categories() {
			if s, ok := scores.Get(c); ok && s > 0 {
				sum += float64(s)
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return roundScore(sum / float64(n))
	default:
		weights := TopLevelWeights()
		var total float64
		for _, c := range Categories() {
			s, _ := scores.Get(c)
			total += float64(s) * weights[c]
		}
		return roundScore(total)
	}
}

// OverallFromInts is Overall for three reported category scores.
func OverallFromInts(environmental, social, governance int, policy OverallPolicy) int {
	var s CategoryScores
	s.Set(Environmental, environmental)
	s.Set(Social, social)
	s.Set(Governance, governance)
	return Overall(s, policy)
}

var defaultEngine = NewEngine(PolicyWeighted)

// EnvironmentalScore returns the category score for environmental metrics.
func EnvironmentalScore(m EnvironmentalMetrics) int {
	return defaultEngine.ScoreCategory(m).Score
}

// SocialScore returns the category score for social metrics.
func SocialScore(m SocialMetrics) int {
	return defaultEngine.ScoreCategory(m).Score
}

// GovernanceScore returns the category score for governance metrics.
func GovernanceScore(m GovernanceMetrics) int {
	return defaultEngine.ScoreCategory(m).Score
}

// roundScore rounds half up and bounds the result to [0,100].
func roundScore(v float64) int {
	return int(Clamp(math.Floor(v + 0.5)))
}
