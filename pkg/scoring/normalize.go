package scoring

import "math"

// Normalizer converts one raw metric value into a [0,100] sub-score.
type Normalizer interface {
	// Key returns the metric key the normalizer applies to.
	Key() string
	// Name returns the human-readable metric name.
	Name() string
	// Normalize maps a raw value to [0,100].
	Normalize(x float64) float64
}

// Clamp bounds v to [0,100].
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// valid reports whether x is a usable metric value. NaN and infinities are
// treated as absent and fall back to 0.
func valid(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// LowerIsBetter scores metrics where less is better: 100 - x*Penalty/Per,
// with an exact zero always scoring 100.
type LowerIsBetter struct {
	MetricKey  string
	MetricName string
	Penalty    float64 // points lost per Per raw units
	Per        float64 // raw units per Penalty; zero means 1
}

func (n LowerIsBetter) Key() string  { return n.MetricKey }
func (n LowerIsBetter) Name() string { return n.MetricName }

func (n LowerIsBetter) Normalize(x float64) float64 {
	x = valid(x)
	if x == 0 {
		return 100
	}
	per := n.Per
	if per == 0 {
		per = 1
	}
	return Clamp(100 - x*n.Penalty/per)
}

// Percent passes an already-percent metric through and clamps it.
type Percent struct {
	MetricKey  string
	MetricName string
}

func (n Percent) Key() string  { return n.MetricKey }
func (n Percent) Name() string { return n.MetricName }

func (n Percent) Normalize(x float64) float64 {
	return Clamp(valid(x))
}

// Scaled multiplies a higher-is-better metric by Factor and clamps it.
type Scaled struct {
	MetricKey  string
	MetricName string
	Factor     float64 // 100/Factor raw units saturate the score
}

func (n Scaled) Key() string  { return n.MetricKey }
func (n Scaled) Name() string { return n.MetricName }

func (n Scaled) Normalize(x float64) float64 {
	return Clamp(valid(x) * n.Factor)
}

// ParityRatio scores a ratio against parity: 0 scores 0, parity and above
// saturate at 100, and anything between scales linearly.
type ParityRatio struct {
	MetricKey  string
	MetricName string
}

func (n ParityRatio) Key() string  { return n.MetricKey }
func (n ParityRatio) Name() string { return n.MetricName }

func (n ParityRatio) Normalize(x float64) float64 {
	x = valid(x)
	switch {
	case x == 0:
		return 0
	case x >= 1:
		return 100
	default:
		return Clamp(x * 100)
	}
}
