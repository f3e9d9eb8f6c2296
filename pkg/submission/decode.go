// Package submission validates raw submission payloads at the boundary
// between the submission workflow and the scoring engine.
package submission

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/greenstart/esgscope/pkg/scoring"
)

var (
	// ErrUnknownCategory is returned for a submission type that is not one
	// of ENVIRONMENTAL, SOCIAL or GOVERNANCE.
	ErrUnknownCategory = errors.New("unknown submission category")
	// ErrInvalidMetricValue marks a field that is missing, non-numeric or NaN.
	// Such fields are scored as 0 rather than failing the submission.
	ErrInvalidMetricValue = errors.New("invalid metric value")
	// ErrMalformedPayload is returned when the payload is not a JSON object.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Issue records a metric that fell back to its default.
type Issue struct {
	Key string
	Err error
}

func (i Issue) Error() string { return fmt.Sprintf("%s: %v", i.Key, i.Err) }

func (i Issue) Unwrap() error { return i.Err }

// MarshalText lets issues serialize as their message.
func (i Issue) MarshalText() ([]byte, error) { return []byte(i.Error()), nil }

// ParseCategory validates a submission type tag. Matching is
// case-insensitive.
func ParseCategory(s string) (scoring.Category, error) {
	c := scoring.Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range scoring.Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Decode turns a raw JSON payload into the metric shape for category c.
// Absent or unusable fields default to 0 and are reported as issues.
func Decode(c scoring.Category, raw []byte) (scoring.Metrics, []Issue, error) {
	if !gjson.ValidBytes(raw) {
		return nil, nil, fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)
	}
	doc := gjson.ParseBytes(raw)
	// Legacy payloads are JSON strings holding JSON.
	if doc.Type == gjson.String && gjson.Valid(doc.Str) {
		doc = gjson.Parse(doc.Str)
	}
	if !doc.IsObject() {
		return nil, nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedPayload)
	}

	d := &decoder{doc: doc}
	switch c {
	case scoring.Environmental:
		m := scoring.EnvironmentalMetrics{
			CarbonEmissions: d.float(scoring.KeyCarbonEmissions),
			EnergyUsage:     d.float(scoring.KeyEnergyUsage),
			RenewableEnergy: d.float(scoring.KeyRenewableEnergy),
			WasteRecycled:   d.float(scoring.KeyWasteRecycled),
			WaterUsage:      d.float(scoring.KeyWaterUsage),
			PaperUsage:      d.float(scoring.KeyPaperUsage),
		}
		return m, d.issues, nil
	case scoring.Social:
		m := scoring.SocialMetrics{
			GenderDiversity:      d.float(scoring.KeyGenderDiversity),
			EmployeeTurnover:     d.float(scoring.KeyEmployeeTurnover),
			TrainingHours:        d.float(scoring.KeyTrainingHours),
			PayEquityRatio:       d.float(scoring.KeyPayEquityRatio),
			CommunityInvestment:  d.float(scoring.KeyCommunityInvestment),
			EmployeeSatisfaction: d.float(scoring.KeyEmployeeSatisfaction),
		}
		return m, d.issues, nil
	case scoring.Governance:
		m := scoring.GovernanceMetrics{
			BoardDiversity:          d.float(scoring.KeyBoardDiversity),
			EthicsViolations:        d.float(scoring.KeyEthicsViolations),
			PolicyCoverage:          d.float(scoring.KeyPolicyCoverage),
			DataBreaches:            d.float(scoring.KeyDataBreaches),
			ComplianceScore:         d.float(scoring.KeyComplianceScore),
			RiskAssessmentFrequency: d.float(scoring.KeyRiskAssessmentFrequency),
		}
		return m, d.issues, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
}

// DecodeTagged parses the category tag and decodes the payload.
func DecodeTagged(tag string, raw []byte) (scoring.Metrics, []Issue, error) {
	c, err := ParseCategory(tag)
	if err != nil {
		return nil, nil, err
	}
	return Decode(c, raw)
}

type decoder struct {
	doc    gjson.Result
	issues []Issue
}

func (d *decoder) float(key string) float64 {
	r := d.doc.Get(key)
	switch r.Type {
	case gjson.Number:
		if math.IsNaN(r.Num) || math.IsInf(r.Num, 0) {
			break
		}
		return r.Num
	case gjson.String:
		// Form submissions arrive as strings.
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	d.issues = append(d.issues, Issue{Key: key, Err: ErrInvalidMetricValue})
	return 0
}
