// Package scoring implements the esgscope ESG scoring engine.
// It normalizes raw business metrics into [0,100] sub-scores, aggregates them
// into category and overall scores, and classifies scores into rating tiers.
package scoring

import "fmt"

// Category identifies one of the three ESG pillars.
type Category string

const (
	Environmental Category = "ENVIRONMENTAL"
	Social        Category = "SOCIAL"
	Governance    Category = "GOVERNANCE"
)

// Categories lists the pillars in reporting order.
func Categories() []Category {
	return []Category{Environmental, Social, Governance}
}

// Metric keys. These match the JSON field names of submitted payloads.
const (
	KeyCarbonEmissions = "carbonEmissions"
	KeyEnergyUsage     = "energyUsage"
	KeyRenewableEnergy = "renewableEnergy"
	KeyWasteRecycled   = "wasteRecycled"
	KeyWaterUsage      = "waterUsage"
	KeyPaperUsage      = "paperUsage"

	KeyGenderDiversity      = "genderDiversity"
	KeyEmployeeTurnover     = "employeeTurnover"
	KeyTrainingHours        = "trainingHours"
	KeyPayEquityRatio       = "payEquityRatio"
	KeyCommunityInvestment  = "communityInvestment"
	KeyEmployeeSatisfaction = "employeeSatisfaction"

	KeyBoardDiversity          = "boardDiversity"
	KeyEthicsViolations        = "ethicsViolations"
	KeyPolicyCoverage          = "policyCoverage"
	KeyDataBreaches            = "dataBreaches"
	KeyComplianceScore         = "complianceScore"
	KeyRiskAssessmentFrequency = "riskAssessmentFrequency"
)

// Metrics is a category-tagged set of raw metric values.
// EnvironmentalMetrics, SocialMetrics and GovernanceMetrics implement it.
type Metrics interface {
	Category() Category
	// Values returns raw values keyed by metric key.
	Values() map[string]float64
}

// EnvironmentalMetrics holds raw environmental measurements.
type EnvironmentalMetrics struct {
	CarbonEmissions float64 `json:"carbonEmissions"` // tons CO2e
	EnergyUsage     float64 `json:"energyUsage"`     // kWh
	RenewableEnergy float64 `json:"renewableEnergy"` // percent
	WasteRecycled   float64 `json:"wasteRecycled"`   // percent
	WaterUsage      float64 `json:"waterUsage"`      // gallons
	PaperUsage      float64 `json:"paperUsage"`      // reams
}

func (EnvironmentalMetrics) Category() Category { return Environmental }

func (m EnvironmentalMetrics) Values() map[string]float64 {
	return map[string]float64{
		KeyCarbonEmissions: m.CarbonEmissions,
		KeyEnergyUsage:     m.EnergyUsage,
		KeyRenewableEnergy: m.RenewableEnergy,
		KeyWasteRecycled:   m.WasteRecycled,
		KeyWaterUsage:      m.WaterUsage,
		KeyPaperUsage:      m.PaperUsage,
	}
}

// SocialMetrics holds raw workforce and community measurements.
type SocialMetrics struct {
	GenderDiversity      float64 `json:"genderDiversity"`      // percent
	EmployeeTurnover     float64 `json:"employeeTurnover"`     // percent
	TrainingHours        float64 `json:"trainingHours"`        // hours per employee
	PayEquityRatio       float64 `json:"payEquityRatio"`       // 1.0 = parity
	CommunityInvestment  float64 `json:"communityInvestment"`  // percent of profit
	EmployeeSatisfaction float64 `json:"employeeSatisfaction"` // 1-5 survey scale
}

func (SocialMetrics) Category() Category { return Social }

func (m SocialMetrics) Values() map[string]float64 {
	return map[string]float64{
		KeyGenderDiversity:      m.GenderDiversity,
		KeyEmployeeTurnover:     m.EmployeeTurnover,
		KeyTrainingHours:        m.TrainingHours,
		KeyPayEquityRatio:       m.PayEquityRatio,
		KeyCommunityInvestment:  m.CommunityInvestment,
		KeyEmployeeSatisfaction: m.EmployeeSatisfaction,
	}
}

// GovernanceMetrics holds raw governance and compliance measurements.
type GovernanceMetrics struct {
	BoardDiversity          float64 `json:"boardDiversity"`          // percent
	EthicsViolations        float64 `json:"ethicsViolations"`        // incidents
	PolicyCoverage          float64 `json:"policyCoverage"`          // percent
	DataBreaches            float64 `json:"dataBreaches"`            // incidents
	ComplianceScore         float64 `json:"complianceScore"`         // percent
	RiskAssessmentFrequency float64 `json:"riskAssessmentFrequency"` // per year
}

func (GovernanceMetrics) Category() Category { return Governance }

func (m GovernanceMetrics) Values() map[string]float64 {
	return map[string]float64{
		KeyBoardDiversity:          m.BoardDiversity,
		KeyEthicsViolations:        m.EthicsViolations,
		KeyPolicyCoverage:          m.PolicyCoverage,
		KeyDataBreaches:            m.DataBreaches,
		KeyComplianceScore:         m.ComplianceScore,
		KeyRiskAssessmentFrequency: m.RiskAssessmentFrequency,
	}
}

// MetricResult is the scored view of a single raw metric.
type MetricResult struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Raw          float64 `json:"raw"`
	SubScore     float64 `json:"subScore"`     // normalized, [0,100]
	Weight       float64 `json:"weight"`       // fraction of the category
	Contribution float64 `json:"contribution"` // SubScore * Weight
}

// CategoryResult is the output of scoring one category.
type CategoryResult struct {
	Category  Category       `json:"category"`
	Score     int            `json:"score"`
	Breakdown []MetricResult `json:"breakdown"`
}

// CategoryScores carries the three pillar scores. A nil field means the
// category has not been reported.
type CategoryScores struct {
	Environmental *int `json:"environmental,omitempty"`
	Social        *int `json:"social,omitempty"`
	Governance    *int `json:"governance,omitempty"`
}

// Get returns the score for c and whether it was reported.
func (s CategoryScores) Get(c Category) (int, bool) {
	var p *int
	switch c {
	case Environmental:
		p = s.Environmental
	case Social:
		p = s.Social
	case Governance:
		p = s.Governance
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Set records the score for c.
func (s *CategoryScores) Set(c Category, score int) {
	v := score
	switch c {
	case Environmental:
		s.Environmental = &v
	case Social:
		s.Social = &v
	case Governance:
		s.Governance = &v
	}
}

// Input is the set of category metrics to score. Nil entries are unreported.
type Input struct {
	Environmental *EnvironmentalMetrics `json:"environmental,omitempty"`
	Social        *SocialMetrics        `json:"social,omitempty"`
	Governance    *GovernanceMetrics    `json:"governance,omitempty"`
}

// Metrics returns the supplied category metrics in reporting order.
func (in Input) Metrics() []Metrics {
	var out []Metrics
	if in.Environmental != nil {
		out = append(out, *in.Environmental)
	}
	if in.Social != nil {
		out = append(out, *in.Social)
	}
	if in.Governance != nil {
		out = append(out, *in.Governance)
	}
	return out
}

// ScoreCard is the complete scoring output for one company.
// Immutable once computed.
type ScoreCard struct {
	EnvironmentalScore int                         `json:"environmentalScore"`
	SocialScore        int                         `json:"socialScore"`
	GovernanceScore    int                         `json:"governanceScore"`
	OverallScore       int                         `json:"overallScore"`
	Rating             RatingInfo                  `json:"rating"`
	CategoryRatings    map[Category]RatingInfo     `json:"categoryRatings,omitempty"`
	Breakdown          map[Category]CategoryResult `json:"breakdown,omitempty"`
	Policy             OverallPolicy               `json:"policy"`
}

// Scores returns the card's category scores, marking only categories with a
// breakdown as reported.
func (c *ScoreCard) Scores() CategoryScores {
	var s CategoryScores
	for cat := range c.Breakdown {
		switch cat {
		case Environmental:
			s.Set(cat, c.EnvironmentalScore)
		case Social:
			s.Set(cat, c.SocialScore)
		case Governance:
			s.Set(cat, c.GovernanceScore)
		}
	}
	return s
}

// OverallPolicy selects how category scores combine into the overall score.
type OverallPolicy string

const (
	// PolicyWeighted applies the fixed 0.35/0.30/0.35 split; unreported
	// categories count as zero.
	PolicyWeighted OverallPolicy = "weighted"
	// PolicyReportedAverage averages the categories scoring above zero.
	PolicyReportedAverage OverallPolicy = "reported_average"
)

// ParsePolicy validates a policy name. An empty name selects PolicyWeighted.
func ParsePolicy(s string) (OverallPolicy, error) {
	switch OverallPolicy(s) {
	case "", PolicyWeighted:
		return PolicyWeighted, nil
	case PolicyReportedAverage:
		return PolicyReportedAverage, nil
	default:
		return "", fmt.Errorf("unknown overall policy %q", s)
	}
}
