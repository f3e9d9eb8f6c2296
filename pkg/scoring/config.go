package scoring

// CategoryWeights maps metric key to its fraction of a category score.
// Weights within a category sum to 1.0.
type CategoryWeights map[string]float64

// Sum returns the total weight.
func (w CategoryWeights) Sum() float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

// DefaultWeights holds the scoring weights and transform factors for all metrics.
type DefaultWeights struct {
	// Top level
	EnvironmentalWeight float64
	SocialWeight        float64
	GovernanceWeight    float64

	// Environmental
	CarbonEmissions float64
	EnergyUsage     float64
	RenewableEnergy float64
	WasteRecycled   float64
	WaterUsage      float64
	PaperUsage      float64

	CarbonPenalty float64 // points per ton CO2e
	EnergyPer     float64 // kWh per point
	WaterPer      float64 // gallons per point
	PaperPer      float64 // reams per point

	// Social
	GenderDiversity      float64
	EmployeeTurnover     float64
	TrainingHours        float64
	PayEquityRatio       float64
	CommunityInvestment  float64
	EmployeeSatisfaction float64

	TurnoverPenalty float64 // per percent; 20% turnover scores 0
	TrainingFactor  float64 // 20 hours scores 100
	CommunityFactor float64 // 5% of profit scores 100

	// Governance
	BoardDiversity          float64
	EthicsViolations        float64
	PolicyCoverage          float64
	DataBreaches            float64
	ComplianceScore         float64
	RiskAssessmentFrequency float64

	EthicsPenalty        float64 // per incident; 5 violations score 0
	BreachPenalty        float64 // per incident; 4 breaches score 0
	RiskAssessmentFactor float64 // 4 per year scores 100
}

// Defaults returns the default scoring weights.
func Defaults() DefaultWeights {
	return DefaultWeights{
		EnvironmentalWeight: 0.35,
		SocialWeight:        0.30,
		GovernanceWeight:    0.35,

		CarbonEmissions: 0.25,
		EnergyUsage:     0.20,
		RenewableEnergy: 0.20,
		WasteRecycled:   0.15,
		WaterUsage:      0.15,
		PaperUsage:      0.05,

		CarbonPenalty: 10,
		EnergyPer:     1000,
		WaterPer:      10000,
		PaperPer:      10,

		GenderDiversity:      0.20,
		EmployeeTurnover:     0.15,
		TrainingHours:        0.15,
		PayEquityRatio:       0.20,
		CommunityInvestment:  0.15,
		EmployeeSatisfaction: 0.15,

		TurnoverPenalty: 5,
		TrainingFactor:  5,
		CommunityFactor: 20,

		BoardDiversity:          0.20,
		EthicsViolations:        0.20,
		PolicyCoverage:          0.15,
		DataBreaches:            0.20,
		ComplianceScore:         0.15,
		RiskAssessmentFrequency: 0.10,

		EthicsPenalty:        20,
		BreachPenalty:        25,
		RiskAssessmentFactor: 25,
	}
}

// Weights returns the per-metric weight table for a category.
func Weights(c Category) CategoryWeights {
	w := Defaults()
	switch c {
	case Environmental:
		return CategoryWeights{
			KeyCarbonEmissions: w.CarbonEmissions,
			KeyEnergyUsage:     w.EnergyUsage,
			KeyRenewableEnergy: w.RenewableEnergy,
			KeyWasteRecycled:   w.WasteRecycled,
			KeyWaterUsage:      w.WaterUsage,
			KeyPaperUsage:      w.PaperUsage,
		}
	case Social:
		return CategoryWeights{
			KeyGenderDiversity:      w.GenderDiversity,
			KeyEmployeeTurnover:     w.EmployeeTurnover,
			KeyTrainingHours:        w.TrainingHours,
			KeyPayEquityRatio:       w.PayEquityRatio,
			KeyCommunityInvestment:  w.CommunityInvestment,
			KeyEmployeeSatisfaction: w.EmployeeSatisfaction,
		}
	case Governance:
		return CategoryWeights{
			KeyBoardDiversity:          w.BoardDiversity,
			KeyEthicsViolations:        w.EthicsViolations,
			KeyPolicyCoverage:          w.PolicyCoverage,
			KeyDataBreaches:            w.DataBreaches,
			KeyComplianceScore:         w.ComplianceScore,
			KeyRiskAssessmentFrequency: w.RiskAssessmentFrequency,
		}
	default:
		return nil
	}
}

// TopLevelWeights returns the category weights used by PolicyWeighted.
func TopLevelWeights() map[Category]float64 {
	w := Defaults()
	return map[Category]float64{
		Environmental: w.EnvironmentalWeight,
		Social:        w.SocialWeight,
		Governance:    w.GovernanceWeight,
	}
}
