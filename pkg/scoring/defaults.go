package scoring

// WeightedMetric pairs a normalizer with its weight inside a category.
type WeightedMetric struct {
	Normalizer
	Weight float64
}

// DefaultMetrics returns the standard normalizers for a category with
// default weights, in reporting order.
func DefaultMetrics(c Category) []WeightedMetric {
	w := Defaults()
	switch c {
	case Environmental:
		return []WeightedMetric{
			{LowerIsBetter{MetricKey: KeyCarbonEmissions, MetricName: "Carbon emissions", Penalty: w.CarbonPenalty}, w.CarbonEmissions},
			{LowerIsBetter{MetricKey: KeyEnergyUsage, MetricName: "Energy usage", Penalty: 1, Per: w.EnergyPer}, w.EnergyUsage},
			{Percent{MetricKey: KeyRenewableEnergy, MetricName: "Renewable energy"}, w.RenewableEnergy},
			{Percent{MetricKey: KeyWasteRecycled, MetricName: "Waste recycled"}, w.WasteRecycled},
			{LowerIsBetter{MetricKey: KeyWaterUsage, MetricName: "Water usage", Penalty: 1, Per: w.WaterPer}, w.WaterUsage},
			{LowerIsBetter{MetricKey: KeyPaperUsage, MetricName: "Paper usage", Penalty: 1, Per: w.PaperPer}, w.PaperUsage},
		}
	case Social:
		return []WeightedMetric{
			{Percent{MetricKey: KeyGenderDiversity, MetricName: "Gender diversity"}, w.GenderDiversity},
			{LowerIsBetter{MetricKey: KeyEmployeeTurnover, MetricName: "Employee turnover", Penalty: w.TurnoverPenalty}, w.EmployeeTurnover},
			{Scaled{MetricKey: KeyTrainingHours, MetricName: "Training hours", Factor: w.TrainingFactor}, w.TrainingHours},
			{ParityRatio{MetricKey: KeyPayEquityRatio, MetricName: "Pay equity ratio"}, w.PayEquityRatio},
			{Scaled{MetricKey: KeyCommunityInvestment, MetricName: "Community investment", Factor: w.CommunityFactor}, w.CommunityInvestment},
			// Survey results are on a 1-5 scale and are not rescaled.
			{Percent{MetricKey: KeyEmployeeSatisfaction, MetricName: "Employee satisfaction"}, w.EmployeeSatisfaction},
		}
	case Governance:
		return []WeightedMetric{
			{Percent{MetricKey: KeyBoardDiversity, MetricName: "Board diversity"}, w.BoardDiversity},
			{LowerIsBetter{MetricKey: KeyEthicsViolations, MetricName: "Ethics violations", Penalty: w.EthicsPenalty}, w.EthicsViolations},
			{Percent{MetricKey: KeyPolicyCoverage, MetricName: "Policy coverage"}, w.PolicyCoverage},
			{LowerIsBetter{MetricKey: KeyDataBreaches, MetricName: "Data breaches", Penalty: w.BreachPenalty}, w.DataBreaches},
			{Percent{MetricKey: KeyComplianceScore, MetricName: "Compliance score"}, w.ComplianceScore},
			{Scaled{MetricKey: KeyRiskAssessmentFrequency, MetricName: "Risk assessment frequency", Factor: w.RiskAssessmentFactor}, w.RiskAssessmentFrequency},
		}
	default:
		return nil
	}
}
