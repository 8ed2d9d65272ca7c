package models

// TrialDataRecord is a complete, internally consistent synthetic analytics
// dataset for one entity. Records are pure functions of (EntityID,
// DisplayName) and are never mutated after creation.
type TrialDataRecord struct {
	EntityID    string `json:"entity_id"`
	DisplayName string `json:"display_name"`
	RecordCount int    `json:"record_count"`

	Cohort       CohortFlow        `json:"cohort"`
	Propensity   PropensitySummary `json:"propensity"`
	Survival     []SurvivalPoint   `json:"survival"`
	HazardRatios []HazardRatioRow  `json:"hazard_ratios"`
	Validation   ValidationSummary `json:"validation"`
}

// CohortFlow holds the cohort attrition counts from initial population down
// to the two comparison arms.
type CohortFlow struct {
	Initial   int `json:"initial"`
	Eligible  int `json:"eligible"`
	Treatment int `json:"treatment"`
	Control   int `json:"control"`
}

// PropensitySummary describes propensity-score overlap between arms.
type PropensitySummary struct {
	// Overlap is the PS distribution overlap coefficient in [0, 1].
	Overlap float64 `json:"overlap"`
	// EffectiveSampleRatio is the effective sample size after weighting,
	// as a fraction of the raw sample size.
	EffectiveSampleRatio float64 `json:"effective_sample_ratio"`
}

// SurvivalPoint is one step on the Kaplan-Meier-style survival curve for
// both arms, with confidence bounds and at-risk counts.
type SurvivalPoint struct {
	Month          int     `json:"month"`
	Treatment      float64 `json:"treatment"`
	TreatmentLower float64 `json:"treatment_lower"`
	TreatmentUpper float64 `json:"treatment_upper"`
	Control        float64 `json:"control"`
	ControlLower   float64 `json:"control_lower"`
	ControlUpper   float64 `json:"control_upper"`
	AtRiskTreat    int     `json:"at_risk_treatment"`
	AtRiskControl  int     `json:"at_risk_control"`
}

// HazardRatioRow is one subgroup row of the forest plot.
type HazardRatioRow struct {
	Subgroup    string  `json:"subgroup"`
	HazardRatio float64 `json:"hazard_ratio"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// ValidationSummary is the synthesizer's conclusion block: an overall effect
// direction and a short narrative the results view renders verbatim.
type ValidationSummary struct {
	OverallHazardRatio float64 `json:"overall_hazard_ratio"`
	CILower            float64 `json:"ci_lower"`
	CIUpper            float64 `json:"ci_upper"`
	Favorable          bool    `json:"favorable"`
	Conclusion         string  `json:"conclusion"`
}
