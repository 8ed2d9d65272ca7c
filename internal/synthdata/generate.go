package synthdata

import (
	"fmt"
	"math"

	"github.com/trialbench/trialbench/internal/models"
	"github.com/trialbench/trialbench/internal/statistics"
)

// Offsets applied to the seed, one per logical quantity. Each derived value
// must keep its offset stable forever: changing one changes every generated
// dataset.
const (
	offEligibleFrac  = 1
	offTreatmentFrac = 2
	offOverlap       = 3
	offSampleRatio   = 4
	offOverallHR     = 5
	offOverallWidth  = 6

	// Survival points consume two offsets per time step, one per arm.
	offSurvivalBase = 10

	// Hazard-ratio rows consume four offsets per subgroup.
	offHazardBase = 100
)

// survivalMonths is the fixed time grid for the survival curve.
const (
	survivalMonths   = 36
	survivalStep     = 3
	atRiskCohortSize = 2400
)

// subgroups are the fixed forest-plot rows, in render order.
var subgroups = []string{
	"Age < 65",
	"Age >= 65",
	"Male",
	"Female",
	"eGFR 30-44",
	"eGFR 45-59",
	"Diabetes",
	"No Diabetes",
}

// generate builds the full record for an entity. Pure given (entityID,
// displayName); recordCount only scales the cohort sizes.
func generate(entityID, displayName string, recordCount int) *models.TrialDataRecord {
	seed := Seed(entityID, displayName)

	rec := &models.TrialDataRecord{
		EntityID:    entityID,
		DisplayName: displayName,
		RecordCount: recordCount,
	}

	rec.Cohort = cohortFlow(seed, recordCount)
	rec.Propensity = models.PropensitySummary{
		Overlap:              round3(0.82 + 0.15*unitRand(seed+offOverlap)),
		EffectiveSampleRatio: round3(0.75 + 0.20*unitRand(seed+offSampleRatio)),
	}
	rec.Survival = survivalCurve(seed)
	rec.HazardRatios = hazardRatios(seed)
	rec.Validation = validationSummary(seed, displayName)

	return rec
}

func cohortFlow(seed, recordCount int) models.CohortFlow {
	initial := int(math.Round(float64(recordCount) * 1.5))
	eligible := int(math.Round(float64(initial) * (0.35 + 0.10*unitRand(seed+offEligibleFrac))))
	treatment := int(math.Round(float64(eligible) * (0.30 + 0.15*unitRand(seed+offTreatmentFrac))))

	return models.CohortFlow{
		Initial:   initial,
		Eligible:  eligible,
		Treatment: treatment,
		Control:   eligible - treatment,
	}
}

// survivalCurve produces stepwise-decreasing survival probabilities for both
// arms. Each step's drop is a small bounded draw, so the curve is always
// monotone non-increasing; confidence bounds are fixed multiplicative offsets
// of the point estimate.
func survivalCurve(seed int) []models.SurvivalPoint {
	points := make([]models.SurvivalPoint, 0, survivalMonths/survivalStep+1)

	treat := 1.0
	control := 1.0
	for i, month := 0, 0; month <= survivalMonths; i, month = i+1, month+survivalStep {
		if month > 0 {
			treat -= 0.005 + 0.020*unitRand(seed+offSurvivalBase+2*i)
			control -= 0.008 + 0.028*unitRand(seed+offSurvivalBase+2*i+1)
		}

		points = append(points, models.SurvivalPoint{
			Month:          month,
			Treatment:      round3(treat),
			TreatmentLower: round3(treat * 0.97),
			TreatmentUpper: round3(math.Min(treat*1.03, 1.0)),
			Control:        round3(control),
			ControlLower:   round3(control * 0.97),
			ControlUpper:   round3(math.Min(control*1.03, 1.0)),
			AtRiskTreat:    int(math.Round(treat * atRiskCohortSize)),
			AtRiskControl:  int(math.Round(control * atRiskCohortSize)),
		})
	}

	return points
}

// hazardRatios draws one forest-plot row per fixed subgroup. P-values come
// from a mixture: 70% of draws land in a non-significant uniform range,
// 30% in a significant low range.
func hazardRatios(seed int) []models.HazardRatioRow {
	rows := make([]models.HazardRatioRow, 0, len(subgroups))

	for k, name := range subgroups {
		base := seed + offHazardBase + 4*k
		hr := round3(0.55 + 0.60*unitRand(base))
		width := 0.10 + 0.25*unitRand(base+1)

		var p float64
		if unitRand(base+2) < 0.30 {
			p = 0.001 + 0.049*unitRand(base+3)
		} else {
			p = 0.06 + 0.54*unitRand(base+3)
		}
		p = round3(p)

		ci := statistics.HazardRatioCI(hr, width)
		rows = append(rows, models.HazardRatioRow{
			Subgroup:    name,
			HazardRatio: hr,
			CILower:     round3(ci.Lower),
			CIUpper:     round3(ci.Upper),
			PValue:      p,
			Significant: statistics.SignificantP(p),
		})
	}

	return rows
}

func validationSummary(seed int, displayName string) models.ValidationSummary {
	hr := round3(0.60 + 0.30*unitRand(seed+offOverallHR))
	width := 0.08 + 0.15*unitRand(seed+offOverallWidth)
	ci := statistics.HazardRatioCI(hr, width)
	favorable := statistics.Protective(ci)

	direction := "was not associated with a statistically robust reduction in"
	if favorable {
		direction = "was associated with a reduced"
	}
	conclusion := fmt.Sprintf(
		"In this emulated target trial, %s %s hazard of the primary outcome (HR %.2f, 95%% CI %.2f-%.2f).",
		displayName, direction, hr, ci.Lower, ci.Upper)

	return models.ValidationSummary{
		OverallHazardRatio: hr,
		CILower:            round3(ci.Lower),
		CIUpper:            round3(ci.Upper),
		Favorable:          favorable,
		Conclusion:         conclusion,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
