// Package risk implements the cardiovascular risk assessment: input
// validation against the clinical feature table, percentile-based tier
// classification over the reference cohort, and the composed prediction
// with Shapley attribution.
package risk

import (
	"strings"

	"cvdrisk/cohort"
)

// Display names of the six model features, in model input order.
const (
	FeatureAge             = "Age (years)"
	FeatureHypertension    = "Hypertension"
	FeatureIMT             = "IMT (mm)"
	FeatureTyG             = "TyG index"
	FeaturePlaqueBurden    = "Carotid plaque burden"
	FeaturePlaqueThickness = "Plaque thickness (mm)"
)

// FeatureSpec declares the valid domain of one input feature. Categorical
// features accept only the integers in [Min, Max].
type FeatureSpec struct {
	Name        string  `json:"name"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Step        float64 `json:"step"`
	Default     float64 `json:"default"`
	Categorical bool    `json:"categorical"`

	// cohort overlays applied by SpecsFor
	minFromCohort     bool
	defaultFromCohort bool
}

func FeatureNames() []string {
	return []string{
		FeatureAge,
		FeatureHypertension,
		FeatureIMT,
		FeatureTyG,
		FeaturePlaqueBurden,
		FeaturePlaqueThickness,
	}
}

// BaseSpecs is the static feature table. Hard maxima are clinical
// constants; minima and defaults marked as cohort-derived are overlaid by
// SpecsFor at startup.
func BaseSpecs() []FeatureSpec {
	return []FeatureSpec{
		{Name: FeatureAge, Min: 0, Max: 100, Step: 1, minFromCohort: true, defaultFromCohort: true},
		{Name: FeatureHypertension, Min: 0, Max: 1, Step: 1, Categorical: true},
		{Name: FeatureIMT, Min: 0, Max: 1.5, Step: 0.1},
		{Name: FeatureTyG, Min: 0, Max: 15, Step: 0.01},
		{Name: FeaturePlaqueBurden, Min: 0, Max: 15, Step: 1, minFromCohort: true, defaultFromCohort: true},
		{Name: FeaturePlaqueThickness, Min: 0, Max: 7, Step: 0.1, defaultFromCohort: true},
	}
}

// SpecsFor overlays cohort-derived minima and defaults onto the static
// table, mirroring how the original form seeds its widgets from the test
// set. Defaults are rounded to 2 decimals like every other input value.
func SpecsFor(ref *cohort.Cohort) ([]FeatureSpec, error) {
	specs := BaseSpecs()
	stats, err := ref.FeatureStats()
	if err != nil {
		return nil, err
	}
	for i := range specs {
		s, ok := stats[specs[i].Name]
		if !ok {
			continue
		}
		if specs[i].minFromCohort {
			specs[i].Min = float64(int(s.Min))
		}
		if specs[i].defaultFromCohort {
			specs[i].Default = round2(s.Median)
		}
	}
	return specs, nil
}

// Key is a short machine-friendly identifier for a feature, used as a
// query parameter and form field name ("Age (years)" -> "age_years").
func (s FeatureSpec) Key() string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s.Name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
