package risk

import (
	"fmt"

	"golang.org/x/text/language"

	"cvdrisk/cohort"
	"cvdrisk/model"
)

// Explainer produces the per-feature attribution of one prediction.
type Explainer interface {
	Explain(features []float64) (model.Attribution, error)
}

// PredictionResult is the full response for one submission: probability,
// tier, advisory text and the attribution behind the force plot. Either
// the whole result is produced or nothing is.
type PredictionResult struct {
	Probability   float64            `json:"probability_pct"`
	Tier          Tier               `json:"tier"`
	Advisory      string             `json:"advisory"`
	BaseValue     float64            `json:"base_value"`
	Contributions map[string]float64 `json:"contributions"`
	Features      map[string]float64 `json:"features"`
}

// Predict runs the whole pipeline for one raw submission: validate,
// classify against the cohort, explain. Model and cohort are passed in
// explicitly; this function keeps no state between calls.
func Predict(clf Classifier, exp Explainer, ref *cohort.Cohort, specs []FeatureSpec, raw map[string]float64, lang language.Tag) (*PredictionResult, error) {
	vector, err := Validate(specs, raw)
	if err != nil {
		return nil, err
	}

	assessment, err := Classify(clf, ref, vector)
	if err != nil {
		return nil, err
	}

	attribution, err := exp.Explain(vector)
	if err != nil {
		return nil, fmt.Errorf("explain prediction: %w", err)
	}
	if len(attribution.Contributions) != len(specs) {
		return nil, fmt.Errorf("attribution has %d contributions, expected %d", len(attribution.Contributions), len(specs))
	}

	contributions := make(map[string]float64, len(specs))
	features := make(map[string]float64, len(specs))
	for i, spec := range specs {
		contributions[spec.Name] = attribution.Contributions[i]
		features[spec.Name] = vector[i]
	}

	return &PredictionResult{
		Probability:   assessment.Probability,
		Tier:          assessment.Tier,
		Advisory:      Advisory(assessment.Tier, lang),
		BaseValue:     attribution.BaseValue,
		Contributions: contributions,
		Features:      features,
	}, nil
}
