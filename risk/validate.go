package risk

import (
	"fmt"
	"math"
)

// ValidationError reports one rejected input value. It is recoverable:
// the user corrects the field and resubmits.
type ValidationError struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Missing bool    `json:"missing,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: value is required", e.Feature)
	}
	return fmt.Sprintf("%s: value %v outside [%v, %v]", e.Feature, e.Value, e.Min, e.Max)
}

// Validate checks a raw name->value mapping against the feature table and
// returns the model input vector in feature order. Continuous values are
// rounded to 2 decimals before the bounds check so that the displayed and
// scored values are the same.
func Validate(specs []FeatureSpec, raw map[string]float64) ([]float64, error) {
	vector := make([]float64, len(specs))
	for i, spec := range specs {
		value, ok := raw[spec.Name]
		if !ok {
			return nil, &ValidationError{Feature: spec.Name, Min: spec.Min, Max: spec.Max, Missing: true}
		}
		if spec.Categorical {
			if value != math.Trunc(value) || value < spec.Min || value > spec.Max {
				return nil, &ValidationError{Feature: spec.Name, Value: value, Min: spec.Min, Max: spec.Max}
			}
			vector[i] = value
			continue
		}
		value = round2(value)
		if value < spec.Min || value > spec.Max {
			return nil, &ValidationError{Feature: spec.Name, Value: value, Min: spec.Min, Max: spec.Max}
		}
		vector[i] = value
	}
	return vector, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
