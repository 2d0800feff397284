package model

// Attribution is an additive decomposition of a single prediction:
// BaseValue plus the sum of Contributions approximates the predicted
// positive-class probability.
type Attribution struct {
	BaseValue     float64   `json:"base_value"`
	Contributions []float64 `json:"contributions"`
}
