package model

import (
	"errors"
	"fmt"
	"math/bits"
)

// maxExplainFeatures bounds the subset enumeration below (2^n model
// evaluations per request).
const maxExplainFeatures = 16

// Explainer computes exact Shapley values for an ensemble prediction.
// The characteristic function of a feature subset is the model probability
// with absent features marginalized by node cover, so contributions plus
// base value equal the predicted positive-class probability exactly.
type Explainer struct {
	model   *Ensemble
	weights []float64 // Shapley kernel weight by subset size
}

func NewExplainer(m *Ensemble) (*Explainer, error) {
	n := m.NumFeatures()
	if n == 0 {
		return nil, errors.New("model has no features")
	}
	if n > maxExplainFeatures {
		return nil, fmt.Errorf("model has %d features, explainer supports at most %d", n, maxExplainFeatures)
	}

	factorial := make([]float64, n+1)
	factorial[0] = 1
	for i := 1; i <= n; i++ {
		factorial[i] = factorial[i-1] * float64(i)
	}
	weights := make([]float64, n)
	for s := 0; s < n; s++ {
		weights[s] = factorial[s] * factorial[n-1-s] / factorial[n]
	}
	return &Explainer{model: m, weights: weights}, nil
}

// classValues carries attribution output in whichever shape the
// decomposition produced: one row per class, or a single row. Callers
// resolve it to the positive class exactly once, here.
type classValues struct {
	values [][]float64
	bases  []float64
}

func (cv classValues) positive() ([]float64, float64) {
	if len(cv.values) == 1 {
		return cv.values[0], cv.bases[0]
	}
	return cv.values[1], cv.bases[1]
}

// Explain returns the positive-class attribution for one feature row.
func (ex *Explainer) Explain(features []float64) (Attribution, error) {
	cv, err := ex.shapValues(features)
	if err != nil {
		return Attribution{}, err
	}
	contributions, base := cv.positive()
	return Attribution{BaseValue: base, Contributions: contributions}, nil
}

func (ex *Explainer) shapValues(features []float64) (classValues, error) {
	n := ex.model.NumFeatures()
	if len(features) != n {
		return classValues{}, errors.New("feature count mismatch")
	}

	total := 1 << uint(n)
	v := make([]float64, total)
	for mask := 0; mask < total; mask++ {
		raw := ex.model.BaseScore
		for ti := range ex.model.Trees {
			raw += ex.model.Trees[ti].expected(features, uint(mask), 0)
		}
		v[mask] = sigmoid(raw)
	}

	positive := make([]float64, n)
	for i := 0; i < n; i++ {
		bit := 1 << uint(i)
		for mask := 0; mask < total; mask++ {
			if mask&bit != 0 {
				continue
			}
			w := ex.weights[bits.OnesCount(uint(mask))]
			positive[i] += w * (v[mask|bit] - v[mask])
		}
	}

	negative := make([]float64, n)
	for i := range positive {
		negative[i] = -positive[i]
	}
	return classValues{
		values: [][]float64{negative, positive},
		bases:  []float64{1 - v[0], v[0]},
	}, nil
}

// expected walks the tree following real splits for features present in
// mask and cover-weighted averages of both children for absent features.
func (t *Tree) expected(features []float64, mask uint, idx int) float64 {
	node := t.Nodes[idx]
	if node.Leaf {
		return node.Value
	}
	if mask&(1<<uint(node.Feature)) != 0 {
		if features[node.Feature] <= node.Threshold {
			return t.expected(features, mask, node.Left)
		}
		return t.expected(features, mask, node.Right)
	}
	left := t.expected(features, mask, node.Left)
	right := t.expected(features, mask, node.Right)
	leftCover := t.Nodes[node.Left].Cover
	rightCover := t.Nodes[node.Right].Cover
	if leftCover+rightCover <= 0 {
		return (left + right) / 2
	}
	return (leftCover*left + rightCover*right) / (leftCover + rightCover)
}
