package model

import (
	"errors"
	"math"
)

// Node is one node of a boosted tree, stored in a flat array.
// Internal nodes split on Feature <= Threshold; Left/Right index into the
// same array. Cover is the training sample weight that reached the node.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Cover     float64 `json:"cover"`
	Leaf      bool    `json:"leaf"`
}

// Tree is a single regression tree of the boosted ensemble. Node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Ensemble is a gradient-boosted binary classifier exported to the
// versioned JSON artifact format. The raw score is BaseScore plus the sum
// of the leaf values of every tree; the positive-class probability is the
// logistic transform of the raw score.
type Ensemble struct {
	Version   int      `json:"version"`
	Features  []string `json:"features"`
	BaseScore float64  `json:"base_score"`
	Trees     []Tree   `json:"trees"`
}

func (e *Ensemble) NumFeatures() int {
	return len(e.Features)
}

// PredictRaw returns the margin (log-odds) score for one feature row.
func (e *Ensemble) PredictRaw(features []float64) (float64, error) {
	if len(features) != len(e.Features) {
		return 0, errors.New("feature count mismatch")
	}
	raw := e.BaseScore
	for i := range e.Trees {
		leaf, err := e.Trees[i].score(features)
		if err != nil {
			return 0, err
		}
		raw += leaf
	}
	return raw, nil
}

// PredictProba returns [P(class0), P(class1)] for one feature row.
func (e *Ensemble) PredictProba(features []float64) ([2]float64, error) {
	raw, err := e.PredictRaw(features)
	if err != nil {
		return [2]float64{}, err
	}
	p := sigmoid(raw)
	return [2]float64{1 - p, p}, nil
}

func (t *Tree) score(features []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("empty tree")
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value, nil
		}
		if node.Feature < 0 || node.Feature >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func sigmoid(raw float64) float64 {
	return 1 / (1 + math.Exp(-raw))
}
