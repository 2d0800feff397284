package model

import (
	"math"
	"testing"
)

func TestExplainAdditivity(t *testing.T) {
	ensemble := testEnsemble()
	explainer, err := NewExplainer(ensemble)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inputs := [][]float64{
		{0.2, 3},
		{0.9, 1},
		{0.5, 2},
	}
	for _, input := range inputs {
		attribution, err := explainer.Explain(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		proba, err := ensemble.PredictProba(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sum := attribution.BaseValue
		for _, c := range attribution.Contributions {
			sum += c
		}
		if math.Abs(sum-proba[1]) > 1e-9 {
			t.Fatalf("contributions + base = %v, want probability %v", sum, proba[1])
		}
	}
}

func TestExplainDeterministic(t *testing.T) {
	explainer, err := NewExplainer(testEnsemble())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := explainer.Explain([]float64{0.2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := explainer.Explain([]float64{0.2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.BaseValue != second.BaseValue {
		t.Fatalf("base value drifted: %v vs %v", first.BaseValue, second.BaseValue)
	}
	for i := range first.Contributions {
		if first.Contributions[i] != second.Contributions[i] {
			t.Fatalf("contribution %d drifted", i)
		}
	}
}

func TestExplainSignFollowsSplit(t *testing.T) {
	// A row that lands on the high-value leaf of tree 0 should get a
	// positive contribution from f0, and vice versa.
	explainer, err := NewExplainer(testEnsemble())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := explainer.Explain([]float64{0.9, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high.Contributions[0] <= 0 {
		t.Fatalf("expected positive f0 contribution, got %v", high.Contributions[0])
	}
	low, err := explainer.Explain([]float64{0.2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low.Contributions[0] >= 0 {
		t.Fatalf("expected negative f0 contribution, got %v", low.Contributions[0])
	}
}

func TestPositiveClassResolution(t *testing.T) {
	perClass := classValues{
		values: [][]float64{{-0.1, -0.2}, {0.1, 0.2}},
		bases:  []float64{0.7, 0.3},
	}
	contributions, base := perClass.positive()
	if base != 0.3 || contributions[0] != 0.1 {
		t.Fatalf("expected positive-class row, got base=%v contributions=%v", base, contributions)
	}

	single := classValues{
		values: [][]float64{{0.1, 0.2}},
		bases:  []float64{0.3},
	}
	contributions, base = single.positive()
	if base != 0.3 || contributions[1] != 0.2 {
		t.Fatalf("expected single row passthrough, got base=%v contributions=%v", base, contributions)
	}
}

func TestNewExplainerBounds(t *testing.T) {
	wide := &Ensemble{
		Version:   FormatVersion,
		Features:  make([]string, maxExplainFeatures+1),
		BaseScore: 0,
		Trees:     []Tree{{Nodes: []Node{{Leaf: true, Value: 0, Cover: 1}}}},
	}
	if _, err := NewExplainer(wide); err == nil {
		t.Fatal("expected error for too many features")
	}
}
