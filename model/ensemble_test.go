package model

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func testEnsemble() *Ensemble {
	return &Ensemble{
		Version:   FormatVersion,
		Features:  []string{"f0", "f1"},
		BaseScore: 0,
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2, Cover: 4},
				{Leaf: true, Value: -1, Cover: 3},
				{Leaf: true, Value: 1, Cover: 1},
			}},
			{Nodes: []Node{
				{Feature: 1, Threshold: 2, Left: 1, Right: 2, Cover: 4},
				{Leaf: true, Value: 0.5, Cover: 2},
				{Leaf: true, Value: -0.5, Cover: 2},
			}},
		},
	}
}

func TestPredictProba(t *testing.T) {
	ensemble := testEnsemble()

	proba, err := ensemble.PredictProba([]float64{0.2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// raw = -1 + -0.5 = -1.5
	want := 1 / (1 + math.Exp(1.5))
	if math.Abs(proba[1]-want) > 1e-12 {
		t.Fatalf("expected p1=%v, got %v", want, proba[1])
	}
	if math.Abs(proba[0]+proba[1]-1) > 1e-12 {
		t.Fatalf("class probabilities should sum to 1, got %v", proba)
	}
}

func TestPredictProbaFeatureMismatch(t *testing.T) {
	ensemble := testEnsemble()
	if _, err := ensemble.PredictProba([]float64{0.2}); err == nil {
		t.Fatal("expected error for wrong feature count")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	ensemble := testEnsemble()
	payload, err := json.Marshal(ensemble)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.NumFeatures() != 2 || len(loaded.Trees) != 2 {
		t.Fatalf("unexpected model shape: %+v", loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error")
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %T", err)
	}
}

func TestLoadRejectsBadArtifact(t *testing.T) {
	cases := map[string]func(*Ensemble){
		"wrong version":  func(e *Ensemble) { e.Version = FormatVersion + 1 },
		"no trees":       func(e *Ensemble) { e.Trees = nil },
		"no features":    func(e *Ensemble) { e.Features = nil },
		"bad child":      func(e *Ensemble) { e.Trees[0].Nodes[0].Left = 99 },
		"bad feature":    func(e *Ensemble) { e.Trees[0].Nodes[0].Feature = 7 },
		"self reference": func(e *Ensemble) { e.Trees[0].Nodes[0].Right = 0 },
		"two-node cycle": func(e *Ensemble) {
			// node 1 points back at the root; the walk 0 -> 1 -> 0 would
			// never terminate if this loaded
			e.Trees[0].Nodes[1] = Node{Feature: 0, Threshold: 0.5, Left: 0, Right: 2, Cover: 3}
		},
	}
	for name, mutate := range cases {
		ensemble := testEnsemble()
		mutate(ensemble)
		payload, err := json.Marshal(ensemble)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		path := filepath.Join(t.TempDir(), "model.json")
		if err := os.WriteFile(path, payload, 0o600); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected load to fail", name)
		}
	}
}
