package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FormatVersion is the artifact version this build can read.
const FormatVersion = 1

// LoadError reports a missing or corrupt model artifact. It is fatal at
// startup: the process cannot serve predictions without a valid model.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads and validates a model artifact from disk.
func Load(path string) (*Ensemble, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var ensemble Ensemble
	if err := json.Unmarshal(payload, &ensemble); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if err := ensemble.validate(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &ensemble, nil
}

func (e *Ensemble) validate() error {
	if e.Version != FormatVersion {
		return fmt.Errorf("unsupported artifact version %d", e.Version)
	}
	if len(e.Features) == 0 {
		return errors.New("artifact declares no features")
	}
	if len(e.Trees) == 0 {
		return errors.New("artifact contains no trees")
	}
	for ti := range e.Trees {
		nodes := e.Trees[ti].Nodes
		if len(nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, node := range nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= len(e.Features) {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, node.Feature)
			}
			if node.Left >= len(nodes) || node.Right >= len(nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
			// The flattened export always places children after their
			// parent, so any backward or self edge is a cycle and would
			// make the score walk loop forever.
			if node.Left <= ni || node.Right <= ni {
				return fmt.Errorf("tree %d node %d: child index must follow the node", ti, ni)
			}
		}
	}
	return nil
}
