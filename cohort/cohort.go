// Package cohort holds the reference dataset used to derive risk
// thresholds and per-feature form defaults. The cohort is loaded once at
// startup and never mutated afterwards.
package cohort

import (
	"errors"
	"fmt"
	"sort"
)

type Cohort struct {
	features []string
	rows     [][]float64
}

// Stats are per-feature summary values over the cohort.
type Stats struct {
	Min    float64
	Max    float64
	Median float64
}

func New(features []string, rows [][]float64) (*Cohort, error) {
	if len(features) == 0 {
		return nil, errors.New("features is empty")
	}
	for i, row := range rows {
		if len(row) != len(features) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(features))
		}
	}
	return &Cohort{features: features, rows: rows}, nil
}

func (c *Cohort) Features() []string {
	return c.features
}

func (c *Cohort) Len() int {
	return len(c.rows)
}

// Rows returns the underlying rows. Callers must treat them as read-only.
func (c *Cohort) Rows() [][]float64 {
	return c.rows
}

// FeatureStats computes min/max/median per feature.
func (c *Cohort) FeatureStats() (map[string]Stats, error) {
	if len(c.rows) == 0 {
		return nil, errors.New("cohort is empty")
	}
	stats := make(map[string]Stats, len(c.features))
	values := make([]float64, len(c.rows))
	for fi, name := range c.features {
		for ri, row := range c.rows {
			values[ri] = row[fi]
		}
		stats[name] = Stats{
			Min:    minOf(values),
			Max:    maxOf(values),
			Median: median(values),
		}
	}
	return stats, nil
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
