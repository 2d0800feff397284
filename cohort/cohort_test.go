package cohort

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFeatureStats(t *testing.T) {
	c, err := New([]string{"a", "b"}, [][]float64{
		{1, 10},
		{3, 30},
		{2, 20},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, err := c.FeatureStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats["a"].Min != 1 || stats["a"].Max != 3 || stats["a"].Median != 2 {
		t.Fatalf("unexpected stats for a: %+v", stats["a"])
	}
	if stats["b"].Median != 20 {
		t.Fatalf("unexpected median for b: %v", stats["b"].Median)
	}
}

func TestFeatureStatsEvenCount(t *testing.T) {
	c, err := New([]string{"a"}, [][]float64{{1}, {2}, {3}, {4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, err := c.FeatureStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats["a"].Median != 2.5 {
		t.Fatalf("expected median 2.5, got %v", stats["a"].Median)
	}
}

func TestNewRejectsRaggedRows(t *testing.T) {
	if _, err := New([]string{"a", "b"}, [][]float64{{1}}); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.csv")
	content := "extra,b,a\nx,10,1\ny,20,2\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, err := LoadCSV(path, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", c.Len())
	}
	// Columns must be reordered into the requested feature order.
	if c.Rows()[0][0] != 1 || c.Rows()[0][1] != 10 {
		t.Fatalf("unexpected first row: %v", c.Rows()[0])
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.csv")
	if err := os.WriteFile(path, []byte("a\n1\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadCSV(path, []string{"a", "b"}); err == nil {
		t.Fatal("expected error for missing column")
	}
}

func TestLoadCSVBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.csv")
	if err := os.WriteFile(path, []byte("a\nnot-a-number\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadCSV(path, []string{"a"}); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.db")
	features := []string{"Age (years)", "TyG index"}

	store, err := OpenSQLite(path, features)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := [][]float64{{55, 8.1}, {63, 9.4}}
	if err := store.InsertRows(rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", loaded.Len())
	}
	if loaded.Rows()[1][1] != 9.4 {
		t.Fatalf("unexpected value: %v", loaded.Rows()[1])
	}
}

func TestColumnName(t *testing.T) {
	cases := map[string]string{
		"Age (years)":           "age_years",
		"Hypertension":          "hypertension",
		"IMT (mm)":              "imt_mm",
		"TyG index":             "tyg_index",
		"Carotid plaque burden": "carotid_plaque_burden",
		"Plaque thickness (mm)": "plaque_thickness_mm",
	}
	for input, want := range cases {
		if got := columnName(input); got != want {
			t.Fatalf("columnName(%q) = %q, want %q", input, got, want)
		}
	}
}
