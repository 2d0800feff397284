// Command import_cohort loads a cohort CSV file into the SQLite store
// used by the service's sqlite cohort driver.
package main

import (
	"flag"
	"fmt"
	"log"

	"cvdrisk/cohort"
	"cvdrisk/risk"
)

func main() {
	csvPath := flag.String("csv", "", "cohort csv file")
	dbPath := flag.String("db", "./data/cohort.db", "sqlite output path")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("csv is required")
	}

	ref, err := cohort.LoadCSV(*csvPath, risk.FeatureNames())
	if err != nil {
		log.Fatalf("failed to load csv: %v", err)
	}
	if ref.Len() == 0 {
		log.Fatal("cohort csv has no rows")
	}

	store, err := cohort.OpenSQLite(*dbPath, risk.FeatureNames())
	if err != nil {
		log.Fatalf("failed to open sqlite store: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("failed to init schema: %v", err)
	}
	if err := store.InsertRows(ref.Rows()); err != nil {
		log.Fatalf("failed to insert rows: %v", err)
	}

	fmt.Printf("imported %d rows into %s\n", ref.Len(), *dbPath)
}
