package cohort

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps a cohort in a local SQLite database as an alternative
// to the CSV file. The schema is one REAL column per feature, named by
// columnName.
type SQLiteStore struct {
	db       *sql.DB
	features []string
}

func OpenSQLite(path string, features []string) (*SQLiteStore, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("features is empty")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, features: features}, nil
}

// Init creates the cohort table if it does not exist.
func (s *SQLiteStore) Init() error {
	columns := make([]string, len(s.features))
	for i, name := range s.features {
		columns[i] = columnName(name) + " REAL NOT NULL"
	}
	query := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS cohort (id INTEGER PRIMARY KEY AUTOINCREMENT, %s)",
		strings.Join(columns, ", "),
	)
	_, err := s.db.Exec(query)
	return err
}

// InsertRows appends cohort rows in one transaction.
func (s *SQLiteStore) InsertRows(rows [][]float64) error {
	columns := make([]string, len(s.features))
	holes := make([]string, len(s.features))
	for i, name := range s.features {
		columns[i] = columnName(name)
		holes[i] = "?"
	}
	query := fmt.Sprintf(
		"INSERT INTO cohort (%s) VALUES (%s)",
		strings.Join(columns, ", "), strings.Join(holes, ", "),
	)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(s.features) {
			tx.Rollback()
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(s.features))
		}
		args := make([]interface{}, len(row))
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Load reads the whole cohort back in insertion order.
func (s *SQLiteStore) Load() (*Cohort, error) {
	columns := make([]string, len(s.features))
	for i, name := range s.features {
		columns[i] = columnName(name)
	}
	query := fmt.Sprintf("SELECT %s FROM cohort ORDER BY id", strings.Join(columns, ", "))

	result, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	var rows [][]float64
	for result.Next() {
		row := make([]float64, len(s.features))
		dest := make([]interface{}, len(s.features))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := result.Scan(dest...); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return New(s.features, rows)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// columnName maps a display feature name like "Age (years)" to a SQL
// column like "age_years".
func columnName(feature string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(feature) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
