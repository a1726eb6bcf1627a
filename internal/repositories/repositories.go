package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence atomically increments and returns the counter for name.
func NextSequence(db *sql.DB, name string) (int64, error) {
	var value int64
	err := db.QueryRow(`
		INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = value + 1
		RETURNING value
	`, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return value, nil
}
