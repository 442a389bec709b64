package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Identifiers are store-assigned sequences; seat_assignments rows are
// removed explicitly by the repositories, so the foreign keys carry no
// ON DELETE action.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS flights (
		flight_number BIGSERIAL PRIMARY KEY,
		route TEXT NOT NULL,
		departure_date DATE NOT NULL,
		departure_time TIME NOT NULL,
		capacity INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS passengers (
		id BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone_number TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS seat_assignments (
		flight_number BIGINT NOT NULL REFERENCES flights (flight_number),
		seat_number INTEGER NOT NULL,
		passenger_id BIGINT NOT NULL REFERENCES passengers (id),
		PRIMARY KEY (flight_number, seat_number)
	)`,
}

// EnsureSchema creates the tables on startup if they do not exist yet.
func EnsureSchema(db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
