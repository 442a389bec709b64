package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/skyreserve/reservation-backend/internal/models"
)

// PassengerRepository persists passenger identity records.
type PassengerRepository struct {
	db *sqlx.DB
}

// NewPassengerRepository creates a new PassengerRepository
func NewPassengerRepository(db *sqlx.DB) *PassengerRepository {
	return &PassengerRepository{db: db}
}

// Save inserts a passenger. A missing ID is assigned from the store's
// sequence and written back.
func (r *PassengerRepository) Save(passenger *models.Passenger) error {
	var err error
	if passenger.ID == 0 {
		err = r.db.QueryRowx(`
			INSERT INTO passengers (first_name, last_name, phone_number)
			VALUES ($1, $2, $3)
			RETURNING id`,
			passenger.FirstName, passenger.LastName, passenger.PhoneNumber,
		).Scan(&passenger.ID)
	} else {
		_, err = r.db.Exec(`
			INSERT INTO passengers (id, first_name, last_name, phone_number)
			VALUES ($1, $2, $3, $4)`,
			passenger.ID, passenger.FirstName, passenger.LastName, passenger.PhoneNumber,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save passenger: %w", err)
	}
	return nil
}

// Update overwrites a passenger's attributes by ID.
func (r *PassengerRepository) Update(id int64, passenger *models.Passenger) error {
	result, err := r.db.Exec(`
		UPDATE passengers
		SET first_name = $1, last_name = $2, phone_number = $3
		WHERE id = $4`,
		passenger.FirstName, passenger.LastName, passenger.PhoneNumber, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update passenger: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a passenger. Any seat assignments the passenger holds are
// unassigned in the same transaction, so no dangling references survive.
func (r *PassengerRepository) Delete(id int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM seat_assignments WHERE passenger_id = $1`, id); err != nil {
		return fmt.Errorf("failed to unassign passenger seats: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM passengers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete passenger: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FindAll returns every passenger.
func (r *PassengerRepository) FindAll() ([]models.Passenger, error) {
	passengers := make([]models.Passenger, 0)
	err := r.db.Select(&passengers,
		`SELECT id, first_name, last_name, phone_number FROM passengers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query passengers: %w", err)
	}
	return passengers, nil
}

// FindByID returns one passenger or sql.ErrNoRows.
func (r *PassengerRepository) FindByID(id int64) (*models.Passenger, error) {
	var passenger models.Passenger
	err := r.db.Get(&passenger,
		`SELECT id, first_name, last_name, phone_number FROM passengers WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &passenger, nil
}
