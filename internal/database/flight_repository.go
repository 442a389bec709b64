package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/skyreserve/reservation-backend/internal/models"
)

// FlightRepository persists flights and their seat assignments.
type FlightRepository struct {
	db *sqlx.DB
}

// NewFlightRepository creates a new FlightRepository
func NewFlightRepository(db *sqlx.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

const flightColumns = `flight_number, route,
	to_char(departure_date, 'YYYY-MM-DD') AS departure_date,
	to_char(departure_time, 'HH24:MI:SS') AS departure_time,
	capacity`

type seatRow struct {
	SeatNumber  int   `db:"seat_number"`
	PassengerID int64 `db:"passenger_id"`
}

// Save inserts a flight and every entry of its seat map. A missing flight
// number is assigned from the store's sequence and written back.
func (r *FlightRepository) Save(flight *models.Flight) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if flight.FlightNumber == 0 {
		err = tx.QueryRowx(`
			INSERT INTO flights (route, departure_date, departure_time, capacity)
			VALUES ($1, $2, $3, $4)
			RETURNING flight_number`,
			flight.Route, flight.DepartureDate, flight.DepartureTime, flight.Capacity,
		).Scan(&flight.FlightNumber)
	} else {
		_, err = tx.Exec(`
			INSERT INTO flights (flight_number, route, departure_date, departure_time, capacity)
			VALUES ($1, $2, $3, $4, $5)`,
			flight.FlightNumber, flight.Route, flight.DepartureDate, flight.DepartureTime, flight.Capacity,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save flight: %w", err)
	}

	if err := insertSeatAssignments(tx, flight.FlightNumber, flight.SeatMap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update overwrites the flight attributes and replaces the full seat
// assignment set (delete, then reinsert) as one transaction.
func (r *FlightRepository) Update(flightNumber int64, flight *models.Flight) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE flights
		SET route = $1, departure_date = $2, departure_time = $3, capacity = $4
		WHERE flight_number = $5`,
		flight.Route, flight.DepartureDate, flight.DepartureTime, flight.Capacity, flightNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to update flight: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec(`DELETE FROM seat_assignments WHERE flight_number = $1`, flightNumber); err != nil {
		return fmt.Errorf("failed to clear seat assignments: %w", err)
	}
	if err := insertSeatAssignments(tx, flightNumber, flight.SeatMap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes a flight and its seat assignment rows. The cascade lives
// here, not in the database schema.
func (r *FlightRepository) Delete(flightNumber int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM seat_assignments WHERE flight_number = $1`, flightNumber); err != nil {
		return fmt.Errorf("failed to clear seat assignments: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM flights WHERE flight_number = $1`, flightNumber)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FindAll returns every flight with its seat map populated. The outer join
// keeps flights without assignments; rows arrive ordered by flight number
// and are folded into one record per flight with a single accumulation
// buffer.
func (r *FlightRepository) FindAll() ([]models.Flight, error) {
	rows, err := r.db.Query(`
		SELECT f.flight_number, f.route,
			to_char(f.departure_date, 'YYYY-MM-DD'),
			to_char(f.departure_time, 'HH24:MI:SS'),
			f.capacity, a.seat_number, a.passenger_id
		FROM flights f
		LEFT JOIN seat_assignments a ON a.flight_number = f.flight_number
		ORDER BY f.flight_number, a.seat_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]models.Flight, 0)
	var current *models.Flight
	for rows.Next() {
		var (
			flight      models.Flight
			seatNumber  sql.NullInt64
			passengerID sql.NullInt64
		)
		if err := rows.Scan(
			&flight.FlightNumber, &flight.Route, &flight.DepartureDate,
			&flight.DepartureTime, &flight.Capacity, &seatNumber, &passengerID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flight row: %w", err)
		}

		if current == nil || current.FlightNumber != flight.FlightNumber {
			flight.SeatMap = make(map[int]int64)
			flights = append(flights, flight)
			current = &flights[len(flights)-1]
		}
		if seatNumber.Valid {
			current.SeatMap[int(seatNumber.Int64)] = passengerID.Int64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flight rows: %w", err)
	}
	return flights, nil
}

// FindByFlightNumber returns one flight with its seat map loaded, or
// sql.ErrNoRows.
func (r *FlightRepository) FindByFlightNumber(flightNumber int64) (*models.Flight, error) {
	var flight models.Flight
	err := r.db.Get(&flight,
		`SELECT `+flightColumns+` FROM flights WHERE flight_number = $1`, flightNumber)
	if err != nil {
		return nil, err
	}

	flight.SeatMap, err = r.loadSeatMap(r.db, flightNumber)
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

// AssignSeat binds a passenger to a seat. The whole read-modify-write runs
// in one transaction with the flight row locked, so concurrent assigners
// for the same flight serialize instead of double-booking.
func (r *FlightRepository) AssignSeat(flightNumber int64, seatNumber int, passengerID int64) (models.SeatOutcome, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return models.SeatStorageFailure, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	flight, err := lockFlight(tx, flightNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SeatNotFound, nil
	}
	if err != nil {
		return models.SeatStorageFailure, fmt.Errorf("failed to lock flight: %w", err)
	}

	flight.SeatMap, err = r.loadSeatMap(tx, flightNumber)
	if err != nil {
		return models.SeatStorageFailure, fmt.Errorf("failed to load seat assignments: %w", err)
	}

	if flight.AvailableSeats() <= 0 || !flight.AssignSeat(seatNumber, passengerID) {
		return models.SeatConflict, nil
	}

	_, err = tx.Exec(`
		INSERT INTO seat_assignments (flight_number, seat_number, passenger_id)
		VALUES ($1, $2, $3)`,
		flightNumber, seatNumber, passengerID,
	)
	if err != nil {
		// A foreign key violation means the passenger does not exist; a
		// unique violation means another writer won the seat.
		if isConstraintViolation(err) {
			return models.SeatConflict, nil
		}
		return models.SeatStorageFailure, fmt.Errorf("failed to insert seat assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.SeatStorageFailure, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return models.SeatOK, nil
}

// UnassignSeat frees a seat under the same flight-row lock as AssignSeat.
func (r *FlightRepository) UnassignSeat(flightNumber int64, seatNumber int) (models.SeatOutcome, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return models.SeatStorageFailure, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := lockFlight(tx, flightNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SeatNotFound, nil
		}
		return models.SeatStorageFailure, fmt.Errorf("failed to lock flight: %w", err)
	}

	result, err := tx.Exec(`
		DELETE FROM seat_assignments WHERE flight_number = $1 AND seat_number = $2`,
		flightNumber, seatNumber,
	)
	if err != nil {
		return models.SeatStorageFailure, fmt.Errorf("failed to delete seat assignment: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.SeatNotFound, nil
	}

	if err := tx.Commit(); err != nil {
		return models.SeatStorageFailure, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return models.SeatOK, nil
}

// sqlx.Queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so seat maps load
// the same way inside and outside a transaction.
func (r *FlightRepository) loadSeatMap(q sqlx.Queryer, flightNumber int64) (map[int]int64, error) {
	var rows []seatRow
	err := sqlx.Select(q, &rows,
		`SELECT seat_number, passenger_id FROM seat_assignments WHERE flight_number = $1`,
		flightNumber)
	if err != nil {
		return nil, err
	}

	seatMap := make(map[int]int64, len(rows))
	for _, row := range rows {
		seatMap[row.SeatNumber] = row.PassengerID
	}
	return seatMap, nil
}

func lockFlight(tx *sqlx.Tx, flightNumber int64) (*models.Flight, error) {
	var flight models.Flight
	err := tx.Get(&flight,
		`SELECT flight_number, route,
			to_char(departure_date, 'YYYY-MM-DD') AS departure_date,
			to_char(departure_time, 'HH24:MI:SS') AS departure_time,
			capacity
		FROM flights WHERE flight_number = $1 FOR UPDATE`, flightNumber)
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

func insertSeatAssignments(tx *sqlx.Tx, flightNumber int64, seatMap map[int]int64) error {
	for seatNumber, passengerID := range seatMap {
		_, err := tx.Exec(`
			INSERT INTO seat_assignments (flight_number, seat_number, passenger_id)
			VALUES ($1, $2, $3)`,
			flightNumber, seatNumber, passengerID,
		)
		if err != nil {
			return fmt.Errorf("failed to save seat assignment %d: %w", seatNumber, err)
		}
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503" || pqErr.Code == "23505"
	}
	return false
}
