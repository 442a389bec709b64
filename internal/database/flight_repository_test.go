package database

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/skyreserve/reservation-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFlightRepoTest(t *testing.T) (*FlightRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewFlightRepository(sqlxDB)

	return repo, mock, func() { db.Close() }
}

func flightRows(flightNumber int64, route, date, timeOfDay string, capacity int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"flight_number", "route", "departure_date", "departure_time", "capacity",
	}).AddRow(flightNumber, route, date, timeOfDay, capacity)
}

func seatRows(pairs ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"seat_number", "passenger_id"})
	for i := 0; i+1 < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	return rows
}

func TestSaveFlight(t *testing.T) {
	t.Run("Assigns Flight Number From Sequence", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		flight := &models.Flight{
			Route:         "Warszawa-Kielce",
			DepartureDate: "2025-06-01",
			DepartureTime: "12:30",
			Capacity:      150,
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO flights \(route, departure_date, departure_time, capacity\)`).
			WithArgs("Warszawa-Kielce", "2025-06-01", "12:30", 150).
			WillReturnRows(sqlmock.NewRows([]string{"flight_number"}).AddRow(41))
		mock.ExpectCommit()

		require.NoError(t, repo.Save(flight))
		assert.Equal(t, int64(41), flight.FlightNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Keeps Client Flight Number And Persists Seat Map", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		flight := &models.Flight{
			FlightNumber:  7,
			Route:         "Warszawa-Krakow",
			DepartureDate: "2025-06-01",
			DepartureTime: "08:00",
			Capacity:      10,
			SeatMap:       map[int]int64{5: 3},
		}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO flights \(flight_number, route`).
			WithArgs(7, "Warszawa-Krakow", "2025-06-01", "08:00", 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO seat_assignments`).
			WithArgs(7, 5, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Save(flight))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Storage Error", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		flight := &models.Flight{Route: "X", DepartureDate: "2025-06-01", DepartureTime: "08:00", Capacity: 10}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO flights`).
			WillReturnError(fmt.Errorf("connection reset"))
		mock.ExpectRollback()

		err := repo.Save(flight)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save flight")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateFlight(t *testing.T) {
	t.Run("Replaces Attributes And Seat Assignments", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		flight := &models.Flight{
			FlightNumber:  41,
			Route:         "Updated Route",
			DepartureDate: "2025-06-02",
			DepartureTime: "09:15",
			Capacity:      100,
			SeatMap:       map[int]int64{2: 9},
		}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE flights SET route = \$1`).
			WithArgs("Updated Route", "2025-06-02", "09:15", 100, 41).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM seat_assignments WHERE flight_number = \$1`).
			WithArgs(41).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO seat_assignments`).
			WithArgs(41, 2, 9).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Update(41, flight))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Flight Not Found", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		flight := &models.Flight{Route: "X", DepartureDate: "2025-06-01", DepartureTime: "08:00", Capacity: 10}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE flights SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Update(99, flight), sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Reinsert Fails Rolls Back", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		flight := &models.Flight{
			FlightNumber: 41, Route: "X", DepartureDate: "2025-06-01", DepartureTime: "08:00",
			Capacity: 10, SeatMap: map[int]int64{1: 5},
		}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE flights SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM seat_assignments`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO seat_assignments`).
			WillReturnError(fmt.Errorf("disk full"))
		mock.ExpectRollback()

		err := repo.Update(41, flight)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save seat assignment")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteFlight(t *testing.T) {
	t.Run("Cascades Seat Assignments", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM seat_assignments WHERE flight_number = \$1`).
			WithArgs(41).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM flights WHERE flight_number = \$1`).
			WithArgs(41).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(41))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Flight Not Found", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM seat_assignments`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM flights`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(99), sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFindAll(t *testing.T) {
	repo, mock, cleanup := setupFlightRepoTest(t)
	defer cleanup()

	joined := sqlmock.NewRows([]string{
		"flight_number", "route", "departure_date", "departure_time", "capacity",
		"seat_number", "passenger_id",
	}).
		AddRow(1, "Warszawa-Kielce", "2025-06-01", "12:30:00", 150, 3, 7).
		AddRow(1, "Warszawa-Kielce", "2025-06-01", "12:30:00", 150, 8, 9).
		AddRow(2, "Warszawa-Krakow", "2025-06-02", "08:00:00", 80, nil, nil)

	mock.ExpectQuery(`SELECT f.flight_number, f.route, (.+) FROM flights f LEFT JOIN seat_assignments a`).
		WillReturnRows(joined)

	flights, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, flights, 2)

	assert.Equal(t, int64(1), flights[0].FlightNumber)
	assert.Equal(t, map[int]int64{3: 7, 8: 9}, flights[0].SeatMap)
	assert.Equal(t, 148, flights[0].AvailableSeats())

	assert.Equal(t, int64(2), flights[1].FlightNumber)
	assert.NotNil(t, flights[1].SeatMap, "flights without assignments keep an empty seat map")
	assert.Empty(t, flights[1].SeatMap)
	assert.Equal(t, 80, flights[1].AvailableSeats())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByFlightNumber(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE flight_number = \$1`).
			WithArgs(41).
			WillReturnRows(flightRows(41, "Warszawa-Kielce", "2025-06-01", "12:30:00", 150))
		mock.ExpectQuery(`SELECT seat_number, passenger_id FROM seat_assignments WHERE flight_number = \$1`).
			WithArgs(41).
			WillReturnRows(seatRows(3, 7))

		flight, err := repo.FindByFlightNumber(41)
		require.NoError(t, err)
		assert.Equal(t, "Warszawa-Kielce", flight.Route)
		assert.Equal(t, 150, flight.Capacity)
		assert.Equal(t, map[int]int64{3: 7}, flight.SeatMap)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE flight_number = \$1`).
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)

		flight, err := repo.FindByFlightNumber(99)
		assert.Nil(t, flight)
		assert.ErrorIs(t, err, sql.ErrNoRows)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAssignSeat(t *testing.T) {
	lockQuery := `SELECT (.+) FROM flights WHERE flight_number = \$1 FOR UPDATE`
	seatQuery := `SELECT seat_number, passenger_id FROM seat_assignments WHERE flight_number = \$1`

	t.Run("Assigned", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(41).
			WillReturnRows(flightRows(41, "Warszawa-Kielce", "2025-06-01", "12:30:00", 150))
		mock.ExpectQuery(seatQuery).WithArgs(41).
			WillReturnRows(seatRows())
		mock.ExpectExec(`INSERT INTO seat_assignments`).
			WithArgs(41, 12, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		outcome, err := repo.AssignSeat(41, 12, 7)
		require.NoError(t, err)
		assert.Equal(t, models.SeatOK, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Seat Taken", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(41).
			WillReturnRows(flightRows(41, "Warszawa-Kielce", "2025-06-01", "12:30:00", 150))
		mock.ExpectQuery(seatQuery).WithArgs(41).
			WillReturnRows(seatRows(12, 99))
		mock.ExpectRollback()

		outcome, err := repo.AssignSeat(41, 12, 7)
		require.NoError(t, err)
		assert.Equal(t, models.SeatConflict, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Capacity Exhausted", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(41).
			WillReturnRows(flightRows(41, "Warszawa-Kielce", "2025-06-01", "12:30:00", 1))
		mock.ExpectQuery(seatQuery).WithArgs(41).
			WillReturnRows(seatRows(1, 55))
		mock.ExpectRollback()

		outcome, err := repo.AssignSeat(41, 1, 7)
		require.NoError(t, err)
		assert.Equal(t, models.SeatConflict, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Flight Not Found", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(99).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		outcome, err := repo.AssignSeat(99, 12, 7)
		require.NoError(t, err)
		assert.Equal(t, models.SeatNotFound, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Passenger Is A Conflict", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(41).
			WillReturnRows(flightRows(41, "Warszawa-Kielce", "2025-06-01", "12:30:00", 150))
		mock.ExpectQuery(seatQuery).WithArgs(41).
			WillReturnRows(seatRows())
		mock.ExpectExec(`INSERT INTO seat_assignments`).
			WillReturnError(&pq.Error{Code: "23503"})
		mock.ExpectRollback()

		outcome, err := repo.AssignSeat(41, 12, 424242)
		require.NoError(t, err)
		assert.Equal(t, models.SeatConflict, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Storage Failure", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(41).
			WillReturnRows(flightRows(41, "Warszawa-Kielce", "2025-06-01", "12:30:00", 150))
		mock.ExpectQuery(seatQuery).WithArgs(41).
			WillReturnRows(seatRows())
		mock.ExpectExec(`INSERT INTO seat_assignments`).
			WillReturnError(fmt.Errorf("connection reset"))
		mock.ExpectRollback()

		outcome, err := repo.AssignSeat(41, 12, 7)
		assert.Error(t, err)
		assert.Equal(t, models.SeatStorageFailure, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUnassignSeat(t *testing.T) {
	lockQuery := `SELECT (.+) FROM flights WHERE flight_number = \$1 FOR UPDATE`

	t.Run("Unassigned", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(41).
			WillReturnRows(flightRows(41, "Warszawa-Kielce", "2025-06-01", "12:30:00", 150))
		mock.ExpectExec(`DELETE FROM seat_assignments WHERE flight_number = \$1 AND seat_number = \$2`).
			WithArgs(41, 12).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		outcome, err := repo.UnassignSeat(41, 12)
		require.NoError(t, err)
		assert.Equal(t, models.SeatOK, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Seat Never Assigned", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(41).
			WillReturnRows(flightRows(41, "Warszawa-Kielce", "2025-06-01", "12:30:00", 150))
		mock.ExpectExec(`DELETE FROM seat_assignments`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		outcome, err := repo.UnassignSeat(41, 12)
		require.NoError(t, err)
		assert.Equal(t, models.SeatNotFound, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Flight Not Found", func(t *testing.T) {
		repo, mock, cleanup := setupFlightRepoTest(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs(99).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		outcome, err := repo.UnassignSeat(99, 12)
		require.NoError(t, err)
		assert.Equal(t, models.SeatNotFound, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
