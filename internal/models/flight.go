package models

import (
	"fmt"
	"time"
)

// Flight represents a flight together with its seat occupancy.
// The seat map holds occupied seats only: seat number -> passenger ID.
// Absence of a key means the seat is vacant.
type Flight struct {
	FlightNumber  int64         `json:"flightNumber,omitempty" db:"flight_number"`
	Route         string        `json:"route" db:"route"`
	DepartureDate string        `json:"departureDate" db:"departure_date"`
	DepartureTime string        `json:"departureTime" db:"departure_time"`
	Capacity      int           `json:"availableSeats" db:"capacity"`
	SeatMap       map[int]int64 `json:"seatMap"`
}

// SeatOutcome is the result of a seat assignment or unassignment.
// Domain conflicts are ordinary outcomes, not errors; only
// SeatStorageFailure indicates an infrastructure problem.
type SeatOutcome int

const (
	SeatOK SeatOutcome = iota
	SeatConflict
	SeatNotFound
	SeatStorageFailure
)

func (o SeatOutcome) String() string {
	switch o {
	case SeatOK:
		return "ok"
	case SeatConflict:
		return "conflict"
	case SeatNotFound:
		return "not_found"
	case SeatStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// AssignSeat places a passenger on a seat. It succeeds only when the seat
// number lies in [1, capacity] and the seat is currently vacant; on failure
// the seat map is left unchanged.
func (f *Flight) AssignSeat(seatNumber int, passengerID int64) bool {
	if seatNumber <= 0 || seatNumber > f.Capacity {
		return false
	}
	if _, taken := f.SeatMap[seatNumber]; taken {
		return false
	}
	if f.SeatMap == nil {
		f.SeatMap = make(map[int]int64)
	}
	f.SeatMap[seatNumber] = passengerID
	return true
}

// UnassignSeat frees a seat. It reports false without mutating anything when
// the seat is not currently assigned.
func (f *Flight) UnassignSeat(seatNumber int) bool {
	if _, taken := f.SeatMap[seatNumber]; !taken {
		return false
	}
	delete(f.SeatMap, seatNumber)
	return true
}

// AvailableSeats is the number of vacant seats: capacity minus occupied.
func (f *Flight) AvailableSeats() int {
	return f.Capacity - len(f.SeatMap)
}

// Validate checks the fields a client supplies on create and update.
func (f *Flight) Validate() error {
	if f.Route == "" {
		return fmt.Errorf("%w: route must not be empty", ErrValidation)
	}
	if f.Capacity < 0 {
		return fmt.Errorf("%w: availableSeats must not be negative", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", f.DepartureDate); err != nil {
		return fmt.Errorf("%w: departureDate must be an ISO date (YYYY-MM-DD)", ErrValidation)
	}
	if _, ok := ParseTimeOfDay(f.DepartureTime); !ok {
		return fmt.Errorf("%w: departureTime must be an ISO time (HH:MM or HH:MM:SS)", ErrValidation)
	}
	for seat := range f.SeatMap {
		if seat <= 0 || seat > f.Capacity {
			return fmt.Errorf("%w: seat %d is outside 1..%d", ErrValidation, seat, f.Capacity)
		}
	}
	return nil
}

// ParseTimeOfDay parses an ISO time with or without seconds.
func ParseTimeOfDay(value string) (time.Time, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
