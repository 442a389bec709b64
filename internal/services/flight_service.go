package services

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/skyreserve/reservation-backend/internal/models"
)

// FlightStore is the persistence contract the flight facade depends on.
type FlightStore interface {
	Save(flight *models.Flight) error
	Update(flightNumber int64, flight *models.Flight) error
	Delete(flightNumber int64) error
	FindAll() ([]models.Flight, error)
	FindByFlightNumber(flightNumber int64) (*models.Flight, error)
	AssignSeat(flightNumber int64, seatNumber int, passengerID int64) (models.SeatOutcome, error)
	UnassignSeat(flightNumber int64, seatNumber int) (models.SeatOutcome, error)
}

// FlightService orchestrates flight CRUD, search, and seat operations.
type FlightService struct {
	store  FlightStore
	logger *logrus.Logger
}

// NewFlightService creates a new FlightService
func NewFlightService(store FlightStore, logger *logrus.Logger) *FlightService {
	return &FlightService{store: store, logger: logger}
}

// AddFlight persists a new flight.
func (s *FlightService) AddFlight(flight *models.Flight) error {
	if err := flight.Validate(); err != nil {
		return err
	}
	return s.store.Save(flight)
}

// UpdateFlight overwrites a flight and its full seat assignment set.
func (s *FlightService) UpdateFlight(flightNumber int64, flight *models.Flight) error {
	if err := flight.Validate(); err != nil {
		return err
	}
	return s.store.Update(flightNumber, flight)
}

// DeleteFlight removes a flight and its seat assignments.
func (s *FlightService) DeleteFlight(flightNumber int64) error {
	return s.store.Delete(flightNumber)
}

// GetAllFlights returns every flight.
func (s *FlightService) GetAllFlights() ([]models.Flight, error) {
	return s.store.FindAll()
}

// GetFlightByNumber returns one flight or sql.ErrNoRows.
func (s *FlightService) GetFlightByNumber(flightNumber int64) (*models.Flight, error) {
	return s.store.FindByFlightNumber(flightNumber)
}

// SearchFlights loads all flights and keeps those matching every supplied
// criterion. Unrecognized keys always match.
func (s *FlightService) SearchFlights(criteria map[string]string) ([]models.Flight, error) {
	flights, err := s.store.FindAll()
	if err != nil {
		return nil, err
	}
	if len(criteria) == 0 {
		return flights, nil
	}

	matched := make([]models.Flight, 0, len(flights))
	for _, flight := range flights {
		keep := true
		for key, value := range criteria {
			if !matchesCriterion(&flight, key, value) {
				keep = false
				break
			}
		}
		if keep {
			matched = append(matched, flight)
		}
	}
	return matched, nil
}

func matchesCriterion(flight *models.Flight, key, value string) bool {
	switch key {
	case "route":
		return strings.EqualFold(flight.Route, value)
	case "departureDate":
		return flight.DepartureDate == value
	case "departureTime":
		return sameTimeOfDay(flight.DepartureTime, value)
	case "minAvailableSeats":
		n, err := strconv.Atoi(value)
		return err == nil && flight.AvailableSeats() >= n
	case "maxAvailableSeats":
		n, err := strconv.Atoi(value)
		return err == nil && flight.AvailableSeats() <= n
	default:
		return true
	}
}

// sameTimeOfDay compares time criteria so that "12:30" matches "12:30:00".
func sameTimeOfDay(a, b string) bool {
	ta, okA := models.ParseTimeOfDay(a)
	tb, okB := models.ParseTimeOfDay(b)
	if okA && okB {
		return ta.Equal(tb)
	}
	return a == b
}

// AssignPassengerToFlight binds a passenger to a seat. Storage failures are
// logged and reported as a distinct outcome rather than disguised as a
// domain conflict.
func (s *FlightService) AssignPassengerToFlight(flightNumber int64, seatNumber int, passengerID int64) models.SeatOutcome {
	outcome, err := s.store.AssignSeat(flightNumber, seatNumber, passengerID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"flight_number": flightNumber,
			"seat_number":   seatNumber,
			"passenger_id":  passengerID,
		}).WithError(err).Error("Seat assignment failed on storage")
		return models.SeatStorageFailure
	}
	return outcome
}

// UnassignPassengerFromFlight frees a seat.
func (s *FlightService) UnassignPassengerFromFlight(flightNumber int64, seatNumber int) models.SeatOutcome {
	outcome, err := s.store.UnassignSeat(flightNumber, seatNumber)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"flight_number": flightNumber,
			"seat_number":   seatNumber,
		}).WithError(err).Error("Seat unassignment failed on storage")
		return models.SeatStorageFailure
	}
	return outcome
}
