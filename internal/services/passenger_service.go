package services

import (
	"github.com/skyreserve/reservation-backend/internal/models"
)

// PassengerStore is the persistence contract the passenger facade depends on.
type PassengerStore interface {
	Save(passenger *models.Passenger) error
	Update(id int64, passenger *models.Passenger) error
	Delete(id int64) error
	FindAll() ([]models.Passenger, error)
	FindByID(id int64) (*models.Passenger, error)
}

// PassengerService validates and forwards passenger operations.
type PassengerService struct {
	store PassengerStore
}

// NewPassengerService creates a new PassengerService
func NewPassengerService(store PassengerStore) *PassengerService {
	return &PassengerService{store: store}
}

// AddPassenger validates the required fields before anything reaches
// storage.
func (s *PassengerService) AddPassenger(passenger *models.Passenger) error {
	if err := passenger.Validate(); err != nil {
		return err
	}
	return s.store.Save(passenger)
}

// UpdatePassenger overwrites a passenger's attributes.
func (s *PassengerService) UpdatePassenger(id int64, passenger *models.Passenger) error {
	if err := passenger.Validate(); err != nil {
		return err
	}
	return s.store.Update(id, passenger)
}

// DeletePassenger removes a passenger, unassigning any seats they hold.
func (s *PassengerService) DeletePassenger(id int64) error {
	return s.store.Delete(id)
}

// GetAllPassengers returns every passenger.
func (s *PassengerService) GetAllPassengers() ([]models.Passenger, error) {
	return s.store.FindAll()
}

// GetPassengerByID returns one passenger or sql.ErrNoRows.
func (s *PassengerService) GetPassengerByID(id int64) (*models.Passenger, error) {
	return s.store.FindByID(id)
}
