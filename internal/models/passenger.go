package models

import (
	"errors"
	"fmt"
)

// ErrValidation marks client-input validation failures. Handlers translate
// it to a 400 response; anything else from a facade is an infrastructure
// failure.
var ErrValidation = errors.New("validation failed")

// Passenger is an identity record referenced by seat assignments.
type Passenger struct {
	ID          int64  `json:"id,omitempty" db:"id"`
	FirstName   string `json:"firstName" db:"first_name"`
	LastName    string `json:"lastName" db:"last_name"`
	PhoneNumber string `json:"phoneNumber" db:"phone_number"`
}

// Validate enforces the required non-empty fields.
func (p *Passenger) Validate() error {
	if p.FirstName == "" {
		return fmt.Errorf("%w: firstName must not be empty", ErrValidation)
	}
	if p.LastName == "" {
		return fmt.Errorf("%w: lastName must not be empty", ErrValidation)
	}
	if p.PhoneNumber == "" {
		return fmt.Errorf("%w: phoneNumber must not be empty", ErrValidation)
	}
	return nil
}
