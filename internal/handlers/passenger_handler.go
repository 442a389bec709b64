package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skyreserve/reservation-backend/internal/models"
	"github.com/skyreserve/reservation-backend/internal/services"
)

// PassengerHandler exposes the passenger facade over HTTP.
type PassengerHandler struct {
	passengers *services.PassengerService
}

// NewPassengerHandler creates a new PassengerHandler
func NewPassengerHandler(passengers *services.PassengerService) *PassengerHandler {
	return &PassengerHandler{passengers: passengers}
}

// GetAll handles GET /passengers
func (h *PassengerHandler) GetAll(c *gin.Context) {
	passengers, err := h.passengers.GetAllPassengers()
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal Server Error: failed to fetch passengers")
		return
	}
	c.JSON(http.StatusOK, passengers)
}

// GetByID handles GET /passengers/:id
func (h *PassengerHandler) GetByID(c *gin.Context) {
	id, ok := passengerID(c)
	if !ok {
		return
	}

	passenger, err := h.passengers.GetPassengerByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.String(http.StatusNotFound, "Not Found: passenger does not exist")
			return
		}
		c.String(http.StatusInternalServerError, "Internal Server Error: failed to fetch passenger")
		return
	}
	c.JSON(http.StatusOK, passenger)
}

// Create handles POST /passengers
func (h *PassengerHandler) Create(c *gin.Context) {
	var passenger models.Passenger
	if err := c.ShouldBindJSON(&passenger); err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid JSON data")
		return
	}

	if err := h.passengers.AddPassenger(&passenger); err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.String(http.StatusBadRequest, "Bad Request: "+err.Error())
			return
		}
		c.String(http.StatusInternalServerError, "Internal Server Error: failed to save passenger")
		return
	}
	c.JSON(http.StatusCreated, passenger)
}

// Update handles PUT /passengers/:id
func (h *PassengerHandler) Update(c *gin.Context) {
	id, ok := passengerID(c)
	if !ok {
		return
	}

	var passenger models.Passenger
	if err := c.ShouldBindJSON(&passenger); err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid JSON data")
		return
	}
	if passenger.ID != 0 && passenger.ID != id {
		c.String(http.StatusBadRequest, "Bad Request: Passenger ID mismatch between URL and body")
		return
	}
	passenger.ID = id

	if err := h.passengers.UpdatePassenger(id, &passenger); err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			c.String(http.StatusBadRequest, "Bad Request: "+err.Error())
		case errors.Is(err, sql.ErrNoRows):
			c.String(http.StatusNotFound, "Not Found: passenger does not exist")
		default:
			c.String(http.StatusInternalServerError, "Internal Server Error: failed to update passenger")
		}
		return
	}
	c.String(http.StatusOK, "Passenger updated successfully")
}

// Delete handles DELETE /passengers/:id
func (h *PassengerHandler) Delete(c *gin.Context) {
	id, ok := passengerID(c)
	if !ok {
		return
	}

	if err := h.passengers.DeletePassenger(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.String(http.StatusNotFound, "Not Found: passenger does not exist")
			return
		}
		c.String(http.StatusInternalServerError, "Internal Server Error: failed to delete passenger")
		return
	}
	c.String(http.StatusOK, "Passenger deleted successfully")
}

func passengerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid passenger ID")
		return 0, false
	}
	return id, true
}
