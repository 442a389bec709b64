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

// FlightHandler exposes the flight facade over HTTP.
type FlightHandler struct {
	flights *services.FlightService
}

// NewFlightHandler creates a new FlightHandler
func NewFlightHandler(flights *services.FlightService) *FlightHandler {
	return &FlightHandler{flights: flights}
}

type assignSeatRequest struct {
	PassengerID *int64 `json:"passengerId"`
}

// Search handles GET /flights. Query parameters are search criteria;
// without any, every flight is returned.
// GET /flights?route=X&minAvailableSeats=5
func (h *FlightHandler) Search(c *gin.Context) {
	criteria := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			criteria[key] = values[0]
		}
	}

	flights, err := h.flights.SearchFlights(criteria)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal Server Error: failed to search flights")
		return
	}
	c.JSON(http.StatusOK, flights)
}

// Add handles POST /flights
func (h *FlightHandler) Add(c *gin.Context) {
	var flight models.Flight
	if err := c.ShouldBindJSON(&flight); err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid JSON data")
		return
	}

	if err := h.flights.AddFlight(&flight); err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.String(http.StatusBadRequest, "Bad Request: "+err.Error())
			return
		}
		c.String(http.StatusInternalServerError, "Internal Server Error: failed to save flight")
		return
	}
	c.String(http.StatusOK, "Flight added successfully")
}

// Update handles PUT /flights/:flightNumber
func (h *FlightHandler) Update(c *gin.Context) {
	flightNumber, err := strconv.ParseInt(c.Param("flightNumber"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid flight number format")
		return
	}

	var flight models.Flight
	if err := c.ShouldBindJSON(&flight); err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid JSON data")
		return
	}
	if flight.FlightNumber != 0 && flight.FlightNumber != flightNumber {
		c.String(http.StatusBadRequest, "Bad Request: Flight number mismatch between URL and body")
		return
	}
	flight.FlightNumber = flightNumber

	if err := h.flights.UpdateFlight(flightNumber, &flight); err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			c.String(http.StatusBadRequest, "Bad Request: "+err.Error())
		case errors.Is(err, sql.ErrNoRows):
			c.String(http.StatusNotFound, "Not Found: flight does not exist")
		default:
			c.String(http.StatusInternalServerError, "Internal Server Error: failed to update flight")
		}
		return
	}
	c.String(http.StatusOK, "Flight updated successfully")
}

// Delete handles DELETE /flights/:flightNumber
func (h *FlightHandler) Delete(c *gin.Context) {
	flightNumber, err := strconv.ParseInt(c.Param("flightNumber"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid flight number format")
		return
	}

	if err := h.flights.DeleteFlight(flightNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.String(http.StatusNotFound, "Not Found: flight does not exist")
			return
		}
		c.String(http.StatusInternalServerError, "Internal Server Error: failed to delete flight")
		return
	}
	c.String(http.StatusOK, "Flight deleted successfully")
}

// AssignSeat handles PUT /flights/:flightNumber/seats/:seatNumber
func (h *FlightHandler) AssignSeat(c *gin.Context) {
	flightNumber, seatNumber, ok := seatParams(c)
	if !ok {
		return
	}

	var req assignSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid JSON data")
		return
	}
	if req.PassengerID == nil {
		c.String(http.StatusBadRequest, "Bad Request: Missing passengerId")
		return
	}

	switch h.flights.AssignPassengerToFlight(flightNumber, seatNumber, *req.PassengerID) {
	case models.SeatOK:
		c.String(http.StatusOK, "Passenger assigned successfully")
	case models.SeatStorageFailure:
		c.String(http.StatusInternalServerError, "Internal Server Error: failed to persist seat assignment")
	default:
		// The missing-flight case keeps the conflict status the API always
		// returned for an unassignable seat.
		c.String(http.StatusConflict, "Conflict: Seat already assigned or invalid passenger ID")
	}
}

// UnassignSeat handles DELETE /flights/:flightNumber/seats/:seatNumber
func (h *FlightHandler) UnassignSeat(c *gin.Context) {
	flightNumber, seatNumber, ok := seatParams(c)
	if !ok {
		return
	}

	switch h.flights.UnassignPassengerFromFlight(flightNumber, seatNumber) {
	case models.SeatOK:
		c.String(http.StatusOK, "Passenger unassigned successfully")
	case models.SeatStorageFailure:
		c.String(http.StatusInternalServerError, "Internal Server Error: failed to persist seat unassignment")
	default:
		c.String(http.StatusNotFound, "Not Found: Seat not assigned or invalid number")
	}
}

func seatParams(c *gin.Context) (flightNumber int64, seatNumber int, ok bool) {
	flightNumber, err := strconv.ParseInt(c.Param("flightNumber"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid flight or seat number format")
		return 0, 0, false
	}
	seatNumber, err = strconv.Atoi(c.Param("seatNumber"))
	if err != nil {
		c.String(http.StatusBadRequest, "Bad Request: Invalid flight or seat number format")
		return 0, 0, false
	}
	return flightNumber, seatNumber, true
}
