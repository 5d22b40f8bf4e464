package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/parkaroo/parkaroo/internal/db"
	"github.com/parkaroo/parkaroo/internal/events"
	"github.com/parkaroo/parkaroo/internal/models"
	log "github.com/sirupsen/logrus"
)

// BookingHandler handles spot booking requests
type BookingHandler struct {
	spotCollection db.SpotCollection
	publisher      events.Publisher
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(spotCollection db.SpotCollection, publisher events.Publisher) *BookingHandler {
	return &BookingHandler{
		spotCollection: spotCollection,
		publisher:      publisher,
	}
}

// Book handles POST /api/book-spot. All validation runs before any store
// access; the claim itself is a single conditional update so two racing
// drivers cannot both book the same spot.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req models.BookSpotRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ParkingSpotID == "" || req.DriverID == "" || req.StartTime == "" || req.EndTime == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid startTime")
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid endTime")
		return
	}
	if !startTime.Before(endTime) {
		respondError(w, http.StatusBadRequest, "startTime must be before endTime")
		return
	}

	now := time.Now()
	details := models.BookingDetails{StartTime: startTime, EndTime: endTime}

	err = h.spotCollection.BookSpot(r.Context(), req.ParkingSpotID, req.DriverID, details, now)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrSpotNotFound):
			respondError(w, http.StatusNotFound, "Parking spot not found")
		case errors.Is(err, db.ErrSpotAlreadyBooked):
			respondError(w, http.StatusConflict, "Parking spot is already booked")
		default:
			log.WithError(err).WithField("spot_id", req.ParkingSpotID).Error("Failed to book parking spot")
			respondError(w, http.StatusInternalServerError, "Failed to book parking spot")
		}
		return
	}

	log.WithFields(log.Fields{
		"spot_id":   req.ParkingSpotID,
		"driver_id": req.DriverID,
		"start":     startTime,
		"end":       endTime,
	}).Info("Parking spot booked")

	h.publisher.SpotBooked(req.ParkingSpotID, req.DriverID, now)

	respondMessage(w, http.StatusOK, "Parking spot booked successfully")
}
