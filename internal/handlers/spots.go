package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/parkaroo/parkaroo/internal/db"
	"github.com/parkaroo/parkaroo/internal/middleware"
	"github.com/parkaroo/parkaroo/internal/models"
	log "github.com/sirupsen/logrus"
)

// SpotHandler handles parking-spot registry requests
type SpotHandler struct {
	spotCollection db.SpotCollection
}

// NewSpotHandler creates a new parking-spot handler
func NewSpotHandler(spotCollection db.SpotCollection) *SpotHandler {
	return &SpotHandler{
		spotCollection: spotCollection,
	}
}

// List handles GET /api/parking-spots. No auth required. Filters by owner
// (?userUID=) or by price range / availability, but not both at once.
func (h *SpotHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.SpotFilter{OwnerID: query.Get("userUID")}

	hasPriceFilter := query.Get("minPrice") != "" || query.Get("maxPrice") != "" || query.Get("availability") != ""
	if filter.OwnerID != "" && hasPriceFilter {
		respondError(w, http.StatusBadRequest, "userUID cannot be combined with price or availability filters")
		return
	}

	if v := query.Get("minPrice"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid minPrice")
			return
		}
		filter.MinPrice = &min
	}
	if v := query.Get("maxPrice"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid maxPrice")
			return
		}
		filter.MaxPrice = &max
	}
	if v := query.Get("availability"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid availability")
			return
		}
		filter.Availability = &available
	}

	spots, err := h.spotCollection.FindSpots(r.Context(), filter)
	if err != nil {
		log.WithError(err).Error("Failed to list parking spots")
		respondError(w, http.StatusInternalServerError, "Failed to fetch parking spots")
		return
	}

	respondJSON(w, http.StatusOK, spots)
}

// Create handles POST /api/parking-spots. The owner of the new spot is the
// verified token subject, never a body field.
func (h *SpotHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req models.CreateSpotRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" || req.Latitude == nil || req.Longitude == nil || req.PricePerHour == nil {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if *req.PricePerHour < 0 {
		respondError(w, http.StatusBadRequest, "pricePerHour must be non-negative")
		return
	}

	spot := models.ParkingSpot{
		Name:         req.Name,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		PricePerHour: *req.PricePerHour,
		OwnerID:      claims.UserID,
		Booked:       false,
	}

	id, err := h.spotCollection.InsertSpot(r.Context(), spot)
	if err != nil {
		log.WithError(err).Error("Failed to create parking spot")
		respondError(w, http.StatusInternalServerError, "Failed to add parking spot")
		return
	}

	log.WithFields(log.Fields{"spot_id": id, "owner_id": claims.UserID}).Info("Parking spot created")
	respondJSON(w, http.StatusCreated, map[string]string{
		"id":      id,
		"message": "Parking spot added successfully",
	})
}

// Get handles GET /api/parking-spots/{id}. No auth required.
func (h *SpotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	spot, err := h.spotCollection.FindSpotByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrSpotNotFound) {
			respondError(w, http.StatusNotFound, "Parking spot not found")
			return
		}
		log.WithError(err).WithField("spot_id", id).Error("Failed to fetch parking spot")
		respondError(w, http.StatusInternalServerError, "Failed to fetch parking spot")
		return
	}

	respondJSON(w, http.StatusOK, spot)
}

// Update handles PUT /api/parking-spots/{id}. Ownership is checked against
// the verified token subject; ownerId and booking fields are immutable here.
func (h *SpotHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	id := mux.Vars(r)["id"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req models.UpdateSpotRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" || req.Latitude == nil || req.Longitude == nil || req.PricePerHour == nil {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if *req.PricePerHour < 0 {
		respondError(w, http.StatusBadRequest, "pricePerHour must be non-negative")
		return
	}

	spot, err := h.spotCollection.FindSpotByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrSpotNotFound) {
			respondError(w, http.StatusNotFound, "Parking spot not found")
			return
		}
		log.WithError(err).WithField("spot_id", id).Error("Failed to fetch parking spot")
		respondError(w, http.StatusInternalServerError, "Failed to fetch parking spot")
		return
	}

	if spot.OwnerID != claims.UserID {
		respondError(w, http.StatusForbidden, "You do not own this parking spot")
		return
	}

	if err := h.spotCollection.UpdateSpotFields(r.Context(), id, req.Name, *req.Latitude, *req.Longitude, *req.PricePerHour); err != nil {
		if errors.Is(err, db.ErrSpotNotFound) {
			respondError(w, http.StatusNotFound, "Parking spot not found")
			return
		}
		log.WithError(err).WithField("spot_id", id).Error("Failed to update parking spot")
		respondError(w, http.StatusInternalServerError, "Failed to update parking spot")
		return
	}

	respondMessage(w, http.StatusOK, "Parking spot updated successfully")
}

// Delete handles DELETE /api/parking-spots/{id}. Only the spot's owner may
// delete it.
func (h *SpotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	id := mux.Vars(r)["id"]

	spot, err := h.spotCollection.FindSpotByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrSpotNotFound) {
			respondError(w, http.StatusNotFound, "Parking spot not found")
			return
		}
		log.WithError(err).WithField("spot_id", id).Error("Failed to fetch parking spot")
		respondError(w, http.StatusInternalServerError, "Failed to fetch parking spot")
		return
	}

	if spot.OwnerID != claims.UserID {
		respondError(w, http.StatusForbidden, "You do not own this parking spot")
		return
	}

	if err := h.spotCollection.DeleteSpot(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrSpotNotFound) {
			respondError(w, http.StatusNotFound, "Parking spot not found")
			return
		}
		log.WithError(err).WithField("spot_id", id).Error("Failed to delete parking spot")
		respondError(w, http.StatusInternalServerError, "Failed to delete parking spot")
		return
	}

	log.WithFields(log.Fields{"spot_id": id, "owner_id": claims.UserID}).Info("Parking spot deleted")
	respondMessage(w, http.StatusOK, "Parking spot deleted successfully")
}
