package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingDetails holds the time window of the active booking on a spot.
type BookingDetails struct {
	StartTime time.Time `bson:"start_time" json:"startTime"`
	EndTime   time.Time `bson:"end_time" json:"endTime"`
}

// ParkingSpot represents a parking spot registered by an owner. The booking
// fields (BookedBy, BookedAt, BookingDetails) are set iff Booked is true.
type ParkingSpot struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Latitude       float64            `bson:"latitude" json:"latitude"`
	Longitude      float64            `bson:"longitude" json:"longitude"`
	PricePerHour   float64            `bson:"price_per_hour" json:"pricePerHour"`
	OwnerID        string             `bson:"owner_id" json:"ownerId"`
	Booked         bool               `bson:"booked" json:"booked"`
	BookedBy       *string            `bson:"booked_by,omitempty" json:"bookedBy,omitempty"`
	BookedAt       *time.Time         `bson:"booked_at,omitempty" json:"bookedAt,omitempty"`
	BookingDetails *BookingDetails    `bson:"booking_details,omitempty" json:"bookingDetails,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// IsAvailable reports whether the spot can currently be booked.
func (s *ParkingSpot) IsAvailable() bool {
	return !s.Booked
}

// BookingExpired reports whether the spot carries a booking whose window
// has elapsed relative to now.
func (s *ParkingSpot) BookingExpired(now time.Time) bool {
	return s.Booked && s.BookingDetails != nil && s.BookingDetails.EndTime.Before(now)
}

// CreateSpotRequest is the body of POST /api/parking-spots. Pointer fields
// distinguish "missing" from zero values (latitude 0 is a valid coordinate).
type CreateSpotRequest struct {
	Name         string   `json:"name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	PricePerHour *float64 `json:"pricePerHour"`
}

// UpdateSpotRequest is the body of PUT /api/parking-spots/{id}.
type UpdateSpotRequest struct {
	Name         string   `json:"name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	PricePerHour *float64 `json:"pricePerHour"`
}

// BookSpotRequest is the body of POST /api/book-spot. Times arrive as
// ISO-8601 strings and are validated before any store access.
type BookSpotRequest struct {
	ParkingSpotID string `json:"parkingSpotId"`
	DriverID      string `json:"driverId"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

// SpotFilter narrows a spot listing. OwnerID is exclusive with the
// price/availability fields.
type SpotFilter struct {
	OwnerID      string
	MinPrice     *float64
	MaxPrice     *float64
	Availability *bool
}
