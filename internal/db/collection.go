package db

import (
	"context"
	"errors"
	"time"

	"github.com/parkaroo/parkaroo/internal/models"
)

var (
	// ErrSpotNotFound is returned when no spot exists for the given id.
	ErrSpotNotFound = errors.New("parking spot not found")
	// ErrSpotAlreadyBooked is returned when the conditional booking update
	// matched no document because the spot is already booked.
	ErrSpotAlreadyBooked = errors.New("parking spot is already booked")
)

// SpotCollection defines the interface for parking-spot data operations.
type SpotCollection interface {
	InsertSpot(ctx context.Context, spot models.ParkingSpot) (string, error)
	FindSpots(ctx context.Context, filter models.SpotFilter) ([]models.ParkingSpot, error)
	FindSpotByID(ctx context.Context, id string) (*models.ParkingSpot, error)
	UpdateSpotFields(ctx context.Context, id string, name string, latitude, longitude, pricePerHour float64) error
	DeleteSpot(ctx context.Context, id string) error
	BookSpot(ctx context.Context, id, driverID string, details models.BookingDetails, bookedAt time.Time) error
	FindExpiredBookings(ctx context.Context, ownerID string, now time.Time) ([]models.ParkingSpot, error)
	ReleaseSpot(ctx context.Context, id string, now time.Time) (bool, error)
}
