package db

import (
	"context"
	"fmt"
	"time"

	"github.com/parkaroo/parkaroo/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SpotCollectionName is the document-store collection holding parking spots.
const SpotCollectionName = "parking-spots"

// MongoSpotCollection implements SpotCollection for MongoDB
type MongoSpotCollection struct {
	Collection *mongo.Collection
}

// InsertSpot inserts a new parking spot and returns its assigned id.
func (c *MongoSpotCollection) InsertSpot(ctx context.Context, spot models.ParkingSpot) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	spot.ID = primitive.NewObjectID()
	spot.CreatedAt = time.Now()
	spot.UpdatedAt = spot.CreatedAt

	res, err := c.Collection.InsertOne(ctx, spot)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return spot.ID.Hex(), nil
	}
	return oid.Hex(), nil
}

// FindSpots queries parking spots matching the filter. An owner filter is
// exclusive with the price/availability filters.
func (c *MongoSpotCollection) FindSpots(ctx context.Context, filter models.SpotFilter) ([]models.ParkingSpot, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	query := bson.M{}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	} else {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		if len(price) > 0 {
			query["price_per_hour"] = price
		}
		if filter.Availability != nil {
			query["booked"] = !*filter.Availability
		}
	}

	cursor, err := c.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	spots := []models.ParkingSpot{}
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, err
	}
	return spots, nil
}

// FindSpotByID finds a parking spot by its id.
func (c *MongoSpotCollection) FindSpotByID(ctx context.Context, id string) (*models.ParkingSpot, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrSpotNotFound
	}
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	var spot models.ParkingSpot
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&spot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return &spot, nil
}

// UpdateSpotFields replaces the owner-editable fields of a spot and stamps
// updated_at. Ownership and booking fields are never touched here.
func (c *MongoSpotCollection) UpdateSpotFields(ctx context.Context, id string, name string, latitude, longitude, pricePerHour float64) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrSpotNotFound
	}
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	res, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{
		"name":           name,
		"latitude":       latitude,
		"longitude":      longitude,
		"price_per_hour": pricePerHour,
		"updated_at":     time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSpotNotFound
	}
	return nil
}

// DeleteSpot deletes a parking spot by its id.
func (c *MongoSpotCollection) DeleteSpot(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrSpotNotFound
	}
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrSpotNotFound
	}
	return nil
}

// BookSpot claims a spot for a driver with a single conditional update: the
// filter matches only while booked=false, so two racing bookers cannot both
// win. A zero match is disambiguated into not-found vs already-booked by a
// follow-up read.
func (c *MongoSpotCollection) BookSpot(ctx context.Context, id, driverID string, details models.BookingDetails, bookedAt time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrSpotNotFound
	}
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "booked": false},
		bson.M{"$set": bson.M{
			"booked":          true,
			"booked_by":       driverID,
			"booked_at":       bookedAt,
			"booking_details": details,
			"updated_at":      bookedAt,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		var spot models.ParkingSpot
		err := c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&spot)
		if err == mongo.ErrNoDocuments {
			return ErrSpotNotFound
		}
		if err != nil {
			return err
		}
		return ErrSpotAlreadyBooked
	}
	return nil
}

// FindExpiredBookings returns the booked spots whose window ended before
// now. An empty ownerID scans all owners.
func (c *MongoSpotCollection) FindExpiredBookings(ctx context.Context, ownerID string, now time.Time) ([]models.ParkingSpot, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	query := bson.M{
		"booked":                   true,
		"booking_details.end_time": bson.M{"$lt": now},
	}
	if ownerID != "" {
		query["owner_id"] = ownerID
	}

	cursor, err := c.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	spots := []models.ParkingSpot{}
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, err
	}
	return spots, nil
}

// ReleaseSpot clears the booking fields of a spot, provided its booking is
// still expired at the time of the write. The guard keeps a release from
// clobbering a booking made between the sweep's read and its write. Returns
// whether a release happened.
func (c *MongoSpotCollection) ReleaseSpot(ctx context.Context, id string, now time.Time) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrSpotNotFound
	}
	if c.Collection == nil {
		return false, fmt.Errorf("mongo collection is nil")
	}

	res, err := c.Collection.UpdateOne(ctx,
		bson.M{
			"_id":                      objectID,
			"booked":                   true,
			"booking_details.end_time": bson.M{"$lt": now},
		},
		bson.M{
			"$set": bson.M{"booked": false, "updated_at": now},
			"$unset": bson.M{
				"booked_by":       "",
				"booked_at":       "",
				"booking_details": "",
			},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
