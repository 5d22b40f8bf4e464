package sweeper

import (
	"context"
	"time"

	"github.com/parkaroo/parkaroo/internal/db"
	"github.com/parkaroo/parkaroo/internal/events"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultSchedule releases lapsed bookings every five minutes.
const DefaultSchedule = "@every 5m"

// Sweeper periodically releases spots whose booking window has elapsed.
type Sweeper struct {
	spotCollection db.SpotCollection
	publisher      events.Publisher
	ownerScope     string
	cron           *cron.Cron
}

// New creates a sweeper. An empty ownerScope sweeps spots of all owners;
// a non-empty scope narrows the sweep to one owner's spots.
func New(spotCollection db.SpotCollection, publisher events.Publisher, ownerScope string) *Sweeper {
	return &Sweeper{
		spotCollection: spotCollection,
		publisher:      publisher,
		ownerScope:     ownerScope,
		cron:           cron.New(),
	}
}

// Sweep runs one pass at the given time and returns how many spots were
// released. Each release re-checks expiry in its write filter, so a booking
// made after the scan is never cleared.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.spotCollection.FindExpiredBookings(ctx, s.ownerScope, now)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, spot := range expired {
		ok, err := s.spotCollection.ReleaseSpot(ctx, spot.ID.Hex(), now)
		if err != nil {
			log.WithError(err).WithField("spot_id", spot.ID.Hex()).Error("Failed to release expired booking")
			continue
		}
		if !ok {
			// Rebooked between scan and write; leave it alone.
			continue
		}
		released++
		log.WithField("spot_id", spot.ID.Hex()).Info("Released expired booking")
		s.publisher.SpotReleased(spot.ID.Hex(), now)
	}
	return released, nil
}

// Start schedules the sweep on the given cron spec (e.g. "@every 5m").
func (s *Sweeper) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		released, err := s.Sweep(context.Background(), time.Now())
		if err != nil {
			log.WithError(err).Error("Expiry sweep failed")
			return
		}
		if released > 0 {
			log.WithField("released", released).Info("Expiry sweep completed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the sweep schedule. A sweep already in flight finishes.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}
