// Package rating maintains per-driver rating aggregates derived from the
// ratings stored on completed rides.
package rating

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/storage"
)

// Aggregator recomputes a driver's mean rating from all rated rides. The
// recompute runs after a rating commits and is best effort: the rating itself
// is already durable, so a failed recompute is logged by the caller and
// retried on the next rating.
type Aggregator struct {
	store storage.Store
}

// NewAggregator creates a rating aggregator.
func NewAggregator(store storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Recompute reads every rating on the driver's rides and stores the mean,
// rounded to two decimals, plus the count on the driver record.
func (a *Aggregator) Recompute(ctx context.Context, driverID uuid.UUID) error {
	return a.store.WithinTx(ctx, func(tx storage.Store) error {
		ratings, err := tx.Rides().RatingsByDriver(ctx, driverID)
		if err != nil {
			return err
		}

		d, err := tx.Drivers().GetByID(ctx, driverID)
		if err != nil {
			return err
		}

		if len(ratings) == 0 {
			d.Rating = 0
			d.RatingCount = 0
			return tx.Drivers().Update(ctx, d)
		}

		sum := 0
		for _, r := range ratings {
			sum += r
		}
		mean := float64(sum) / float64(len(ratings))
		d.Rating = math.Round(mean*100) / 100
		d.RatingCount = len(ratings)
		return tx.Drivers().Update(ctx, d)
	})
}
