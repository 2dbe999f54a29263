// Package storage defines the persistence boundary shared by the ride engine:
// one repository per entity plus a transactional unit of work for the
// cross-entity writes of assignment and release.
package storage

import (
	"context"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
	"github.com/gocomet/fleet-rides/internal/domain/notification"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
)

// Store aggregates the entity repositories.
type Store interface {
	Rides() ride.Repository
	Drivers() driver.Repository
	Vehicles() vehicle.Repository
	Users() user.Repository
	Notifications() notification.Repository

	// WithinTx runs fn against a transactional view of the store. Either every
	// write fn performs commits, or none of them do. Repositories obtained
	// from the tx store must not be used after fn returns.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
