// Package memory provides a mutex-guarded in-memory implementation of the
// storage boundary. It backs tests and local development; transactions stage
// their writes on a cloned dataset and swap it in on success, so a failed
// unit of work leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
	"github.com/gocomet/fleet-rides/internal/domain/notification"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
	"github.com/gocomet/fleet-rides/internal/storage"
)

type dataset struct {
	rides         map[uuid.UUID]ride.Ride
	drivers       map[uuid.UUID]driver.Driver
	vehicles      map[uuid.UUID]vehicle.Vehicle
	users         map[uuid.UUID]user.User
	notifications map[uuid.UUID]notification.Notification
}

func newDataset() *dataset {
	return &dataset{
		rides:         make(map[uuid.UUID]ride.Ride),
		drivers:       make(map[uuid.UUID]driver.Driver),
		vehicles:      make(map[uuid.UUID]vehicle.Vehicle),
		users:         make(map[uuid.UUID]user.User),
		notifications: make(map[uuid.UUID]notification.Notification),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.rides {
		c.rides[k] = v
	}
	for k, v := range d.drivers {
		c.drivers[k] = v
	}
	for k, v := range d.vehicles {
		c.vehicles[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	return c
}

// Store implements storage.Store over in-process maps.
type Store struct {
	mu     sync.Mutex
	data   *dataset
	inTx   bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: newDataset()}
}

// lock acquires the store mutex unless this view is already inside a
// transaction, in which case the parent holds it for the whole unit of work.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx serializes units of work under the store mutex. fn runs against a
// clone of the dataset; the clone replaces the live data only when fn
// succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.inTx {
		// Already atomic, run in place.
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &Store{data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) Rides() ride.Repository                 { return &rideRepo{s} }
func (s *Store) Drivers() driver.Repository             { return &driverRepo{s} }
func (s *Store) Vehicles() vehicle.Repository           { return &vehicleRepo{s} }
func (s *Store) Users() user.Repository                 { return &userRepo{s} }
func (s *Store) Notifications() notification.Repository { return &notificationRepo{s} }

// --- rides ---

type rideRepo struct{ s *Store }

func (r *rideRepo) Create(ctx context.Context, rd *ride.Ride) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.data.rides[rd.ID] = *rd
	return nil
}

func (r *rideRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rd, ok := r.s.data.rides[id]
	if !ok {
		return nil, ride.ErrRideNotFound
	}
	cp := rd
	return &cp, nil
}

func (r *rideRepo) Update(ctx context.Context, rd *ride.Ride) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	stored, ok := r.s.data.rides[rd.ID]
	if !ok {
		return ride.ErrRideNotFound
	}
	if stored.Version != rd.Version {
		return ride.ErrVersionConflict
	}
	cp := *rd
	cp.Version++
	cp.UpdatedAt = time.Now()
	r.s.data.rides[rd.ID] = cp
	rd.Version = cp.Version
	return nil
}

func (r *rideRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := r.s.data.rides[id]; !ok {
		return ride.ErrRideNotFound
	}
	delete(r.s.data.rides, id)
	return nil
}

func (r *rideRepo) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*ride.Ride, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*ride.Ride
	for _, rd := range r.s.data.rides {
		if rd.RequesterID == requesterID {
			cp := rd
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *rideRepo) GetActiveByDriver(ctx context.Context, driverID uuid.UUID) (*ride.Ride, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, rd := range r.s.data.rides {
		if rd.DriverID != nil && *rd.DriverID == driverID &&
			(rd.Status == ride.StatusAssigned || rd.Status == ride.StatusOngoing) {
			cp := rd
			return &cp, nil
		}
	}
	return nil, ride.ErrRideNotFound
}

func (r *rideRepo) RatingsByDriver(ctx context.Context, driverID uuid.UUID) ([]int, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []int
	for _, rd := range r.s.data.rides {
		if rd.DriverID != nil && *rd.DriverID == driverID && rd.Rating != nil {
			out = append(out, *rd.Rating)
		}
	}
	return out, nil
}

func (r *rideRepo) CountActive(ctx context.Context) (int, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	for _, rd := range r.s.data.rides {
		if !rd.Status.IsTerminal() {
			n++
		}
	}
	return n, nil
}

// --- drivers ---

type driverRepo struct{ s *Store }

func (r *driverRepo) Create(ctx context.Context, d *driver.Driver) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.data.drivers[d.ID] = *d
	return nil
}

func (r *driverRepo) GetByID(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := r.s.data.drivers[id]
	if !ok {
		return nil, driver.ErrDriverNotFound
	}
	cp := d
	return &cp, nil
}

func (r *driverRepo) Update(ctx context.Context, d *driver.Driver) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := r.s.data.drivers[d.ID]; !ok {
		return driver.ErrDriverNotFound
	}
	cp := *d
	cp.UpdatedAt = time.Now()
	r.s.data.drivers[d.ID] = cp
	return nil
}

func (r *driverRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to driver.Status) (bool, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d, ok := r.s.data.drivers[id]
	if !ok {
		return false, driver.ErrDriverNotFound
	}
	if d.Status != from {
		return false, nil
	}
	d.Status = to
	d.UpdatedAt = time.Now()
	r.s.data.drivers[id] = d
	return true, nil
}

func (r *driverRepo) AddDistance(ctx context.Context, id uuid.UUID, km float64) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	d, ok := r.s.data.drivers[id]
	if !ok {
		return driver.ErrDriverNotFound
	}
	d.TotalDistanceKM += km
	d.UpdatedAt = time.Now()
	r.s.data.drivers[id] = d
	return nil
}

func (r *driverRepo) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	d, ok := r.s.data.drivers[id]
	if !ok {
		return driver.ErrDriverNotFound
	}
	d.SetLocation(lat, lng)
	r.s.data.drivers[id] = d
	return nil
}

func (r *driverRepo) List(ctx context.Context) ([]*driver.Driver, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*driver.Driver, 0, len(r.s.data.drivers))
	for _, d := range r.s.data.drivers {
		cp := d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *driverRepo) CountByStatus(ctx context.Context) (map[driver.Status]int, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts := make(map[driver.Status]int)
	for _, d := range r.s.data.drivers {
		counts[d.Status]++
	}
	return counts, nil
}

// --- vehicles ---

type vehicleRepo struct{ s *Store }

func (r *vehicleRepo) Create(ctx context.Context, v *vehicle.Vehicle) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.data.vehicles[v.ID] = *v
	return nil
}

func (r *vehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := r.s.data.vehicles[id]
	if !ok {
		return nil, vehicle.ErrVehicleNotFound
	}
	cp := v
	return &cp, nil
}

func (r *vehicleRepo) Update(ctx context.Context, v *vehicle.Vehicle) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := r.s.data.vehicles[v.ID]; !ok {
		return vehicle.ErrVehicleNotFound
	}
	cp := *v
	cp.UpdatedAt = time.Now()
	r.s.data.vehicles[v.ID] = cp
	return nil
}

func (r *vehicleRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to vehicle.Status) (bool, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	v, ok := r.s.data.vehicles[id]
	if !ok {
		return false, vehicle.ErrVehicleNotFound
	}
	if v.Status != from {
		return false, nil
	}
	v.Status = to
	v.UpdatedAt = time.Now()
	r.s.data.vehicles[id] = v
	return true, nil
}

func (r *vehicleRepo) SetCurrentDriver(ctx context.Context, id uuid.UUID, driverID *uuid.UUID) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	v, ok := r.s.data.vehicles[id]
	if !ok {
		return vehicle.ErrVehicleNotFound
	}
	v.CurrentDriverID = driverID
	v.UpdatedAt = time.Now()
	r.s.data.vehicles[id] = v
	return nil
}

func (r *vehicleRepo) AddDistance(ctx context.Context, id uuid.UUID, km float64) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	v, ok := r.s.data.vehicles[id]
	if !ok {
		return vehicle.ErrVehicleNotFound
	}
	v.TotalDistanceKM += km
	v.UpdatedAt = time.Now()
	r.s.data.vehicles[id] = v
	return nil
}

func (r *vehicleRepo) List(ctx context.Context) ([]*vehicle.Vehicle, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*vehicle.Vehicle, 0, len(r.s.data.vehicles))
	for _, v := range r.s.data.vehicles {
		cp := v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}

func (r *vehicleRepo) CountByStatus(ctx context.Context) (map[vehicle.Status]int, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts := make(map[vehicle.Status]int)
	for _, v := range r.s.data.vehicles {
		counts[v.Status]++
	}
	return counts, nil
}

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := u
	return &cp, nil
}

func (r *userRepo) FindByRoleAndDepartment(ctx context.Context, role user.Role, department string) (*user.User, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found *user.User
	for _, u := range r.s.data.users {
		if u.Role == role && u.Department == department {
			cp := u
			if found == nil || cp.CreatedAt.Before(found.CreatedAt) {
				found = &cp
			}
		}
	}
	if found == nil {
		return nil, user.ErrUserNotFound
	}
	return found, nil
}

func (r *userRepo) FindByRole(ctx context.Context, role user.Role) (*user.User, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found *user.User
	for _, u := range r.s.data.users {
		if u.Role == role {
			cp := u
			if found == nil || cp.CreatedAt.Before(found.CreatedAt) {
				found = &cp
			}
		}
	}
	if found == nil {
		return nil, user.ErrUserNotFound
	}
	return found, nil
}

// --- notifications ---

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.data.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*notification.Notification, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*notification.Notification
	for _, n := range r.s.data.notifications {
		if n.RecipientID == recipientID {
			cp := n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	n, ok := r.s.data.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return notification.ErrNotificationNotFound
	}
	n.IsRead = true
	r.s.data.notifications[id] = n
	return nil
}

func (r *notificationRepo) ListUndispatched(ctx context.Context, limit int) ([]*notification.Notification, error) {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*notification.Notification
	for _, n := range r.s.data.notifications {
		if n.DispatchedAt == nil {
			cp := n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *notificationRepo) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	n, ok := r.s.data.notifications[id]
	if !ok {
		return notification.ErrNotificationNotFound
	}
	now := time.Now()
	n.DispatchedAt = &now
	r.s.data.notifications[id] = n
	return nil
}
