// Package notify writes lifecycle notifications to the outbox and delivers
// them to connected clients. The outbox row is written in the same
// transaction as the state change it describes; delivery is best effort and
// happens after commit.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/notification"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/storage"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
	"github.com/gocomet/fleet-rides/pkg/logger"
	"github.com/gocomet/fleet-rides/pkg/websocket"
)

// Sender delivers a message to a connected user. Satisfied by the websocket
// hub.
type Sender interface {
	SendToUser(userID string, message websocket.Message)
}

// Service manages the notification outbox.
type Service struct {
	store  storage.Store
	sender Sender
	logger *logger.Logger
}

// NewService creates the notification service.
func NewService(store storage.Store, sender Sender, log *logger.Logger) *Service {
	return &Service{store: store, sender: sender, logger: log}
}

// Event describes a lifecycle notification to enqueue.
type Event struct {
	RecipientID   uuid.UUID
	RecipientType string
	Type          notification.Type
	Title         string
	Message       string
	Ride          *ride.Ride
}

// Enqueue writes the event to the outbox using the given store, which is the
// open transaction of the state change that produced it.
func (s *Service) Enqueue(ctx context.Context, tx storage.Store, ev Event) error {
	n := &notification.Notification{
		ID:            uuid.New(),
		RecipientID:   ev.RecipientID,
		RecipientType: ev.RecipientType,
		Title:         ev.Title,
		Message:       ev.Message,
		Type:          ev.Type,
		CreatedAt:     time.Now(),
	}
	if ev.Ride != nil {
		n.Data = map[string]any{
			"ride_id": ev.Ride.ID.String(),
			"status":  string(ev.Ride.Status),
		}
	}
	return tx.Notifications().Create(ctx, n)
}

// DispatchPending delivers undispatched outbox rows to connected clients and
// marks them dispatched. Delivery failures never block: a client that is
// offline simply misses the push and still sees the notification when
// listing.
func (s *Service) DispatchPending(ctx context.Context, limit int) error {
	pending, err := s.store.Notifications().ListUndispatched(ctx, limit)
	if err != nil {
		return err
	}
	for _, n := range pending {
		s.sender.SendToUser(n.RecipientID.String(), websocket.Message{
			Type: string(n.Type),
			Data: n,
		})
		if err := s.store.Notifications().MarkDispatched(ctx, n.ID); err != nil {
			s.logger.Error("Failed to mark notification dispatched",
				logger.String("notification_id", n.ID.String()),
				logger.Err(err))
		}
	}
	return nil
}

// Run flushes the outbox on an interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration, batchSize int) {
	if batchSize <= 0 {
		batchSize = 100
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.DispatchPending(ctx, batchSize); err != nil {
				s.logger.Error("Outbox dispatch failed", logger.Err(err))
			}
		}
	}
}

// ListByRecipient returns a user's notifications in creation order.
func (s *Service) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*notification.Notification, error) {
	return s.store.Notifications().ListByRecipient(ctx, recipientID)
}

// MarkRead marks one of the recipient's notifications as read. Ids belonging
// to other recipients resolve to NotFound.
func (s *Service) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	err := s.store.Notifications().MarkRead(ctx, id, recipientID)
	if errors.Is(err, notification.ErrNotificationNotFound) {
		return apperrors.NotFound("Notification not found", err)
	}
	return err
}
