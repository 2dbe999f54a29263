package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type tags the lifecycle event that produced a notification.
type Type string

const (
	TypeRideRequested    Type = "ride_requested"
	TypeRideApproved     Type = "ride_approved"
	TypeRideRejected     Type = "ride_rejected"
	TypeRideEscalated    Type = "ride_escalated"
	TypeRideAssigned     Type = "ride_assigned"
	TypeRideStarted      Type = "ride_started"
	TypeRideCompleted    Type = "ride_completed"
	TypeRideCancelled    Type = "ride_cancelled"
)

// Notification is written as a side effect of lifecycle transitions, in the
// same transaction as the state change (outbox). It never feeds back into
// Ride, Driver or Vehicle state. DispatchedAt is set once delivery has been
// attempted.
type Notification struct {
	ID            uuid.UUID      `json:"id"`
	RecipientID   uuid.UUID      `json:"recipient_id"`
	RecipientType string         `json:"recipient_type"`
	Title         string         `json:"title"`
	Message       string         `json:"message"`
	Type          Type           `json:"type"`
	Data          map[string]any `json:"data,omitempty"`
	IsRead        bool           `json:"is_read"`
	DispatchedAt  *time.Time     `json:"dispatched_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Repository defines the interface for the notification outbox
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*Notification, error)
	// MarkRead flips the read flag, scoped to the recipient: a notification
	// belonging to somebody else reads as not found.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	// ListUndispatched returns outbox rows whose delivery has not been
	// attempted yet, oldest first.
	ListUndispatched(ctx context.Context, limit int) ([]*Notification, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) error
}

var ErrNotificationNotFound = errors.New("notification not found")
