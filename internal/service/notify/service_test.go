package notify_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/fleet-rides/internal/domain/notification"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/service/notify"
	"github.com/gocomet/fleet-rides/internal/storage"
	"github.com/gocomet/fleet-rides/internal/storage/memory"
	"github.com/gocomet/fleet-rides/pkg/logger"
	"github.com/gocomet/fleet-rides/pkg/websocket"
)

type recordingSender struct {
	mu   sync.Mutex
	sent map[string][]websocket.Message
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(map[string][]websocket.Message)}
}

func (r *recordingSender) SendToUser(userID string, msg websocket.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[userID] = append(r.sent[userID], msg)
}

func TestEnqueueAndDispatch(t *testing.T) {
	store := memory.New()
	sender := newRecordingSender()
	svc := notify.NewService(store, sender, logger.NewNop())
	ctx := context.Background()

	recipient := uuid.New()
	rd := &ride.Ride{ID: uuid.New(), Status: ride.StatusPending}

	err := store.WithinTx(ctx, func(tx storage.Store) error {
		return svc.Enqueue(ctx, tx, notify.Event{
			RecipientID:   recipient,
			RecipientType: "user",
			Type:          notification.TypeRideRequested,
			Title:         "Ride approval requested",
			Message:       "msg",
			Ride:          rd,
		})
	})
	require.NoError(t, err)

	require.NoError(t, svc.DispatchPending(ctx, 10))

	msgs := sender.sent[recipient.String()]
	require.Len(t, msgs, 1)
	assert.Equal(t, string(notification.TypeRideRequested), msgs[0].Type)

	// Dispatch is recorded, a second flush sends nothing.
	require.NoError(t, svc.DispatchPending(ctx, 10))
	assert.Len(t, sender.sent[recipient.String()], 1)

	// The row is still listable for the recipient.
	all, err := svc.ListByRecipient(ctx, recipient)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].DispatchedAt)
	assert.Equal(t, rd.ID.String(), all[0].Data["ride_id"])
}

func TestEnqueueRollsBackWithTx(t *testing.T) {
	store := memory.New()
	svc := notify.NewService(store, newRecordingSender(), logger.NewNop())
	ctx := context.Background()

	recipient := uuid.New()
	err := store.WithinTx(ctx, func(tx storage.Store) error {
		if err := svc.Enqueue(ctx, tx, notify.Event{
			RecipientID: recipient,
			Type:        notification.TypeRideApproved,
			Title:       "t",
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	pending, err := store.Notifications().ListUndispatched(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
