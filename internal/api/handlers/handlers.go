package handlers

import (
	"github.com/gocomet/fleet-rides/internal/api/middleware"
	"github.com/gocomet/fleet-rides/internal/service/lifecycle"
	"github.com/gocomet/fleet-rides/internal/service/location"
	"github.com/gocomet/fleet-rides/internal/service/notify"
	"github.com/gocomet/fleet-rides/internal/service/readside"
	"github.com/gocomet/fleet-rides/internal/storage"
	"github.com/gocomet/fleet-rides/pkg/logger"
	"github.com/gocomet/fleet-rides/pkg/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Lifecycle *lifecycle.Service
	Readside  *readside.Service
	Tracker   *location.Tracker
	Notify    *notify.Service
	Store     storage.Store
	Auth      *middleware.Auth
	Hub       *websocket.Hub
	Logger    *logger.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	lc *lifecycle.Service,
	rs *readside.Service,
	tracker *location.Tracker,
	notifier *notify.Service,
	store storage.Store,
	auth *middleware.Auth,
	hub *websocket.Hub,
	log *logger.Logger,
) *Handlers {
	return &Handlers{
		Lifecycle: lc,
		Readside:  rs,
		Tracker:   tracker,
		Notify:    notifier,
		Store:     store,
		Auth:      auth,
		Hub:       hub,
		Logger:    log,
	}
}
