package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/api/dto"
	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
)

// CreateVehicle handles POST /v1/vehicles
func (h *Handlers) CreateVehicle(c *gin.Context) {
	var req dto.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	now := time.Now()
	v := &vehicle.Vehicle{
		ID:        uuid.New(),
		Plate:     req.Plate,
		Make:      req.Make,
		Model:     req.Model,
		Year:      req.Year,
		Status:    vehicle.StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Store.Vehicles().Create(c.Request.Context(), v); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *Handlers) GetVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("vehicle id must be a UUID", err))
		return
	}
	v, err := h.Store.Vehicles().GetByID(c.Request.Context(), id)
	if errors.Is(err, vehicle.ErrVehicleNotFound) {
		h.respondError(c, apperrors.NotFound("Vehicle not found", err))
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// ListVehicles handles GET /v1/vehicles
func (h *Handlers) ListVehicles(c *gin.Context) {
	vehicles, err := h.Store.Vehicles().List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "count": len(vehicles)})
}

// FleetOverview handles GET /v1/fleet/overview
func (h *Handlers) FleetOverview(c *gin.Context) {
	overview, err := h.Readside.FleetOverview(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
