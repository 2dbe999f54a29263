package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/api/dto"
	"github.com/gocomet/fleet-rides/internal/api/middleware"
	"github.com/gocomet/fleet-rides/internal/domain/driver"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
)

// CreateDriver handles POST /v1/drivers
func (h *Handlers) CreateDriver(c *gin.Context) {
	var req dto.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	now := time.Now()
	d := &driver.Driver{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    driver.StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.IsValid(); err != nil {
		h.respondError(c, apperrors.Validation(err.Error(), err))
		return
	}
	if err := h.Store.Drivers().Create(c.Request.Context(), d); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// GetDriver handles GET /v1/drivers/:id
func (h *Handlers) GetDriver(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("driver id must be a UUID", err))
		return
	}
	d, err := h.Store.Drivers().GetByID(c.Request.Context(), id)
	if errors.Is(err, driver.ErrDriverNotFound) {
		h.respondError(c, apperrors.NotFound("Driver not found", err))
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// ListDrivers handles GET /v1/drivers
func (h *Handlers) ListDrivers(c *gin.Context) {
	drivers, err := h.Store.Drivers().List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers, "count": len(drivers)})
}

// UpdateDriverLocation handles POST /v1/drivers/:id/location
func (h *Handlers) UpdateDriverLocation(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("driver id must be a UUID", err))
		return
	}
	// Drivers report their own position; admins may correct any.
	if actor.ID != id && !actor.IsAdmin() {
		h.respondError(c, apperrors.Authorization("Drivers can only update their own location", nil))
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Tracker.UpdateDriverLocation(c.Request.Context(), id, req.Latitude, req.Longitude); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Location updated"})
}

// NearbyDrivers handles GET /v1/drivers/nearby?lat=&lng=&radius_km=&count=
func (h *Handlers) NearbyDrivers(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		h.respondError(c, apperrors.Validation("lat is required and must be a number", err))
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		h.respondError(c, apperrors.Validation("lng is required and must be a number", err))
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "5"), 64)
	if err != nil || radius <= 0 {
		h.respondError(c, apperrors.Validation("radius_km must be a positive number", err))
		return
	}
	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil || count <= 0 {
		h.respondError(c, apperrors.Validation("count must be a positive integer", err))
		return
	}

	nearby, err := h.Tracker.NearbyAvailableDrivers(c.Request.Context(), lat, lng, radius, count)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": nearby, "count": len(nearby)})
}
