package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/api/dto"
	"github.com/gocomet/fleet-rides/internal/api/middleware"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	"github.com/gocomet/fleet-rides/internal/service/lifecycle"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
)

// CreateRide handles POST /v1/rides
func (h *Handlers) CreateRide(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)

	var req dto.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rd, err := h.Lifecycle.CreateRide(c.Request.Context(), actor, lifecycle.CreateRideInput{
		StartLocation: toLocation(req.StartLocation),
		EndLocation:   toLocation(req.EndLocation),
		DistanceKM:    req.DistanceKM,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rd)
}

// GetRide handles GET /v1/rides/:id
func (h *Handlers) GetRide(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	rd, err := h.Lifecycle.GetRide(c.Request.Context(), actor, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	view, err := h.Readside.RideView(c.Request.Context(), rd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListMyRides handles GET /v1/rides
func (h *Handlers) ListMyRides(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	rides, err := h.Lifecycle.ListMyRides(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides, "count": len(rides)})
}

// ApproveRide handles POST /v1/rides/:id/approve (department head stage)
func (h *Handlers) ApproveRide(c *gin.Context) {
	h.decide(c, h.Lifecycle.ApproveAsDeptHead)
}

// RejectRide handles POST /v1/rides/:id/reject (department head stage)
func (h *Handlers) RejectRide(c *gin.Context) {
	h.decideWithReason(c, h.Lifecycle.RejectAsDeptHead)
}

// PMApproveRide handles POST /v1/rides/:id/pm/approve
func (h *Handlers) PMApproveRide(c *gin.Context) {
	h.decide(c, h.Lifecycle.ApproveAsPM)
}

// PMRejectRide handles POST /v1/rides/:id/pm/reject
func (h *Handlers) PMRejectRide(c *gin.Context) {
	h.decideWithReason(c, h.Lifecycle.RejectAsPM)
}

// AssignRide handles POST /v1/rides/:id/assign
func (h *Handlers) AssignRide(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	var req dto.AssignRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		h.respondError(c, apperrors.Validation("driver_id must be a UUID", err))
		return
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		h.respondError(c, apperrors.Validation("vehicle_id must be a UUID", err))
		return
	}

	rd, err := h.Lifecycle.AssignRide(c.Request.Context(), actor, rideID, driverID, vehicleID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

// StartRide handles POST /v1/rides/:id/start
func (h *Handlers) StartRide(c *gin.Context) {
	h.decide(c, h.Lifecycle.StartRide)
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *Handlers) CompleteRide(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	// The body is optional: a completion without actuals keeps the planned
	// distance and end location.
	var req dto.CompleteRideRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	in := lifecycle.CompleteRideInput{ActualDistanceKM: req.ActualDistanceKM}
	if req.ActualEndLocation != nil {
		loc := toLocation(*req.ActualEndLocation)
		in.ActualEndLocation = &loc
	}

	rd, err := h.Lifecycle.CompleteRide(c.Request.Context(), actor, rideID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *Handlers) CancelRide(c *gin.Context) {
	h.decide(c, h.Lifecycle.CancelRide)
}

// DeleteRide handles DELETE /v1/rides/:id
func (h *Handlers) DeleteRide(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}
	if err := h.Lifecycle.DeleteRide(c.Request.Context(), actor, rideID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Ride deleted"})
}

// RateRide handles POST /v1/rides/:id/rating
func (h *Handlers) RateRide(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}

	var req dto.RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rd, err := h.Lifecycle.RateRide(c.Request.Context(), actor, rideID, req.Rating)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

// decide runs a reason-less lifecycle transition addressed by ride id.
func (h *Handlers) decide(c *gin.Context, op func(context.Context, user.Principal, uuid.UUID) (*ride.Ride, error)) {
	actor, _ := middleware.PrincipalFrom(c)
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}
	rd, err := op(c.Request.Context(), actor, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

// decideWithReason runs a rejection, which always carries a reason.
func (h *Handlers) decideWithReason(c *gin.Context, op func(context.Context, user.Principal, uuid.UUID, string) (*ride.Ride, error)) {
	actor, _ := middleware.PrincipalFrom(c)
	rideID, ok := h.rideID(c)
	if !ok {
		return
	}
	var req dto.RejectRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rd, err := op(c.Request.Context(), actor, rideID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

func (h *Handlers) rideID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("ride id must be a UUID", err))
		return uuid.Nil, false
	}
	return id, true
}

func toLocation(p dto.LocationPayload) ride.Location {
	return ride.Location{Latitude: p.Latitude, Longitude: p.Longitude, Address: p.Address}
}
