package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/gocomet/fleet-rides/internal/api/handlers"
	"github.com/gocomet/fleet-rides/internal/api/middleware"
	"github.com/gocomet/fleet-rides/internal/domain/user"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, nrApp *newrelic.Application) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "ws_connections": h.Hub.ActiveConnections()})
	})

	// WebSocket connection authenticates via query token inside the handler.
	r.GET("/v1/ws", h.HandleWebSocket)

	v1 := r.Group("/v1")
	v1.Use(h.Auth.Authenticate())
	{
		rides := v1.Group("/rides")
		{
			rides.POST("", h.CreateRide)
			rides.GET("", h.ListMyRides)
			rides.GET("/:id", h.GetRide)
			rides.DELETE("/:id", h.DeleteRide)

			// Approval chain. The services validate the exact approver; the
			// role gates only keep obviously wrong callers out early.
			rides.POST("/:id/approve", middleware.RequireRole(user.RoleDepartmentHead), h.ApproveRide)
			rides.POST("/:id/reject", middleware.RequireRole(user.RoleDepartmentHead), h.RejectRide)
			rides.POST("/:id/pm/approve", middleware.RequireRole(user.RoleProjectManager), h.PMApproveRide)
			rides.POST("/:id/pm/reject", middleware.RequireRole(user.RoleProjectManager), h.PMRejectRide)

			rides.POST("/:id/assign", middleware.RequireRole(user.RoleAdmin), h.AssignRide)
			rides.POST("/:id/start", middleware.RequireRole(user.RoleDriver), h.StartRide)
			rides.POST("/:id/complete", middleware.RequireRole(user.RoleDriver), h.CompleteRide)
			rides.POST("/:id/cancel", h.CancelRide)
			rides.POST("/:id/rating", h.RateRide)
		}

		drivers := v1.Group("/drivers")
		{
			drivers.POST("", middleware.RequireRole(user.RoleAdmin), h.CreateDriver)
			drivers.GET("", h.ListDrivers)
			drivers.GET("/nearby", middleware.RequireRole(user.RoleAdmin), h.NearbyDrivers)
			drivers.GET("/:id", h.GetDriver)
			drivers.POST("/:id/location", middleware.RequireRole(user.RoleDriver), h.UpdateDriverLocation)
		}

		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", middleware.RequireRole(user.RoleAdmin), h.CreateVehicle)
			vehicles.GET("", h.ListVehicles)
			vehicles.GET("/:id", h.GetVehicle)
		}

		v1.GET("/fleet/overview", middleware.RequireRole(user.RoleAdmin), h.FleetOverview)

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", h.ListNotifications)
			notifications.POST("/:id/read", h.MarkNotificationRead)
		}
	}
}
