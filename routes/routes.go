package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/wedding-api/handlers"
)

// PublicLimits holds the per-route rate limiters of the guest endpoints
type PublicLimits struct {
	Household     gin.HandlerFunc
	Submit        gin.HandlerFunc
	ChangeRequest gin.HandlerFunc
}

// SetupPublicRoutes sets up the token-authenticated guest routes.
func SetupPublicRoutes(rg *gin.RouterGroup, h *handlers.RSVPHandler, limits PublicLimits) {
	rsvp := rg.Group("/public/rsvp")

	rsvp.GET("/household", limits.Household, h.GetHousehold)
	rsvp.POST("/submit", limits.Submit, h.Submit)
	rsvp.POST("/change-request", limits.ChangeRequest, h.ChangeRequest)
}

// SetupAuthRoutes sets up admin login and the authenticated profile routes.
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler, auth, loginLimit gin.HandlerFunc) {
	rg.POST("/auth/login", loginLimit, h.Login)

	protected := rg.Group("/auth")
	protected.Use(auth)
	{
		protected.GET("/me", h.Me)
		protected.POST("/2fa/setup", h.SetupTOTP)
		protected.POST("/2fa/verify", h.VerifyTOTP)
		protected.POST("/2fa/disable", h.DisableTOTP)
		protected.POST("/password", h.ChangePassword)
	}
}

// SetupAdminRoutes sets up the dashboard routes. Callers add the auth middleware.
func SetupAdminRoutes(rg *gin.RouterGroup, households *handlers.HouseholdHandler, reports *handlers.ReportHandler, audit *handlers.AuditHandler, ws *handlers.WSHandler) {
	rg.GET("/households", households.List)
	rg.POST("/households", households.Create)
	rg.GET("/households/:id", households.Get)
	rg.PATCH("/households/:id", households.Update)
	rg.DELETE("/households/:id", households.Delete)
	rg.POST("/households/:id/token", households.RegenerateToken)
	rg.POST("/households/:id/guests", households.AddGuest)

	rg.PATCH("/guests/:id", households.UpdateGuest)
	rg.DELETE("/guests/:id", households.DeleteGuest)

	rg.PATCH("/change-requests/:id", households.UpdateChangeRequest)

	rg.GET("/stats", reports.Stats)
	rg.GET("/export/guests.csv", reports.ExportGuests)

	rg.GET("/audit", audit.Query)
	rg.GET("/ws", ws.HandleWS)
}
