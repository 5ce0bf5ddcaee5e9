package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log zerolog.Logger) {
	// Initialize handlers
	appointmentHandler := handlers.NewAppointmentHandler(store.New(db), log)
	healthHandler := handlers.NewHealthHandler(db, cfg.Environment)

	api := router.Group("/api")
	{
		appointmentRoutes := api.Group("/appointments")
		{
			// Static segment registered alongside :id; gin resolves both.
			appointmentRoutes.GET("/stats/overview", appointmentHandler.GetStats)

			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.DELETE("/:id", appointmentHandler.DeleteAppointment)
		}
	}

	// Health check endpoints
	router.GET("/health", healthHandler.Check)
	router.GET("/health/detailed", healthHandler.Detailed)

	// Root route with a small service banner
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Clinic Appointment System API",
			"version":     handlers.Version,
			"status":      "running",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": cfg.Environment,
		})
	})

	// JSON 404 for unknown routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Cannot " + c.Request.Method + " " + c.Request.URL.Path,
		})
	})
}
