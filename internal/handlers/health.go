package handlers

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Version is the reported API version.
const Version = "1.0.0"

// HealthHandler answers liveness probes and reports store reachability.
type HealthHandler struct {
	DB          *gorm.DB
	Environment string
	startedAt   time.Time
}

// NewHealthHandler creates a HealthHandler anchored at the current time.
func NewHealthHandler(db *gorm.DB, environment string) *HealthHandler {
	return &HealthHandler{DB: db, Environment: environment, startedAt: time.Now()}
}

// Check reports overall service health. Responds 503 with status
// WARNING when the database does not answer a ping.
func (h *HealthHandler) Check(c *gin.Context) {
	dbStatus := h.databaseStatus(c)

	status := "OK"
	code := http.StatusOK
	if dbStatus != "connected" {
		status = "WARNING"
		code = http.StatusServiceUnavailable
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(code, gin.H{
		"status":      status,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.startedAt).Seconds(),
		"environment": h.Environment,
		"version":     Version,
		"services": gin.H{
			"database": dbStatus,
			"memory": gin.H{
				"used":  fmt.Sprintf("%d MB", mem.HeapAlloc/1024/1024),
				"total": fmt.Sprintf("%d MB", mem.Sys/1024/1024),
			},
		},
	})
}

// Detailed adds process and runtime information to the basic check.
func (h *HealthHandler) Detailed(c *gin.Context) {
	dbStatus := h.databaseStatus(c)

	code := http.StatusOK
	status := "OK"
	if dbStatus != "connected" {
		status = "WARNING"
		code = http.StatusServiceUnavailable
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(code, gin.H{
		"status":      status,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.startedAt).Seconds(),
		"environment": h.Environment,
		"version":     Version,
		"system": gin.H{
			"platform":  runtime.GOOS,
			"arch":      runtime.GOARCH,
			"goVersion": runtime.Version(),
			"pid":       os.Getpid(),
		},
		"memory": gin.H{
			"used":       fmt.Sprintf("%d MB", mem.HeapAlloc/1024/1024),
			"total":      fmt.Sprintf("%d MB", mem.Sys/1024/1024),
			"goroutines": runtime.NumGoroutine(),
		},
		"database": gin.H{
			"status": dbStatus,
		},
	})
}

func (h *HealthHandler) databaseStatus(c *gin.Context) string {
	if h.DB == nil {
		return "disconnected"
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return "disconnected"
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		return "disconnected"
	}
	return "connected"
}
