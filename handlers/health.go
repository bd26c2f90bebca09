package handlers

import (
	"net/http"
	"time"

	"github.com/thecoder877/Vrticko/database"
	"github.com/thecoder877/Vrticko/utils"
)

// HealthCheck handles GET /api/health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "connected"

	if err := database.Ping(); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	utils.RespondJSON(w, code, map[string]string{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
