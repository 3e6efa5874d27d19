package handler

import (
	"net/http"
	"runtime"
	"time"

	"inventory-audit-api/internal/service"
	"inventory-audit-api/pkg/response"
)

// AdminHandler serves operational statistics.
type AdminHandler struct {
	inventoryService *service.InventoryService
	auditStream      Pinger // nil when the Redis mirror is disabled
	dbType           string
	startTime        time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(inventoryService *service.InventoryService, auditStream Pinger, dbType string) *AdminHandler {
	return &AdminHandler{
		inventoryService: inventoryService,
		auditStream:      auditStream,
		dbType:           dbType,
		startTime:        time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	dbStats, err := h.inventoryService.Stats(ctx)
	if err == nil {
		dbStats["status"] = "connected"
		stats["database"] = dbStats
	} else {
		stats["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	switch {
	case h.auditStream == nil:
		stats["audit_stream"] = map[string]interface{}{"status": "not_configured"}
	default:
		if err := h.auditStream.Ping(ctx); err != nil {
			stats["audit_stream"] = map[string]interface{}{"status": "error", "error": err.Error()}
		} else {
			stats["audit_stream"] = map[string]interface{}{"status": "connected"}
		}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
