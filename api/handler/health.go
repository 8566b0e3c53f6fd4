package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/api/transport"
	"github.com/nexusliving/bms/internal/infrastructure/monitor"
	"github.com/nexusliving/bms/pkg/httpcontext"
)

type healthReport struct {
	monitor.Status
	StoreDriver   string `json:"store_driver"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
	driver  string
	started time.Time
}

func NewHealthHandler(mon *monitor.Monitor, driver string, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		driver:      driver,
		started:     time.Now(),
	}
}

// @Summary Dependency health
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	report := healthReport{
		Status:        h.monitor.Status(),
		StoreDriver:   h.driver,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	if report.Healthy {
		h.respondSuccess(ctx, http.StatusOK, report)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.Failure("DEGRADED", "dependencies unhealthy", report))
}
