package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/urquest/api/transport"
	"github.com/fastygo/urquest/internal/infrastructure/monitor"
	"github.com/fastygo/urquest/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

type componentHealth struct {
	Name   string `json:"name"`
	Online bool   `json:"online"`
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()

	components := make([]componentHealth, 0, len(status.Components))
	var down []string
	for _, name := range status.Names() {
		online := status.Components[name]
		components = append(components, componentHealth{Name: name, Online: online})
		if !online {
			down = append(down, name)
		}
	}
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"components": components,
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	message := "no dependency checks have completed"
	if len(down) > 0 {
		message = "offline: " + strings.Join(down, ", ")
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", message, payload))
}
