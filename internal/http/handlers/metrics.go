package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sessioncache/internal/observability"
)

type MetricsHandler struct {
	metrics *observability.Metrics
}

func NewMetricsHandler(m *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// GET /metrics
func (h *MetricsHandler) Scrape(c *gin.Context) {
	h.metrics.WriteHTTP(c.Writer, c.Request)
}
