package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sessioncache/internal/data/store"
)

type HealthHandler struct {
	store store.RecordStore
}

func NewHealthHandler(st store.RecordStore) *HealthHandler { return &HealthHandler{store: st} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.store == nil {
		c.String(http.StatusOK, "ok")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.store.Driver()})
}
