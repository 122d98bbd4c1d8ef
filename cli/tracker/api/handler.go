package api

import (
	"net/http"

	"github.com/daniil11ru/geotrack/cli/tracker/tracker"
	"github.com/gin-gonic/gin"
)

// StatusSource источник состояния трекера
type StatusSource interface {
	Snapshot() tracker.Snapshot
}

type Handler struct {
	Tracker StatusSource
}

// NewHandler source может быть nil, если трекер выключен
func NewHandler(source StatusSource) *Handler {
	return &Handler{Tracker: source}
}

func (h *Handler) GetStatus(c *gin.Context) {
	if h.Tracker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "трекер выключен"})
		return
	}

	c.JSON(http.StatusOK, h.Tracker.Snapshot())
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
