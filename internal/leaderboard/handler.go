package leaderboard

import (
	"net/http"

	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	agg *Aggregator
}

func NewHandler(agg *Aggregator) *Handler {
	return &Handler{agg: agg}
}

func (h *Handler) AllTime(c *gin.Context) {
	entries, err := h.agg.AllTime(c.Request.Context())
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) Weekly(c *gin.Context) {
	entries, err := h.agg.Weekly(c.Request.Context())
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
