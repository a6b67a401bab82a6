package account

import (
	"net/http"

	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListInterests serves GET /api/interests?prefix=
func (h *Handler) ListInterests(c *gin.Context) {
	interests, err := h.svc.ListInterests(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, interests)
}
