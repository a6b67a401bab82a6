package response

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

type PanelistResolver interface {
	PanelistIDForAccount(ctx context.Context, accountID uint) (uint, error)
}

type Handler struct {
	svc       *Service
	panelists PanelistResolver
}

func NewHandler(svc *Service, panelists PanelistResolver) *Handler {
	return &Handler{svc: svc, panelists: panelists}
}

// Submit answers POST /forms/:id/responses: 201 for a final batch, 200 for a draft.
func (h *Handler) Submit(c *gin.Context) {
	formID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || formID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
		return
	}
	var sub Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sub.FormID = uint(formID)

	accountID, _ := account.CurrentAccountID(c)
	panelistID, err := h.panelists.PanelistIDForAccount(c.Request.Context(), accountID)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), panelistID, sub)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	status := http.StatusCreated
	if result.Draft {
		status = http.StatusOK
	}
	c.JSON(status, result)
}
