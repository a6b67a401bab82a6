package admin

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	callerID, _ := account.CurrentAccountID(c)
	if err := h.svc.DeleteUser(c.Request.Context(), callerID, uint(id)); err != nil {
		apperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	acct, err := h.svc.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, acct)
}
