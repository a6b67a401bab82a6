package campaign

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

type ProfileResolver interface {
	AnnouncerIDForAccount(ctx context.Context, accountID uint) (uint, error)
	PanelistIDForAccount(ctx context.Context, accountID uint) (uint, error)
}

type Handler struct {
	svc      *Service
	profiles ProfileResolver
}

func NewHandler(svc *Service, profiles ProfileResolver) *Handler {
	return &Handler{svc: svc, profiles: profiles}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) announcerID(c *gin.Context) (uint, bool) {
	accountID, _ := account.CurrentAccountID(c)
	id, err := h.profiles.AnnouncerIDForAccount(c.Request.Context(), accountID)
	if err != nil {
		apperr.Abort(c, err)
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	announcerID, ok := h.announcerID(c)
	if !ok {
		return
	}
	created, err := h.svc.Create(c.Request.Context(), announcerID, req)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	found, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) Publish(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	announcerID, ok := h.announcerID(c)
	if !ok {
		return
	}
	published, err := h.svc.Publish(c.Request.Context(), announcerID, id)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, published)
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	announcerID, ok := h.announcerID(c)
	if !ok {
		return
	}
	completed, err := h.svc.MarkCompleted(c.Request.Context(), announcerID, id)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, completed)
}

func (h *Handler) Apply(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	accountID, _ := account.CurrentAccountID(c)
	panelistID, err := h.profiles.PanelistIDForAccount(c.Request.Context(), accountID)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	app, err := h.svc.Apply(c.Request.Context(), panelistID, id)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *Handler) Select(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	panelistID, ok := paramID(c, "panelistId")
	if !ok {
		return
	}
	announcerID, ok := h.announcerID(c)
	if !ok {
		return
	}
	app, err := h.svc.Select(c.Request.Context(), announcerID, id, panelistID)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
