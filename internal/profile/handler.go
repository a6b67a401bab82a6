package profile

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/badge"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"github.com/gin-gonic/gin"
)

const recentHistoryLimit = 20

type BadgeLister interface {
	ForPanelist(ctx context.Context, panelistID uint) ([]badge.PanelistBadge, error)
}

type HistoryReader interface {
	History(ctx context.Context, panelistID uint, limit int) ([]scoring.HistoryEntry, error)
}

type Handler struct {
	svc     *Service
	badges  BadgeLister
	history HistoryReader
}

func NewHandler(svc *Service, badges BadgeLister, history HistoryReader) *Handler {
	return &Handler{svc: svc, badges: badges, history: history}
}

// PanelistDetail is the panelist view with its gamification state.
type PanelistDetail struct {
	*Panelist
	Badges        []badge.PanelistBadge  `json:"badges"`
	RecentHistory []scoring.HistoryEntry `json:"recentHistory"`
}

func (h *Handler) SignupPanelist(c *gin.Context) {
	var req PanelistSignup
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.svc.RegisterPanelist(c.Request.Context(), req)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) SignupAnnouncer(c *gin.Context) {
	var req AnnouncerSignup
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	a, err := h.svc.RegisterAnnouncer(c.Request.Context(), req)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// CompletePanelistProfile answers 201 when the profile was created, 200 when updated.
func (h *Handler) CompletePanelistProfile(c *gin.Context) {
	var req PanelistProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	accountID, _ := account.CurrentAccountID(c)
	p, created, err := h.svc.CompletePanelistProfile(c.Request.Context(), accountID, req)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, p)
}

func (h *Handler) GetPanelist(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid panelist id"})
		return
	}
	p, err := h.svc.GetPanelist(c.Request.Context(), uint(id))
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	h.respondDetail(c, p)
}

func (h *Handler) GetMe(c *gin.Context) {
	accountID, _ := account.CurrentAccountID(c)
	p, err := h.svc.PanelistByAccount(c.Request.Context(), accountID)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	h.respondDetail(c, p)
}

func (h *Handler) respondDetail(c *gin.Context, p *Panelist) {
	ctx := c.Request.Context()
	badges, err := h.badges.ForPanelist(ctx, p.ID)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	history, err := h.history.History(ctx, p.ID, recentHistoryLimit)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, PanelistDetail{Panelist: p, Badges: badges, RecentHistory: history})
}
