package form

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

type AnnouncerResolver interface {
	AnnouncerIDForAccount(ctx context.Context, accountID uint) (uint, error)
}

type Handler struct {
	svc        *Service
	announcers AnnouncerResolver
}

func NewHandler(svc *Service, announcers AnnouncerResolver) *Handler {
	return &Handler{svc: svc, announcers: announcers}
}

// caller resolves the announcer and the :id path parameter.
func (h *Handler) caller(c *gin.Context, withID bool) (announcerID, id uint, ok bool) {
	if withID {
		parsed, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return 0, 0, false
		}
		id = uint(parsed)
	}
	accountID, _ := account.CurrentAccountID(c)
	announcerID, err := h.announcers.AnnouncerIDForAccount(c.Request.Context(), accountID)
	if err != nil {
		apperr.Abort(c, err)
		return 0, 0, false
	}
	return announcerID, id, true
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) CreateForm(c *gin.Context) {
	var req CreateFormInput
	if !bind(c, &req) {
		return
	}
	announcerID, _, ok := h.caller(c, false)
	if !ok {
		return
	}
	f, err := h.svc.CreateForm(c.Request.Context(), announcerID, req)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) AddSection(c *gin.Context) {
	var req SectionInput
	if !bind(c, &req) {
		return
	}
	announcerID, formID, ok := h.caller(c, true)
	if !ok {
		return
	}
	sec, err := h.svc.AddSection(c.Request.Context(), announcerID, formID, req)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, sec)
}

func (h *Handler) AddQuestion(c *gin.Context) {
	var req QuestionInput
	if !bind(c, &req) {
		return
	}
	announcerID, sectionID, ok := h.caller(c, true)
	if !ok {
		return
	}
	q, err := h.svc.AddQuestion(c.Request.Context(), announcerID, sectionID, req)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) UpdateQuestion(c *gin.Context) {
	var req QuestionUpdate
	if !bind(c, &req) {
		return
	}
	announcerID, questionID, ok := h.caller(c, true)
	if !ok {
		return
	}
	q, err := h.svc.UpdateQuestion(c.Request.Context(), announcerID, questionID, req)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) DeleteQuestion(c *gin.Context) {
	announcerID, questionID, ok := h.caller(c, true)
	if !ok {
		return
	}
	if err := h.svc.DeleteQuestion(c.Request.Context(), announcerID, questionID); err != nil {
		apperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DuplicateForm(c *gin.Context) {
	announcerID, formID, ok := h.caller(c, true)
	if !ok {
		return
	}
	f, err := h.svc.DuplicateForm(c.Request.Context(), announcerID, formID)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) GetForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	f, err := h.svc.GetForm(c.Request.Context(), uint(id))
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}
