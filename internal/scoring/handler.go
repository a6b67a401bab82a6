package scoring

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

// Handler exposes manual awards to administrators. Panelists never reach
// the engine directly: their points come from signup, responses,
// applications and referrals.
type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

type awardRequest struct {
	Action string `json:"action" binding:"required"`
}

type awardResponse struct {
	PanelistID uint   `json:"panelistId"`
	Action     string `json:"action"`
	Score      int    `json:"score"`
	Rank       Rank   `json:"rank"`
}

// AwardForPanelist credits the panelist in the path, e.g. a
// high_quality_review granted after moderation. Rate-limited actions
// answer 200 with the unchanged score.
func (h *Handler) AwardForPanelist(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid panelist id"})
		return
	}
	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}
	action := Action(req.Action)
	if _, known := action.Points(); !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action " + req.Action})
		return
	}

	score, err := h.engine.Award(c.Request.Context(), uint(id), action)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, awardResponse{
		PanelistID: uint(id),
		Action:     req.Action,
		Score:      score,
		Rank:       RankFor(score),
	})
}
