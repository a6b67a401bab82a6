package api

import (
	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/admin"
	"github.com/SlpAus/smartpanel-backend/internal/campaign"
	"github.com/SlpAus/smartpanel-backend/internal/form"
	"github.com/SlpAus/smartpanel-backend/internal/leaderboard"
	"github.com/SlpAus/smartpanel-backend/internal/profile"
	"github.com/SlpAus/smartpanel-backend/internal/response"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers of every module.
type Handlers struct {
	Accounts    *account.Handler
	Profiles    *profile.Handler
	Campaigns   *campaign.Handler
	Forms       *form.Handler
	Responses   *response.Handler
	Scores      *scoring.Handler
	Leaderboard *leaderboard.Handler
	Admin       *admin.Handler
}

// SetupRoutes registers every API route. identity authenticates the
// caller; signup, interests and the leaderboards are public.
func SetupRoutes(router *gin.Engine, h Handlers, identity gin.HandlerFunc) {
	api := router.Group("/api")

	api.POST("/panelists/signup", h.Profiles.SignupPanelist)
	api.POST("/announcers/signup", h.Profiles.SignupAnnouncer)
	api.GET("/interests", h.Accounts.ListInterests)
	api.GET("/leaderboard", h.Leaderboard.AllTime)
	api.GET("/leaderboard/weekly", h.Leaderboard.Weekly)

	authed := api.Group("", identity)

	panelist := account.RequireRole(account.RolePanelist)
	announcer := account.RequireRole(account.RoleAnnouncer)

	authed.POST("/profile/panelist", panelist, h.Profiles.CompletePanelistProfile)
	authed.GET("/panelists/me", panelist, h.Profiles.GetMe)
	authed.GET("/panelists/:id", h.Profiles.GetPanelist)

	campaigns := authed.Group("/campaigns")
	{
		campaigns.POST("", announcer, h.Campaigns.Create)
		campaigns.GET("/:id", h.Campaigns.Get)
		campaigns.POST("/:id/publish", announcer, h.Campaigns.Publish)
		campaigns.POST("/:id/complete", announcer, h.Campaigns.Complete)
		campaigns.POST("/:id/apply", panelist, h.Campaigns.Apply)
		campaigns.POST("/:id/select/:panelistId", announcer, h.Campaigns.Select)
	}

	forms := authed.Group("/forms")
	{
		forms.POST("", announcer, h.Forms.CreateForm)
		forms.GET("/:id", h.Forms.GetForm)
		forms.POST("/:id/sections", announcer, h.Forms.AddSection)
		forms.POST("/:id/duplicate", announcer, h.Forms.DuplicateForm)
		forms.POST("/:id/responses", panelist, h.Responses.Submit)
	}
	authed.POST("/sections/:id/questions", announcer, h.Forms.AddQuestion)
	authed.PUT("/questions/:id", announcer, h.Forms.UpdateQuestion)
	authed.DELETE("/questions/:id", announcer, h.Forms.DeleteQuestion)

	adminRoutes := authed.Group("/admin", account.RequireRole(account.RoleAdmin))
	{
		adminRoutes.GET("/users", h.Admin.ListUsers)
		adminRoutes.DELETE("/users/:id", h.Admin.DeleteUser)
		adminRoutes.POST("/create", h.Admin.CreateAdmin)
		adminRoutes.POST("/panelists/:id/actions", h.Scores.AwardForPanelist)
	}
}
