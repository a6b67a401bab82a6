package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/platform/validate"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoreAwarder interface {
	Award(ctx context.Context, panelistID uint, action scoring.Action) (int, error)
}

type CreateInput struct {
	Name           string   `json:"name" validate:"required,max=255"`
	Description    string   `json:"description" validate:"required"`
	StartDate      string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	MaxPanelists   int      `json:"maxPanelists" validate:"required,min=1"`
	CampaignType   string   `json:"campaignType" validate:"required,oneof=PRODUCT_TEST SURVEY"`
	Visibility     string   `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	RewardType     string   `json:"rewardType" validate:"omitempty,oneof=DISCOUNT GIFT MONEY"`
	RewardValue    string   `json:"rewardValue" validate:"max=100"`
	Requirements   string   `json:"requirements"`
	TargetAgeGroup string   `json:"targetAgeGroup" validate:"omitempty,oneof=18-24 25-34 35-44 45+"`
	TargetGender   string   `json:"targetGender" validate:"omitempty,oneof=MALE FEMALE ANY"`
	TargetLocation string   `json:"targetLocation" validate:"max=255"`
	Budget         *float64 `json:"budget" validate:"omitempty,gte=0"`
}

type Service struct {
	db       *gorm.DB
	scores   ScoreAwarder
	validate *validate.Validator
	log      *logger.Logger
}

func NewService(db *gorm.DB, scores ScoreAwarder, log *logger.Logger) *Service {
	return &Service{db: db, scores: scores, validate: validate.New(), log: log}
}

// Create stores a new draft campaign.
func (s *Service) Create(ctx context.Context, announcerID uint, in CreateInput) (*Campaign, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	start, _ := time.Parse("2006-01-02", in.StartDate)
	end, _ := time.Parse("2006-01-02", in.EndDate)
	if end.Before(start) {
		return nil, apperr.Validation("end date must not be before start date")
	}

	c := Campaign{
		AnnouncerID:    announcerID,
		Name:           in.Name,
		Description:    in.Description,
		StartDate:      datatypes.Date(start),
		EndDate:        datatypes.Date(end),
		Status:         StatusDraft,
		MaxPanelists:   in.MaxPanelists,
		IsDraft:        true,
		RewardType:     in.RewardType,
		RewardValue:    in.RewardValue,
		CampaignType:   in.CampaignType,
		Visibility:     in.Visibility,
		Requirements:   in.Requirements,
		TargetAgeGroup: in.TargetAgeGroup,
		TargetGender:   in.TargetGender,
		TargetLocation: in.TargetLocation,
		Budget:         in.Budget,
	}
	if c.Visibility == "" {
		c.Visibility = "PUBLIC"
	}
	if c.TargetGender == "" {
		c.TargetGender = "ANY"
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return &c, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Campaign, error) {
	return find(s.db.WithContext(ctx), id)
}

func find(db *gorm.DB, id uint) (*Campaign, error) {
	var c Campaign
	if err := db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("campaign %d not found", id)
		}
		return nil, fmt.Errorf("load campaign %d: %w", id, err)
	}
	return &c, nil
}

// Owned loads a campaign and checks it belongs to announcerID. Other
// announcers see it as missing.
func Owned(db *gorm.DB, announcerID, id uint) (*Campaign, error) {
	c, err := find(db, id)
	if err != nil {
		return nil, err
	}
	if c.AnnouncerID != announcerID {
		return nil, apperr.NotFound("campaign %d not found", id)
	}
	return c, nil
}

// Publish takes a draft live.
func (s *Service) Publish(ctx context.Context, announcerID, id uint) (*Campaign, error) {
	db := s.db.WithContext(ctx)
	c, err := Owned(db, announcerID, id)
	if err != nil {
		return nil, err
	}
	if c.IsCompleted {
		return nil, apperr.Validation("campaign %d is already completed", id)
	}
	if !c.IsDraft {
		return c, nil
	}
	c.IsDraft = false
	c.Status = StatusActive
	if err := db.Model(c).Select("is_draft", "status").Updates(c).Error; err != nil {
		return nil, fmt.Errorf("publish campaign %d: %w", id, err)
	}
	return c, nil
}

func (s *Service) MarkCompleted(ctx context.Context, announcerID, id uint) (*Campaign, error) {
	db := s.db.WithContext(ctx)
	c, err := Owned(db, announcerID, id)
	if err != nil {
		return nil, err
	}
	c.IsCompleted = true
	c.Status = StatusCompleted
	if err := db.Model(c).Select("is_completed", "status").Updates(c).Error; err != nil {
		return nil, fmt.Errorf("complete campaign %d: %w", id, err)
	}
	return c, nil
}

// Apply records a pending application and awards apply_campaign.
func (s *Service) Apply(ctx context.Context, panelistID, campaignID uint) (*Application, error) {
	db := s.db.WithContext(ctx)
	c, err := find(db, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.OpenForApplications() {
		return nil, apperr.Validation("campaign %d is not open for applications", campaignID)
	}

	app := Application{CampaignID: campaignID, PanelistID: panelistID, Status: ApplicationPending}
	if err := db.Create(&app).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("panelist %d already applied to campaign %d", panelistID, campaignID)
		}
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.award(ctx, panelistID, scoring.ActionApplyCampaign)
	return &app, nil
}

// Select accepts a pending application if the campaign has room left and
// awards selected_for_campaign. Selecting twice is a no-op.
func (s *Service) Select(ctx context.Context, announcerID, campaignID, panelistID uint) (*Application, error) {
	var (
		app      Application
		accepted bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Campaign
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, campaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("campaign %d not found", campaignID)
			}
			return fmt.Errorf("lock campaign %d: %w", campaignID, err)
		}
		if c.AnnouncerID != announcerID {
			return apperr.NotFound("campaign %d not found", campaignID)
		}

		err := tx.Where("campaign_id = ? AND panelist_id = ?", campaignID, panelistID).Take(&app).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("panelist %d has not applied to campaign %d", panelistID, campaignID)
			}
			return fmt.Errorf("load application: %w", err)
		}
		if app.Status == ApplicationAccepted {
			return nil
		}

		ok, err := CanAddPanelist(tx, &c)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validation("campaign %d is full", campaignID)
		}

		app.Status = ApplicationAccepted
		if err := tx.Model(&app).Update("status", ApplicationAccepted).Error; err != nil {
			return fmt.Errorf("accept application: %w", err)
		}
		accepted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if accepted {
		s.award(ctx, panelistID, scoring.ActionSelectedForCampaign)
	}
	return &app, nil
}

// CanAddPanelist reports whether fewer than MaxPanelists applications are accepted.
func CanAddPanelist(db *gorm.DB, c *Campaign) (bool, error) {
	var n int64
	err := db.Model(&Application{}).
		Where("campaign_id = ? AND status = ?", c.ID, ApplicationAccepted).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count accepted panelists: %w", err)
	}
	return n < int64(c.MaxPanelists), nil
}

func (s *Service) award(ctx context.Context, panelistID uint, action scoring.Action) {
	if s.scores == nil {
		return
	}
	if _, err := s.scores.Award(ctx, panelistID, action); err != nil {
		s.log.Error("campaign award failed", "panelist_id", panelistID, "action", action, "error", err)
	}
}
