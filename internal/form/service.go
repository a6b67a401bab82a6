package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/campaign"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/platform/validate"
	"gorm.io/gorm"
)

type CreateFormInput struct {
	CampaignID     uint       `json:"campaignId" validate:"required"`
	Title          string     `json:"title" validate:"required,max=255"`
	ExpirationDate *time.Time `json:"expirationDate"`
}

type SectionInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Order       int    `json:"order" validate:"gte=0"`
}

type ConditionInput struct {
	TriggerQuestionID uint   `json:"triggerQuestionId" validate:"required"`
	TriggerValue      string `json:"triggerValue" validate:"max=255"`
}

type QuestionInput struct {
	Text         string           `json:"text" validate:"required"`
	QuestionType string           `json:"questionType" validate:"required"`
	IsRequired   *bool            `json:"isRequired"`
	Order        int              `json:"order" validate:"gte=0"`
	Options      []string         `json:"options" validate:"dive,required,max=255"`
	Conditions   []ConditionInput `json:"conditions" validate:"dive"`
}

type QuestionUpdate struct {
	Text       *string `json:"text" validate:"omitempty,min=1"`
	IsRequired *bool   `json:"isRequired"`
	IsActive   *bool   `json:"isActive"`
	Order      *int    `json:"order" validate:"omitempty,gte=0"`
}

type Service struct {
	db       *gorm.DB
	validate *validate.Validator
	log      *logger.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{db: db, validate: validate.New(), log: log, now: time.Now}
}

// CreateForm attaches the first form to a campaign the announcer owns.
func (s *Service) CreateForm(ctx context.Context, announcerID uint, in CreateFormInput) (*Form, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	var f Form
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := campaign.Owned(tx, announcerID, in.CampaignID); err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&Form{}).Where("campaign_id = ?", in.CampaignID).Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing form: %w", err)
		}
		if existing > 0 {
			return apperr.Conflict("campaign %d already has a form", in.CampaignID)
		}

		f = Form{
			CampaignID:     in.CampaignID,
			AnnouncerID:    announcerID,
			Title:          strings.TrimSpace(in.Title),
			Editable:       true,
			ExpirationDate: in.ExpirationDate,
		}
		if err := tx.Create(&f).Error; err != nil {
			return fmt.Errorf("create form: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Service) AddSection(ctx context.Context, announcerID, formID uint, in SectionInput) (*Section, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	var sec Section
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.mutableForm(tx, announcerID, formID); err != nil {
			return err
		}
		sec = Section{FormID: formID, Title: in.Title, Description: in.Description, Order: in.Order}
		if err := tx.Create(&sec).Error; err != nil {
			return fmt.Errorf("create section: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

// AddQuestion appends a question to a section. Conditions must point at
// another question of the same form.
func (s *Service) AddQuestion(ctx context.Context, announcerID, sectionID uint, in QuestionInput) (*Question, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	qType, err := ParseQuestionType(in.QuestionType)
	if err != nil {
		return nil, err
	}
	if qType.NeedsOptions() && len(in.Options) == 0 {
		return nil, apperr.Validation("a %s question needs at least one option", qType)
	}

	var q Question
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sec Section
		if err := tx.First(&sec, sectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("section %d not found", sectionID)
			}
			return fmt.Errorf("load section %d: %w", sectionID, err)
		}
		if _, err := s.mutableForm(tx, announcerID, sec.FormID); err != nil {
			return err
		}

		required := true
		if in.IsRequired != nil {
			required = *in.IsRequired
		}
		q = Question{
			FormID:       sec.FormID,
			SectionID:    &sec.ID,
			Text:         in.Text,
			QuestionType: qType,
			IsRequired:   required,
			Order:        in.Order,
			IsActive:     true,
		}
		for _, v := range in.Options {
			q.Options = append(q.Options, QuestionOption{Value: v})
		}
		if err := tx.Create(&q).Error; err != nil {
			return fmt.Errorf("create question: %w", err)
		}

		for _, c := range in.Conditions {
			var trigger Question
			if err := tx.Select("id", "form_id").First(&trigger, c.TriggerQuestionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Validation("trigger question %d not found", c.TriggerQuestionID)
				}
				return fmt.Errorf("load trigger question: %w", err)
			}
			if trigger.FormID != q.FormID {
				return apperr.Validation("trigger question %d belongs to another form", c.TriggerQuestionID)
			}
			value := c.TriggerValue
			rule := ConditionalLogic{QuestionID: q.ID, TriggerQuestionID: &trigger.ID, TriggerValue: &value}
			if err := tx.Create(&rule).Error; err != nil {
				return fmt.Errorf("create conditional logic: %w", err)
			}
			q.Conditions = append(q.Conditions, rule)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Service) UpdateQuestion(ctx context.Context, announcerID, questionID uint, in QuestionUpdate) (*Question, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	var q Question
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadQuestion(tx, questionID, &q); err != nil {
			return err
		}
		if _, err := s.mutableForm(tx, announcerID, q.FormID); err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if in.Text != nil {
			q.Text = *in.Text
			changes["text"] = q.Text
		}
		if in.IsRequired != nil {
			q.IsRequired = *in.IsRequired
			changes["is_required"] = q.IsRequired
		}
		if in.IsActive != nil {
			q.IsActive = *in.IsActive
			changes["is_active"] = q.IsActive
		}
		if in.Order != nil {
			q.Order = *in.Order
			changes["sort_order"] = q.Order
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&Question{}).Where("id = ?", q.ID).Updates(changes).Error; err != nil {
			return fmt.Errorf("update question %d: %w", questionID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// DeleteQuestion removes a question with its options, the conditional
// rules it owns or triggers, and every response to it.
func (s *Service) DeleteQuestion(ctx context.Context, announcerID, questionID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q Question
		if err := loadQuestion(tx, questionID, &q); err != nil {
			return err
		}
		if _, err := s.mutableForm(tx, announcerID, q.FormID); err != nil {
			return err
		}
		return deleteQuestions(tx, []uint{questionID})
	})
}

// DuplicateForm copies sections and questions into a new editable form of
// the same campaign. Options and conditional rules are not copied.
func (s *Service) DuplicateForm(ctx context.Context, announcerID, formID uint) (*Form, error) {
	var copied Form
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		src, err := ownedForm(tx, announcerID, formID)
		if err != nil {
			return err
		}
		var sections []Section
		if err := tx.Where("form_id = ?", formID).Order("sort_order, id").Find(&sections).Error; err != nil {
			return fmt.Errorf("load sections: %w", err)
		}
		var questions []Question
		if err := tx.Where("form_id = ?", formID).Order("sort_order, id").Find(&questions).Error; err != nil {
			return fmt.Errorf("load questions: %w", err)
		}

		copied = Form{
			CampaignID:     src.CampaignID,
			AnnouncerID:    src.AnnouncerID,
			Title:          src.Title + " (copy)",
			Editable:       true,
			ExpirationDate: src.ExpirationDate,
		}
		if err := tx.Create(&copied).Error; err != nil {
			return fmt.Errorf("create form copy: %w", err)
		}

		sectionIDs := make(map[uint]uint, len(sections))
		for _, sec := range sections {
			dup := Section{FormID: copied.ID, Title: sec.Title, Description: sec.Description, Order: sec.Order}
			if err := tx.Create(&dup).Error; err != nil {
				return fmt.Errorf("copy section %d: %w", sec.ID, err)
			}
			sectionIDs[sec.ID] = dup.ID
		}
		for _, q := range questions {
			dup := Question{
				FormID:       copied.ID,
				Text:         q.Text,
				QuestionType: q.QuestionType,
				IsRequired:   q.IsRequired,
				Order:        q.Order,
				IsActive:     q.IsActive,
			}
			if q.SectionID != nil {
				id := sectionIDs[*q.SectionID]
				dup.SectionID = &id
			}
			if err := tx.Create(&dup).Error; err != nil {
				return fmt.Errorf("copy question %d: %w", q.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetForm(ctx, copied.ID)
}

// GetForm loads the full tree, ordered by order then id at every level.
func (s *Service) GetForm(ctx context.Context, formID uint) (*Form, error) {
	return LoadTree(s.db.WithContext(ctx), formID)
}

func (s *Service) mutableForm(db *gorm.DB, announcerID, formID uint) (*Form, error) {
	f, err := ownedForm(db, announcerID, formID)
	if err != nil {
		return nil, err
	}
	readOnly, err := IsReadOnly(db, f, s.now())
	if err != nil {
		return nil, err
	}
	if readOnly {
		return nil, apperr.Validation("form %d is read-only", formID)
	}
	return f, nil
}
