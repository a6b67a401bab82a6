package response

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/form"
	"github.com/SlpAus/smartpanel-backend/internal/notification"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/platform/validate"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"gorm.io/gorm"
)

type ScoreAwarder interface {
	Award(ctx context.Context, panelistID uint, action scoring.Action) (int, error)
}

// AccountResolver addresses notifications to the panelist's account.
type AccountResolver interface {
	AccountForPanelist(ctx context.Context, panelistID uint) (uint, error)
}

// Submission is a batch of answers to one form. Drafts skip validation.
type Submission struct {
	FormID  uint     `json:"-"`
	Draft   bool     `json:"draft"`
	Answers []Answer `json:"answers" validate:"required,min=1,dive"`
}

type Result struct {
	FormID    uint                    `json:"formId"`
	Draft     bool                    `json:"draft"`
	Responses []form.PanelistResponse `json:"responses"`
	Score     *int                    `json:"score,omitempty"`
}

type Service struct {
	db       *gorm.DB
	scores   ScoreAwarder
	accounts AccountResolver
	notify   notification.Publisher
	validate *validate.Validator
	log      *logger.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, scores ScoreAwarder, accounts AccountResolver, notify notification.Publisher, log *logger.Logger) *Service {
	if notify == nil {
		notify = notification.Discard
	}
	return &Service{
		db:       db,
		scores:   scores,
		accounts: accounts,
		notify:   notify,
		validate: validate.New(),
		log:      log,
		now:      time.Now,
	}
}

// Submit stores a batch of answers in one transaction. A final batch is
// checked in full before anything is written: conditional visibility is
// evaluated against earlier final answers overlaid with this batch.
func (s *Service) Submit(ctx context.Context, panelistID uint, sub Submission) (*Result, error) {
	if err := s.validate.Struct(sub); err != nil {
		return nil, err
	}

	result := &Result{FormID: sub.FormID, Draft: sub.Draft}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions, err := s.loadQuestions(tx, sub)
		if err != nil {
			return err
		}
		if !sub.Draft {
			if err := s.checkFinal(tx, panelistID, sub, questions); err != nil {
				return err
			}
		}
		for _, a := range sub.Answers {
			row, err := persist(tx, panelistID, sub.FormID, sub.Draft, a)
			if err != nil {
				return err
			}
			result.Responses = append(result.Responses, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !sub.Draft {
		s.afterFinal(ctx, panelistID, sub, result)
	}
	return result, nil
}

// loadQuestions returns the answered questions keyed by id, rejecting
// foreign, inactive and repeated ones.
func (s *Service) loadQuestions(tx *gorm.DB, sub Submission) (map[uint]*form.Question, error) {
	var f form.Form
	if err := tx.First(&f, sub.FormID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("form %d not found", sub.FormID)
		}
		return nil, fmt.Errorf("load form %d: %w", sub.FormID, err)
	}
	if f.Expired(s.now()) {
		return nil, apperr.Validation("form %d has expired", f.ID)
	}

	ids := make([]uint, 0, len(sub.Answers))
	seen := make(map[uint]struct{}, len(sub.Answers))
	for _, a := range sub.Answers {
		if _, dup := seen[a.QuestionID]; dup {
			return nil, apperr.Validation("question %d answered twice", a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
		ids = append(ids, a.QuestionID)
	}

	var rows []form.Question
	err := tx.Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Conditions").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[uint]*form.Question, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	for _, id := range ids {
		q, ok := byID[id]
		if !ok || q.FormID != sub.FormID {
			return nil, apperr.Validation("question %d is not part of form %d", id, sub.FormID)
		}
		if !q.IsActive {
			return nil, apperr.Validation("question %d is no longer active", id)
		}
	}
	return byID, nil
}

func (s *Service) checkFinal(tx *gorm.DB, panelistID uint, sub Submission, questions map[uint]*form.Question) error {
	answers, err := form.FinalAnswers(tx, panelistID, sub.FormID)
	if err != nil {
		return err
	}
	for _, a := range sub.Answers {
		answers[a.QuestionID] = values(questions[a.QuestionID], a)
	}
	for _, a := range sub.Answers {
		q := questions[a.QuestionID]
		if !form.Visible(q, answers) {
			return apperr.Validation("question %d is hidden by its conditional rule", q.ID)
		}
		if err := Validate(q, a); err != nil {
			return err
		}
	}
	return nil
}

// values renders an answer the way conditional rules compare it.
func values(q *form.Question, a Answer) []string {
	if a.Content != "" {
		return []string{a.Content}
	}
	labels := make(map[uint]string, len(q.Options))
	for _, o := range q.Options {
		labels[o.ID] = o.Value
	}
	out := make([]string, 0, len(a.OptionIDs))
	for _, id := range a.OptionIDs {
		out = append(out, labels[id])
	}
	return out
}

// persist keeps one draft row per question and appends a row per final
// answer. A final answer replaces the draft.
func persist(tx *gorm.DB, panelistID, formID uint, draft bool, a Answer) (*form.PanelistResponse, error) {
	var existing form.PanelistResponse
	err := tx.Where("panelist_id = ? AND form_id = ? AND question_id = ? AND is_draft = ?", panelistID, formID, a.QuestionID, true).
		Take(&existing).Error
	hasDraft := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load draft for question %d: %w", a.QuestionID, err)
	}

	if hasDraft {
		if err := tx.Where("response_id = ?", existing.ID).Delete(&form.ResponseSelection{}).Error; err != nil {
			return nil, fmt.Errorf("clear draft selections: %w", err)
		}
	}

	if draft && hasDraft {
		existing.Content = a.Content
		if err := tx.Model(&existing).Update("content", a.Content).Error; err != nil {
			return nil, fmt.Errorf("update draft for question %d: %w", a.QuestionID, err)
		}
		existing.Selections = selections(existing.ID, a.OptionIDs)
		if len(existing.Selections) > 0 {
			if err := tx.Create(&existing.Selections).Error; err != nil {
				return nil, fmt.Errorf("save draft selections: %w", err)
			}
		}
		return &existing, nil
	}

	if hasDraft {
		if err := tx.Delete(&existing).Error; err != nil {
			return nil, fmt.Errorf("drop draft for question %d: %w", a.QuestionID, err)
		}
	}
	row := form.PanelistResponse{
		PanelistID: panelistID,
		FormID:     formID,
		QuestionID: a.QuestionID,
		Content:    a.Content,
		IsDraft:    draft,
		Selections: selections(0, a.OptionIDs),
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("save answer to question %d: %w", a.QuestionID, err)
	}
	return &row, nil
}

func selections(responseID uint, optionIDs []uint) []form.ResponseSelection {
	out := make([]form.ResponseSelection, 0, len(optionIDs))
	for _, id := range optionIDs {
		out = append(out, form.ResponseSelection{ResponseID: responseID, OptionID: id})
	}
	return out
}

// afterFinal runs once the batch is committed; failures are only logged.
func (s *Service) afterFinal(ctx context.Context, panelistID uint, sub Submission, result *Result) {
	if s.scores != nil {
		score, err := s.scores.Award(ctx, panelistID, scoring.ActionSubmitResponse)
		if err != nil {
			s.log.Error("award for response submission failed", "panelist_id", panelistID, "form_id", sub.FormID, "error", err)
		} else {
			result.Score = &score
		}
	}
	if s.accounts == nil {
		return
	}
	accountID, err := s.accounts.AccountForPanelist(ctx, panelistID)
	if err != nil {
		s.log.Warn("cannot address response notification", "panelist_id", panelistID, "error", err)
		return
	}
	s.notify.Publish(notification.NewEvent(notification.KindResponseSubmitted, accountID, map[string]interface{}{
		"panelistId": panelistID,
		"formId":     sub.FormID,
		"answers":    len(sub.Answers),
	}))
}
