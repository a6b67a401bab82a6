package form

import (
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"gorm.io/gorm"
)

// deleteQuestions removes the questions selected by ids (a subquery or a
// slice) and everything hanging off them.
func deleteQuestions(tx *gorm.DB, ids interface{}) error {
	responses := tx.Model(&PanelistResponse{}).Select("id").Where("question_id IN (?)", ids)
	options := tx.Model(&QuestionOption{}).Select("id").Where("question_id IN (?)", ids)

	steps := []struct {
		what string
		run  func() error
	}{
		{"response selections", func() error {
			return tx.Where("response_id IN (?) OR option_id IN (?)", responses, options).Delete(&ResponseSelection{}).Error
		}},
		{"responses", func() error {
			return tx.Where("question_id IN (?)", ids).Delete(&PanelistResponse{}).Error
		}},
		{"conditional logic", func() error {
			return tx.Where("question_id IN (?) OR trigger_question_id IN (?)", ids, ids).Delete(&ConditionalLogic{}).Error
		}},
		{"options", func() error {
			return tx.Where("question_id IN (?)", ids).Delete(&QuestionOption{}).Error
		}},
		{"questions", func() error {
			return tx.Where("id IN (?)", ids).Delete(&Question{}).Error
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("delete %s: %w", step.what, err)
		}
	}
	return nil
}

// DeleteFormsTx removes the given forms and their whole tree.
func DeleteFormsTx(tx *gorm.DB, formIDs []uint) error {
	if len(formIDs) == 0 {
		return nil
	}
	var questionIDs []uint
	if err := tx.Model(&Question{}).Where("form_id IN ?", formIDs).Pluck("id", &questionIDs).Error; err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	if len(questionIDs) > 0 {
		if err := deleteQuestions(tx, questionIDs); err != nil {
			return err
		}
	}
	if err := tx.Where("form_id IN ?", formIDs).Delete(&Section{}).Error; err != nil {
		return fmt.Errorf("delete sections: %w", err)
	}
	if err := tx.Where("id IN ?", formIDs).Delete(&Form{}).Error; err != nil {
		return fmt.Errorf("delete forms: %w", err)
	}
	return nil
}

// DeleteResponsesOfPanelistTx removes every answer a panelist gave.
func DeleteResponsesOfPanelistTx(tx *gorm.DB, panelistID uint) error {
	responses := tx.Model(&PanelistResponse{}).Select("id").Where("panelist_id = ?", panelistID)
	if err := tx.Where("response_id IN (?)", responses).Delete(&ResponseSelection{}).Error; err != nil {
		return fmt.Errorf("delete response selections: %w", err)
	}
	if err := tx.Where("panelist_id = ?", panelistID).Delete(&PanelistResponse{}).Error; err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	return nil
}

func byOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order, id")
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// LoadTree loads a form with sections, questions, options and rules.
// Questions outside any section are listed on the form itself.
func LoadTree(db *gorm.DB, formID uint) (*Form, error) {
	var f Form
	err := db.
		Preload("Sections", byOrder).
		Preload("Sections.Questions", byOrder).
		Preload("Sections.Questions.Options", byID).
		Preload("Sections.Questions.Conditions", byID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("section_id IS NULL").Order("sort_order, id")
		}).
		Preload("Questions.Options", byID).
		Preload("Questions.Conditions", byID).
		First(&f, formID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("form %d not found", formID)
		}
		return nil, fmt.Errorf("load form %d: %w", formID, err)
	}
	return &f, nil
}

// IsReadOnly is true when the form is locked, expired, or already has a
// final response.
func IsReadOnly(db *gorm.DB, f *Form, now time.Time) (bool, error) {
	if !f.Editable || f.Expired(now) {
		return true, nil
	}
	var finals int64
	err := db.Model(&PanelistResponse{}).
		Where("form_id = ? AND is_draft = ?", f.ID, false).
		Count(&finals).Error
	if err != nil {
		return false, fmt.Errorf("count final responses: %w", err)
	}
	return finals > 0, nil
}

func ownedForm(db *gorm.DB, announcerID, formID uint) (*Form, error) {
	var f Form
	if err := db.First(&f, formID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("form %d not found", formID)
		}
		return nil, fmt.Errorf("load form %d: %w", formID, err)
	}
	if f.AnnouncerID != announcerID {
		return nil, apperr.NotFound("form %d not found", formID)
	}
	return &f, nil
}

func loadQuestion(db *gorm.DB, id uint, q *Question) error {
	if err := db.First(q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("question %d not found", id)
		}
		return fmt.Errorf("load question %d: %w", id, err)
	}
	return nil
}
