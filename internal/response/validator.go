package response

import (
	"strconv"
	"strings"

	"github.com/SlpAus/smartpanel-backend/internal/form"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
)

// Answer is one question's answer inside a submission.
type Answer struct {
	QuestionID uint   `json:"questionId" validate:"required"`
	Content    string `json:"content"`
	OptionIDs  []uint `json:"optionIds"`
}

const (
	minRating = 1
	maxRating = 5
)

type rule func(q *form.Question, a Answer) error

var rules = map[form.QuestionType]rule{
	form.TypeText:       textRule,
	form.TypeRadio:      radioRule,
	form.TypeChecklist:  checklistRule,
	form.TypeRating:     ratingRule,
	form.TypeDropdown:   presenceRule,
	form.TypeFileUpload: presenceRule,
	form.TypeDatePicker: presenceRule,
}

// Validate checks a final answer against its question's type contract.
// Every selected option must belong to the question.
func Validate(q *form.Question, a Answer) error {
	if err := checkOptions(q, a.OptionIDs); err != nil {
		return err
	}
	check, ok := rules[q.QuestionType]
	if !ok {
		return apperr.Validation("question %d has unsupported type %q", q.ID, q.QuestionType)
	}
	return check(q, a)
}

func checkOptions(q *form.Question, ids []uint) error {
	owned := make(map[uint]struct{}, len(q.Options))
	for _, o := range q.Options {
		owned[o.ID] = struct{}{}
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			return apperr.Validation("option %d does not belong to question %d", id, q.ID)
		}
		if _, dup := seen[id]; dup {
			return apperr.Validation("option %d selected twice for question %d", id, q.ID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func textRule(q *form.Question, a Answer) error {
	if strings.TrimSpace(a.Content) == "" {
		return apperr.Validation("question %d needs a text answer", q.ID)
	}
	if len(a.OptionIDs) > 0 {
		return apperr.Validation("question %d does not accept options", q.ID)
	}
	return nil
}

func radioRule(q *form.Question, a Answer) error {
	if len(a.OptionIDs) != 1 {
		return apperr.Validation("question %d needs exactly one option, got %d", q.ID, len(a.OptionIDs))
	}
	if a.Content != "" {
		return apperr.Validation("question %d does not accept free text", q.ID)
	}
	return nil
}

func checklistRule(q *form.Question, a Answer) error {
	if len(a.OptionIDs) == 0 {
		return apperr.Validation("question %d needs at least one option", q.ID)
	}
	if a.Content != "" {
		return apperr.Validation("question %d does not accept free text", q.ID)
	}
	return nil
}

func ratingRule(q *form.Question, a Answer) error {
	n, err := strconv.Atoi(strings.TrimSpace(a.Content))
	if err != nil {
		return apperr.Validation("question %d needs a whole number rating, got %q", q.ID, a.Content)
	}
	if n < minRating || n > maxRating {
		return apperr.Validation("question %d rating must be between %d and %d, got %d", q.ID, minRating, maxRating, n)
	}
	return nil
}

// presenceRule covers types whose format is not checked.
func presenceRule(q *form.Question, a Answer) error {
	if strings.TrimSpace(a.Content) == "" && len(a.OptionIDs) == 0 {
		return apperr.Validation("question %d needs an answer", q.ID)
	}
	return nil
}
