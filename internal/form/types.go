package form

import (
	"strings"

	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
)

// QuestionType is the closed set of question kinds.
type QuestionType string

const (
	TypeText       QuestionType = "text"
	TypeRadio      QuestionType = "radio"
	TypeChecklist  QuestionType = "checklist"
	TypeRating     QuestionType = "rating"
	TypeDropdown   QuestionType = "dropdown"
	TypeFileUpload QuestionType = "file_upload"
	TypeDatePicker QuestionType = "date_picker"
)

var questionTypes = []QuestionType{
	TypeText, TypeRadio, TypeChecklist, TypeRating, TypeDropdown, TypeFileUpload, TypeDatePicker,
}

func (t QuestionType) Valid() bool {
	for _, known := range questionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// NeedsOptions reports whether answers are made of option selections.
func (t QuestionType) NeedsOptions() bool {
	return t == TypeRadio || t == TypeChecklist
}

func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", apperr.Validation("unknown question type %q", s)
	}
	return t, nil
}
