package response

import (
	"testing"

	"github.com/SlpAus/smartpanel-backend/internal/form"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
)

func question(qType form.QuestionType, optionIDs ...uint) *form.Question {
	q := &form.Question{ID: 1, QuestionType: qType}
	for _, id := range optionIDs {
		q.Options = append(q.Options, form.QuestionOption{ID: id, QuestionID: 1, Value: "v"})
	}
	return q
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		q    *form.Question
		a    Answer
		ok   bool
	}{
		{"text ok", question(form.TypeText), Answer{Content: "tasty"}, true},
		{"text empty", question(form.TypeText), Answer{Content: "   "}, false},
		{"text with option", question(form.TypeText, 7), Answer{Content: "x", OptionIDs: []uint{7}}, false},

		{"radio one", question(form.TypeRadio, 7, 8), Answer{OptionIDs: []uint{7}}, true},
		{"radio two", question(form.TypeRadio, 7, 8), Answer{OptionIDs: []uint{7, 8}}, false},
		{"radio none", question(form.TypeRadio, 7, 8), Answer{}, false},
		{"radio with content", question(form.TypeRadio, 7, 8), Answer{Content: "x", OptionIDs: []uint{7}}, false},
		{"radio foreign option", question(form.TypeRadio, 7, 8), Answer{OptionIDs: []uint{99}}, false},

		{"checklist many", question(form.TypeChecklist, 7, 8), Answer{OptionIDs: []uint{7, 8}}, true},
		{"checklist none", question(form.TypeChecklist, 7, 8), Answer{}, false},
		{"checklist repeated", question(form.TypeChecklist, 7, 8), Answer{OptionIDs: []uint{7, 7}}, false},
		{"checklist with content", question(form.TypeChecklist, 7), Answer{Content: "x", OptionIDs: []uint{7}}, false},

		{"rating 3", question(form.TypeRating), Answer{Content: "3"}, true},
		{"rating padded", question(form.TypeRating), Answer{Content: " 5 "}, true},
		{"rating 6", question(form.TypeRating), Answer{Content: "6"}, false},
		{"rating 0", question(form.TypeRating), Answer{Content: "0"}, false},
		{"rating word", question(form.TypeRating), Answer{Content: "five"}, false},
		{"rating decimal", question(form.TypeRating), Answer{Content: "2.5"}, false},

		{"dropdown present", question(form.TypeDropdown), Answer{Content: "anything"}, true},
		{"date picker free form", question(form.TypeDatePicker), Answer{Content: "next tuesday"}, true},
		{"file upload missing", question(form.TypeFileUpload), Answer{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.q, tc.a)
			if tc.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tc.ok && !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("Validate() = %v, want validation error", err)
			}
		})
	}
}
