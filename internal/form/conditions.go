package form

import (
	"fmt"

	"gorm.io/gorm"
)

// Answers maps a question id to the values of its answer: the text content,
// or the values of the selected options.
type Answers map[uint][]string

// Visible reports whether q is shown under answers. Every rule with a
// trigger must match; comparison is exact and case-sensitive. A rule
// matches a multi-valued answer when any value equals the trigger value.
func Visible(q *Question, answers Answers) bool {
	for _, rule := range q.Conditions {
		if rule.TriggerQuestionID == nil {
			continue
		}
		want := ""
		if rule.TriggerValue != nil {
			want = *rule.TriggerValue
		}
		if !containsValue(answers[*rule.TriggerQuestionID], want) {
			return false
		}
	}
	return true
}

func containsValue(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// FinalAnswers returns the latest non-draft answer of a panelist for each
// question of a form.
func FinalAnswers(db *gorm.DB, panelistID, formID uint) (Answers, error) {
	var rows []PanelistResponse
	err := db.Preload("Selections", byID).
		Where("panelist_id = ? AND form_id = ? AND is_draft = ?", panelistID, formID, false).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load final answers: %w", err)
	}

	latest := make(map[uint]*PanelistResponse, len(rows))
	var optionIDs []uint
	for i := range rows {
		r := &rows[i]
		if _, seen := latest[r.QuestionID]; seen {
			continue
		}
		latest[r.QuestionID] = r
		for _, sel := range r.Selections {
			optionIDs = append(optionIDs, sel.OptionID)
		}
	}

	values, err := OptionValues(db, optionIDs)
	if err != nil {
		return nil, err
	}

	answers := make(Answers, len(latest))
	for qid, r := range latest {
		if r.Content != "" {
			answers[qid] = []string{r.Content}
			continue
		}
		for _, sel := range r.Selections {
			answers[qid] = append(answers[qid], values[sel.OptionID])
		}
	}
	return answers, nil
}

// OptionValues maps option ids to their values.
func OptionValues(db *gorm.DB, ids []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var opts []QuestionOption
	if err := db.Where("id IN ?", ids).Find(&opts).Error; err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	for _, o := range opts {
		out[o.ID] = o.Value
	}
	return out, nil
}
