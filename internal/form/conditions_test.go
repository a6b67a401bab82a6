package form

import "testing"

func rule(trigger uint, value string) ConditionalLogic {
	return ConditionalLogic{TriggerQuestionID: &trigger, TriggerValue: &value}
}

func TestVisible(t *testing.T) {
	cases := []struct {
		name    string
		rules   []ConditionalLogic
		answers Answers
		want    bool
	}{
		{"no rule", nil, nil, true},
		{"match", []ConditionalLogic{rule(1, "Yes")}, Answers{1: {"Yes"}}, true},
		{"case sensitive", []ConditionalLogic{rule(1, "Yes")}, Answers{1: {"yes"}}, false},
		{"unanswered trigger", []ConditionalLogic{rule(1, "Yes")}, Answers{}, false},
		{"any selected value", []ConditionalLogic{rule(1, "blue")}, Answers{1: {"red", "blue"}}, true},
		{"all rules must hold", []ConditionalLogic{rule(1, "Yes"), rule(2, "5")}, Answers{1: {"Yes"}, 2: {"4"}}, false},
		{"both rules hold", []ConditionalLogic{rule(1, "Yes"), rule(2, "5")}, Answers{1: {"Yes"}, 2: {"5"}}, true},
		{"inert rule", []ConditionalLogic{{}}, Answers{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &Question{Conditions: tc.rules}
			if got := Visible(q, tc.answers); got != tc.want {
				t.Fatalf("Visible = %v, want %v", got, tc.want)
			}
		})
	}
}
