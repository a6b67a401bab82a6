package scoring

import "testing"

func TestRankFor(t *testing.T) {
	cases := []struct {
		score int
		want  Rank
	}{
		{0, RankBeginner},
		{49, RankBeginner},
		{50, RankBronze},
		{99, RankBronze},
		{100, RankSilver},
		{200, RankGold},
		{499, RankGold},
		{500, RankPlatinum},
		{999, RankPlatinum},
		{1000, RankElite},
		{25000, RankElite},
	}
	for _, tc := range cases {
		if got := RankFor(tc.score); got != tc.want {
			t.Errorf("RankFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestActionCatalog(t *testing.T) {
	want := map[Action]int{
		ActionRegister:            10,
		ActionCompleteProfile:     5,
		ActionApplyCampaign:       5,
		ActionSelectedForCampaign: 10,
		ActionSubmitResponse:      20,
		ActionHighQualityReview:   30,
		ActionFrequentFeedback:    10,
		ActionReferFriend:         50,
	}
	for action, points := range want {
		got, ok := action.Points()
		if !ok || got != points {
			t.Errorf("%s: got (%d, %v), want %d", action, got, ok, points)
		}
	}
	if _, ok := Action("like_post").Points(); ok {
		t.Error("unknown action reported as known")
	}
}
