package scoring

// Rank is derived from the cumulative score and never stored independently of it.
type Rank string

const (
	RankBeginner Rank = "Beginner"
	RankBronze   Rank = "Bronze"
	RankSilver   Rank = "Silver"
	RankGold     Rank = "Gold"
	RankPlatinum Rank = "Platinum"
	RankElite    Rank = "Elite"
)

// highest first
var rankThresholds = []struct {
	rank     Rank
	minScore int
}{
	{RankElite, 1000},
	{RankPlatinum, 500},
	{RankGold, 200},
	{RankSilver, 100},
	{RankBronze, 50},
	{RankBeginner, 0},
}

// RankFor returns the highest rank whose threshold does not exceed score.
func RankFor(score int) Rank {
	for _, t := range rankThresholds {
		if score >= t.minScore {
			return t.rank
		}
	}
	return RankBeginner
}
