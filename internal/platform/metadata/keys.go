package metadata

// Keys of the metadata table.
const (
	// LastReminderRunDateKey holds the local date (YYYY-MM-DD) of the last
	// completed campaign reminder pass.
	LastReminderRunDateKey = "last_reminder_run_date"

	// LeaderboardWarmedAtKey holds the RFC3339 time of the last full
	// leaderboard cache rebuild.
	LeaderboardWarmedAtKey = "leaderboard_warmed_at"
)
