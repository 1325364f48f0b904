package postgres

import "time"

type rankingCacheTableModel struct {
	UserID          string    `db:"user_id"`
	TeamPublicID    string    `db:"team_public_id"`
	TeamName        string    `db:"team_name"`
	TotalPoints     float64   `db:"total_points"`
	WeeklyBreakdown string    `db:"weekly_breakdown"`
	CalculatedAt    time.Time `db:"calculated_at"`
	RunID           string    `db:"run_id"`
	Diagnostics     string    `db:"diagnostics"`
}

// rankingDiagnosticsModel is the JSON shape of the diagnostics column.
type rankingDiagnosticsModel struct {
	SkippedPeriods       int      `json:"skippedPeriods"`
	UntrackedSales       int      `json:"untrackedSales"`
	UnclaimedOpenPeriods int      `json:"unclaimedOpenPeriods"`
	FailedPlayers        []string `json:"failedPlayers,omitempty"`
	InvalidDates         int      `json:"invalidDates"`
	OwnershipUnavailable bool     `json:"ownershipUnavailable"`
}
