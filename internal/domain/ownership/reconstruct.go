package ownership

import (
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
)

type IssueKind string

const (
	IssueUnknownSellerTeam IssueKind = "unknown_seller_team"
	IssueUnknownBuyerTeam  IssueKind = "unknown_buyer_team"
	IssueUnknownRosterTeam IssueKind = "unknown_roster_team"
	IssueForcedClose       IssueKind = "forced_close"
	IssueClampedStart      IssueKind = "clamped_start"
)

// Skips reports whether the issue dropped a period from the output.
func (k IssueKind) Skips() bool {
	switch k {
	case IssueUnknownSellerTeam, IssueUnknownBuyerTeam, IssueUnknownRosterTeam:
		return true
	default:
		return false
	}
}

// Issue is a data inconsistency met while rebuilding periods. None of them
// abort reconstruction.
type Issue struct {
	Kind     IssueKind
	PlayerID string
	TeamID   string
	At       time.Time
}

// Owners maps team id to owning user id.
type Owners map[string]string

func OwnersFromTeams(teams []team.Team) Owners {
	out := make(Owners, len(teams))
	for _, item := range teams {
		out[item.ID] = item.OwnerUserID
	}
	return out
}

// Reconstruction is the outcome of Reconstruct.
type Reconstruction struct {
	// Periods is sorted by player, purchase date then team.
	Periods []Period
	Issues  []Issue
	// UntrackedSales counts sales whose seller had no open period, typically
	// an initial pick that never went through the trade log.
	UntrackedSales int
	// UnclaimedOpen counts trade-log holdings missing from the roster snapshot.
	UnclaimedOpen int
}

func (r Reconstruction) SkippedPeriods() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Kind.Skips() {
			count++
		}
	}
	return count
}

type workingPeriod struct {
	period  Period
	claimed bool
}

type reconstructor struct {
	owners    Owners
	byPlayer  map[string][]*workingPeriod
	lastTrade map[string]time.Time
	order     []string
	result    Reconstruction
}

// Reconstruct rebuilds every ownership period from the trade log and the
// current roster snapshot. Transactions are replayed in CreatedAt order
// regardless of input order. A player never has two overlapping periods in the
// output.
func Reconstruct(transactions []Transaction, roster []RosterRow, owners Owners) Reconstruction {
	r := &reconstructor{
		owners:    owners,
		byPlayer:  make(map[string][]*workingPeriod),
		lastTrade: make(map[string]time.Time),
	}

	trades := append([]Transaction(nil), transactions...)
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].CreatedAt.Before(trades[j].CreatedAt)
	})
	for _, tx := range trades {
		r.applyTrade(tx)
	}

	rows := append([]RosterRow(nil), roster...)
	sort.SliceStable(rows, func(i, j int) bool {
		ai, aj := rows[i].AcquiredAt(), rows[j].AcquiredAt()
		if !ai.Equal(aj) {
			return ai.Before(aj)
		}
		return rows[i].TeamID < rows[j].TeamID
	})
	for _, row := range rows {
		r.applyRosterRow(row)
	}

	r.resolveRosterConflicts()
	r.emit()
	return r.result
}

func (r *reconstructor) track(playerID string) []*workingPeriod {
	periods, ok := r.byPlayer[playerID]
	if !ok {
		r.order = append(r.order, playerID)
	}
	return periods
}

func (r *reconstructor) applyTrade(tx Transaction) {
	periods := r.track(tx.PlayerID)

	if tx.SellerTeamID != "" {
		if _, ok := r.owners[tx.SellerTeamID]; !ok {
			r.issue(IssueUnknownSellerTeam, tx.PlayerID, tx.SellerTeamID, tx.CreatedAt)
		} else if open := latestOpen(periods, tx.SellerTeamID); open != nil {
			open.period.close(tx.CreatedAt)
		} else {
			r.result.UntrackedSales++
		}
	}

	// Whoever still holds the player per the log lost it at this trade.
	for _, wp := range periods {
		if wp.period.IsOpen() {
			wp.period.close(tx.CreatedAt)
			r.issue(IssueForcedClose, tx.PlayerID, wp.period.TeamID, tx.CreatedAt)
		}
	}
	r.lastTrade[tx.PlayerID] = tx.CreatedAt

	userID, ok := r.owners[tx.BuyerTeamID]
	if !ok {
		r.issue(IssueUnknownBuyerTeam, tx.PlayerID, tx.BuyerTeamID, tx.CreatedAt)
		r.byPlayer[tx.PlayerID] = periods
		return
	}

	r.byPlayer[tx.PlayerID] = append(periods, &workingPeriod{period: Period{
		UserID:       userID,
		TeamID:       tx.BuyerTeamID,
		PlayerID:     tx.PlayerID,
		PlayerName:   tx.PlayerName,
		PurchaseDate: tx.CreatedAt,
	}})
}

func (r *reconstructor) applyRosterRow(row RosterRow) {
	userID, ok := r.owners[row.TeamID]
	if !ok {
		r.issue(IssueUnknownRosterTeam, row.PlayerID, row.TeamID, row.AcquiredAt())
		return
	}

	periods := r.track(row.PlayerID)
	if open := latestOpen(periods, row.TeamID); open != nil && !open.claimed {
		open.claimed = true
		if open.period.PlayerName == "" {
			open.period.PlayerName = row.PlayerName
		}
		return
	}

	start := row.AcquiredAt()
	if last, ok := r.lastTrade[row.PlayerID]; ok && start.Before(last) {
		start = last
		r.issue(IssueClampedStart, row.PlayerID, row.TeamID, start)
	}

	r.byPlayer[row.PlayerID] = append(periods, &workingPeriod{
		claimed: true,
		period: Period{
			UserID:       userID,
			TeamID:       row.TeamID,
			PlayerID:     row.PlayerID,
			PlayerName:   row.PlayerName,
			PurchaseDate: start,
		},
	})
}

// resolveRosterConflicts chains multiple current holders of one player so the
// earlier holder's period ends where the next one starts.
func (r *reconstructor) resolveRosterConflicts() {
	for _, playerID := range r.order {
		var holders []*workingPeriod
		for _, wp := range r.byPlayer[playerID] {
			if wp.claimed && wp.period.IsOpen() {
				holders = append(holders, wp)
			}
		}
		if len(holders) < 2 {
			continue
		}

		sort.SliceStable(holders, func(i, j int) bool {
			if !holders[i].period.PurchaseDate.Equal(holders[j].period.PurchaseDate) {
				return holders[i].period.PurchaseDate.Before(holders[j].period.PurchaseDate)
			}
			return holders[i].period.TeamID < holders[j].period.TeamID
		})
		for i := 0; i < len(holders)-1; i++ {
			at := holders[i+1].period.PurchaseDate
			holders[i].period.close(at)
			r.issue(IssueForcedClose, playerID, holders[i].period.TeamID, at)
		}
	}
}

func (r *reconstructor) emit() {
	out := make([]Period, 0)
	for _, playerID := range r.order {
		for _, wp := range r.byPlayer[playerID] {
			switch {
			case !wp.period.IsOpen():
				out = append(out, wp.period)
			case wp.claimed:
				out = append(out, wp.period)
			default:
				r.result.UnclaimedOpen++
			}
		}
	}

	SortPeriods(out)
	r.result.Periods = out
}

func (r *reconstructor) issue(kind IssueKind, playerID, teamID string, at time.Time) {
	r.result.Issues = append(r.result.Issues, Issue{
		Kind:     kind,
		PlayerID: playerID,
		TeamID:   teamID,
		At:       at,
	})
}

func latestOpen(periods []*workingPeriod, teamID string) *workingPeriod {
	for i := len(periods) - 1; i >= 0; i-- {
		wp := periods[i]
		if wp.period.TeamID == teamID && wp.period.IsOpen() {
			return wp
		}
	}
	return nil
}

// SortPeriods orders periods by player, purchase date, then team.
func SortPeriods(periods []Period) {
	sort.SliceStable(periods, func(i, j int) bool {
		a, b := periods[i], periods[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		if !a.PurchaseDate.Equal(b.PurchaseDate) {
			return a.PurchaseDate.Before(b.PurchaseDate)
		}
		return a.TeamID < b.TeamID
	})
}
