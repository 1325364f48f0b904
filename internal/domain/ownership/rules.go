package ownership

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
)

var (
	ErrInvalidRosterSize   = errors.New("invalid roster size")
	ErrInvalidStarterCount = errors.New("invalid starter count")
	ErrExceededBudget      = errors.New("budget exceeded")
	ErrDuplicatePlayer     = errors.New("duplicate player in roster")
	ErrResaleCooldown      = errors.New("player is still in resale cooldown")
	ErrUnknownTeam         = errors.New("roster row references an unknown team")
)

// Rules stores roster validation parameters enforced by the trading side.
// Ranking only reads data; ValidateDataset guards seeds before they load.
type Rules struct {
	RosterSize     int
	Starters       int
	ResaleCooldown time.Duration
}

func DefaultRules() Rules {
	return Rules{
		RosterSize:     9,
		Starters:       5,
		ResaleCooldown: 7 * 24 * time.Hour,
	}
}

// ValidateRoster checks one team's complete roster against its budget.
func ValidateRoster(rows []RosterRow, budget int64, rules Rules) error {
	if len(rows) != rules.RosterSize {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidRosterSize, rules.RosterSize, len(rows))
	}

	playerSet := make(map[string]struct{}, len(rows))
	starters := 0
	var spent int64
	for _, row := range rows {
		if row.PlayerID == "" {
			return fmt.Errorf("player id is required")
		}
		if _, exists := playerSet[row.PlayerID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, row.PlayerID)
		}
		playerSet[row.PlayerID] = struct{}{}

		if row.IsStarter {
			starters++
		}
		spent += row.PurchasePrice
	}

	if starters != rules.Starters {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidStarterCount, rules.Starters, starters)
	}
	if spent > budget {
		return fmt.Errorf("%w: budget=%d spent=%d", ErrExceededBudget, budget, spent)
	}

	return nil
}

// CheckResale rejects a sale made before the cooldown since purchase elapsed.
func CheckResale(purchasedAt, soldAt time.Time, rules Rules) error {
	if soldAt.Sub(purchasedAt) < rules.ResaleCooldown {
		return fmt.Errorf("%w: purchased=%s sold=%s", ErrResaleCooldown, purchasedAt.Format(time.RFC3339), soldAt.Format(time.RFC3339))
	}
	return nil
}

// ValidateTradeLog replays the log and checks every resale respects the
// cooldown against the seller's own purchase in the log. Sales of players the
// log never saw bought are not checked.
func ValidateTradeLog(transactions []Transaction, rules Rules) error {
	bought := make(map[string]time.Time)
	for _, tx := range transactions {
		if err := tx.Validate(); err != nil {
			return err
		}
		if tx.SellerTeamID != "" {
			if purchasedAt, ok := bought[tx.SellerTeamID+"/"+tx.PlayerID]; ok {
				if err := CheckResale(purchasedAt, tx.CreatedAt, rules); err != nil {
					return fmt.Errorf("transaction %s: %w", tx.ID, err)
				}
			}
		}
		bought[tx.BuyerTeamID+"/"+tx.PlayerID] = tx.CreatedAt
	}
	return nil
}

// ValidateDataset checks every team, each team's roster against its budget,
// and the trade log. Roster rows of teams not in the list are rejected.
func ValidateDataset(teams []team.Team, roster []RosterRow, transactions []Transaction, rules Rules) error {
	byTeam := make(map[string][]RosterRow, len(teams))
	for _, row := range roster {
		byTeam[row.TeamID] = append(byTeam[row.TeamID], row)
	}

	for _, item := range teams {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("team %s: %w", item.ID, err)
		}
		if err := ValidateRoster(byTeam[item.ID], item.Budget, rules); err != nil {
			return fmt.Errorf("team %s roster: %w", item.ID, err)
		}
		delete(byTeam, item.ID)
	}
	for teamID := range byTeam {
		return fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}

	if err := ValidateTradeLog(transactions, rules); err != nil {
		return fmt.Errorf("trade log: %w", err)
	}
	return nil
}
