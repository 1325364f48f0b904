package ownership

import (
	"fmt"
	"time"
)

// Transaction is one completed trade. CreatedAt is both the seller's sale
// moment and the buyer's purchase moment.
type Transaction struct {
	ID           string
	BuyerTeamID  string
	SellerTeamID string
	PlayerID     string
	PlayerName   string
	Price        int64
	CreatedAt    time.Time
}

func (t Transaction) Validate() error {
	if t.PlayerID == "" {
		return fmt.Errorf("transaction player id is required")
	}
	if t.BuyerTeamID == "" {
		return fmt.Errorf("transaction buyer team id is required")
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("transaction created at is required")
	}

	return nil
}

// RosterRow is a player currently held by a team.
type RosterRow struct {
	TeamID        string
	PlayerID      string
	PlayerName    string
	IsStarter     bool
	PurchasePrice int64
	PurchasedAt   time.Time
	CreatedAt     time.Time
}

// AcquiredAt falls back to the row creation time when no purchase time was recorded.
func (r RosterRow) AcquiredAt() time.Time {
	if !r.PurchasedAt.IsZero() {
		return r.PurchasedAt
	}
	return r.CreatedAt
}

// Period is one continuous stretch a team held a player: [PurchaseDate, SaleDate).
// A nil SaleDate means the team still holds the player.
type Period struct {
	UserID       string
	TeamID       string
	PlayerID     string
	PlayerName   string
	PurchaseDate time.Time
	SaleDate     *time.Time
}

func (p Period) IsOpen() bool {
	return p.SaleDate == nil
}

// Overlaps reports whether two periods share any instant. Touching bounds
// (one sale equal to the next purchase) do not overlap.
func (p Period) Overlaps(other Period) bool {
	if p.isEmpty() || other.isEmpty() {
		return false
	}
	if p.SaleDate != nil && !p.SaleDate.After(other.PurchaseDate) {
		return false
	}
	if other.SaleDate != nil && !other.SaleDate.After(p.PurchaseDate) {
		return false
	}
	return true
}

func (p Period) isEmpty() bool {
	return p.SaleDate != nil && !p.SaleDate.After(p.PurchaseDate)
}

func (p *Period) close(at time.Time) {
	sale := at
	p.SaleDate = &sale
}
