package postgres

import (
	"database/sql"
	"time"
)

type rosterTableModel struct {
	ID            int64        `db:"id"`
	TeamPublicID  string       `db:"team_public_id"`
	PlayerID      string       `db:"player_id"`
	PlayerName    string       `db:"player_name"`
	IsStarter     bool         `db:"is_starter"`
	PurchasePrice int64        `db:"purchase_price"`
	PurchasedAt   sql.NullTime `db:"purchased_at"`
	CreatedAt     time.Time    `db:"created_at"`
}

type rosterInsertModel struct {
	TeamPublicID  string       `db:"team_public_id"`
	PlayerID      string       `db:"player_id"`
	PlayerName    string       `db:"player_name"`
	IsStarter     bool         `db:"is_starter"`
	PurchasePrice int64        `db:"purchase_price"`
	PurchasedAt   sql.NullTime `db:"purchased_at"`
}

type transactionTableModel struct {
	ID                 int64          `db:"id"`
	PublicID           string         `db:"public_id"`
	BuyerTeamPublicID  string         `db:"buyer_team_public_id"`
	SellerTeamPublicID sql.NullString `db:"seller_team_public_id"`
	PlayerID           string         `db:"player_id"`
	PlayerName         string         `db:"player_name"`
	Price              int64          `db:"price"`
	CreatedAt          time.Time      `db:"created_at"`
}

type transactionInsertModel struct {
	PublicID           string         `db:"public_id"`
	BuyerTeamPublicID  string         `db:"buyer_team_public_id"`
	SellerTeamPublicID sql.NullString `db:"seller_team_public_id"`
	PlayerID           string         `db:"player_id"`
	PlayerName         string         `db:"player_name"`
	Price              int64          `db:"price"`
	CreatedAt          time.Time      `db:"created_at"`
}
