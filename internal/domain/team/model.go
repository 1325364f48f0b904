package team

import "fmt"

// Team is a user's fantasy roster container. Every team is ranked, even one
// that never owned a player.
type Team struct {
	ID          string
	OwnerUserID string
	Name        string
	Budget      int64
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.OwnerUserID == "" {
		return fmt.Errorf("team owner user id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Budget < 0 {
		return fmt.Errorf("team budget must not be negative")
	}

	return nil
}
