package model

import (
	"time"

	"gorm.io/datatypes"
)

// Player is the ranking entity. It is referenced by id from the game
// aggregate's player states, never embedded by value.
type Player struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:64;not null"`
	Score       int64  `gorm:"default:0"`
	TotalWins   int    `gorm:"default:0"`
	TotalLosses int    `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Game is the persisted form of one blackjack game aggregate. The aggregate
// is replaced as a whole on every mutation; there are no partial updates.
type Game struct {
	ID          string         `gorm:"primaryKey;size:36"`
	State       string         `gorm:"default:ONGOING;not null"` // ONGOING/FINISHED
	PlayersJSON datatypes.JSON `gorm:"type:jsonb"`
	DeckJSON    datatypes.JSON `gorm:"type:jsonb"`
	DealerJSON  datatypes.JSON `gorm:"type:jsonb"`
	ResultsJSON datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
