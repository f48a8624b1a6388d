// Package models defines the persisted records of the arcade platform. Every
// scoped model either owns a location_id column directly or reaches one
// through exactly one foreign relation; the mapping lives in Ownership.
package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/manglesh1/Pixelpulse-sub002/internal/tenant"
)

// Location is the tenant: one physical arcade/escape-room site.
type Location struct {
	gorm.Model
	Name    string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Address string `gorm:"size:256" json:"address"`
	City    string `gorm:"size:64" json:"city"`
}

// Game is a physical game room/attraction at one location.
type Game struct {
	gorm.Model
	Name        string `gorm:"size:128;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	LocationID  uint   `gorm:"index;not null" json:"LocationID"`
	IPAddress   string `gorm:"size:64" json:"ipAddress"`
	LocalPort   int    `json:"localPort"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

// GamesVariant is a playable configuration of a game (difficulty, duration,
// scoring mode). It has no location of its own; ownership resolves through
// its game.
type GamesVariant struct {
	gorm.Model
	Name            string `gorm:"size:128;not null" json:"name"`
	VariantCode     string `gorm:"index;size:64" json:"variantCode"`
	GameID          uint   `gorm:"index;not null" json:"GameID"`
	GameType        string `gorm:"size:16;default:comp" json:"gameType"` // comp|multi
	DurationSeconds int    `json:"durationSeconds"`
	MaxPlayers      int    `gorm:"default:5" json:"maxPlayers"`
}

// Player is a registered guest at one location.
type Player struct {
	gorm.Model
	FirstName   string     `gorm:"size:64" json:"firstName"`
	LastName    string     `gorm:"size:64" json:"lastName"`
	Email       string     `gorm:"index;size:256" json:"email"`
	LocationID  uint       `gorm:"index;not null" json:"LocationID"`
	SigneeID    *uint      `gorm:"index" json:"signeeId"` // waiver signee, self when nil
	DateOfBirth *time.Time `json:"dateOfBirth"`
}

// PlayerScore is one scored play of a variant. It carries its own location
// column so stats queries filter without joins.
type PlayerScore struct {
	gorm.Model
	PlayerID       uint `gorm:"index;not null" json:"PlayerID"`
	GamesVariantID uint `gorm:"index;not null" json:"GamesVariantID"`
	GameID         uint `gorm:"index" json:"GameID"`
	LocationID     uint `gorm:"index;not null" json:"LocationID"`
	Points         int  `json:"points"`
}

// WristbandTran tracks an RFID wristband issued to a player; ownership
// resolves through the player.
type WristbandTran struct {
	gorm.Model
	WristbandCode   string     `gorm:"index;size:64;not null" json:"wristbandCode"`
	PlayerID        uint       `gorm:"index;not null" json:"PlayerID"`
	Status          string     `gorm:"size:16;default:active" json:"status"`
	PlayerStartTime *time.Time `json:"playerStartTime"`
	PlayerEndTime   *time.Time `json:"playerEndTime"`
}

// AutoMigrate creates/updates all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Location{}, &Game{}, &GamesVariant{},
		&Player{}, &PlayerScore{}, &WristbandTran{},
	)
}

// Ownership returns the startup-resolved ownership rules for every scoped
// model. Guards and stores look rules up by model name; adding a model
// without a rule here is a wiring error surfaced at startup.
func Ownership() *tenant.Rules {
	return tenant.NewRules().
		Register("Game", tenant.Direct("games", "location_id")).
		Register("GamesVariant", tenant.OneHop("games_variants", "games", "game_id", "location_id")).
		Register("Player", tenant.Direct("players", "location_id")).
		Register("PlayerScore", tenant.Direct("player_scores", "location_id")).
		Register("WristbandTran", tenant.OneHop("wristband_trans", "players", "player_id", "location_id"))
}
