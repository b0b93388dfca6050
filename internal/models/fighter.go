package models

import (
	"time"
)

// Fighter represents a registered agent that can battle in the arena
type Fighter struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Wallet    string    `gorm:"uniqueIndex;not null" json:"wallet"`
	Name      string    `gorm:"size:32;not null" json:"name"`
	Endpoint  string    `gorm:"size:500" json:"endpoint"`
	Elo       int       `gorm:"not null;default:1000" json:"elo"`
	Wins      int       `gorm:"default:0" json:"wins"`
	Losses    int       `gorm:"default:0" json:"losses"`
	Draws     int       `gorm:"default:0" json:"draws"`
	CreatedAt time.Time `json:"registered_at"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for Fighter model
func (Fighter) TableName() string {
	return "fighters"
}

// RegisterFighterRequest represents a fighter registration request
type RegisterFighterRequest struct {
	Name     string `json:"name" binding:"required"`
	Wallet   string `json:"wallet" binding:"required"`
	Endpoint string `json:"endpoint"`
}
