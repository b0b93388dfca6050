package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BattleStatus string

const (
	BattleStatusPending   BattleStatus = "pending"
	BattleStatusLive      BattleStatus = "live"
	BattleStatusVoting    BattleStatus = "voting"
	BattleStatusSettled   BattleStatus = "settled"
	BattleStatusCancelled BattleStatus = "cancelled"
)

// Terminal reports whether no further transition can leave this status.
func (s BattleStatus) Terminal() bool {
	return s == BattleStatusSettled || s == BattleStatusCancelled
}

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// FinalRound is the fixed number of argument rounds in a battle.
const FinalRound = 3

// RoundName returns the display name of an argument round.
func RoundName(round int) string {
	switch round {
	case 1:
		return "Opening Statements"
	case 2:
		return "Rebuttals"
	case 3:
		return "Closing Arguments"
	default:
		return "Unknown Round"
	}
}

// Battle represents a single battle between two fighters
type Battle struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	FighterAKey   string          `gorm:"size:255;not null;index" json:"fighter_a"`
	FighterBKey   string          `gorm:"size:255;not null;index" json:"fighter_b"`
	Topic         string          `gorm:"size:256;not null" json:"topic"`
	Status        BattleStatus    `gorm:"size:20;not null;default:pending;index" json:"status"`
	CurrentRound  int             `gorm:"default:0" json:"current_round"`
	RoundDuration int             `gorm:"not null" json:"round_duration"` // seconds
	PoolA         decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"pool_a"`
	PoolB         decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"pool_b"`
	VotesA        decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"votes_a"`
	VotesB        decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"votes_b"`
	Winner        *Side           `gorm:"size:1" json:"winner"`
	Transcript    []Argument      `gorm:"foreignKey:BattleID" json:"transcript"`
	Bets          []Bet           `gorm:"foreignKey:BattleID" json:"bets"`
	Votes         []Vote          `gorm:"foreignKey:BattleID" json:"votes"`
	CreatedAt     time.Time       `json:"created_at"`
	StartedAt     *time.Time      `json:"started_at"`
	RoundEndsAt   *time.Time      `json:"round_ends_at"`
	VotingEndsAt  *time.Time      `json:"voting_ends_at"`
	EndedAt       *time.Time      `json:"ended_at"`
	UpdatedAt     time.Time       `json:"-"`
}

func (Battle) TableName() string {
	return "battles"
}

// SideOf returns the side a wallet fights on, or "" if it is not a fighter
// in this battle.
func (b *Battle) SideOf(wallet string) Side {
	switch wallet {
	case b.FighterAKey:
		return SideA
	case b.FighterBKey:
		return SideB
	}
	return ""
}

// FighterKey returns the wallet fighting on the given side.
func (b *Battle) FighterKey(side Side) string {
	if side == SideA {
		return b.FighterAKey
	}
	return b.FighterBKey
}

// Clone returns a deep copy safe to hand outside the per-battle lock.
func (b *Battle) Clone() *Battle {
	c := *b
	c.Transcript = append([]Argument(nil), b.Transcript...)
	c.Bets = append([]Bet(nil), b.Bets...)
	c.Votes = append([]Vote(nil), b.Votes...)
	if b.Winner != nil {
		w := *b.Winner
		c.Winner = &w
	}
	c.StartedAt = copyTime(b.StartedAt)
	c.RoundEndsAt = copyTime(b.RoundEndsAt)
	c.VotingEndsAt = copyTime(b.VotingEndsAt)
	c.EndedAt = copyTime(b.EndedAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Argument is one fighter's submission for one round. Immutable once recorded.
type Argument struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BattleID  uint64    `gorm:"not null;index" json:"battle_id"`
	Round     int       `gorm:"not null" json:"round"`
	Wallet    string    `gorm:"size:255;not null" json:"wallet"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

func (Argument) TableName() string {
	return "arguments"
}

// Bet is a single wager on one side of a battle. Immutable once recorded.
type Bet struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BattleID  uint64          `gorm:"not null;index" json:"battle_id"`
	Wallet    string          `gorm:"size:255;not null;index" json:"wallet"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Side      Side            `gorm:"size:1;not null" json:"side"`
	CreatedAt time.Time       `json:"timestamp"`
}

func (Bet) TableName() string {
	return "bets"
}

// Vote is a single weighted vote for one side of a battle
type Vote struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BattleID  uint64          `gorm:"not null;index" json:"battle_id"`
	Wallet    string          `gorm:"size:255;not null;index" json:"wallet"`
	Side      Side            `gorm:"size:1;not null" json:"side"`
	Weight    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"weight"`
	CreatedAt time.Time       `json:"timestamp"`
}

func (Vote) TableName() string {
	return "votes"
}

// Odds is the live pari-mutuel odds snapshot for a battle
type Odds struct {
	OddsA     decimal.Decimal `json:"odds_a"`
	OddsB     decimal.Decimal `json:"odds_b"`
	PoolA     decimal.Decimal `json:"pool_a"`
	PoolB     decimal.Decimal `json:"pool_b"`
	TotalPool decimal.Decimal `json:"total_pool"`
}

// VoteTotals reports the running weighted totals after a vote
type VoteTotals struct {
	VotesA decimal.Decimal `json:"votes_a"`
	VotesB decimal.Decimal `json:"votes_b"`
}

// CreateBattleRequest represents a request to create a new battle
type CreateBattleRequest struct {
	FighterA      string `json:"fighterA" binding:"required"`
	FighterB      string `json:"fighterB" binding:"required"`
	Topic         string `json:"topic" binding:"required"`
	RoundDuration int    `json:"roundDuration"`
}

// PlaceBetRequest represents a bet placement request
type PlaceBetRequest struct {
	Wallet string          `json:"wallet" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Side   Side            `json:"side" binding:"required"`
}

// SubmitVoteRequest represents a vote submission request
type SubmitVoteRequest struct {
	Wallet string           `json:"wallet" binding:"required"`
	Vote   Side             `json:"vote" binding:"required"`
	Weight *decimal.Decimal `json:"weight"`
}

// SubmitArgumentRequest represents an argument submission request
type SubmitArgumentRequest struct {
	Argument string `json:"argument" binding:"required"`
}
