package repository

import (
	"context"
	"errors"

	"agent-arena/internal/models"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

// FighterStore is the persistence seam for fighter records. The arena never
// deletes a fighter.
type FighterStore interface {
	CreateFighter(ctx context.Context, fighter *models.Fighter) error
	GetFighterByWallet(ctx context.Context, wallet string) (*models.Fighter, error)
	GetFighterByName(ctx context.Context, name string) (*models.Fighter, error)
	ListFighters(ctx context.Context) ([]*models.Fighter, error)
	UpdateFighter(ctx context.Context, fighter *models.Fighter) error
}

// BattleStore is the persistence seam for battles and their append-only
// transcript, bet and vote rows. Battles are retained forever for audit.
type BattleStore interface {
	CreateBattle(ctx context.Context, battle *models.Battle) error
	// UpdateBattle persists battle metadata (status, round, pools, totals,
	// timestamps). Transcript/bet/vote rows go through the Append methods.
	UpdateBattle(ctx context.Context, battle *models.Battle) error
	// ListBattles returns every battle with associations loaded, for
	// rehydrating the orchestrator at startup.
	ListBattles(ctx context.Context) ([]*models.Battle, error)
	AppendArgument(ctx context.Context, arg *models.Argument) error
	AppendBet(ctx context.Context, bet *models.Bet) error
	AppendVote(ctx context.Context, vote *models.Vote) error
}
