package chain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"agent-arena/internal/models"
)

// LamportsPerUnit converts the arena's decimal amounts into the integer
// lamport units the on-chain layout stores.
const LamportsPerUnit = 1_000_000_000

func toLamports(amount decimal.Decimal) uint64 {
	return uint64(amount.Shift(9).IntPart())
}

// SnapshotFighter maps a fighter record into its on-chain account form.
// The wallet must be a valid base58 public key.
func SnapshotFighter(fighter *models.Fighter) (*FighterAccount, error) {
	pk, err := solana.PublicKeyFromBase58(fighter.Wallet)
	if err != nil {
		return nil, fmt.Errorf("fighter %s has no chain identity: %w", fighter.Wallet, err)
	}

	return &FighterAccount{
		Wallet:       pk,
		Name:         fighter.Name,
		Elo:          uint32(fighter.Elo),
		Wins:         uint32(fighter.Wins),
		Losses:       uint32(fighter.Losses),
		Draws:        uint32(fighter.Draws),
		RegisteredAt: fighter.CreatedAt.Unix(),
	}, nil
}

// SnapshotBattle maps a battle record into its on-chain account form.
func SnapshotBattle(battle *models.Battle) (*BattleAccount, error) {
	challenger, err := solana.PublicKeyFromBase58(battle.FighterAKey)
	if err != nil {
		return nil, fmt.Errorf("fighter A has no chain identity: %w", err)
	}
	opponent, err := solana.PublicKeyFromBase58(battle.FighterBKey)
	if err != nil {
		return nil, fmt.Errorf("fighter B has no chain identity: %w", err)
	}

	account := &BattleAccount{
		ID:              battle.ID,
		Challenger:      challenger,
		Opponent:        opponent,
		Topic:           battle.Topic,
		Status:          chainStatus(battle.Status),
		PoolChallenger:  toLamports(battle.PoolA),
		PoolOpponent:    toLamports(battle.PoolB),
		VotesChallenger: toLamports(battle.VotesA),
		VotesOpponent:   toLamports(battle.VotesB),
		TotalBets:       uint64(len(battle.Bets)),
		VotingPeriod:    int64(battle.RoundDuration),
		CreatedAt:       battle.CreatedAt.Unix(),
	}

	if battle.StartedAt != nil {
		ts := battle.StartedAt.Unix()
		account.AcceptedAt = &ts
	}
	if battle.VotingEndsAt != nil {
		ts := battle.VotingEndsAt.Unix()
		account.VotingEndsAt = &ts
	}
	if battle.EndedAt != nil && battle.Status == models.BattleStatusSettled {
		ts := battle.EndedAt.Unix()
		account.SettledAt = &ts
	}
	if battle.Winner != nil {
		side := SideChallenger
		if *battle.Winner == models.SideB {
			side = SideOpponent
		}
		account.Winner = &side
	}

	return account, nil
}

func chainStatus(status models.BattleStatus) uint8 {
	switch status {
	case models.BattleStatusLive, models.BattleStatusVoting:
		return StatusLive
	case models.BattleStatusSettled:
		return StatusSettled
	case models.BattleStatusCancelled:
		return StatusCancelled
	default:
		return StatusChallenge
	}
}
