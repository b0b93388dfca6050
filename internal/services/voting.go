package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"agent-arena/internal/events"
	"agent-arena/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitVote records a weighted vote while the battle is in its voting
// window. One vote per voter; weight defaults to 1.
func (bs *BattleService) SubmitVote(ctx context.Context, id uint64, req *models.SubmitVoteRequest) (*models.VoteTotals, error) {
	if req.Wallet == "" {
		return nil, fmt.Errorf("%w: wallet is required", ErrValidation)
	}
	if req.Vote != models.SideA && req.Vote != models.SideB {
		return nil, fmt.Errorf("%w: vote must be A or B", ErrValidation)
	}

	weight := decimal.NewFromInt(1)
	if req.Weight != nil {
		weight = *req.Weight
	}
	if !weight.IsPositive() {
		return nil, fmt.Errorf("%w: vote weight must be positive", ErrValidation)
	}

	st, err := bs.get(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	battle := st.battle
	if battle.Status != models.BattleStatusVoting {
		return nil, fmt.Errorf("%w: voting not open on battle %d", ErrInvalidState, id)
	}

	for _, vote := range battle.Votes {
		if vote.Wallet == req.Wallet {
			return nil, fmt.Errorf("%w: %s already voted on battle %d", ErrDuplicate, req.Wallet, id)
		}
	}

	vote := models.Vote{
		ID:        uuid.New(),
		BattleID:  battle.ID,
		Wallet:    req.Wallet,
		Side:      req.Vote,
		Weight:    weight,
		CreatedAt: time.Now(),
	}

	if err := bs.store.AppendVote(ctx, &vote); err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	battle.Votes = append(battle.Votes, vote)
	if vote.Side == models.SideA {
		battle.VotesA = battle.VotesA.Add(weight)
	} else {
		battle.VotesB = battle.VotesB.Add(weight)
	}

	if err := bs.store.UpdateBattle(ctx, battle); err != nil {
		// Totals are recomputable from the vote rows.
		log.Printf("[BattleService] Warning: failed to persist vote totals of battle %d: %v", id, err)
	}

	bs.events.Publish(events.BattleVote, map[string]interface{}{
		"battle_id": battle.ID,
		"wallet":    req.Wallet,
		"vote":      req.Vote,
		"weight":    weight,
	})

	return &models.VoteTotals{VotesA: battle.VotesA, VotesB: battle.VotesB}, nil
}
