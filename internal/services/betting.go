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

// PlaceBet adds a wager to one side's pool. Betting is open from creation
// until voting begins; one bet per bettor per battle.
func (bs *BattleService) PlaceBet(ctx context.Context, id uint64, req *models.PlaceBetRequest) (*models.Bet, error) {
	if req.Wallet == "" {
		return nil, fmt.Errorf("%w: wallet is required", ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: bet amount must be positive", ErrValidation)
	}
	if req.Side != models.SideA && req.Side != models.SideB {
		return nil, fmt.Errorf("%w: side must be A or B", ErrValidation)
	}

	st, err := bs.get(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	battle := st.battle
	if battle.Status != models.BattleStatusPending && battle.Status != models.BattleStatusLive {
		return nil, fmt.Errorf("%w: betting closed", ErrInvalidState)
	}

	// One bet per bettor, whichever side the second attempt picks.
	for _, bet := range battle.Bets {
		if bet.Wallet == req.Wallet {
			return nil, fmt.Errorf("%w: %s already has a bet on battle %d", ErrDuplicate, req.Wallet, id)
		}
	}

	bet := models.Bet{
		ID:        uuid.New(),
		BattleID:  battle.ID,
		Wallet:    req.Wallet,
		Amount:    req.Amount,
		Side:      req.Side,
		CreatedAt: time.Now(),
	}

	if err := bs.store.AppendBet(ctx, &bet); err != nil {
		return nil, fmt.Errorf("failed to record bet: %w", err)
	}

	battle.Bets = append(battle.Bets, bet)
	if bet.Side == models.SideA {
		battle.PoolA = battle.PoolA.Add(bet.Amount)
	} else {
		battle.PoolB = battle.PoolB.Add(bet.Amount)
	}

	if err := bs.store.UpdateBattle(ctx, battle); err != nil {
		// Pool totals are recomputable from the bet rows.
		log.Printf("[BattleService] Warning: failed to persist pools of battle %d: %v", id, err)
	}

	bs.events.Publish(events.BattleBet, map[string]interface{}{
		"battle_id": battle.ID,
		"bet":       bet,
		"odds":      computeOdds(battle),
	})

	return &bet, nil
}

// GetOdds returns the live pari-mutuel odds for a battle.
func (bs *BattleService) GetOdds(_ context.Context, id uint64) (*models.Odds, error) {
	st, err := bs.get(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return computeOdds(st.battle), nil
}

// computeOdds derives odds from the pool ratio. An empty side is priced as
// if it held 1 unit; those odds are not economically meaningful until the
// side takes its first bet. Caller holds the battle lock.
func computeOdds(battle *models.Battle) *models.Odds {
	effA := battle.PoolA
	if effA.IsZero() {
		effA = decimal.NewFromInt(1)
	}
	effB := battle.PoolB
	if effB.IsZero() {
		effB = decimal.NewFromInt(1)
	}
	effTotal := effA.Add(effB)

	return &models.Odds{
		OddsA:     effTotal.Div(effA).Round(2),
		OddsB:     effTotal.Div(effB).Round(2),
		PoolA:     battle.PoolA,
		PoolB:     battle.PoolB,
		TotalPool: battle.PoolA.Add(battle.PoolB),
	}
}

// PayoutQuote computes a bettor's winnings for a settled battle:
// amount * (totalPool / winningPool), less the house fee. A bet on the
// losing side quotes zero. Nothing here moves funds.
func (bs *BattleService) PayoutQuote(_ context.Context, id uint64, wallet string) (decimal.Decimal, error) {
	st, err := bs.get(id)
	if err != nil {
		return decimal.Zero, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	battle := st.battle
	if battle.Status != models.BattleStatusSettled || battle.Winner == nil {
		return decimal.Zero, fmt.Errorf("%w: battle %d is not settled", ErrInvalidState, id)
	}

	var bet *models.Bet
	for i := range battle.Bets {
		if battle.Bets[i].Wallet == wallet {
			bet = &battle.Bets[i]
			break
		}
	}
	if bet == nil {
		return decimal.Zero, fmt.Errorf("%w: no bet from %s on battle %d", ErrNotFound, wallet, id)
	}

	if bet.Side != *battle.Winner {
		return decimal.Zero, nil
	}

	winningPool := battle.PoolA
	if *battle.Winner == models.SideB {
		winningPool = battle.PoolB
	}
	totalPool := battle.PoolA.Add(battle.PoolB)

	gross := bet.Amount.Mul(totalPool).Div(winningPool)
	feeFraction := decimal.NewFromInt(int64(bs.houseFeeBps)).Div(decimal.NewFromInt(10000))
	return gross.Mul(decimal.NewFromInt(1).Sub(feeFraction)).Round(8), nil
}
