package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"agent-arena/internal/events"
	"agent-arena/internal/models"
	"agent-arena/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TieBreaker picks the winner of a battle whose vote totals are exactly
// equal.
type TieBreaker func(battle *models.Battle) models.Side

// TieBreakChallenger resolves ties in favor of side A, the historically
// observed policy. Swap in another TieBreaker before changing it for real
// battles.
func TieBreakChallenger(*models.Battle) models.Side {
	return models.SideA
}

// battleState pairs a battle with the mutex that serializes every mutating
// operation on it. Two concurrent argument submissions for the same round
// must not both pass the duplicate check and double-advance the round.
type battleState struct {
	mu     sync.Mutex
	battle *models.Battle
}

// BattleService owns every battle's lifecycle: creation, the round state
// machine, betting, voting and settlement. In-memory state is canonical;
// the store is written through on each mutation.
type BattleService struct {
	store            repository.BattleStore
	fighters         *FighterService
	events           events.Publisher
	tieBreak         TieBreaker
	houseFeeBps      int
	defaultRoundSecs int
	votingPeriod     time.Duration

	mu      sync.RWMutex
	battles map[uint64]*battleState
	nextID  uint64
}

func NewBattleService(
	store repository.BattleStore,
	fighters *FighterService,
	publisher events.Publisher,
	houseFeeBps int,
	defaultRoundSecs int,
	votingPeriod time.Duration,
) *BattleService {
	return &BattleService{
		store:            store,
		fighters:         fighters,
		events:           publisher,
		tieBreak:         TieBreakChallenger,
		houseFeeBps:      houseFeeBps,
		defaultRoundSecs: defaultRoundSecs,
		votingPeriod:     votingPeriod,
		battles:          make(map[uint64]*battleState),
		nextID:           1,
	}
}

// SetTieBreaker overrides the tie resolution policy.
func (bs *BattleService) SetTieBreaker(tb TieBreaker) {
	bs.tieBreak = tb
}

// Restore reloads all persisted battles into memory. Call once at startup,
// before the service takes traffic.
func (bs *BattleService) Restore(ctx context.Context) error {
	battles, err := bs.store.ListBattles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load battles: %w", err)
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	for _, battle := range battles {
		bs.battles[battle.ID] = &battleState{battle: battle}
		if battle.ID >= bs.nextID {
			bs.nextID = battle.ID + 1
		}
	}

	if len(battles) > 0 {
		log.Printf("[BattleService] Restored %d battles", len(battles))
	}
	return nil
}

// CreateBattle creates a pending battle between two registered fighters.
func (bs *BattleService) CreateBattle(ctx context.Context, req *models.CreateBattleRequest) (*models.Battle, error) {
	if req.Topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrValidation)
	}
	if len(req.Topic) > 256 {
		return nil, fmt.Errorf("%w: topic exceeds 256 characters", ErrValidation)
	}
	if req.FighterA == req.FighterB {
		return nil, fmt.Errorf("%w: a fighter cannot battle itself", ErrValidation)
	}

	// Both fighters must exist before a battle can reference them.
	if _, err := bs.fighters.Get(ctx, req.FighterA); err != nil {
		return nil, err
	}
	if _, err := bs.fighters.Get(ctx, req.FighterB); err != nil {
		return nil, err
	}

	roundDuration := req.RoundDuration
	if roundDuration <= 0 {
		roundDuration = bs.defaultRoundSecs
	}

	bs.mu.Lock()
	id := bs.nextID
	bs.nextID++

	battle := &models.Battle{
		ID:            id,
		FighterAKey:   req.FighterA,
		FighterBKey:   req.FighterB,
		Topic:         req.Topic,
		Status:        models.BattleStatusPending,
		CurrentRound:  0,
		RoundDuration: roundDuration,
		PoolA:         decimal.Zero,
		PoolB:         decimal.Zero,
		VotesA:        decimal.Zero,
		VotesB:        decimal.Zero,
		CreatedAt:     time.Now(),
	}
	bs.battles[id] = &battleState{battle: battle}
	bs.mu.Unlock()

	if err := bs.store.CreateBattle(ctx, battle); err != nil {
		bs.mu.Lock()
		delete(bs.battles, id)
		bs.mu.Unlock()
		return nil, fmt.Errorf("failed to create battle: %w", err)
	}

	bs.events.Publish(events.BattleCreated, map[string]interface{}{
		"battle": battle.Clone(),
	})

	return battle.Clone(), nil
}

// GetBattle returns a snapshot of one battle.
func (bs *BattleService) GetBattle(_ context.Context, id uint64) (*models.Battle, error) {
	st, err := bs.get(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.battle.Clone(), nil
}

// ListBattles returns snapshots of all battles, optionally filtered by
// status.
func (bs *BattleService) ListBattles(_ context.Context, status models.BattleStatus) []*models.Battle {
	bs.mu.RLock()
	states := make([]*battleState, 0, len(bs.battles))
	for _, st := range bs.battles {
		states = append(states, st)
	}
	bs.mu.RUnlock()

	battles := make([]*models.Battle, 0, len(states))
	for _, st := range states {
		st.mu.Lock()
		if status == "" || st.battle.Status == status {
			battles = append(battles, st.battle.Clone())
		}
		st.mu.Unlock()
	}

	sort.Slice(battles, func(i, j int) bool { return battles[i].ID < battles[j].ID })
	return battles
}

// StartBattle moves a pending battle to live and announces round 1.
func (bs *BattleService) StartBattle(ctx context.Context, id uint64) (*models.Battle, error) {
	st, err := bs.get(id)
	if err != nil {
		return nil, err
	}

	fighterA, err := bs.fighters.Get(ctx, battleFighterA(st))
	if err != nil {
		return nil, err
	}
	fighterB, err := bs.fighters.Get(ctx, battleFighterB(st))
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	battle := st.battle
	if battle.Status != models.BattleStatusPending {
		return nil, fmt.Errorf("%w: battle %d is %s, not pending", ErrInvalidState, id, battle.Status)
	}

	now := time.Now()
	deadline := now.Add(time.Duration(battle.RoundDuration) * time.Second)
	battle.Status = models.BattleStatusLive
	battle.StartedAt = &now
	battle.CurrentRound = 1
	battle.RoundEndsAt = &deadline

	if err := bs.store.UpdateBattle(ctx, battle); err != nil {
		log.Printf("[BattleService] Warning: failed to persist start of battle %d: %v", id, err)
	}

	bs.events.Publish(events.BattleStarted, map[string]interface{}{
		"battle_id": battle.ID,
		"topic":     battle.Topic,
		"fighter_a": fighterA.Name,
		"fighter_b": fighterB.Name,
	})
	bs.announceRound(battle)

	return battle.Clone(), nil
}

// SubmitArgument records one fighter's argument for the current round and
// advances the round once both sides are in.
func (bs *BattleService) SubmitArgument(ctx context.Context, id uint64, wallet, content string) (*models.Argument, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: argument content is required", ErrValidation)
	}

	st, err := bs.get(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	battle := st.battle
	if battle.Status != models.BattleStatusLive {
		return nil, fmt.Errorf("%w: battle %d is %s, not live", ErrInvalidState, id, battle.Status)
	}

	if battle.SideOf(wallet) == "" {
		return nil, fmt.Errorf("%w: %s is not a fighter in battle %d", ErrUnauthorized, wallet, id)
	}

	for _, arg := range battle.Transcript {
		if arg.Round == battle.CurrentRound && arg.Wallet == wallet {
			return nil, fmt.Errorf("%w: already submitted for round %d", ErrDuplicate, battle.CurrentRound)
		}
	}

	arg := models.Argument{
		ID:        uuid.New(),
		BattleID:  battle.ID,
		Round:     battle.CurrentRound,
		Wallet:    wallet,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := bs.store.AppendArgument(ctx, &arg); err != nil {
		return nil, fmt.Errorf("failed to record argument: %w", err)
	}
	battle.Transcript = append(battle.Transcript, arg)

	bs.events.Publish(events.BattleArgument, map[string]interface{}{
		"battle_id": battle.ID,
		"round":     arg.Round,
		"wallet":    wallet,
		"argument":  content,
	})

	roundArgs := 0
	for _, a := range battle.Transcript {
		if a.Round == battle.CurrentRound {
			roundArgs++
		}
	}
	if roundArgs == 2 {
		bs.advanceRound(ctx, battle)
	}

	return &arg, nil
}

// advanceRound moves a live battle to the next round, or into voting after
// the final round. Caller holds the battle lock.
func (bs *BattleService) advanceRound(ctx context.Context, battle *models.Battle) {
	now := time.Now()

	if battle.CurrentRound >= models.FinalRound {
		votingEnds := now.Add(bs.votingPeriod)
		battle.Status = models.BattleStatusVoting
		battle.RoundEndsAt = nil
		battle.VotingEndsAt = &votingEnds
	} else {
		deadline := now.Add(time.Duration(battle.RoundDuration) * time.Second)
		battle.CurrentRound++
		battle.RoundEndsAt = &deadline
	}

	if err := bs.store.UpdateBattle(ctx, battle); err != nil {
		log.Printf("[BattleService] Warning: failed to persist round advance of battle %d: %v", battle.ID, err)
	}

	if battle.Status == models.BattleStatusLive {
		bs.announceRound(battle)
	}
}

func (bs *BattleService) announceRound(battle *models.Battle) {
	name := models.RoundName(battle.CurrentRound)
	bs.events.Publish(events.BattleRound, map[string]interface{}{
		"battle_id": battle.ID,
		"round":     battle.CurrentRound,
		"name":      name,
		"message":   fmt.Sprintf("Round %d: %s. Fighters, submit your arguments.", battle.CurrentRound, name),
	})
}

// CancelBattle cancels a battle that has not reached voting.
func (bs *BattleService) CancelBattle(ctx context.Context, id uint64) (*models.Battle, error) {
	st, err := bs.get(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	battle := st.battle
	if battle.Status != models.BattleStatusPending && battle.Status != models.BattleStatusLive {
		return nil, fmt.Errorf("%w: battle %d is %s and cannot be cancelled", ErrInvalidState, id, battle.Status)
	}

	now := time.Now()
	battle.Status = models.BattleStatusCancelled
	battle.EndedAt = &now
	battle.RoundEndsAt = nil

	if err := bs.store.UpdateBattle(ctx, battle); err != nil {
		log.Printf("[BattleService] Warning: failed to persist cancellation of battle %d: %v", id, err)
	}

	bs.events.Publish(events.BattleCancelled, map[string]interface{}{
		"battle_id": battle.ID,
	})

	return battle.Clone(), nil
}

// SettleBattle freezes the tally, picks the winner, applies the rating
// update and marks the battle settled. Callable exactly once per battle.
func (bs *BattleService) SettleBattle(ctx context.Context, id uint64) (*models.Battle, error) {
	st, err := bs.get(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	battle := st.battle
	if battle.Status != models.BattleStatusVoting {
		return nil, fmt.Errorf("%w: battle %d is %s, not voting", ErrInvalidState, id, battle.Status)
	}

	var winner models.Side
	switch {
	case battle.VotesA.GreaterThan(battle.VotesB):
		winner = models.SideA
	case battle.VotesB.GreaterThan(battle.VotesA):
		winner = models.SideB
	default:
		winner = bs.tieBreak(battle)
	}

	winnerWallet := battle.FighterKey(winner)
	loserWallet := battle.FighterAKey
	if winner == models.SideA {
		loserWallet = battle.FighterBKey
	}

	fighterA, err := bs.fighters.Get(ctx, battle.FighterAKey)
	if err != nil {
		return nil, err
	}
	fighterB, err := bs.fighters.Get(ctx, battle.FighterBKey)
	if err != nil {
		return nil, err
	}

	outcome := OutcomeAWon
	if winner == models.SideB {
		outcome = OutcomeBWon
	}
	newA, newB := UpdateRatings(fighterA.Elo, fighterB.Elo, outcome)

	winnerElo, loserElo := newA, newB
	if winner == models.SideB {
		winnerElo, loserElo = newB, newA
	}
	if err := bs.fighters.ApplyBattleResult(ctx, winnerWallet, loserWallet, winnerElo, loserElo); err != nil {
		return nil, fmt.Errorf("failed to apply battle result: %w", err)
	}

	now := time.Now()
	battle.Status = models.BattleStatusSettled
	battle.Winner = &winner
	battle.EndedAt = &now
	battle.VotingEndsAt = nil

	if err := bs.store.UpdateBattle(ctx, battle); err != nil {
		log.Printf("[BattleService] Warning: failed to persist settlement of battle %d: %v", id, err)
	}

	bs.events.Publish(events.BattleSettled, map[string]interface{}{
		"battle_id": battle.ID,
		"winner":    winner,
		"votes_a":   battle.VotesA,
		"votes_b":   battle.VotesB,
		"pool_a":    battle.PoolA,
		"pool_b":    battle.PoolB,
	})

	log.Printf("[BattleService] Battle %d settled: winner %s (%s)", battle.ID, winner, winnerWallet)
	return battle.Clone(), nil
}

// ForceAdvanceRound advances a live battle whose round deadline has passed
// without both submissions. Called by the watchdog, never by request
// handlers.
func (bs *BattleService) ForceAdvanceRound(ctx context.Context, id uint64, now time.Time) (bool, error) {
	st, err := bs.get(id)
	if err != nil {
		return false, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	battle := st.battle
	if battle.Status != models.BattleStatusLive {
		return false, nil
	}
	if battle.RoundEndsAt == nil || now.Before(*battle.RoundEndsAt) {
		return false, nil
	}

	log.Printf("[BattleService] Battle %d round %d timed out, forcing advance", battle.ID, battle.CurrentRound)
	bs.advanceRound(ctx, battle)
	return true, nil
}

func (bs *BattleService) get(id uint64) (*battleState, error) {
	bs.mu.RLock()
	st, ok := bs.battles[id]
	bs.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: battle %d", ErrNotFound, id)
	}
	return st, nil
}

func battleFighterA(st *battleState) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.battle.FighterAKey
}

func battleFighterB(st *battleState) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.battle.FighterBKey
}
