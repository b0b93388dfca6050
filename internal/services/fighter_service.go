package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"agent-arena/internal/chain"
	"agent-arena/internal/events"
	"agent-arena/internal/models"
	"agent-arena/internal/repository"
)

// FighterService is the participant directory: registration, lookups and
// the rating/record writes performed at settlement.
type FighterService struct {
	store       repository.FighterStore
	events      events.Publisher
	startingElo int
	strictKeys  bool
}

func NewFighterService(store repository.FighterStore, publisher events.Publisher, startingElo int, strictKeys bool) *FighterService {
	return &FighterService{
		store:       store,
		events:      publisher,
		startingElo: startingElo,
		strictKeys:  strictKeys,
	}
}

// Register creates a new fighter. Fails if the wallet is already registered.
func (fs *FighterService) Register(ctx context.Context, req *models.RegisterFighterRequest) (*models.Fighter, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(name) > 32 {
		return nil, fmt.Errorf("%w: name exceeds 32 characters", ErrValidation)
	}
	if req.Wallet == "" {
		return nil, fmt.Errorf("%w: wallet is required", ErrValidation)
	}
	if fs.strictKeys {
		if err := chain.ValidateWallet(req.Wallet); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	if _, err := fs.store.GetFighterByWallet(ctx, req.Wallet); err == nil {
		return nil, fmt.Errorf("%w: fighter already registered", ErrDuplicate)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}

	fighter := &models.Fighter{
		Wallet:    req.Wallet,
		Name:      name,
		Endpoint:  req.Endpoint,
		Elo:       fs.startingElo,
		CreatedAt: time.Now(),
	}

	if err := fs.store.CreateFighter(ctx, fighter); err != nil {
		return nil, fmt.Errorf("failed to register fighter: %w", err)
	}

	fs.events.Publish(events.FighterRegistered, map[string]interface{}{
		"fighter": fighter,
	})

	return fighter, nil
}

// Get retrieves a fighter by wallet address.
func (fs *FighterService) Get(ctx context.Context, wallet string) (*models.Fighter, error) {
	fighter, err := fs.store.GetFighterByWallet(ctx, wallet)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: fighter %s", ErrNotFound, wallet)
	}
	if err != nil {
		return nil, err
	}
	return fighter, nil
}

// GetByName retrieves a fighter by display name, case-insensitive.
func (fs *FighterService) GetByName(ctx context.Context, name string) (*models.Fighter, error) {
	fighter, err := fs.store.GetFighterByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: fighter named %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return fighter, nil
}

// List returns all registered fighters.
func (fs *FighterService) List(ctx context.Context) ([]*models.Fighter, error) {
	return fs.store.ListFighters(ctx)
}

// Leaderboard returns up to limit fighters ordered by rating, best first.
func (fs *FighterService) Leaderboard(ctx context.Context, limit int) ([]*models.Fighter, error) {
	fighters, err := fs.store.ListFighters(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(fighters, func(i, j int) bool { return fighters[i].Elo > fighters[j].Elo })
	if limit > 0 && len(fighters) > limit {
		fighters = fighters[:limit]
	}
	return fighters, nil
}

// ApplyBattleResult writes new ratings and win/loss counters for both
// fighters of a settled battle.
func (fs *FighterService) ApplyBattleResult(ctx context.Context, winnerWallet, loserWallet string, winnerElo, loserElo int) error {
	winner, err := fs.Get(ctx, winnerWallet)
	if err != nil {
		return err
	}
	loser, err := fs.Get(ctx, loserWallet)
	if err != nil {
		return err
	}

	winner.Elo = winnerElo
	winner.Wins++
	if err := fs.store.UpdateFighter(ctx, winner); err != nil {
		return fmt.Errorf("failed to update winner %s: %w", winnerWallet, err)
	}

	loser.Elo = loserElo
	loser.Losses++
	if err := fs.store.UpdateFighter(ctx, loser); err != nil {
		return fmt.Errorf("failed to update loser %s: %w", loserWallet, err)
	}

	return nil
}

// RecordDraw increments both fighters' draw counters. Unused by the current
// settlement rule, kept alongside the draw rating path.
func (fs *FighterService) RecordDraw(ctx context.Context, walletA, walletB string) error {
	for _, wallet := range []string{walletA, walletB} {
		fighter, err := fs.Get(ctx, wallet)
		if err != nil {
			return err
		}
		fighter.Draws++
		if err := fs.store.UpdateFighter(ctx, fighter); err != nil {
			return fmt.Errorf("failed to record draw for %s: %w", wallet, err)
		}
	}
	return nil
}
