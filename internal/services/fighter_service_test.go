package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agent-arena/internal/events"
	"agent-arena/internal/models"
	"agent-arena/internal/repository"
)

func TestRegisterFighter(t *testing.T) {
	fighters := NewFighterService(repository.NewMemoryStore(), events.NopPublisher{}, 1000, false)
	ctx := context.Background()

	fighter, err := fighters.Register(ctx, &models.RegisterFighterRequest{
		Name:     "  Alpha  ",
		Wallet:   "wallet-a",
		Endpoint: "http://localhost:9000",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if fighter.Name != "Alpha" {
		t.Errorf("name should be trimmed, got %q", fighter.Name)
	}
	if fighter.Elo != 1000 {
		t.Errorf("expected starting rating 1000, got %d", fighter.Elo)
	}
	if fighter.Wins != 0 || fighter.Losses != 0 || fighter.Draws != 0 {
		t.Errorf("fresh fighter should have a clean record: %d/%d/%d", fighter.Wins, fighter.Losses, fighter.Draws)
	}
}

func TestRegisterFighterValidation(t *testing.T) {
	fighters := NewFighterService(repository.NewMemoryStore(), events.NopPublisher{}, 1000, false)
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.RegisterFighterRequest
	}{
		{"empty name", models.RegisterFighterRequest{Wallet: "w"}},
		{"blank name", models.RegisterFighterRequest{Name: "   ", Wallet: "w"}},
		{"long name", models.RegisterFighterRequest{Name: strings.Repeat("x", 33), Wallet: "w"}},
		{"missing wallet", models.RegisterFighterRequest{Name: "Alpha"}},
	}
	for _, tc := range cases {
		if _, err := fighters.Register(ctx, &tc.req); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestRegisterFighterDuplicateWallet(t *testing.T) {
	fighters := NewFighterService(repository.NewMemoryStore(), events.NopPublisher{}, 1000, false)
	ctx := context.Background()

	if _, err := fighters.Register(ctx, &models.RegisterFighterRequest{Name: "Alpha", Wallet: "w1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := fighters.Register(ctx, &models.RegisterFighterRequest{Name: "Other", Wallet: "w1"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for reused wallet, got %v", err)
	}
}

func TestRegisterFighterStrictKeys(t *testing.T) {
	fighters := NewFighterService(repository.NewMemoryStore(), events.NopPublisher{}, 1000, true)
	ctx := context.Background()

	if _, err := fighters.Register(ctx, &models.RegisterFighterRequest{
		Name: "Alpha", Wallet: "not-base58!",
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for a malformed key, got %v", err)
	}

	// A real 32-byte base58 key passes.
	if _, err := fighters.Register(ctx, &models.RegisterFighterRequest{
		Name: "Alpha", Wallet: "11111111111111111111111111111111",
	}); err != nil {
		t.Fatalf("register with valid key failed: %v", err)
	}
}

func TestLeaderboard(t *testing.T) {
	store := repository.NewMemoryStore()
	fighters := NewFighterService(store, events.NopPublisher{}, 1000, false)
	ctx := context.Background()

	for _, f := range []struct {
		wallet string
		name   string
		elo    int
	}{
		{"w1", "Low", 900},
		{"w2", "High", 1400},
		{"w3", "Mid", 1100},
	} {
		reg, err := fighters.Register(ctx, &models.RegisterFighterRequest{Name: f.name, Wallet: f.wallet})
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		reg.Elo = f.elo
		if err := store.UpdateFighter(ctx, reg); err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	board, err := fighters.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board))
	}
	if board[0].Name != "High" || board[1].Name != "Mid" {
		t.Errorf("wrong ordering: %s then %s", board[0].Name, board[1].Name)
	}
}

func TestGetByNameCaseInsensitive(t *testing.T) {
	fighters := NewFighterService(repository.NewMemoryStore(), events.NopPublisher{}, 1000, false)
	ctx := context.Background()

	if _, err := fighters.Register(ctx, &models.RegisterFighterRequest{Name: "Alpha", Wallet: "w1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	got, err := fighters.GetByName(ctx, "ALPHA")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.Wallet != "w1" {
		t.Errorf("wrong fighter: %s", got.Wallet)
	}

	if _, err := fighters.GetByName(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
