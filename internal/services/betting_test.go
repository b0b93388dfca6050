package services

import (
	"context"
	"errors"
	"testing"

	"agent-arena/internal/models"

	"github.com/shopspring/decimal"
)

func TestPlaceBetValidation(t *testing.T) {
	battles, fighters := newTestArena(t)
	battle := createTestBattle(t, battles, fighters)
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.PlaceBetRequest
	}{
		{"missing wallet", models.PlaceBetRequest{Amount: decimal.NewFromInt(1), Side: models.SideA}},
		{"zero amount", models.PlaceBetRequest{Wallet: "p", Amount: decimal.Zero, Side: models.SideA}},
		{"negative amount", models.PlaceBetRequest{Wallet: "p", Amount: decimal.NewFromInt(-1), Side: models.SideA}},
		{"bad side", models.PlaceBetRequest{Wallet: "p", Amount: decimal.NewFromInt(1), Side: "C"}},
	}
	for _, tc := range cases {
		if _, err := battles.PlaceBet(ctx, battle.ID, &tc.req); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestPlaceBetOnePerBettor(t *testing.T) {
	battles, fighters := newTestArena(t)
	battle := createTestBattle(t, battles, fighters)
	ctx := context.Background()

	if _, err := battles.PlaceBet(ctx, battle.ID, &models.PlaceBetRequest{
		Wallet: "punter", Amount: decimal.NewFromInt(3), Side: models.SideA,
	}); err != nil {
		t.Fatalf("bet failed: %v", err)
	}

	// A second bet is rejected even on the opposite side.
	if _, err := battles.PlaceBet(ctx, battle.ID, &models.PlaceBetRequest{
		Wallet: "punter", Amount: decimal.NewFromInt(1), Side: models.SideB,
	}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	got, _ := battles.GetBattle(ctx, battle.ID)
	if !got.PoolA.Equal(decimal.NewFromInt(3)) || !got.PoolB.IsZero() {
		t.Errorf("rejected bet must not move pools: A=%s B=%s", got.PoolA, got.PoolB)
	}
}

func TestPlaceBetClosedAfterRounds(t *testing.T) {
	battles, fighters := newTestArena(t)
	battle := createTestBattle(t, battles, fighters)
	ctx := context.Background()

	if _, err := battles.StartBattle(ctx, battle.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	// Betting stays open while live.
	if _, err := battles.PlaceBet(ctx, battle.ID, &models.PlaceBetRequest{
		Wallet: "early", Amount: decimal.NewFromInt(1), Side: models.SideA,
	}); err != nil {
		t.Fatalf("live bet failed: %v", err)
	}

	runAllRounds(t, battles, battle.ID)

	if _, err := battles.PlaceBet(ctx, battle.ID, &models.PlaceBetRequest{
		Wallet: "late", Amount: decimal.NewFromInt(1), Side: models.SideA,
	}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState once voting opens, got %v", err)
	}
}

func TestOddsEmptySides(t *testing.T) {
	battles, fighters := newTestArena(t)
	battle := createTestBattle(t, battles, fighters)
	ctx := context.Background()

	// No bets at all: both sides priced off the unit floor.
	odds, err := battles.GetOdds(ctx, battle.ID)
	if err != nil {
		t.Fatalf("odds failed: %v", err)
	}
	if !odds.OddsA.Equal(decimal.NewFromInt(2)) || !odds.OddsB.Equal(decimal.NewFromInt(2)) {
		t.Errorf("empty pools should price 2.00 both ways, got %s / %s", odds.OddsA, odds.OddsB)
	}
	if !odds.TotalPool.IsZero() {
		t.Errorf("reported total must be the true pool sum, got %s", odds.TotalPool)
	}

	// One-sided pool must not divide by zero.
	if _, err := battles.PlaceBet(ctx, battle.ID, &models.PlaceBetRequest{
		Wallet: "punter", Amount: decimal.NewFromInt(4), Side: models.SideA,
	}); err != nil {
		t.Fatalf("bet failed: %v", err)
	}
	odds, err = battles.GetOdds(ctx, battle.ID)
	if err != nil {
		t.Fatalf("odds failed: %v", err)
	}
	if !odds.OddsA.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("expected odds A 1.25, got %s", odds.OddsA)
	}
	if !odds.OddsB.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected odds B 5 against the unit floor, got %s", odds.OddsB)
	}
	if !odds.TotalPool.Equal(decimal.NewFromInt(4)) {
		t.Errorf("expected total pool 4, got %s", odds.TotalPool)
	}
}

func TestOddsPoolSum(t *testing.T) {
	battles, fighters := newTestArena(t)
	battle := createTestBattle(t, battles, fighters)
	ctx := context.Background()

	stakes := []struct {
		wallet string
		amount string
		side   models.Side
	}{
		{"p1", "2.5", models.SideA},
		{"p2", "1.8", models.SideB},
		{"p3", "0.7", models.SideB},
	}
	for _, s := range stakes {
		if _, err := battles.PlaceBet(ctx, battle.ID, &models.PlaceBetRequest{
			Wallet: s.wallet, Amount: decimal.RequireFromString(s.amount), Side: s.side,
		}); err != nil {
			t.Fatalf("bet by %s failed: %v", s.wallet, err)
		}
	}

	odds, err := battles.GetOdds(ctx, battle.ID)
	if err != nil {
		t.Fatalf("odds failed: %v", err)
	}
	if !odds.PoolA.Add(odds.PoolB).Equal(odds.TotalPool) {
		t.Errorf("pool sum invariant broken: %s + %s != %s", odds.PoolA, odds.PoolB, odds.TotalPool)
	}
	// total=5, poolA=2.5 -> 2.00; poolB=2.5 -> 2.00
	if !odds.OddsA.Equal(decimal.NewFromInt(2)) || !odds.OddsB.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2.00 both ways, got %s / %s", odds.OddsA, odds.OddsB)
	}

	got, _ := battles.GetBattle(ctx, battle.ID)
	if len(got.Bets) != 3 {
		t.Errorf("expected 3 recorded bets, got %d", len(got.Bets))
	}
}

func TestPayoutQuote(t *testing.T) {
	battles, fighters := newTestArena(t)
	battle := createTestBattle(t, battles, fighters)
	ctx := context.Background()

	if _, err := battles.PlaceBet(ctx, battle.ID, &models.PlaceBetRequest{
		Wallet: "winner-bettor", Amount: decimal.NewFromInt(2), Side: models.SideA,
	}); err != nil {
		t.Fatalf("bet failed: %v", err)
	}
	if _, err := battles.PlaceBet(ctx, battle.ID, &models.PlaceBetRequest{
		Wallet: "loser-bettor", Amount: decimal.NewFromInt(3), Side: models.SideB,
	}); err != nil {
		t.Fatalf("bet failed: %v", err)
	}

	// Quote before settlement is refused.
	if _, err := battles.PayoutQuote(ctx, battle.ID, "winner-bettor"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState before settlement, got %v", err)
	}

	if _, err := battles.StartBattle(ctx, battle.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	runAllRounds(t, battles, battle.ID)
	if _, err := battles.SubmitVote(ctx, battle.ID, &models.SubmitVoteRequest{Wallet: "v1", Vote: models.SideA}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := battles.SettleBattle(ctx, battle.ID); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	// Gross 2 * 5/2 = 5, minus the 5% house cut = 4.75.
	payout, err := battles.PayoutQuote(ctx, battle.ID, "winner-bettor")
	if err != nil {
		t.Fatalf("payout quote failed: %v", err)
	}
	if !payout.Equal(decimal.RequireFromString("4.75")) {
		t.Errorf("expected payout 4.75, got %s", payout)
	}

	losing, err := battles.PayoutQuote(ctx, battle.ID, "loser-bettor")
	if err != nil {
		t.Fatalf("payout quote failed: %v", err)
	}
	if !losing.IsZero() {
		t.Errorf("losing side quotes zero, got %s", losing)
	}

	if _, err := battles.PayoutQuote(ctx, battle.ID, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a wallet with no bet, got %v", err)
	}
}
