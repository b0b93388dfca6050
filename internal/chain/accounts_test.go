package chain

import (
	"strings"
	"testing"
	"time"

	"agent-arena/internal/models"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

const (
	testProgramID = "6fh5E6VPXzAww1mU9M84sBgtqUXDDVY9HZh47tGBFCKb"
	testWalletA   = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	testWalletB   = "SysvarRent111111111111111111111111111111111"
)

func TestValidateWallet(t *testing.T) {
	if err := ValidateWallet(testWalletA); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if err := ValidateWallet("not-base58!"); err == nil {
		t.Error("expected error for malformed input")
	}
	if err := ValidateWallet("abc"); err == nil {
		t.Error("expected error for short key")
	}
}

func TestFighterAccountRoundTrip(t *testing.T) {
	pk := solana.MustPublicKeyFromBase58(testWalletA)
	account := &FighterAccount{
		Wallet:       pk,
		Name:         "Alpha",
		Elo:          1016,
		Wins:         3,
		Losses:       1,
		RegisteredAt: 1700000000,
		Bump:         254,
	}

	data, err := EncodeFighter(account)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := DecodeFighter(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Wallet != pk || got.Name != "Alpha" || got.Elo != 1016 || got.Wins != 3 || got.Bump != 254 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestBattleAccountRoundTrip(t *testing.T) {
	accepted := int64(1700000100)
	winner := SideOpponent
	account := &BattleAccount{
		ID:              7,
		Challenger:      solana.MustPublicKeyFromBase58(testWalletA),
		Opponent:        solana.MustPublicKeyFromBase58(testWalletB),
		Topic:           "test topic",
		Status:          StatusSettled,
		PoolChallenger:  2_500_000_000,
		PoolOpponent:    1_800_000_000,
		VotesChallenger: 2_000_000_000,
		VotesOpponent:   1_000_000_000,
		TotalBets:       2,
		VotingPeriod:    120,
		CreatedAt:       1700000000,
		AcceptedAt:      &accepted,
		Winner:          &winner,
		Bump:            255,
	}

	data, err := EncodeBattle(account)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := DecodeBattle(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != 7 || got.Topic != "test topic" || got.Status != StatusSettled {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.AcceptedAt == nil || *got.AcceptedAt != accepted {
		t.Errorf("optional accepted_at lost: %v", got.AcceptedAt)
	}
	if got.VotingEndsAt != nil || got.SettledAt != nil {
		t.Errorf("absent optionals should decode nil: %v %v", got.VotingEndsAt, got.SettledAt)
	}
	if got.Winner == nil || *got.Winner != SideOpponent {
		t.Errorf("winner lost: %v", got.Winner)
	}
}

func TestDecodeRejectsWrongDiscriminator(t *testing.T) {
	data, err := EncodeFighter(&FighterAccount{
		Wallet: solana.MustPublicKeyFromBase58(testWalletA),
		Name:   "Alpha",
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if _, err := DecodeBattle(data); err == nil || !strings.Contains(err.Error(), "discriminator") {
		t.Errorf("expected discriminator mismatch, got %v", err)
	}
	if _, err := DecodeFighter(data[:4]); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestLedgerAddresses(t *testing.T) {
	ledger, err := NewLedger(testProgramID)
	if err != nil {
		t.Fatalf("ledger init failed: %v", err)
	}

	addr, err := ledger.FighterAddress(testWalletA)
	if err != nil {
		t.Fatalf("fighter pda failed: %v", err)
	}
	if addr.IsZero() {
		t.Error("fighter pda is zero")
	}

	// Derivation is deterministic and differs per input.
	again, _ := ledger.FighterAddress(testWalletA)
	if addr != again {
		t.Error("fighter pda not deterministic")
	}
	other, _ := ledger.FighterAddress(testWalletB)
	if addr == other {
		t.Error("distinct wallets derived the same pda")
	}

	b1, err := ledger.BattleAddress(1)
	if err != nil {
		t.Fatalf("battle pda failed: %v", err)
	}
	b2, _ := ledger.BattleAddress(2)
	if b1 == b2 {
		t.Error("distinct battle ids derived the same pda")
	}

	if _, err := NewLedger("bogus"); err == nil {
		t.Error("expected error for invalid program id")
	}
}

func TestSnapshotBattle(t *testing.T) {
	created := time.Unix(1700000000, 0)
	started := time.Unix(1700000100, 0)
	ended := time.Unix(1700001000, 0)
	winner := models.SideB

	battle := &models.Battle{
		ID:            3,
		FighterAKey:   testWalletA,
		FighterBKey:   testWalletB,
		Topic:         "t",
		Status:        models.BattleStatusSettled,
		RoundDuration: 120,
		PoolA:         decimal.RequireFromString("2.5"),
		PoolB:         decimal.RequireFromString("1.8"),
		VotesA:        decimal.NewFromInt(1),
		VotesB:        decimal.NewFromInt(2),
		Winner:        &winner,
		Bets:          []models.Bet{{}, {}},
		CreatedAt:     created,
		StartedAt:     &started,
		EndedAt:       &ended,
	}

	account, err := SnapshotBattle(battle)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if account.PoolChallenger != 2_500_000_000 || account.PoolOpponent != 1_800_000_000 {
		t.Errorf("lamport conversion wrong: %d / %d", account.PoolChallenger, account.PoolOpponent)
	}
	if account.Status != StatusSettled {
		t.Errorf("status mapping wrong: %d", account.Status)
	}
	if account.Winner == nil || *account.Winner != SideOpponent {
		t.Errorf("winner mapping wrong: %v", account.Winner)
	}
	if account.SettledAt == nil || *account.SettledAt != ended.Unix() {
		t.Errorf("settled_at wrong: %v", account.SettledAt)
	}
	if account.TotalBets != 2 {
		t.Errorf("bet count wrong: %d", account.TotalBets)
	}

	// Voting is still a live phase on chain.
	battle.Status = models.BattleStatusVoting
	account, err = SnapshotBattle(battle)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if account.Status != StatusLive {
		t.Errorf("voting should map to live, got %d", account.Status)
	}

	battle.FighterAKey = "not-a-key"
	if _, err := SnapshotBattle(battle); err == nil {
		t.Error("expected error for non-chain fighter key")
	}
}
