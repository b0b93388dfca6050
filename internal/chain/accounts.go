// Package chain mirrors the arena program's on-chain account layout so the
// orchestrator can snapshot its records into the exact binary form the
// ledger stores them in: an 8-byte anchor discriminator followed by the
// borsh-encoded fields. No RPC happens here; fund settlement stays off this
// service.
package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// AccountDiscriminator returns the 8-byte discriminator the program prefixes
// to an account of the given type name.
func AccountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// ValidateWallet checks that a wallet string is a well-formed 32-byte
// base58 public key.
func ValidateWallet(wallet string) error {
	raw, err := base58.Decode(wallet)
	if err != nil {
		return fmt.Errorf("wallet %q is not base58: %w", wallet, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("wallet %q decodes to %d bytes, want 32", wallet, len(raw))
	}
	return nil
}

// On-chain battle status values.
const (
	StatusChallenge uint8 = iota
	StatusLive
	StatusSettled
	StatusCancelled
)

// Side values as stored in the battle account's winner field.
const (
	SideChallenger uint8 = iota
	SideOpponent
)

// FighterAccount is the on-chain fighter record.
type FighterAccount struct {
	Wallet        solana.PublicKey
	Name          string
	Elo           uint32
	Wins          uint32
	Losses        uint32
	Draws         uint32
	TotalEarnings uint64
	RegisteredAt  int64
	Bump          uint8
}

// BattleAccount is the on-chain battle record.
type BattleAccount struct {
	ID              uint64
	Challenger      solana.PublicKey
	Opponent        solana.PublicKey
	Topic           string
	Status          uint8
	ChallengerStake uint64
	OpponentStake   uint64
	PoolChallenger  uint64
	PoolOpponent    uint64
	VotesChallenger uint64
	VotesOpponent   uint64
	TotalBets       uint64
	VotingPeriod    int64
	CreatedAt       int64
	AcceptedAt      *int64 `bin:"optional"`
	VotingEndsAt    *int64 `bin:"optional"`
	SettledAt       *int64 `bin:"optional"`
	Winner          *uint8 `bin:"optional"`
	Bump            uint8
}

// EncodeFighter serializes a fighter account with its discriminator.
func EncodeFighter(account *FighterAccount) ([]byte, error) {
	return encodeAccount("Fighter", account)
}

// DecodeFighter deserializes a fighter account, checking the discriminator.
func DecodeFighter(data []byte) (*FighterAccount, error) {
	var account FighterAccount
	if err := decodeAccount("Fighter", data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// EncodeBattle serializes a battle account with its discriminator.
func EncodeBattle(account *BattleAccount) ([]byte, error) {
	return encodeAccount("Battle", account)
}

// DecodeBattle deserializes a battle account, checking the discriminator.
func DecodeBattle(data []byte) (*BattleAccount, error) {
	var account BattleAccount
	if err := decodeAccount("Battle", data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func encodeAccount(name string, account interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	disc := AccountDiscriminator(name)
	buf.Write(disc[:])

	if err := bin.NewBorshEncoder(buf).Encode(account); err != nil {
		return nil, fmt.Errorf("failed to encode %s account: %w", name, err)
	}
	return buf.Bytes(), nil
}

func decodeAccount(name string, data []byte, account interface{}) error {
	disc := AccountDiscriminator(name)
	if len(data) < len(disc) {
		return fmt.Errorf("%s account data too short: %d bytes", name, len(data))
	}
	if !bytes.Equal(data[:8], disc[:]) {
		return fmt.Errorf("wrong discriminator for %s account", name)
	}

	if err := bin.NewBorshDecoder(data[8:]).Decode(account); err != nil {
		return fmt.Errorf("failed to decode %s account: %w", name, err)
	}
	return nil
}

// Ledger derives the addresses the arena program would store accounts at.
type Ledger struct {
	programID solana.PublicKey
}

func NewLedger(programID string) (*Ledger, error) {
	pk, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}
	return &Ledger{programID: pk}, nil
}

// FighterAddress derives the PDA for a fighter's account.
func (l *Ledger) FighterAddress(wallet string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid wallet: %w", err)
	}
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("fighter"), pk.Bytes()},
		l.programID,
	)
	return addr, err
}

// BattleAddress derives the PDA for a battle account by its sequence number.
func (l *Ledger) BattleAddress(battleID uint64) (solana.PublicKey, error) {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, battleID)
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("battle"), seed},
		l.programID,
	)
	return addr, err
}
