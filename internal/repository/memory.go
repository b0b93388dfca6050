package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"agent-arena/internal/models"
)

// MemoryStore keeps fighters and battles in process memory. It is the
// default backend when no database is configured and the one the service
// tests run against.
type MemoryStore struct {
	mu       sync.RWMutex
	fighters map[string]*models.Fighter // wallet -> fighter
	battles  map[uint64]*models.Battle
	nextID   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		fighters: make(map[string]*models.Fighter),
		battles:  make(map[uint64]*models.Battle),
		nextID:   1,
	}
}

func (m *MemoryStore) CreateFighter(_ context.Context, fighter *models.Fighter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.fighters[fighter.Wallet]; ok {
		return fmt.Errorf("fighter %s: duplicate wallet", fighter.Wallet)
	}

	if fighter.ID == 0 {
		fighter.ID = m.nextID
		m.nextID++
	}

	cp := *fighter
	m.fighters[fighter.Wallet] = &cp
	return nil
}

func (m *MemoryStore) GetFighterByWallet(_ context.Context, wallet string) (*models.Fighter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fighter, ok := m.fighters[wallet]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *fighter
	return &cp, nil
}

func (m *MemoryStore) GetFighterByName(_ context.Context, name string) (*models.Fighter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, fighter := range m.fighters {
		if strings.EqualFold(fighter.Name, name) {
			cp := *fighter
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListFighters(_ context.Context) ([]*models.Fighter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fighters := make([]*models.Fighter, 0, len(m.fighters))
	for _, fighter := range m.fighters {
		cp := *fighter
		fighters = append(fighters, &cp)
	}
	sort.Slice(fighters, func(i, j int) bool { return fighters[i].ID < fighters[j].ID })
	return fighters, nil
}

func (m *MemoryStore) UpdateFighter(_ context.Context, fighter *models.Fighter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.fighters[fighter.Wallet]; !ok {
		return ErrNotFound
	}
	cp := *fighter
	m.fighters[fighter.Wallet] = &cp
	return nil
}

func (m *MemoryStore) CreateBattle(_ context.Context, battle *models.Battle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.battles[battle.ID]; ok {
		return fmt.Errorf("battle %d: duplicate id", battle.ID)
	}
	m.battles[battle.ID] = battle.Clone()
	return nil
}

func (m *MemoryStore) UpdateBattle(_ context.Context, battle *models.Battle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.battles[battle.ID]
	if !ok {
		return ErrNotFound
	}

	// Metadata only; append-only rows arrive through the Append methods.
	clone := battle.Clone()
	clone.Transcript = stored.Transcript
	clone.Bets = stored.Bets
	clone.Votes = stored.Votes
	m.battles[battle.ID] = clone
	return nil
}

func (m *MemoryStore) ListBattles(_ context.Context) ([]*models.Battle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	battles := make([]*models.Battle, 0, len(m.battles))
	for _, battle := range m.battles {
		battles = append(battles, battle.Clone())
	}
	sort.Slice(battles, func(i, j int) bool { return battles[i].ID < battles[j].ID })
	return battles, nil
}

func (m *MemoryStore) AppendArgument(_ context.Context, arg *models.Argument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	battle, ok := m.battles[arg.BattleID]
	if !ok {
		return ErrNotFound
	}
	battle.Transcript = append(battle.Transcript, *arg)
	return nil
}

func (m *MemoryStore) AppendBet(_ context.Context, bet *models.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	battle, ok := m.battles[bet.BattleID]
	if !ok {
		return ErrNotFound
	}
	battle.Bets = append(battle.Bets, *bet)
	return nil
}

func (m *MemoryStore) AppendVote(_ context.Context, vote *models.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	battle, ok := m.battles[vote.BattleID]
	if !ok {
		return ErrNotFound
	}
	battle.Votes = append(battle.Votes, *vote)
	return nil
}
