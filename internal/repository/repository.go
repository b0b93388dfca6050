package repository

import (
	"context"
	"errors"
	"strings"

	"agent-arena/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gorm-backed implementation of FighterStore and
// BattleStore.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateFighter creates a new fighter record
func (r *Repository) CreateFighter(ctx context.Context, fighter *models.Fighter) error {
	return r.db.WithContext(ctx).Create(fighter).Error
}

// GetFighterByWallet retrieves a fighter by wallet address
func (r *Repository) GetFighterByWallet(ctx context.Context, wallet string) (*models.Fighter, error) {
	var fighter models.Fighter
	err := r.db.WithContext(ctx).Where("wallet = ?", wallet).First(&fighter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fighter, nil
}

// GetFighterByName retrieves a fighter by display name, case-insensitive
func (r *Repository) GetFighterByName(ctx context.Context, name string) (*models.Fighter, error) {
	var fighter models.Fighter
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		First(&fighter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fighter, nil
}

// ListFighters retrieves all registered fighters
func (r *Repository) ListFighters(ctx context.Context) ([]*models.Fighter, error) {
	var fighters []*models.Fighter
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&fighters).Error
	if err != nil {
		return nil, err
	}
	return fighters, nil
}

// UpdateFighter updates a fighter record
func (r *Repository) UpdateFighter(ctx context.Context, fighter *models.Fighter) error {
	return r.db.WithContext(ctx).Save(fighter).Error
}

// CreateBattle creates a new battle
func (r *Repository) CreateBattle(ctx context.Context, battle *models.Battle) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(battle).Error
}

// UpdateBattle updates battle metadata without touching association rows
func (r *Repository) UpdateBattle(ctx context.Context, battle *models.Battle) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(battle).Error
}

// ListBattles retrieves all battles with transcript, bets and votes loaded
func (r *Repository) ListBattles(ctx context.Context) ([]*models.Battle, error) {
	var battles []*models.Battle
	err := r.db.WithContext(ctx).
		Preload("Transcript", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Bets", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Votes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("id ASC").
		Find(&battles).Error
	if err != nil {
		return nil, err
	}
	return battles, nil
}

// AppendArgument records an argument row
func (r *Repository) AppendArgument(ctx context.Context, arg *models.Argument) error {
	return r.db.WithContext(ctx).Create(arg).Error
}

// AppendBet records a bet row
func (r *Repository) AppendBet(ctx context.Context, bet *models.Bet) error {
	return r.db.WithContext(ctx).Create(bet).Error
}

// AppendVote records a vote row
func (r *Repository) AppendVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}
