package jobs

import (
	"context"
	"log"
	"time"

	"agent-arena/internal/models"
	"agent-arena/internal/services"
)

// RoundWatchdog enforces the wall-clock policy the state machine itself
// stays free of: it force-advances live rounds whose deadline passed with a
// fighter still silent, and settles battles whose voting window has closed.
type RoundWatchdog struct {
	battles  *services.BattleService
	interval time.Duration
	stopChan chan struct{}
}

// NewRoundWatchdog creates a new round watchdog job
func NewRoundWatchdog(battles *services.BattleService, interval time.Duration) *RoundWatchdog {
	return &RoundWatchdog{
		battles:  battles,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop. Run it in its own goroutine.
func (rw *RoundWatchdog) Start() {
	log.Printf("[RoundWatchdog] Starting round watchdog (interval: %v)", rw.interval)

	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rw.Sweep(time.Now())
		case <-rw.stopChan:
			log.Println("[RoundWatchdog] Stopping round watchdog")
			return
		}
	}
}

// Stop stops the sweep loop.
func (rw *RoundWatchdog) Stop() {
	close(rw.stopChan)
}

// Sweep runs one pass over all battles with deadlines in the past.
func (rw *RoundWatchdog) Sweep(now time.Time) {
	ctx := context.Background()

	for _, battle := range rw.battles.ListBattles(ctx, models.BattleStatusLive) {
		if battle.RoundEndsAt == nil || now.Before(*battle.RoundEndsAt) {
			continue
		}
		advanced, err := rw.battles.ForceAdvanceRound(ctx, battle.ID, now)
		if err != nil {
			log.Printf("[RoundWatchdog] Error advancing battle %d: %v", battle.ID, err)
			continue
		}
		if advanced {
			log.Printf("[RoundWatchdog] Battle %d advanced past round %d", battle.ID, battle.CurrentRound)
		}
	}

	for _, battle := range rw.battles.ListBattles(ctx, models.BattleStatusVoting) {
		if battle.VotingEndsAt == nil || now.Before(*battle.VotingEndsAt) {
			continue
		}
		if _, err := rw.battles.SettleBattle(ctx, battle.ID); err != nil {
			// A racing manual settle surfaces as invalid state; that is fine.
			log.Printf("[RoundWatchdog] Error settling battle %d: %v", battle.ID, err)
			continue
		}
		log.Printf("[RoundWatchdog] Battle %d voting window closed, settled", battle.ID)
	}
}
