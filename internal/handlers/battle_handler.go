package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"agent-arena/internal/auth"
	"agent-arena/internal/chain"
	"agent-arena/internal/models"
	"agent-arena/internal/services"

	"github.com/gin-gonic/gin"
)

type BattleHandler struct {
	battles *services.BattleService
	ledger  *chain.Ledger
}

func NewBattleHandler(battles *services.BattleService, ledger *chain.Ledger) *BattleHandler {
	return &BattleHandler{
		battles: battles,
		ledger:  ledger,
	}
}

func battleID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid battle id"})
		return 0, false
	}
	return id, true
}

// Create creates a new battle between two registered fighters
// POST /api/battles
func (h *BattleHandler) Create(c *gin.Context) {
	var req models.CreateBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	battle, err := h.battles.CreateBattle(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"battle": battle})
}

// List lists battles, optionally filtered by status
// GET /api/battles?status=live
func (h *BattleHandler) List(c *gin.Context) {
	status := models.BattleStatus(c.Query("status"))
	battles := h.battles.ListBattles(c.Request.Context(), status)
	c.JSON(http.StatusOK, gin.H{"battles": battles, "count": len(battles)})
}

// Get retrieves a battle by id
// GET /api/battles/:id
func (h *BattleHandler) Get(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	battle, err := h.battles.GetBattle(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"battle": battle})
}

// Start starts a pending battle
// POST /api/battles/:id/start
func (h *BattleHandler) Start(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	battle, err := h.battles.StartBattle(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Battle started", "battle": battle})
}

// Argue submits the authenticated fighter's argument for the current round
// POST /api/battles/:id/argue
func (h *BattleHandler) Argue(c *gin.Context) {
	wallet, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := battleID(c)
	if !ok {
		return
	}

	var req models.SubmitArgumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	arg, err := h.battles.SubmitArgument(c.Request.Context(), id, wallet, req.Argument)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "argument": arg})
}

// Transcript returns the ordered argument transcript
// GET /api/battles/:id/transcript
func (h *BattleHandler) Transcript(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	battle, err := h.battles.GetBattle(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcript": battle.Transcript})
}

// Bet places a wager on one side of a battle
// POST /api/battles/:id/bet
func (h *BattleHandler) Bet(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.battles.PlaceBet(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	odds, err := h.battles.GetOdds(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bet": bet, "odds": odds})
}

// Odds returns the live pari-mutuel odds
// GET /api/battles/:id/odds
func (h *BattleHandler) Odds(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	odds, err := h.battles.GetOdds(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, odds)
}

// Vote submits a weighted vote during the voting window
// POST /api/battles/:id/vote
func (h *BattleHandler) Vote(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	var req models.SubmitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totals, err := h.battles.SubmitVote(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "totals": totals})
}

// Settle settles a battle in voting state
// POST /api/battles/:id/settle
func (h *BattleHandler) Settle(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	battle, err := h.battles.SettleBattle(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"battle": battle})
}

// Cancel cancels a battle that has not reached voting
// POST /api/battles/:id/cancel
func (h *BattleHandler) Cancel(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	battle, err := h.battles.CancelBattle(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"battle": battle})
}

// Payout quotes a bettor's winnings on a settled battle
// GET /api/battles/:id/payout?wallet=...
func (h *BattleHandler) Payout(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet query parameter required"})
		return
	}

	payout, err := h.battles.PayoutQuote(c.Request.Context(), id, wallet)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet, "payout": payout})
}

// GetAccount returns a battle's record in its on-chain account form
// GET /api/battles/:id/account
func (h *BattleHandler) GetAccount(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}

	battle, err := h.battles.GetBattle(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	account, err := chain.SnapshotBattle(battle)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := chain.EncodeBattle(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	address, err := h.ledger.BattleAddress(battle.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address.String(),
		"data":    base64.StdEncoding.EncodeToString(data),
	})
}
