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

type FighterHandler struct {
	fighters *services.FighterService
	ledger   *chain.Ledger
}

func NewFighterHandler(fighters *services.FighterService, ledger *chain.Ledger) *FighterHandler {
	return &FighterHandler{
		fighters: fighters,
		ledger:   ledger,
	}
}

// Register registers a new fighter and issues its API token
// POST /api/agents/register
func (h *FighterHandler) Register(c *gin.Context) {
	var req models.RegisterFighterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fighter, err := h.fighters.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	token, err := auth.GenerateToken(fighter.Wallet, fighter.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"fighter": fighter, "token": token})
}

// List lists all registered fighters
// GET /api/agents
func (h *FighterHandler) List(c *gin.Context) {
	fighters, err := h.fighters.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fighters": fighters, "count": len(fighters)})
}

// Get retrieves a fighter by wallet
// GET /api/agents/:wallet
func (h *FighterHandler) Get(c *gin.Context) {
	fighter, err := h.fighters.Get(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fighter": fighter})
}

// Leaderboard returns the top fighters by rating
// GET /api/leaderboard
func (h *FighterHandler) Leaderboard(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	fighters, err := h.fighters.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": fighters})
}

// GetAccount returns a fighter's record in its on-chain account form
// GET /api/agents/:wallet/account
func (h *FighterHandler) GetAccount(c *gin.Context) {
	fighter, err := h.fighters.Get(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	account, err := chain.SnapshotFighter(fighter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := chain.EncodeFighter(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	address, err := h.ledger.FighterAddress(fighter.Wallet)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address.String(),
		"data":    base64.StdEncoding.EncodeToString(data),
	})
}
