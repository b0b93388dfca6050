package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"agent-arena/internal/auth"
	"agent-arena/internal/chain"
	"agent-arena/internal/config"
	"agent-arena/internal/database"
	"agent-arena/internal/events"
	"agent-arena/internal/handlers"
	"agent-arena/internal/jobs"
	"agent-arena/internal/repository"
	"agent-arena/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Pick the store backend: gorm/Postgres when configured, otherwise the
	// in-memory store.
	var fighterStore repository.FighterStore
	var battleStore repository.BattleStore

	if cfg.App.UseDatabase {
		if err := database.Connect(cfg.GetDSN()); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.AutoMigrate(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		repo := repository.NewRepository(database.GetDB())
		fighterStore = repo
		battleStore = repo
	} else {
		store := repository.NewMemoryStore()
		fighterStore = store
		battleStore = store
		log.Println("Running with in-memory stores")
	}

	// Event hub feeding websocket subscribers
	hub := events.NewHub()

	// Initialize services
	fighterService := services.NewFighterService(fighterStore, hub, cfg.Arena.StartingElo, cfg.Arena.RequireChainKeys)
	battleService := services.NewBattleService(
		battleStore,
		fighterService,
		hub,
		cfg.Arena.HouseFeeBps,
		cfg.Arena.DefaultRoundSecs,
		cfg.Arena.VotingPeriod,
	)
	if err := battleService.Restore(context.Background()); err != nil {
		log.Fatalf("Failed to restore battles: %v", err)
	}

	// On-chain account layout for ledger snapshots
	ledger, err := chain.NewLedger(cfg.Chain.ProgramID)
	if err != nil {
		log.Fatalf("Failed to init chain ledger: %v", err)
	}

	// Initialize handlers
	fighterHandler := handlers.NewFighterHandler(fighterService, ledger)
	battleHandler := handlers.NewBattleHandler(battleService, ledger)
	wsHandler := handlers.NewWSHandler(hub)

	// Start round watchdog
	watchdog := jobs.NewRoundWatchdog(battleService, cfg.Arena.WatchdogInterval)
	go watchdog.Start()

	// Set up Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Event stream
	router.GET("/ws", wsHandler.Serve)

	// Fighter routes (public)
	router.POST("/api/agents/register", fighterHandler.Register)
	router.GET("/api/agents", fighterHandler.List)
	router.GET("/api/agents/:wallet", fighterHandler.Get)
	router.GET("/api/agents/:wallet/account", fighterHandler.GetAccount)
	router.GET("/api/leaderboard", fighterHandler.Leaderboard)

	// Battle routes (public)
	router.POST("/api/battles", battleHandler.Create)
	router.GET("/api/battles", battleHandler.List)
	router.GET("/api/battles/:id", battleHandler.Get)
	router.POST("/api/battles/:id/start", battleHandler.Start)
	router.GET("/api/battles/:id/transcript", battleHandler.Transcript)
	router.POST("/api/battles/:id/bet", battleHandler.Bet)
	router.GET("/api/battles/:id/odds", battleHandler.Odds)
	router.POST("/api/battles/:id/vote", battleHandler.Vote)
	router.POST("/api/battles/:id/settle", battleHandler.Settle)
	router.POST("/api/battles/:id/cancel", battleHandler.Cancel)
	router.GET("/api/battles/:id/payout", battleHandler.Payout)
	router.GET("/api/battles/:id/account", battleHandler.GetAccount)

	// Argue requires the fighter's token
	argue := router.Group("/api/battles")
	argue.Use(auth.FighterMiddleware())
	{
		argue.POST("/:id/argue", battleHandler.Argue)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Arena orchestrator starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)
		log.Printf("Event stream: ws://localhost:%s/ws", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	watchdog.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
