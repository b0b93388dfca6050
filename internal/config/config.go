package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Arena    ArenaConfig
	Chain    ChainConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret string
	// UseDatabase selects the gorm-backed stores; without it the arena
	// runs entirely in memory.
	UseDatabase bool
}

// ArenaConfig holds battle orchestration settings
type ArenaConfig struct {
	HouseFeeBps      int           // pari-mutuel house fee in basis points
	DefaultRoundSecs int           // round duration when the caller omits one
	VotingPeriod     time.Duration // window before the watchdog auto-settles
	WatchdogInterval time.Duration // how often expired rounds are swept
	StartingElo      int
	RequireChainKeys bool // reject wallets that are not valid base58 pubkeys
}

// ChainConfig holds on-chain ledger settings
type ChainConfig struct {
	ProgramID string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "arena"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "3001"),
		},
		App: AppConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			UseDatabase: getEnv("USE_DATABASE", "false") == "true",
		},
		Arena: ArenaConfig{
			HouseFeeBps:      getEnvInt("HOUSE_FEE_BPS", 500),
			DefaultRoundSecs: getEnvInt("DEFAULT_ROUND_DURATION", 120),
			VotingPeriod:     getEnvDuration("VOTING_PERIOD", 5*time.Minute),
			WatchdogInterval: getEnvDuration("WATCHDOG_INTERVAL", 5*time.Second),
			StartingElo:      getEnvInt("STARTING_ELO", 1000),
			RequireChainKeys: getEnv("REQUIRE_CHAIN_KEYS", "false") == "true",
		},
		Chain: ChainConfig{
			ProgramID: getEnv("ARENA_PROGRAM_ID", "6fh5E6VPXzAww1mU9M84sBgtqUXDDVY9HZh47tGBFCKb"),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.Arena.HouseFeeBps < 0 || config.Arena.HouseFeeBps >= 10000 {
		return nil, fmt.Errorf("HOUSE_FEE_BPS must be in [0, 10000)")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
