package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Log    LogConfig
	Game   GameConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr        string
	ReadTimeout int
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// TxMaxRetries bounds optimistic transaction attempts per command
	TxMaxRetries int
}

// LogConfig selects the zap logger
type LogConfig struct {
	Level string
	Env   string
}

// GameConfig holds round timing and the random seed for package draws
type GameConfig struct {
	ObstacleAnswerSeconds int
	SpeedDefaultSeconds   int
	SummitBuzzerSeconds   int
	SummitTeamsToFinish   int

	// RandomSeed of 0 seeds from the wall clock
	RandomSeed int64
}

// Development reports whether a development logger should be used
func (c LogConfig) Development() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Load reads configuration from environment, with an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	seed, err := strconv.ParseInt(getEnv("RANDOM_SEED", "0"), 10, 64)
	if err != nil {
		seed = 0
	}

	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout: getEnvInt("READ_TIMEOUT_SEC", 15),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			TxMaxRetries: getEnvInt("TX_MAX_RETRIES", 8),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Env:   getEnv("APP_ENV", "production"),
		},
		Game: GameConfig{
			ObstacleAnswerSeconds: getEnvInt("OBSTACLE_ANSWER_SECONDS", 15),
			SpeedDefaultSeconds:   getEnvInt("SPEED_DEFAULT_SECONDS", 30),
			SummitBuzzerSeconds:   getEnvInt("SUMMIT_BUZZER_SECONDS", 5),
			SummitTeamsToFinish:   getEnvInt("SUMMIT_TEAMS_TO_FINISH", 4),
			RandomSeed:            seed,
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
