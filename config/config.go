package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	MongoURL         string
	MongoDatabase    string
	JWTSecretKey     string
	ServerPort       int
	ReminderInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Ошибку отсутствия .env не считаем фатальной.
	_ = godotenv.Load()

	mongoURL := os.Getenv("MONGO_URL")
	if mongoURL == "" {
		return nil, fmt.Errorf("MONGO_URL environment variable is not set")
	}

	mongoDB := os.Getenv("MONGO_DATABASE")
	if mongoDB == "" {
		mongoDB = "club_system"
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	reminderInterval := 30 * time.Second
	if raw := os.Getenv("REMINDER_SWEEP_INTERVAL"); raw != "" {
		reminderInterval, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REMINDER_SWEEP_INTERVAL environment variable: %w", err)
		}
	}

	cfg := &Config{
		MongoURL:         mongoURL,
		MongoDatabase:    mongoDB,
		JWTSecretKey:     jwtKey,
		ServerPort:       port,
		ReminderInterval: reminderInterval,
	}

	return cfg, nil
}
