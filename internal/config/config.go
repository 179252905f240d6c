package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int

	// Storage backend: "file" (JSON documents) or "db" (relational).
	StoreBackend string
	DataDir      string
	StaticDir    string

	// relational backend
	DBDriver string // "sqlite" or "mysql"
	DBDSN    string

	// OpenRouter proxy
	OpenRouterBaseURL string
	OpenRouterTimeout time.Duration
}

func Load() Config {
	// optional local overrides; a missing .env is fine
	_ = godotenv.Load()

	port := 8080
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "file"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "web"
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		switch driver {
		case "mysql":
			dsn = "app:apppass@tcp(127.0.0.1:3306)/liti?charset=utf8mb4&parseTime=true&loc=Local"
		default:
			dsn = filepath.Join(dataDir, "liti.db")
		}
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}

	timeout := 30 * time.Second
	if v := os.Getenv("OPENROUTER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Second
		}
	}

	return Config{
		Port:         port,
		StoreBackend: backend,
		DataDir:      dataDir,
		StaticDir:    staticDir,

		DBDriver: driver,
		DBDSN:    dsn,

		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterTimeout: timeout,
	}
}
