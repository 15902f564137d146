package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         string
	StoreDriver  string // file | sqlite
	DataFile     string
	DBDSN        string
	LogFile      string
	TemplatesDir string

	RateLimitMax    int
	RateLimitWindow time.Duration
	TokenTTL        time.Duration
	LatencyScale    float64

	AdminKey   string
	APIRateMax int
	SeedDemo   bool
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

func Load() Config {
	scale, err := strconv.ParseFloat(getenv("SYNC_LATENCY_SCALE", "1"), 64)
	if err != nil || scale < 0 {
		scale = 1
	}
	seed, err := strconv.ParseBool(getenv("SEED_DEMO", "true"))
	if err != nil {
		seed = true
	}
	driver := strings.ToLower(getenv("STORE_DRIVER", "file"))
	if driver != "sqlite" {
		driver = "file"
	}

	cfg := Config{
		Port:            getenv("PORT", "8080"),
		StoreDriver:     driver,
		DataFile:        getenv("DATA_FILE", "./data/products.json"),
		DBDSN:           getenv("DB_DSN", "catalogsync.db"),
		LogFile:         getenv("LOG_FILE", ""),
		TemplatesDir:    getenv("TEMPLATES_DIR", "./web/templates"),
		RateLimitMax:    atoienv("RATE_LIMIT_MAX", 3),
		RateLimitWindow: durenvs("RATE_LIMIT_WINDOW_SEC", 60),
		TokenTTL:        durenvs("TOKEN_TTL_SEC", 60),
		LatencyScale:    scale,
		AdminKey:        os.Getenv("ADMIN_KEY"),
		APIRateMax:      atoienv("API_RATE_MAX", 120),
		SeedDemo:        seed,
	}
	log.Printf("[config] PORT=%s STORE_DRIVER=%s DATA_FILE=%s DB_DSN=%s LOG_FILE=%s RATE_LIMIT=%d/%s TOKEN_TTL=%s LATENCY_SCALE=%.2f ADMIN_KEY_SET=%t",
		cfg.Port, cfg.StoreDriver, cfg.DataFile, cfg.DBDSN, cfg.LogFile,
		cfg.RateLimitMax, cfg.RateLimitWindow, cfg.TokenTTL, cfg.LatencyScale, cfg.AdminKey != "")
	return cfg
}
