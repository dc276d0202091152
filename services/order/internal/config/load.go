package config

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/dealer_market/pkg/config"
)

type ServiceConfig struct {
	config.Config
}

// Load reads an optional .env file and then the environment. Kafka,
// Elasticsearch and Redis stay optional; empty settings disable them.
func Load(envFile string) ServiceConfig {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("no env file loaded from %s: %v", envFile, err)
		}
	}

	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustPositive(cfg.ServerPort, "SERVER_PORT")

	return ServiceConfig{Config: cfg}
}
