package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string // development или production
	HTTPAddr    string
	DBDSN       string // пусто - хранилище в памяти, без Postgres
	RedisAddr   string // пусто - кеш отключён
	JWTSecret   string
	LogFile     string
	CORSOrigins []string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment: os.Getenv("ENV"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		DBDSN:       os.Getenv("DB_DSN"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		LogFile:     os.Getenv("LOG_FILE"),
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
		if cfg.Environment == "production" {
			log.Println("WARNING: JWT_SECRET is not set in production")
		}
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = []string{origins}
	} else {
		cfg.CORSOrigins = []string{"*"}
	}

	return cfg, nil
}
