package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP_ADDR    string
	LOG_LEVEL    string
	DATABASE_URL string

	REDIS_ADDR     string
	REDIS_PASSWORD string
	REDIS_DB       int

	JWT_SECRET                  string
	ACCESS_TOKEN_EXPIRE_MINUTES int
	REFRESH_TOKEN_EXPIRE_DAYS   int

	MAIL_HOST      string
	MAIL_PORT      int
	MAIL_USERNAME  string
	MAIL_PASSWORD  string
	MAIL_FROM      string
	MAIL_FROM_NAME string

	CLD_NAME       string
	CLD_API_KEY    string
	CLD_API_SECRET string

	KAFKA_ADDRESS string
	ES_URL        string
	ES_USER       string
	ES_PASSWORD   string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		HTTP_ADDR:    getEnv("HTTP_ADDR", ":8080"),
		LOG_LEVEL:    getEnv("LOG_LEVEL", "info"),
		DATABASE_URL: os.Getenv("DATABASE_URL"),

		REDIS_ADDR:     getEnv("REDIS_ADDR", "localhost:6379"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),
		REDIS_DB:       getEnvInt("REDIS_DB", 0),

		JWT_SECRET:                  os.Getenv("JWT_SECRET"),
		ACCESS_TOKEN_EXPIRE_MINUTES: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		REFRESH_TOKEN_EXPIRE_DAYS:   getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 7),

		MAIL_HOST:      os.Getenv("MAIL_HOST"),
		MAIL_PORT:      getEnvInt("MAIL_PORT", 587),
		MAIL_USERNAME:  os.Getenv("MAIL_USERNAME"),
		MAIL_PASSWORD:  os.Getenv("MAIL_PASSWORD"),
		MAIL_FROM:      os.Getenv("MAIL_FROM"),
		MAIL_FROM_NAME: getEnv("MAIL_FROM_NAME", "Contacts App"),

		CLD_NAME:       os.Getenv("CLD_NAME"),
		CLD_API_KEY:    os.Getenv("CLD_API_KEY"),
		CLD_API_SECRET: os.Getenv("CLD_API_SECRET"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		ES_URL:        os.Getenv("ES_URL"),
		ES_USER:       os.Getenv("ES_USER"),
		ES_PASSWORD:   os.Getenv("ES_PASSWORD"),
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Notice: %s=%q is not a number, using %d", key, v, fallback)
		return fallback
	}
	return n
}
