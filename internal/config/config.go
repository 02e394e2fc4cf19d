package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	DiscordToken   string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	HealthPort     string
	DefaultMinTime int
	LogChannelName string
)

// Load reads configuration from the environment (and .env if present).
// A missing bot token is fatal; everything else has a usable default.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	DiscordToken = os.Getenv("DISCORD_BOT_TOKEN")
	if DiscordToken == "" {
		log.Fatalf("please set ENV: DISCORD_BOT_TOKEN")
	}

	DatabaseType = os.Getenv("DATABASE_TYPE")
	if DatabaseType == "" {
		DatabaseType = "sqlite"
	}

	DatabasePath = os.Getenv("DATABASE_PATH")
	if DatabasePath == "" {
		DatabasePath = "voicewatch.db"
	}

	DatabaseURL = os.Getenv("DATABASE_URL")

	HealthPort = os.Getenv("HEALTH_PORT")
	if HealthPort == "" {
		HealthPort = os.Getenv("PORT")
	}
	if HealthPort == "" {
		HealthPort = "5000"
	}

	DefaultMinTime = 30
	if v := os.Getenv("DEFAULT_MIN_TIME"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Invalid DEFAULT_MIN_TIME %q, using %d", v, DefaultMinTime)
		} else {
			if n < 0 {
				n = 0
			}
			DefaultMinTime = n
		}
	}

	LogChannelName = os.Getenv("LOG_CHANNEL_NAME")
	if LogChannelName == "" {
		LogChannelName = "call"
	}
}

// GetDatabaseConnectionString returns the DSN for the configured backend.
func GetDatabaseConnectionString() string {
	if DatabaseType == "postgres" {
		return DatabaseURL
	}
	return DatabasePath
}
