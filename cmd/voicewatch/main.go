package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/voicewatch/voicewatch-bot/internal/bot"
	"github.com/voicewatch/voicewatch-bot/internal/config"
	"github.com/voicewatch/voicewatch-bot/internal/database"
	"github.com/voicewatch/voicewatch-bot/internal/health"
)

const version = "v0.2.0"

func main() {
	config.Load()

	log.Printf("Welcome to voicewatch, version: %s", version)

	err := database.Init(config.DatabaseType, config.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.Close()

	health.InitMetrics()
	health.Serve(config.HealthPort)

	bot, err := bot.New()
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	err = bot.Start()
	if err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	// Wait for a SIGINT or SIGTERM signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	bot.Stop()
}
