package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/voicewatch/voicewatch-bot/internal/config"
	"github.com/voicewatch/voicewatch-bot/internal/database"
	"github.com/voicewatch/voicewatch-bot/internal/models"
	"github.com/voicewatch/voicewatch-bot/internal/tracker"
)

type Bot struct {
	Session *discordgo.Session
	Repo    *database.Repository
	Tracker *tracker.Tracker

	limiter *rate.Limiter

	mu          sync.Mutex
	logChannels map[string]string // guild ID -> log channel ID
}

func New() (*Bot, error) {
	discord, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		return nil, err
	}

	discord.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildVoiceStates |
		discordgo.IntentGuildPresences |
		discordgo.IntentMessageContent

	bot := &Bot{
		Session:     discord,
		Repo:        database.NewRepository(),
		limiter:     rate.NewLimiter(rate.Every(time.Second), 5),
		logChannels: make(map[string]string),
	}
	bot.Tracker = tracker.New(bot.Repo, bot, config.DefaultMinTime)

	bot.registerHandlers()

	return bot, nil
}

func (b *Bot) Start() error {
	err := b.Session.Open()
	if err != nil {
		return err
	}

	go b.heartbeat()

	return nil
}

func (b *Bot) Stop() {
	b.Session.Close()
}

func (b *Bot) registerHandlers() {
	b.Session.AddHandler(b.ready)
	b.Session.AddHandler(b.guildCreate)
	b.Session.AddHandler(b.guildDelete)
	b.Session.AddHandler(b.voiceStateUpdate)
	b.Session.AddHandler(b.messageCreate)
}

// Send delivers a notification embed to the guild's log channel. It is the
// tracker's notification sink.
func (b *Bot) Send(guildID string, message *discordgo.MessageEmbed) error {
	channelID, err := b.logChannelID(guildID)
	if err != nil {
		return err
	}

	if err := b.limiter.Wait(context.Background()); err != nil {
		return err
	}
	_, err = b.Session.ChannelMessageSendEmbed(channelID, message)
	return err
}

// logChannelID finds the guild's log channel by name, creating it when the
// guild has none yet. Results are cached per guild.
func (b *Bot) logChannelID(guildID string) (string, error) {
	b.mu.Lock()
	channelID, ok := b.logChannels[guildID]
	b.mu.Unlock()
	if ok {
		return channelID, nil
	}

	channels, err := b.Session.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to list channels for guild %s: %w", guildID, err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == config.LogChannelName {
			b.cacheLogChannel(guildID, ch.ID)
			return ch.ID, nil
		}
	}

	created, err := b.Session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:  config.LogChannelName,
		Type:  discordgo.ChannelTypeGuildText,
		Topic: "This channel records call and stream history.",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create log channel in guild %s: %w", guildID, err)
	}
	b.cacheLogChannel(guildID, created.ID)
	return created.ID, nil
}

func (b *Bot) cacheLogChannel(guildID, channelID string) {
	b.mu.Lock()
	b.logChannels[guildID] = channelID
	b.mu.Unlock()
}

func (b *Bot) forgetLogChannel(guildID string) {
	b.mu.Lock()
	delete(b.logChannels, guildID)
	b.mu.Unlock()
}

func (b *Bot) heartbeat() {
	ticker := time.NewTicker(2 * time.Minute)
	defer ticker.Stop()

	for {
		status := &models.ServiceStatus{
			ServiceName:   "discord_bot",
			Status:        "operational",
			LastHeartbeat: time.Now(),
		}
		if err := b.Repo.UpsertServiceStatus(status); err != nil {
			log.Printf("Error sending heartbeat: %v", err)
		}
		<-ticker.C
	}
}

func (b *Bot) updateBotStatus() {
	serverCount := len(b.Session.State.Guilds)
	status := fmt.Sprintf("voice channels on %d servers", serverCount)
	err := b.Session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{
			{
				Name: status,
				Type: discordgo.ActivityTypeWatching,
			},
		},
	})
	if err != nil {
		log.Printf("Error updating status: %v", err)
	}
}
