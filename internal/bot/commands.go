package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const failedCommandReply = "Failed command. Use `help` to see usage."

// messageCreate dispatches mention-prefixed text commands:
// ignore <seconds>, add <channelID>, delete <channelID>, reload, list, help.
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}
	if !mentionsUser(m.Mentions, s.State.User.ID) {
		return
	}

	command, arg := parseCommand(m.Content)

	var reply string
	switch command {
	case "ignore":
		reply = b.handleIgnoreCommand(m.GuildID, arg)
	case "add":
		reply = b.handleAddCommand(m.GuildID, arg)
	case "delete":
		reply = b.handleDeleteCommand(m.GuildID, arg)
	case "reload":
		reply = b.handleReloadCommand(m.GuildID)
	case "list":
		reply = b.handleListCommand(m.GuildID)
	default:
		reply = helpMessage()
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		log.Printf("Error replying to command in channel %s: %v", m.ChannelID, err)
	}
}

func (b *Bot) handleIgnoreCommand(guildID, arg string) string {
	seconds, err := strconv.Atoi(arg)
	if err != nil {
		return failedCommandReply
	}
	if seconds < 0 {
		seconds = 0
	}
	if err := b.Tracker.SetMinTime(guildID, seconds); err != nil {
		log.Printf("Error setting min time for guild %s: %v", guildID, err)
		return failedCommandReply
	}
	return fmt.Sprintf("Calls shorter than %d seconds will not be announced.", seconds)
}

func (b *Bot) handleAddCommand(guildID, arg string) string {
	channelID := parseChannelID(arg)
	if channelID == "" {
		return failedCommandReply
	}

	// The ID is stored even when it cannot be resolved to a live channel;
	// the record then carries the raw ID as its name.
	var name string
	if ch, err := b.Session.State.Channel(channelID); err == nil && ch.GuildID == guildID {
		name = ch.Name
	}

	if err := b.Tracker.AddChannel(guildID, channelID, name); err != nil {
		log.Printf("Error adding channel %s for guild %s: %v", channelID, guildID, err)
		return failedCommandReply
	}
	if name == "" {
		return fmt.Sprintf("Now watching channel `%s` (could not resolve its name).", channelID)
	}
	return fmt.Sprintf("Now watching voice channel **%s**.", name)
}

func (b *Bot) handleDeleteCommand(guildID, arg string) string {
	channelID := parseChannelID(arg)
	if channelID == "" {
		return failedCommandReply
	}
	if err := b.Tracker.RemoveChannel(guildID, channelID); err != nil {
		log.Printf("Error removing channel %s for guild %s: %v", channelID, guildID, err)
		return failedCommandReply
	}
	return fmt.Sprintf("Stopped watching channel `%s`.", channelID)
}

func (b *Bot) handleReloadCommand(guildID string) string {
	guild, err := b.Session.State.Guild(guildID)
	if err != nil {
		log.Printf("Error fetching guild %s for reload: %v", guildID, err)
		return failedCommandReply
	}
	if err := b.registerGuild(guild); err != nil {
		log.Printf("Error reloading guild %s: %v", guildID, err)
		return failedCommandReply
	}
	return "Reloaded the watched voice channel list."
}

func (b *Bot) handleListCommand(guildID string) string {
	names, err := b.Tracker.ListChannelNames(guildID)
	if err != nil {
		log.Printf("Error listing channels for guild %s: %v", guildID, err)
		return failedCommandReply
	}
	if len(names) == 0 {
		return "No voice channels are being watched."
	}
	return "Watched voice channels:\n" + strings.Join(names, "\n")
}

func helpMessage() string {
	var sb strings.Builder
	sb.WriteString("Mention me followed by a command:\n")
	sb.WriteString("`ignore <seconds>` — don't announce calls or streams shorter than this (default 30; negative becomes 0)\n")
	sb.WriteString("`add <channel>` — add a voice channel to the watch list\n")
	sb.WriteString("`delete <channel>` — remove a voice channel from the watch list\n")
	sb.WriteString("`reload` — rebuild the watch list from the server's current voice channels\n")
	sb.WriteString("`list` — show the watched voice channels\n")
	sb.WriteString("`help` — show this message\n")
	return sb.String()
}

// parseCommand splits a mention-prefixed message into command and argument.
// The first token is the bot mention and is skipped.
func parseCommand(content string) (command, arg string) {
	fields := strings.Fields(content)
	if len(fields) < 2 {
		return "", ""
	}
	command = strings.ToLower(fields[1])
	if len(fields) > 2 {
		arg = fields[2]
	}
	return command, arg
}

// parseChannelID accepts a raw channel ID or a <#id> channel mention.
func parseChannelID(arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "<#") && strings.HasSuffix(arg, ">") {
		arg = arg[2 : len(arg)-1]
	}
	if arg == "" {
		return ""
	}
	for _, r := range arg {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return arg
}

func mentionsUser(mentions []*discordgo.User, userID string) bool {
	for _, u := range mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}
