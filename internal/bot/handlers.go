package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/voicewatch/voicewatch-bot/internal/tracker"
)

func (b *Bot) ready(s *discordgo.Session, event *discordgo.Ready) {
	log.Println("Bot is ready")
	b.updateBotStatus()
}

func (b *Bot) guildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	log.Printf("Bot joined server: %s", event.Guild.Name)

	if err := b.registerGuild(event.Guild); err != nil {
		log.Printf("Error registering guild %s: %v", event.Guild.ID, err)
	}
	if _, err := b.logChannelID(event.Guild.ID); err != nil {
		log.Printf("Error preparing log channel for guild %s: %v", event.Guild.ID, err)
	}
	b.updateBotStatus()
}

func (b *Bot) guildDelete(s *discordgo.Session, event *discordgo.GuildDelete) {
	if event.Unavailable {
		log.Printf("Guild %s became unavailable.", event.ID)
		return
	}

	log.Printf("Bot removed from guild: %s. Cleaning up associated data.", event.ID)
	var memberIDs []string
	if event.BeforeDelete != nil {
		for _, m := range event.BeforeDelete.Members {
			memberIDs = append(memberIDs, m.User.ID)
		}
	}
	if err := b.Tracker.HandleGuildDelete(event.ID, memberIDs); err != nil {
		log.Printf("Error cleaning up guild %s: %v", event.ID, err)
	}
	b.forgetLogChannel(event.ID)
	b.updateBotStatus()
}

// registerGuild hands the guild's voice channels to the tracker, resetting
// any stale call state from a previous run.
func (b *Bot) registerGuild(guild *discordgo.Guild) error {
	var channels []tracker.ChannelInfo
	for _, ch := range guild.Channels {
		if ch.Type == discordgo.ChannelTypeGuildVoice {
			channels = append(channels, tracker.ChannelInfo{ID: ch.ID, Name: ch.Name})
		}
	}
	return b.Tracker.HandleGuildCreate(guild.ID, guild.AfkChannelID, channels)
}

func (b *Bot) voiceStateUpdate(s *discordgo.Session, vsu *discordgo.VoiceStateUpdate) {
	var oldChannelID string
	var oldStreaming bool
	if vsu.BeforeUpdate != nil {
		oldChannelID = vsu.BeforeUpdate.ChannelID
		oldStreaming = vsu.BeforeUpdate.SelfStream
	}

	if vsu.ChannelID == oldChannelID && vsu.SelfStream == oldStreaming {
		return
	}

	ev := tracker.VoiceEvent{
		GuildID:      vsu.GuildID,
		MemberID:     vsu.UserID,
		OldChannelID: oldChannelID,
		NewChannelID: vsu.ChannelID,
		OldStreaming: oldStreaming,
		NewStreaming: vsu.SelfStream,
	}

	if member := b.resolveMember(vsu); member != nil {
		ev.MemberName = member.User.Username
		ev.MemberAvatarURL = member.User.AvatarURL("")
	}
	if vsu.ChannelID != "" {
		if ch, err := s.State.Channel(vsu.ChannelID); err == nil {
			ev.NewChannelName = ch.Name
		}
	}
	if oldChannelID != "" {
		ev.OldChannelMembers = b.channelMemberCount(vsu.GuildID, oldChannelID)
	}
	if vsu.SelfStream && !oldStreaming {
		ev.ActivityName, ev.ActivityURL = b.streamingActivity(vsu.GuildID, vsu.UserID)
	}

	if err := b.Tracker.HandleVoiceState(ev); err != nil {
		log.Printf("Error handling voice state change for member %s: %v", vsu.UserID, err)
	}
}

func (b *Bot) resolveMember(vsu *discordgo.VoiceStateUpdate) *discordgo.Member {
	if vsu.Member != nil && vsu.Member.User != nil {
		return vsu.Member
	}
	member, err := b.Session.State.Member(vsu.GuildID, vsu.UserID)
	if err != nil {
		return nil
	}
	return member
}

// channelMemberCount counts the members currently in a voice channel. The
// session state is already updated for the event being handled, so this is
// the count after the change.
func (b *Bot) channelMemberCount(guildID, channelID string) int {
	guild, err := b.Session.State.Guild(guildID)
	if err != nil {
		return 0
	}
	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			count++
		}
	}
	return count
}

// streamingActivity returns the member's current broadcast name and URL from
// their presence, if one is visible.
func (b *Bot) streamingActivity(guildID, userID string) (string, string) {
	presence, err := b.Session.State.Presence(guildID, userID)
	if err != nil || presence == nil {
		return "", ""
	}
	for _, activity := range presence.Activities {
		if activity.Type == discordgo.ActivityTypeStreaming {
			return activity.Name, activity.URL
		}
	}
	return "", ""
}
