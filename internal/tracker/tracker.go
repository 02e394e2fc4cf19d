// Package tracker derives call and stream start/stop edges from voice state
// changes and drives the tracking stores and the notification sink.
package tracker

import (
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/voicewatch/voicewatch-bot/internal/embed"
	"github.com/voicewatch/voicewatch-bot/internal/health"
	"github.com/voicewatch/voicewatch-bot/internal/models"
	"github.com/voicewatch/voicewatch-bot/internal/timefmt"
)

// Store is the persistence surface the tracker mutates. *database.Repository
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	GetTrackedChannel(channelID string) (*models.TrackedChannel, error)
	UpsertTrackedChannel(channel *models.TrackedChannel) error
	DeleteTrackedChannel(channelID string) error
	ListChannelsInGuild(guildID string) ([]models.TrackedChannel, error)
	DeleteChannelsInGuild(guildID string) error

	GetStreamSession(memberID string) (*models.StreamSession, error)
	UpsertStreamSession(session *models.StreamSession) error
	DeleteStreamSession(memberID string) error
	DeleteSessionsForMembers(memberIDs []string) error

	GetGuildSettings(guildID string) (*models.GuildSettings, error)
	UpsertGuildSettings(settings *models.GuildSettings) error
	UpdateMinTime(guildID string, minTime int) error
	UpdateTrackedChannelNames(guildID, names string) error
	DeleteGuildSettings(guildID string) error
}

// Sink accepts finished notification payloads for a guild's log channel.
type Sink interface {
	Send(guildID string, message *discordgo.MessageEmbed) error
}

// VoiceEvent describes one member's voice state before and after a change.
// Empty channel IDs mean "not in a voice channel". OldChannelMembers is the
// number of members remaining in the old channel after the change.
type VoiceEvent struct {
	GuildID           string
	MemberID          string
	MemberName        string
	MemberAvatarURL   string
	OldChannelID      string
	NewChannelID      string
	NewChannelName    string
	OldChannelMembers int
	OldStreaming      bool
	NewStreaming      bool
	ActivityName      string
	ActivityURL       string
}

// ChannelInfo identifies a voice channel when a guild is (re)registered.
type ChannelInfo struct {
	ID   string
	Name string
}

// Tracker owns the three tracking stores and decides which notifications to
// emit. All handler methods serialize per channel/member key so a stale read
// never clobbers a newer write.
type Tracker struct {
	store          Store
	sink           Sink
	defaultMinTime int
	now            func() time.Time

	channelLocks keyedMutex
	memberLocks  keyedMutex
}

// New creates a tracker over the given store and sink. defaultMinTime is the
// suppression threshold in seconds used when a guild has no settings record.
func New(store Store, sink Sink, defaultMinTime int) *Tracker {
	return &Tracker{
		store:          store,
		sink:           sink,
		defaultMinTime: defaultMinTime,
		now:            time.Now,
	}
}

// HandleVoiceState processes one voice state change. The join branch runs
// first; when it emits a call-start notification the empty-channel leave
// check is skipped for this event. The streaming branch is evaluated
// regardless of channel movement.
func (t *Tracker) HandleVoiceState(ev VoiceEvent) error {
	health.CountVoiceEvent()

	if ev.NewChannelID != ev.OldChannelID {
		emitted := false
		if ev.NewChannelID != "" {
			var err error
			emitted, err = t.handleChannelJoin(ev)
			if err != nil {
				return err
			}
		}
		if !emitted && ev.OldChannelID != "" && ev.OldChannelMembers < 1 {
			if err := t.handleChannelEmptied(ev); err != nil {
				return err
			}
		}
	}

	if ev.NewStreaming != ev.OldStreaming {
		if ev.NewStreaming {
			return t.handleStreamStart(ev)
		}
		return t.handleStreamEnd(ev)
	}
	return nil
}

// handleChannelJoin flips the calling flag when a member enters a tracked,
// idle channel. Reports whether a call-start notification was emitted.
func (t *Tracker) handleChannelJoin(ev VoiceEvent) (bool, error) {
	unlock := t.channelLocks.lock(ev.NewChannelID)
	defer unlock()

	channel, err := t.store.GetTrackedChannel(ev.NewChannelID)
	if err != nil {
		return false, err
	}
	if channel == nil || channel.Calling {
		// Not tracked, or another member already started the call.
		return false, nil
	}

	channel.Calling = true
	channel.SinceTime = t.now()
	if err := t.store.UpsertTrackedChannel(channel); err != nil {
		return false, err
	}

	name := ev.NewChannelName
	if name == "" {
		name = channel.Name
	}
	if err := t.sink.Send(ev.GuildID, embed.CreateCallStartEmbed(name, ev.MemberName, ev.MemberAvatarURL)); err != nil {
		return true, err
	}
	health.CountNotification("call_start")
	return true, nil
}

// handleChannelEmptied ends the call on a tracked channel whose last member
// just left. Sub-threshold calls clear the flag without notifying.
func (t *Tracker) handleChannelEmptied(ev VoiceEvent) error {
	unlock := t.channelLocks.lock(ev.OldChannelID)
	defer unlock()

	channel, err := t.store.GetTrackedChannel(ev.OldChannelID)
	if err != nil {
		return err
	}
	if channel == nil || !channel.Calling {
		return nil
	}

	channel.Calling = false
	if err := t.store.UpsertTrackedChannel(channel); err != nil {
		return err
	}

	minTime, err := t.guildMinTime(ev.GuildID)
	if err != nil {
		return err
	}
	duration, ok := timefmt.FormatDuration(channel.SinceTime, t.now(), minTime)
	if !ok {
		health.CountSuppressed()
		return nil
	}

	if err := t.sink.Send(ev.GuildID, embed.CreateCallEndEmbed(channel.Name, duration)); err != nil {
		return err
	}
	health.CountNotification("call_end")
	return nil
}

func (t *Tracker) handleStreamStart(ev VoiceEvent) error {
	unlock := t.memberLocks.lock(ev.MemberID)
	defer unlock()

	session := &models.StreamSession{
		MemberID:   ev.MemberID,
		GuildID:    ev.GuildID,
		MemberName: ev.MemberName,
		StartedAt:  t.now(),
	}
	if err := t.store.UpsertStreamSession(session); err != nil {
		return err
	}

	if err := t.sink.Send(ev.GuildID, embed.CreateStreamStartEmbed(ev.MemberName, ev.ActivityName, ev.ActivityURL, ev.MemberAvatarURL)); err != nil {
		return err
	}
	health.CountNotification("stream_start")
	return nil
}

// handleStreamEnd closes the member's session. The record is deleted whether
// or not a notification goes out.
func (t *Tracker) handleStreamEnd(ev VoiceEvent) error {
	unlock := t.memberLocks.lock(ev.MemberID)
	defer unlock()

	session, err := t.store.GetStreamSession(ev.MemberID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	minTime, err := t.guildMinTime(ev.GuildID)
	if err != nil {
		return err
	}
	duration, ok := timefmt.FormatDuration(session.StartedAt, t.now(), minTime)

	if err := t.store.DeleteStreamSession(ev.MemberID); err != nil {
		return err
	}
	if !ok {
		health.CountSuppressed()
		return nil
	}

	name := ev.MemberName
	if name == "" {
		name = session.MemberName
	}
	if err := t.sink.Send(ev.GuildID, embed.CreateStreamEndEmbed(name, duration)); err != nil {
		return err
	}
	health.CountNotification("stream_end")
	return nil
}

// HandleGuildCreate resets and rebuilds tracking for a guild: every voice
// channel except the AFK channel becomes a tracked channel with no active
// call, and the guild gets a settings record with the default threshold.
// Calling it twice in a row leaves the same state as calling it once.
func (t *Tracker) HandleGuildCreate(guildID, afkChannelID string, voiceChannels []ChannelInfo) error {
	if err := t.store.DeleteChannelsInGuild(guildID); err != nil {
		return err
	}

	now := t.now()
	for _, ch := range voiceChannels {
		if ch.ID == afkChannelID {
			continue
		}
		channel := &models.TrackedChannel{
			ChannelID: ch.ID,
			GuildID:   guildID,
			Name:      ch.Name,
			Calling:   false,
			SinceTime: now,
		}
		if err := t.store.UpsertTrackedChannel(channel); err != nil {
			return err
		}
	}

	settings := &models.GuildSettings{
		GuildID: guildID,
		MinTime: t.defaultMinTime,
	}
	if err := t.store.UpsertGuildSettings(settings); err != nil {
		return err
	}
	return t.refreshChannelNames(guildID)
}

// HandleGuildDelete removes every record belonging to a departed guild.
func (t *Tracker) HandleGuildDelete(guildID string, memberIDs []string) error {
	if err := t.store.DeleteGuildSettings(guildID); err != nil {
		return err
	}
	if err := t.store.DeleteChannelsInGuild(guildID); err != nil {
		return err
	}
	return t.store.DeleteSessionsForMembers(memberIDs)
}

// SetMinTime updates a guild's suppression threshold. Negative values clamp
// to zero.
func (t *Tracker) SetMinTime(guildID string, seconds int) error {
	if seconds < 0 {
		seconds = 0
	}
	return t.store.UpdateMinTime(guildID, seconds)
}

// AddChannel starts tracking a channel by ID. The ID is not validated
// against the guild's live channel list; an unresolvable ID is stored with
// the ID as its display name.
func (t *Tracker) AddChannel(guildID, channelID, name string) error {
	if name == "" {
		name = channelID
	}
	unlock := t.channelLocks.lock(channelID)
	channel := &models.TrackedChannel{
		ChannelID: channelID,
		GuildID:   guildID,
		Name:      name,
		Calling:   false,
		SinceTime: t.now(),
	}
	err := t.store.UpsertTrackedChannel(channel)
	unlock()
	if err != nil {
		return err
	}
	return t.refreshChannelNames(guildID)
}

// RemoveChannel stops tracking a channel.
func (t *Tracker) RemoveChannel(guildID, channelID string) error {
	unlock := t.channelLocks.lock(channelID)
	err := t.store.DeleteTrackedChannel(channelID)
	unlock()
	if err != nil {
		return err
	}
	return t.refreshChannelNames(guildID)
}

// ListChannelNames returns the cached tracked-channel name list for a guild.
func (t *Tracker) ListChannelNames(guildID string) ([]string, error) {
	settings, err := t.store.GetGuildSettings(guildID)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.TrackedChannelNames == "" {
		return nil, nil
	}
	return strings.Split(settings.TrackedChannelNames, "\n"), nil
}

// guildMinTime returns the guild's threshold, falling back to the default
// when the guild has no settings record.
func (t *Tracker) guildMinTime(guildID string) (int, error) {
	settings, err := t.store.GetGuildSettings(guildID)
	if err != nil {
		return 0, err
	}
	if settings == nil {
		return t.defaultMinTime, nil
	}
	return settings.MinTime, nil
}

// refreshChannelNames recomputes the cached name list after tracking
// membership changes.
func (t *Tracker) refreshChannelNames(guildID string) error {
	channels, err := t.store.ListChannelsInGuild(guildID)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name)
	}
	return t.store.UpdateTrackedChannelNames(guildID, strings.Join(names, "\n"))
}

// keyedMutex serializes work per string key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
