package models

import (
	"time"
)

// TrackedChannel is a voice channel whose occupancy is watched for call
// start/end notifications. Calling is true while a notification-eligible
// call is considered active; SinceTime marks the last transition.
type TrackedChannel struct {
	ChannelID string    `gorm:"primaryKey;column:channel_id"`
	GuildID   string    `gorm:"column:guild_id"`
	Name      string    `gorm:"column:name"`
	Calling   bool      `gorm:"column:calling"`
	SinceTime time.Time `gorm:"column:since_time"`
}

func (TrackedChannel) TableName() string {
	return "tracked_channels"
}

// StreamSession records a member's in-progress screen/content broadcast.
// Existence of a row means the session is open; it is deleted on stream end.
type StreamSession struct {
	MemberID   string    `gorm:"primaryKey;column:member_id"`
	GuildID    string    `gorm:"column:guild_id"`
	MemberName string    `gorm:"column:member_name"`
	StartedAt  time.Time `gorm:"column:started_at"`
}

func (StreamSession) TableName() string {
	return "stream_sessions"
}

// GuildSettings holds per-guild notification configuration. MinTime is the
// suppression threshold in seconds; TrackedChannelNames caches the display
// names of tracked channels, newline-joined, for the list command.
type GuildSettings struct {
	GuildID             string `gorm:"primaryKey;column:guild_id"`
	MinTime             int    `gorm:"column:min_time"`
	TrackedChannelNames string `gorm:"column:tracked_channel_names"`
}

func (GuildSettings) TableName() string {
	return "guild_settings"
}

type ServiceStatus struct {
	ServiceName   string    `gorm:"primaryKey;column:service_name"`
	Status        string    `gorm:"column:status"`
	LastHeartbeat time.Time `gorm:"column:last_heartbeat"`
	Details       string    `gorm:"column:details"`
}

func (ServiceStatus) TableName() string {
	return "service_status"
}
