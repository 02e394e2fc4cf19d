package database

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voicewatch/voicewatch-bot/internal/models"
)

// Repository handles database operations for the tracking stores.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository instance
func NewRepository() *Repository {
	return &Repository{db: DB}
}

// GetTrackedChannel retrieves a tracked channel by its channel ID.
// Returns (nil, nil) if the channel is not tracked, which is not an error.
func (r *Repository) GetTrackedChannel(channelID string) (*models.TrackedChannel, error) {
	var channel models.TrackedChannel
	err := WithRetry(func() error {
		result := r.db.Where("channel_id = ?", channelID).First(&channel)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil
		}
		return result.Error
	})
	if err != nil || channel.ChannelID == "" {
		return nil, err
	}
	return &channel, nil
}

func (r *Repository) UpsertTrackedChannel(channel *models.TrackedChannel) error {
	return WithRetry(func() error {
		return r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"guild_id", "name", "calling", "since_time"}),
		}).Create(channel).Error
	})
}

func (r *Repository) DeleteTrackedChannel(channelID string) error {
	return WithRetry(func() error {
		return r.db.Delete(&models.TrackedChannel{}, "channel_id = ?", channelID).Error
	})
}

// ListChannelsInGuild returns every tracked channel belonging to a guild,
// ordered by name for stable listing.
func (r *Repository) ListChannelsInGuild(guildID string) ([]models.TrackedChannel, error) {
	var channels []models.TrackedChannel
	err := WithRetry(func() error {
		return r.db.Where("guild_id = ?", guildID).Order("name").Find(&channels).Error
	})
	return channels, err
}

// ListTrackedChannels returns the tracked channels matching the given IDs.
func (r *Repository) ListTrackedChannels(channelIDs []string) ([]models.TrackedChannel, error) {
	var channels []models.TrackedChannel
	if len(channelIDs) == 0 {
		return channels, nil
	}
	err := WithRetry(func() error {
		return r.db.Where("channel_id IN ?", channelIDs).Find(&channels).Error
	})
	return channels, err
}

func (r *Repository) DeleteChannelsInGuild(guildID string) error {
	return WithRetry(func() error {
		return r.db.Delete(&models.TrackedChannel{}, "guild_id = ?", guildID).Error
	})
}

// GetStreamSession retrieves a member's open streaming session.
// Returns (nil, nil) if no session is open.
func (r *Repository) GetStreamSession(memberID string) (*models.StreamSession, error) {
	var session models.StreamSession
	err := WithRetry(func() error {
		result := r.db.Where("member_id = ?", memberID).First(&session)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil
		}
		return result.Error
	})
	if err != nil || session.MemberID == "" {
		return nil, err
	}
	return &session, nil
}

func (r *Repository) UpsertStreamSession(session *models.StreamSession) error {
	return WithRetry(func() error {
		return r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"guild_id", "member_name", "started_at"}),
		}).Create(session).Error
	})
}

func (r *Repository) DeleteStreamSession(memberID string) error {
	return WithRetry(func() error {
		return r.db.Delete(&models.StreamSession{}, "member_id = ?", memberID).Error
	})
}

func (r *Repository) DeleteSessionsForMembers(memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	return WithRetry(func() error {
		return r.db.Delete(&models.StreamSession{}, "member_id IN ?", memberIDs).Error
	})
}

// GetGuildSettings retrieves a guild's notification settings.
// Returns (nil, nil) if the guild has no settings record.
func (r *Repository) GetGuildSettings(guildID string) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	err := WithRetry(func() error {
		result := r.db.Where("guild_id = ?", guildID).First(&settings)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil
		}
		return result.Error
	})
	if err != nil || settings.GuildID == "" {
		return nil, err
	}
	return &settings, nil
}

func (r *Repository) UpsertGuildSettings(settings *models.GuildSettings) error {
	return WithRetry(func() error {
		return r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guild_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"min_time", "tracked_channel_names"}),
		}).Create(settings).Error
	})
}

// UpdateMinTime sets the notification threshold for a guild, creating the
// settings record if it does not exist yet.
func (r *Repository) UpdateMinTime(guildID string, minTime int) error {
	return WithRetry(func() error {
		return r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guild_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"min_time"}),
		}).Create(&models.GuildSettings{GuildID: guildID, MinTime: minTime}).Error
	})
}

// UpdateTrackedChannelNames refreshes the cached channel name list.
func (r *Repository) UpdateTrackedChannelNames(guildID, names string) error {
	return WithRetry(func() error {
		return r.db.Model(&models.GuildSettings{}).
			Where("guild_id = ?", guildID).
			Update("tracked_channel_names", names).Error
	})
}

func (r *Repository) DeleteGuildSettings(guildID string) error {
	return WithRetry(func() error {
		return r.db.Delete(&models.GuildSettings{}, "guild_id = ?", guildID).Error
	})
}

func (r *Repository) UpsertServiceStatus(status *models.ServiceStatus) error {
	return WithRetry(func() error {
		// GORM's Save works as an upsert for records with a primary key.
		return r.db.Save(status).Error
	})
}
