// Package embed builds the notification payloads posted to the log channel.
package embed

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Embed colors per event kind. The stream colors follow the usual
// live/offline convention.
const (
	ColorCallStart   = 8382940
	ColorCallEnd     = 14498578
	ColorStreamStart = 0x9146FF
	ColorStreamEnd   = 0x808080
)

// CreateCallStartEmbed announces a call starting on a tracked channel.
func CreateCallStartEmbed(channelName, memberName, avatarURL string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: "Call Started",
		Color: ColorCallStart,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Channel",
				Value:  channelName,
				Inline: true,
			},
			{
				Name:   "Started By",
				Value:  memberName,
				Inline: true,
			},
		},
	}
	if avatarURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}
	return e
}

// CreateCallEndEmbed announces a call ending, with its formatted duration.
func CreateCallEndEmbed(channelName, duration string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Call Ended",
		Color: ColorCallEnd,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Channel",
				Value:  channelName,
				Inline: true,
			},
			{
				Name:   "Call Duration",
				Value:  duration,
				Inline: true,
			},
		},
	}
}

// CreateStreamStartEmbed announces a member going live. The activity link is
// rendered when available, otherwise "unknown".
func CreateStreamStartEmbed(memberName, activityName, activityURL, avatarURL string) *discordgo.MessageEmbed {
	activity := activityName
	if activity == "" {
		activity = "unknown"
	}
	if activityURL != "" {
		activity = fmt.Sprintf("[%s](%s)", activity, activityURL)
	}

	e := &discordgo.MessageEmbed{
		Title: "Stream Started",
		Color: ColorStreamStart,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Member",
				Value:  memberName,
				Inline: true,
			},
			{
				Name:   "Activity",
				Value:  activity,
				Inline: true,
			},
		},
	}
	if avatarURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}
	return e
}

// CreateStreamEndEmbed announces a stream ending, with its formatted duration.
func CreateStreamEndEmbed(memberName, duration string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Stream Ended",
		Color: ColorStreamEnd,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Member",
				Value:  memberName,
				Inline: true,
			},
			{
				Name:   "Stream Duration",
				Value:  duration,
				Inline: true,
			},
		},
	}
}
