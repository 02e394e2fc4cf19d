package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantCommand string
		wantArg     string
	}{
		{name: "ignore with seconds", content: "<@123> ignore 60", wantCommand: "ignore", wantArg: "60"},
		{name: "ignore negative", content: "<@123> ignore -5", wantCommand: "ignore", wantArg: "-5"},
		{name: "add with channel", content: "<@!123> add 987654321", wantCommand: "add", wantArg: "987654321"},
		{name: "bare mention", content: "<@123>", wantCommand: "", wantArg: ""},
		{name: "command only", content: "<@123> list", wantCommand: "list", wantArg: ""},
		{name: "uppercase normalized", content: "<@123> HELP", wantCommand: "help", wantArg: ""},
		{name: "extra tokens ignored", content: "<@123> ignore 30 please", wantCommand: "ignore", wantArg: "30"},
		{name: "extra whitespace", content: "  <@123>   reload  ", wantCommand: "reload", wantArg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, arg := parseCommand(tt.content)
			assert.Equal(t, tt.wantCommand, command)
			assert.Equal(t, tt.wantArg, arg)
		})
	}
}

func TestParseChannelID(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{name: "raw id", arg: "123456789", want: "123456789"},
		{name: "channel mention", arg: "<#123456789>", want: "123456789"},
		{name: "empty", arg: "", want: ""},
		{name: "not numeric", arg: "general", want: ""},
		{name: "empty mention", arg: "<#>", want: ""},
		{name: "mixed junk", arg: "12a34", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChannelID(tt.arg))
		})
	}
}

func TestMentionsUser(t *testing.T) {
	mentions := []*discordgo.User{{ID: "42"}, {ID: "99"}}

	assert.True(t, mentionsUser(mentions, "42"))
	assert.True(t, mentionsUser(mentions, "99"))
	assert.False(t, mentionsUser(mentions, "7"))
	assert.False(t, mentionsUser(nil, "42"))
}
