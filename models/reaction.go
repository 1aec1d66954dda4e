package models

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// EmojiFilterAll is the wildcard value accepted by query and report filters.
const EmojiFilterAll = "all"

// ReactionEvent represents a single (message, emoji, user) reaction.
// AuthorID is the author of the reacted-to message (the receiver); it may be
// empty when the message is not available at ingest time.
type ReactionEvent struct {
	GuildID   string    `json:"guild_id"`
	ChannelID string    `json:"channel_id"`
	MessageID string    `json:"message_id"`
	AuthorID  string    `json:"author_id"`
	Emoji     string    `json:"emoji"`
	UserID    string    `json:"user_id"`
	ReactedAt time.Time `json:"reacted_at"`
}

// EmojiStat is an on-demand aggregate; it is never persisted.
type EmojiStat struct {
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

// ChannelStat represents per-channel reaction counts for debug overviews.
type ChannelStat struct {
	ChannelID string `json:"channel_id"`
	Count     int64  `json:"count"`
}

// EmojiKey normalizes a Discord emoji to the single string key used as the
// storage identity. Unicode emojis keep their code points; custom emojis use
// the "name:id" form, which is also what the reactions REST endpoint expects.
func EmojiKey(e *discordgo.Emoji) string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return e.Name + ":" + e.ID
	}
	return e.Name
}
