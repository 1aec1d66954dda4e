package handlers

import (
	"time"

	"discord-reaction-tracker/models"
	"discord-reaction-tracker/utils"

	"github.com/bwmarrin/discordgo"
)

// ReactionAddHandler records live reaction-add events. It only touches the
// store and the in-memory state cache; nothing on this path may block on the
// REST API, and store failures are logged and dropped so the gateway dispatch
// never stalls or crashes.
func ReactionAddHandler(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if store == nil || r.GuildID == "" || !liveTracking.Load() {
		return
	}
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		return
	}

	// The message author is only known when the message is in the state
	// cache; a later scan backfills it otherwise.
	authorID := ""
	if msg, err := s.State.Message(r.ChannelID, r.MessageID); err == nil && msg.Author != nil {
		authorID = msg.Author.ID
	}

	ev := models.ReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		AuthorID:  authorID,
		Emoji:     models.EmojiKey(&r.Emoji),
		UserID:    r.UserID,
		ReactedAt: time.Now(),
	}
	if ev.Emoji == "" {
		return
	}

	if _, err := store.RecordReaction(ev); err != nil {
		utils.Error("ingest", "reaction_add", err.Error())
	}
}

// ReactionRemoveHandler mirrors live reaction removals into the store.
func ReactionRemoveHandler(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if store == nil || r.GuildID == "" || !liveTracking.Load() {
		return
	}

	emoji := models.EmojiKey(&r.Emoji)
	if emoji == "" {
		return
	}

	if err := store.RemoveReaction(r.GuildID, r.MessageID, emoji, r.UserID, time.Now()); err != nil {
		utils.Error("ingest", "reaction_remove", err.Error())
	}
}
