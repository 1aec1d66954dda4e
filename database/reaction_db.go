package database

import (
	"database/sql"
	"fmt"
	"time"

	"discord-reaction-tracker/models"
)

// RecordReaction stores a reaction event. It is idempotent: re-observing the
// same (guild, message, emoji, user) tuple, as with live re-delivery or a
// scan overlapping live traffic, is a normal case and never an error.
//
// Returns true when the call materialized an active row: a fresh insert, or
// the reactivation of a previously removed row whose removal is not newer
// than this event (last-writer-wins on event timestamps).
func (s *Store) RecordReaction(ev models.ReactionEvent) (bool, error) {
	insert := `INSERT OR IGNORE INTO reactions
        (guild_id, channel_id, message_id, author_id, emoji, user_id, reacted_at, removed, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`

	res, err := s.db.Exec(insert,
		ev.GuildID, ev.ChannelID, ev.MessageID, ev.AuthorID,
		ev.Emoji, ev.UserID, ev.ReactedAt.Unix(), ev.ReactedAt.Unix())
	if err != nil {
		return false, fmt.Errorf("failed to record reaction for message %s: %w", ev.MessageID, err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	// Duplicate key. A scan may carry the message author a live event lacked.
	if ev.AuthorID != "" {
		_, err = s.db.Exec(`UPDATE reactions SET author_id = ?
            WHERE guild_id = ? AND message_id = ? AND emoji = ? AND user_id = ? AND author_id = ''`,
			ev.AuthorID, ev.GuildID, ev.MessageID, ev.Emoji, ev.UserID)
		if err != nil {
			return false, fmt.Errorf("failed to backfill author for message %s: %w", ev.MessageID, err)
		}
	}

	// Reactivate a tombstoned row unless the removal is newer than this event.
	res, err = s.db.Exec(`UPDATE reactions SET removed = 0, updated_at = ?
        WHERE guild_id = ? AND message_id = ? AND emoji = ? AND user_id = ?
          AND removed = 1 AND updated_at <= ?`,
		ev.ReactedAt.Unix(), ev.GuildID, ev.MessageID, ev.Emoji, ev.UserID, ev.ReactedAt.Unix())
	if err != nil {
		return false, fmt.Errorf("failed to reactivate reaction for message %s: %w", ev.MessageID, err)
	}

	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RemoveReaction tombstones a stored reaction. No-op when the key is absent
// or when the stored row was written by a newer event than at.
func (s *Store) RemoveReaction(guildID, messageID, emoji, userID string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE reactions SET removed = 1, updated_at = ?
        WHERE guild_id = ? AND message_id = ? AND emoji = ? AND user_id = ?
          AND removed = 0 AND updated_at <= ?`,
		at.Unix(), guildID, messageID, emoji, userID, at.Unix())
	if err != nil {
		return fmt.Errorf("failed to remove reaction for message %s: %w", messageID, err)
	}
	return nil
}

// QueryReactions returns the active reactions of one guild within
// [since, until], ordered by reacted_at ascending. emojiFilter narrows the
// result to a single emoji key; "" or models.EmojiFilterAll returns all.
func (s *Store) QueryReactions(guildID string, since, until time.Time, emojiFilter string) ([]models.ReactionEvent, error) {
	query := `SELECT guild_id, channel_id, message_id, author_id, emoji, user_id, reacted_at
        FROM reactions
        WHERE guild_id = ? AND removed = 0 AND reacted_at >= ? AND reacted_at <= ?`
	args := []interface{}{guildID, since.Unix(), until.Unix()}

	if emojiFilter != "" && emojiFilter != models.EmojiFilterAll {
		query += " AND emoji = ?"
		args = append(args, emojiFilter)
	}
	query += " ORDER BY reacted_at ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reactions for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var events []models.ReactionEvent
	for rows.Next() {
		var ev models.ReactionEvent
		var reactedAt int64
		if err := rows.Scan(&ev.GuildID, &ev.ChannelID, &ev.MessageID, &ev.AuthorID,
			&ev.Emoji, &ev.UserID, &reactedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reaction row: %w", err)
		}
		ev.ReactedAt = time.Unix(reactedAt, 0)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// TopEmojis returns up to limit emoji aggregates for one guild within
// [since, until], sorted by count descending; ties break on the emoji key
// ascending so results are deterministic.
func (s *Store) TopEmojis(guildID string, since, until time.Time, limit int) ([]models.EmojiStat, error) {
	rows, err := s.db.Query(`SELECT emoji, COUNT(*) AS uses
        FROM reactions
        WHERE guild_id = ? AND removed = 0 AND reacted_at >= ? AND reacted_at <= ?
        GROUP BY emoji
        ORDER BY uses DESC, emoji ASC
        LIMIT ?`,
		guildID, since.Unix(), until.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top emojis for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var stats []models.EmojiStat
	for rows.Next() {
		var st models.EmojiStat
		if err := rows.Scan(&st.Emoji, &st.Count); err != nil {
			return nil, fmt.Errorf("failed to scan emoji stat row: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Overview holds raw per-guild counts for the debug command.
type Overview struct {
	TotalReactions int64
	UniqueEmojis   int64
	UniqueUsers    int64
	Channels       []models.ChannelStat
	TopEmojis      []models.EmojiStat
}

// GuildOverview gathers raw counts for one guild: totals, distinct emojis and
// users, per-channel counts and the top ten emojis.
func (s *Store) GuildOverview(guildID string) (*Overview, error) {
	ov := &Overview{}

	err := s.db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT emoji), COUNT(DISTINCT user_id)
        FROM reactions WHERE guild_id = ? AND removed = 0`, guildID).
		Scan(&ov.TotalReactions, &ov.UniqueEmojis, &ov.UniqueUsers)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query overview totals for guild %s: %w", guildID, err)
	}

	rows, err := s.db.Query(`SELECT channel_id, COUNT(*) AS uses
        FROM reactions
        WHERE guild_id = ? AND removed = 0
        GROUP BY channel_id
        ORDER BY uses DESC, channel_id ASC`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel counts for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs models.ChannelStat
		if err := rows.Scan(&cs.ChannelID, &cs.Count); err != nil {
			return nil, fmt.Errorf("failed to scan channel stat row: %w", err)
		}
		ov.Channels = append(ov.Channels, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top, err := s.TopEmojis(guildID, time.Unix(0, 0), time.Now(), 10)
	if err != nil {
		return nil, err
	}
	ov.TopEmojis = top

	return ov, nil
}
