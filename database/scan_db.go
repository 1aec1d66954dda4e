package database

import (
	"database/sql"
	"fmt"
	"time"

	"discord-reaction-tracker/models"
)

// GetScanState returns the persisted scan state for one channel, or nil when
// the channel was never scanned.
func (s *Store) GetScanState(guildID, channelID string) (*models.ScanState, error) {
	var st models.ScanState
	var updatedAt int64

	err := s.db.QueryRow(`SELECT guild_id, channel_id, last_scanned_message_id, status, updated_at
        FROM scan_state WHERE guild_id = ? AND channel_id = ?`,
		guildID, channelID).
		Scan(&st.GuildID, &st.ChannelID, &st.LastScannedMessageID, &st.Status, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan state for channel %s: %w", channelID, err)
	}

	st.UpdatedAt = time.Unix(updatedAt, 0)
	return &st, nil
}

// UpsertScanState writes the checkpoint row for one channel. Each channel's
// row is only ever written by that channel's scan task.
func (s *Store) UpsertScanState(guildID, channelID, lastScannedMessageID, status string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO scan_state
        (guild_id, channel_id, last_scanned_message_id, status, updated_at)
        VALUES (?, ?, ?, ?, ?)`,
		guildID, channelID, lastScannedMessageID, status, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert scan state for channel %s: %w", channelID, err)
	}
	return nil
}

// ListScanStates returns all per-channel scan states of one guild, ordered by
// channel id for stable output.
func (s *Store) ListScanStates(guildID string) ([]models.ScanState, error) {
	rows, err := s.db.Query(`SELECT guild_id, channel_id, last_scanned_message_id, status, updated_at
        FROM scan_state WHERE guild_id = ? ORDER BY channel_id ASC`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan states for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var states []models.ScanState
	for rows.Next() {
		var st models.ScanState
		var updatedAt int64
		if err := rows.Scan(&st.GuildID, &st.ChannelID, &st.LastScannedMessageID, &st.Status, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scan-state row: %w", err)
		}
		st.UpdatedAt = time.Unix(updatedAt, 0)
		states = append(states, st)
	}
	return states, rows.Err()
}

// ResetScanStates clears all scan checkpoints of one guild so the next scan
// walks full history again.
func (s *Store) ResetScanStates(guildID string) error {
	_, err := s.db.Exec("DELETE FROM scan_state WHERE guild_id = ?", guildID)
	if err != nil {
		return fmt.Errorf("failed to reset scan states for guild %s: %w", guildID, err)
	}
	return nil
}
