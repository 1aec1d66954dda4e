package models

import "time"

// Scan statuses for a single channel's state machine.
const (
	ScanPending    = "pending"
	ScanInProgress = "in_progress"
	ScanCompleted  = "completed"
	ScanStopped    = "stopped"
	ScanFailed     = "failed"
)

// ScanState is the persisted progress of one channel's history scan.
// LastScannedMessageID is the oldest message id processed so far; resuming a
// scan fetches the page before it. Empty means the channel was never walked.
type ScanState struct {
	GuildID              string    `json:"guild_id"`
	ChannelID            string    `json:"channel_id"`
	LastScannedMessageID string    `json:"last_scanned_message_id"`
	Status               string    `json:"status"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ScanSummary is the per-guild rollup returned by the coordinator's Status.
type ScanSummary struct {
	GuildID    string      `json:"guild_id"`
	Running    bool        `json:"running"`
	Channels   []ScanState `json:"channels"`
	Pending    int         `json:"pending"`
	InProgress int         `json:"in_progress"`
	Completed  int         `json:"completed"`
	Stopped    int         `json:"stopped"`
	Failed     int         `json:"failed"`
}

// Total returns the number of tracked channels in the summary.
func (s ScanSummary) Total() int {
	return len(s.Channels)
}
