package scanner

import (
	"context"
	"log"
	"sync"
	"time"

	"discord-reaction-tracker/fetcher"
	"discord-reaction-tracker/models"

	"github.com/bwmarrin/discordgo"
)

// Fetcher is the slice of the rate-limited fetcher the coordinator drives.
type Fetcher interface {
	Channels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
	Messages(ctx context.Context, channelID, beforeID string) ([]*discordgo.Message, error)
	Reactions(ctx context.Context, channelID, messageID, emojiKey string) ([]*discordgo.User, error)
}

// Store is the slice of the database the coordinator reads and writes.
type Store interface {
	RecordReaction(ev models.ReactionEvent) (bool, error)
	GetScanState(guildID, channelID string) (*models.ScanState, error)
	UpsertScanState(guildID, channelID, lastScannedMessageID, status string) error
	ListScanStates(guildID string) ([]models.ScanState, error)
	ResetScanStates(guildID string) error
}

// Coordinator runs at most one history scan per guild. A guild scan is a set
// of independent per-channel state machines executed by a bounded pool of
// workers; a channel ending up failed never aborts the rest of the guild.
type Coordinator struct {
	store Store
	fetch Fetcher
	cfg   models.TrackerConfig
	sleep func(time.Duration)

	mu    sync.Mutex
	scans map[string]*guildScan
}

type guildScan struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Coordinator writing to store through fetch.
func New(store Store, fetch Fetcher, cfg models.TrackerConfig) *Coordinator {
	return &Coordinator{
		store: store,
		fetch: fetch,
		cfg:   cfg,
		sleep: time.Sleep,
		scans: make(map[string]*guildScan),
	}
}

// Start launches a history scan for one guild. It is idempotent: when a scan
// for the guild is already running it returns false and leaves it alone.
// full resets all checkpoints first so the entire history is walked again;
// otherwise completed channels are skipped and interrupted ones resume from
// their cursor.
func (c *Coordinator) Start(guildID string, full bool) (bool, error) {
	c.mu.Lock()
	if _, running := c.scans[guildID]; running {
		c.mu.Unlock()
		return false, nil
	}

	if full {
		if err := c.store.ResetScanStates(guildID); err != nil {
			c.mu.Unlock()
			return false, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	gs := &guildScan{cancel: cancel, done: make(chan struct{})}
	c.scans[guildID] = gs
	c.mu.Unlock()

	go c.run(ctx, guildID, gs)
	return true, nil
}

// Stop cancels a running guild scan and waits for its workers to wind down.
// Each worker finishes the page it is processing, so cursors stay consistent.
// No-op when nothing is running.
func (c *Coordinator) Stop(guildID string) {
	c.mu.Lock()
	gs := c.scans[guildID]
	c.mu.Unlock()

	if gs == nil {
		return
	}
	gs.cancel()
	<-gs.done
}

// Running reports whether a scan is currently in flight for the guild.
func (c *Coordinator) Running(guildID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, running := c.scans[guildID]
	return running
}

// Status returns the per-channel scan states of one guild plus rollup counts.
func (c *Coordinator) Status(guildID string) (models.ScanSummary, error) {
	states, err := c.store.ListScanStates(guildID)
	if err != nil {
		return models.ScanSummary{}, err
	}

	summary := models.ScanSummary{
		GuildID:  guildID,
		Running:  c.Running(guildID),
		Channels: states,
	}
	for _, st := range states {
		switch st.Status {
		case models.ScanPending:
			summary.Pending++
		case models.ScanInProgress:
			summary.InProgress++
		case models.ScanCompleted:
			summary.Completed++
		case models.ScanStopped:
			summary.Stopped++
		case models.ScanFailed:
			summary.Failed++
		}
	}
	return summary, nil
}

// run executes one guild scan to its terminal mix of statuses.
func (c *Coordinator) run(ctx context.Context, guildID string, gs *guildScan) {
	defer func() {
		c.mu.Lock()
		delete(c.scans, guildID)
		c.mu.Unlock()
		close(gs.done)
	}()

	channels, err := c.fetch.Channels(ctx, guildID)
	if err != nil {
		log.Printf("Scan for guild %s aborted, could not list channels: %v", guildID, err)
		return
	}

	var work []string
	for _, ch := range channels {
		st, err := c.store.GetScanState(guildID, ch.ID)
		if err != nil {
			log.Printf("Could not read scan state for channel %s: %v", ch.ID, err)
			continue
		}
		if st != nil && st.Status == models.ScanCompleted {
			continue
		}
		cursor := ""
		if st != nil {
			cursor = st.LastScannedMessageID
		}
		if err := c.store.UpsertScanState(guildID, ch.ID, cursor, models.ScanPending); err != nil {
			log.Printf("Could not seed scan state for channel %s: %v", ch.ID, err)
			continue
		}
		work = append(work, ch.ID)
	}

	if len(work) == 0 {
		log.Printf("Scan for guild %s: nothing to do, all channels completed", guildID)
		return
	}

	workers := c.cfg.ChannelWorkers
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for channelID := range tasks {
				c.scanChannel(ctx, guildID, channelID)
				if ctx.Err() == nil {
					c.sleep(c.cfg.ChannelDelay)
				}
			}
		}()
	}

	for _, channelID := range work {
		tasks <- channelID
	}
	close(tasks)
	wg.Wait()

	if summary, err := c.Status(guildID); err == nil {
		log.Printf("Scan for guild %s finished: %d completed, %d stopped, %d failed of %d channels",
			guildID, summary.Completed, summary.Stopped, summary.Failed, summary.Total())
	}
}

// scanChannel pages backward through one channel's history. Cancellation is
// only observed between pages: the page being processed is always finished
// and checkpointed, so a resume neither re-walks completed pages nor skips
// messages.
func (c *Coordinator) scanChannel(ctx context.Context, guildID, channelID string) {
	cursor := ""
	if st, err := c.store.GetScanState(guildID, channelID); err == nil && st != nil {
		cursor = st.LastScannedMessageID
	}

	if ctx.Err() != nil {
		c.checkpoint(guildID, channelID, cursor, models.ScanStopped)
		return
	}
	c.checkpoint(guildID, channelID, cursor, models.ScanInProgress)

	for {
		select {
		case <-ctx.Done():
			c.checkpoint(guildID, channelID, cursor, models.ScanStopped)
			return
		default:
		}

		page, err := c.fetch.Messages(ctx, channelID, cursor)
		if err != nil {
			if ctx.Err() != nil {
				c.checkpoint(guildID, channelID, cursor, models.ScanStopped)
				return
			}
			log.Printf("Channel %s scan failed: %v", channelID, err)
			c.checkpoint(guildID, channelID, cursor, models.ScanFailed)
			return
		}

		if len(page) == 0 {
			c.checkpoint(guildID, channelID, cursor, models.ScanCompleted)
			return
		}

		for _, msg := range page {
			if err := c.ingestMessage(guildID, channelID, msg); err != nil {
				log.Printf("Channel %s scan failed on message %s: %v", channelID, msg.ID, err)
				c.checkpoint(guildID, channelID, cursor, models.ScanFailed)
				return
			}
			c.sleep(c.cfg.MessageDelay)
		}

		// Pages arrive newest first; the page's last message is the oldest
		// processed so far and becomes the resume cursor.
		cursor = page[len(page)-1].ID
		c.checkpoint(guildID, channelID, cursor, models.ScanInProgress)
	}
}

// ingestMessage records every (emoji, user) reaction of one message. The
// reaction fetches deliberately ignore the scan context so an in-flight page
// is finished even while a stop is pending; each call is still bounded by the
// fetcher's own timeout.
func (c *Coordinator) ingestMessage(guildID, channelID string, msg *discordgo.Message) error {
	authorID := ""
	if msg.Author != nil {
		authorID = msg.Author.ID
	}

	for _, reaction := range msg.Reactions {
		emojiKey := models.EmojiKey(reaction.Emoji)
		if emojiKey == "" {
			continue
		}

		users, err := c.fetch.Reactions(context.Background(), channelID, msg.ID, emojiKey)
		if err != nil {
			if fetcher.IsTerminal(err) {
				return err
			}
			log.Printf("Skipping reaction %s on message %s: %v", emojiKey, msg.ID, err)
			continue
		}

		for _, user := range users {
			if user.Bot {
				continue
			}
			ev := models.ReactionEvent{
				GuildID:   guildID,
				ChannelID: channelID,
				MessageID: msg.ID,
				AuthorID:  authorID,
				Emoji:     emojiKey,
				UserID:    user.ID,
				ReactedAt: msg.Timestamp,
			}
			if _, err := c.store.RecordReaction(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Coordinator) checkpoint(guildID, channelID, cursor, status string) {
	if err := c.store.UpsertScanState(guildID, channelID, cursor, status); err != nil {
		log.Printf("Could not checkpoint channel %s (%s): %v", channelID, status, err)
	}
}
