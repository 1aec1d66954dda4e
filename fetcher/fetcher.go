package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"discord-reaction-tracker/models"

	"github.com/bwmarrin/discordgo"
)

// Source is the slice of the Discord REST API the fetcher needs.
// *discordgo.Session satisfies it.
type Source interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error)
}

// Fetcher paces, retries and times out Discord history calls so the scanner
// stays under the platform rate limits. All waits go through the sleep field.
type Fetcher struct {
	src   Source
	cfg   models.TrackerConfig
	sleep func(time.Duration)

	mu       sync.Mutex
	lastCall time.Time
}

// New creates a Fetcher over src with the given pacing configuration.
func New(src Source, cfg models.TrackerConfig) *Fetcher {
	return &Fetcher{
		src:   src,
		cfg:   cfg,
		sleep: time.Sleep,
	}
}

// IsTerminal reports whether err is unrecoverable for the channel being
// scanned (missing permissions or deleted channel/message). Terminal errors
// are never retried.
func IsTerminal(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		code := restErr.Response.StatusCode
		return code == 403 || code == 404
	}
	return false
}

// Channels returns the text channels of a guild.
func (f *Fetcher) Channels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	var all []*discordgo.Channel
	err := f.do(ctx, "guild channels", func(cctx context.Context) error {
		chs, err := f.src.GuildChannels(guildID, discordgo.WithContext(cctx))
		if err != nil {
			return err
		}
		all = chs
		return nil
	})
	if err != nil {
		return nil, err
	}

	var text []*discordgo.Channel
	for _, ch := range all {
		if ch.Type == discordgo.ChannelTypeGuildText {
			text = append(text, ch)
		}
	}
	return text, nil
}

// Messages fetches one page of channel history older than beforeID (the
// newest page when beforeID is empty), newest first. An empty page means the
// history is exhausted.
func (f *Fetcher) Messages(ctx context.Context, channelID, beforeID string) ([]*discordgo.Message, error) {
	var page []*discordgo.Message
	err := f.do(ctx, "channel messages", func(cctx context.Context) error {
		msgs, err := f.src.ChannelMessages(channelID, f.cfg.PageSize, beforeID, "", "", discordgo.WithContext(cctx))
		if err != nil {
			return err
		}
		page = msgs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Reactions enumerates every user who reacted with emojiKey on a message,
// paginating with the after-user cursor until the platform returns a short
// page.
func (f *Fetcher) Reactions(ctx context.Context, channelID, messageID, emojiKey string) ([]*discordgo.User, error) {
	const pageLimit = 100

	var users []*discordgo.User
	after := ""
	for {
		var page []*discordgo.User
		err := f.do(ctx, "message reactions", func(cctx context.Context) error {
			us, err := f.src.MessageReactions(channelID, messageID, emojiKey, pageLimit, "", after, discordgo.WithContext(cctx))
			if err != nil {
				return err
			}
			page = us
			return nil
		})
		if err != nil {
			return nil, err
		}

		users = append(users, page...)
		if len(page) < pageLimit {
			return users, nil
		}
		after = page[len(page)-1].ID
	}
}

// do runs one REST call with pacing, a per-call timeout, rate-limit backoff
// and bounded retries for transient failures.
func (f *Fetcher) do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	rateLimitWait := f.cfg.MinBackoff
	retryWait := f.cfg.CallDelay
	if retryWait <= 0 {
		retryWait = 100 * time.Millisecond
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		f.pace()

		cctx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
		err := call(cctx)
		cancel()
		if err == nil {
			return nil
		}

		// The caller canceled; don't retry on its behalf.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var rateErr *discordgo.RateLimitError
		if errors.As(err, &rateErr) {
			wait := rateLimitWait
			if rateErr.RetryAfter > wait {
				wait = rateErr.RetryAfter
			}
			log.Printf("Rate limited on %s, backing off for %v", op, wait)
			f.sleep(wait)
			rateLimitWait = 2 * wait
			continue
		}

		if IsTerminal(err) {
			return fmt.Errorf("%s: %w", op, err)
		}

		// Transient (network error or request timeout): bounded retries.
		attempts++
		if attempts > f.cfg.MaxRetries {
			return fmt.Errorf("%s: retries exhausted: %w", op, err)
		}
		log.Printf("Transient error on %s (attempt %d/%d): %v", op, attempts, f.cfg.MaxRetries, err)
		f.sleep(retryWait)
		retryWait *= 2
	}
}

// pace enforces the minimum delay between consecutive REST calls. The lock is
// held across the wait so concurrent channel workers share one global budget.
func (f *Fetcher) pace() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if wait := f.cfg.CallDelay - time.Since(f.lastCall); wait > 0 {
		f.sleep(wait)
	}
	f.lastCall = time.Now()
}
