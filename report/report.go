package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"discord-reaction-tracker/models"
)

// ErrInvalidFilter flags bad user input (days out of range, empty emoji
// filter). It is returned before any store access.
var ErrInvalidFilter = errors.New("invalid report filter")

// DefaultEmoji is the emoji reported on when the user gives no filter.
const DefaultEmoji = "😹"

const (
	maxDays      = 3650
	topUsers     = 5
	topPerUser   = 3
	topEmojiRows = 10
)

// Store is the read-only slice of the database the engine queries.
type Store interface {
	QueryReactions(guildID string, since, until time.Time, emojiFilter string) ([]models.ReactionEvent, error)
	TopEmojis(guildID string, since, until time.Time, limit int) ([]models.EmojiStat, error)
}

// UserResolver renders a user id as a display mention. The Discord layer
// supplies one; tests substitute their own.
type UserResolver interface {
	Mention(userID string) string
}

// MentionResolver renders plain Discord mention syntax.
type MentionResolver struct{}

// Mention implements UserResolver.
func (MentionResolver) Mention(userID string) string {
	return "<@" + userID + ">"
}

// Engine computes reaction reports over the store.
type Engine struct {
	store    Store
	resolver UserResolver
	now      func() time.Time
}

// New creates a report engine. A nil resolver falls back to MentionResolver.
func New(store Store, resolver UserResolver) *Engine {
	if resolver == nil {
		resolver = MentionResolver{}
	}
	return &Engine{store: store, resolver: resolver, now: time.Now}
}

type userStats struct {
	userID string
	total  int
	emojis map[string]int
}

// GenerateReport renders the top reaction givers and receivers of one guild
// over the last days days. emojiFilter may be a single emoji key,
// models.EmojiFilterAll for everything, or empty for the default emoji.
func (e *Engine) GenerateReport(guildID string, days int, emojiFilter string) (string, error) {
	if days <= 0 || days > maxDays {
		return "", fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidFilter, maxDays)
	}

	filter := strings.TrimSpace(emojiFilter)
	if filter == "" {
		filter = DefaultEmoji
	} else if strings.EqualFold(filter, models.EmojiFilterAll) {
		filter = models.EmojiFilterAll
	}

	until := e.now()
	since := until.AddDate(0, 0, -days)

	events, err := e.store.QueryReactions(guildID, since, until, filter)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "No reactions found for the specified criteria!", nil
	}

	givers := make(map[string]*userStats)
	receivers := make(map[string]*userStats)
	for _, ev := range events {
		tally(givers, ev.UserID, ev.Emoji)
		if ev.AuthorID != "" {
			tally(receivers, ev.AuthorID, ev.Emoji)
		}
	}

	var b strings.Builder
	b.WriteString("📊 **Reaction Tracking Report**\n")
	fmt.Fprintf(&b, "Time period: Last %d days\n", days)
	if filter != models.EmojiFilterAll {
		fmt.Fprintf(&b, "Filtered by emoji: %s\n", filter)
	}
	b.WriteString("\n")

	b.WriteString("**Top Reaction Givers:**\n")
	e.writeUserSection(&b, givers, "reactions given", "Most used")

	b.WriteString("**Top Reaction Receivers:**\n")
	e.writeUserSection(&b, receivers, "reactions received", "Most received")

	return strings.TrimRight(b.String(), "\n"), nil
}

// EmojiStats returns the guild's most used emojis over the last days days.
func (e *Engine) EmojiStats(guildID string, days int) ([]models.EmojiStat, error) {
	if days <= 0 || days > maxDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidFilter, maxDays)
	}

	until := e.now()
	return e.store.TopEmojis(guildID, until.AddDate(0, 0, -days), until, topEmojiRows)
}

func tally(stats map[string]*userStats, userID, emoji string) {
	st, ok := stats[userID]
	if !ok {
		st = &userStats{userID: userID, emojis: make(map[string]int)}
		stats[userID] = st
	}
	st.total++
	st.emojis[emoji]++
}

func (e *Engine) writeUserSection(b *strings.Builder, stats map[string]*userStats, totalLabel, emojiLabel string) {
	if len(stats) == 0 {
		b.WriteString("(none)\n\n")
		return
	}

	ranked := make([]*userStats, 0, len(stats))
	for _, st := range stats {
		ranked = append(ranked, st)
	}
	// Descending by count; user id ascending on ties for determinism.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].total != ranked[j].total {
			return ranked[i].total > ranked[j].total
		}
		return ranked[i].userID < ranked[j].userID
	})
	if len(ranked) > topUsers {
		ranked = ranked[:topUsers]
	}

	for _, st := range ranked {
		fmt.Fprintf(b, "%s: %d %s\n", e.resolver.Mention(st.userID), st.total, totalLabel)
		fmt.Fprintf(b, "%s: %s\n\n", emojiLabel, formatTopEmojis(st.emojis))
	}
}

func formatTopEmojis(counts map[string]int) string {
	type pair struct {
		emoji string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for emoji, count := range counts {
		pairs = append(pairs, pair{emoji, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].emoji < pairs[j].emoji
	})
	if len(pairs) > topPerUser {
		pairs = pairs[:topPerUser]
	}

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s(%d)", p.emoji, p.count)
	}
	return strings.Join(parts, " ")
}
