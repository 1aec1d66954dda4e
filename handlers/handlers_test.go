package handlers

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"discord-reaction-tracker/database"
	"discord-reaction-tracker/models"
	"discord-reaction-tracker/report"
	"discord-reaction-tracker/scanner"

	"github.com/bwmarrin/discordgo"
)

// stubFetch records Channels calls and serves empty guilds, so any scan it
// feeds finishes immediately.
type stubFetch struct {
	mu           sync.Mutex
	channelCalls []string
}

func (f *stubFetch) Channels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channelCalls = append(f.channelCalls, guildID)
	return nil, nil
}

func (f *stubFetch) Messages(ctx context.Context, channelID, beforeID string) ([]*discordgo.Message, error) {
	return nil, nil
}

func (f *stubFetch) Reactions(ctx context.Context, channelID, messageID, emojiKey string) ([]*discordgo.User, error) {
	return nil, nil
}

func (f *stubFetch) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.channelCalls...)
}

// setup wires the package globals the way main does, over a throwaway store.
func setup(t *testing.T) (*database.Store, *stubFetch) {
	t.Helper()
	s, err := database.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)

	f := &stubFetch{}
	c := scanner.New(s, f, models.TrackerConfig{ChannelWorkers: 1, PageSize: 100})
	Init(s, c, report.New(s, nil))
	return s, f
}

func countReactions(t *testing.T, s *database.Store, guildID string) int {
	t.Helper()
	events, err := s.QueryReactions(guildID, time.Unix(0, 0), time.Now().Add(time.Hour), models.EmojiFilterAll)
	if err != nil {
		t.Fatalf("QueryReactions: %v", err)
	}
	return len(events)
}

func TestLiveTrackingToggleGatesReactionEvents(t *testing.T) {
	s, _ := setup(t)
	sess := &discordgo.Session{State: discordgo.NewState()}
	add := &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID:    "u1",
		MessageID: "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Emoji:     discordgo.Emoji{Name: "😹"},
	}}

	liveTracking.Store(false)
	ReactionAddHandler(sess, add)
	if n := countReactions(t, s, "g1"); n != 0 {
		t.Fatalf("reaction recorded while tracking was stopped: %d rows", n)
	}

	liveTracking.Store(true)
	ReactionAddHandler(sess, add)
	if n := countReactions(t, s, "g1"); n != 1 {
		t.Fatalf("want 1 row after tracking resumed, got %d", n)
	}

	remove := &discordgo.MessageReactionRemove{MessageReaction: &discordgo.MessageReaction{
		UserID:    "u1",
		MessageID: "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Emoji:     discordgo.Emoji{Name: "😹"},
	}}

	liveTracking.Store(false)
	ReactionRemoveHandler(sess, remove)
	if n := countReactions(t, s, "g1"); n != 1 {
		t.Fatalf("removal applied while tracking was stopped: %d rows", n)
	}

	liveTracking.Store(true)
	ReactionRemoveHandler(sess, remove)
	if n := countReactions(t, s, "g1"); n != 0 {
		t.Fatalf("removal not applied after tracking resumed: %d rows", n)
	}
}

func TestGuildCreateStartsScanForNewGuild(t *testing.T) {
	_, f := setup(t)

	GuildCreateHandler(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g-new"}})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		calls := f.calls()
		if len(calls) == 1 && calls[0] == "g-new" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no scan started for the new guild, calls: %v", f.calls())
}

func TestGuildCreateSkipsKnownGuilds(t *testing.T) {
	s, f := setup(t)
	if err := s.UpsertScanState("g-known", "c1", "m1", models.ScanCompleted); err != nil {
		t.Fatalf("UpsertScanState: %v", err)
	}

	GuildCreateHandler(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g-known"}})

	// The handler returns before starting anything for a known guild.
	time.Sleep(50 * time.Millisecond)
	if calls := f.calls(); len(calls) != 0 {
		t.Fatalf("connect-time GuildCreate re-triggered a scan: %v", calls)
	}
}

func TestGuildCreateSkipsUnavailableGuilds(t *testing.T) {
	_, f := setup(t)

	GuildCreateHandler(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g1", Unavailable: true}})

	time.Sleep(50 * time.Millisecond)
	if calls := f.calls(); len(calls) != 0 {
		t.Fatalf("unavailable guild triggered a scan: %v", calls)
	}
}

func TestHelpTextListsAllCommands(t *testing.T) {
	text := helpText()
	for _, name := range []string{"/report", "/scan", "/scan_status", "/scan_stop", "/emoji_stats", "/start", "/stop", "/status"} {
		if !strings.Contains(text, "`"+name) {
			t.Fatalf("help text missing %s:\n%s", name, text)
		}
	}
}
