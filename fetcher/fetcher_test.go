package fetcher

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"discord-reaction-tracker/models"

	"github.com/bwmarrin/discordgo"
)

func testConfig() models.TrackerConfig {
	return models.TrackerConfig{
		CallDelay:      0,
		MinBackoff:     5 * time.Second,
		RequestTimeout: time.Second,
		MaxRetries:     2,
		PageSize:       100,
	}
}

// fakeSource scripts ChannelMessages/MessageReactions responses. Each entry
// in errs is consumed before the success payload is served.
type fakeSource struct {
	mu sync.Mutex

	msgErrs  []error
	msgPage  []*discordgo.Message
	msgCalls int

	reactPages [][]*discordgo.User
	reactAfter []string
	reactCalls int

	channels []*discordgo.Channel
}

func (f *fakeSource) GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func (f *fakeSource) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgCalls++
	if len(f.msgErrs) > 0 {
		err := f.msgErrs[0]
		f.msgErrs = f.msgErrs[1:]
		return nil, err
	}
	return f.msgPage, nil
}

func (f *fakeSource) MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactAfter = append(f.reactAfter, afterID)
	if f.reactCalls >= len(f.reactPages) {
		return nil, nil
	}
	page := f.reactPages[f.reactCalls]
	f.reactCalls++
	return page, nil
}

// sleepRecorder replaces the fetcher's sleep so tests assert on waits instead
// of waiting.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
}

func (r *sleepRecorder) all() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

func rateLimitErr(retryAfter time.Duration) error {
	return &discordgo.RateLimitError{
		RateLimit: &discordgo.RateLimit{
			TooManyRequests: &discordgo.TooManyRequests{RetryAfter: retryAfter},
			URL:             "/channels/1/messages",
		},
	}
}

func restErr(status int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
}

func TestRateLimitHonorsRetryAfterAboveFloor(t *testing.T) {
	src := &fakeSource{msgErrs: []error{rateLimitErr(10 * time.Second)}}
	rec := &sleepRecorder{}
	f := New(src, testConfig())
	f.sleep = rec.sleep

	if _, err := f.Messages(context.Background(), "c1", ""); err != nil {
		t.Fatalf("Messages: %v", err)
	}

	for _, wait := range rec.all() {
		if wait == 10*time.Second {
			return
		}
	}
	t.Fatalf("no 10s backoff recorded, waits: %v", rec.all())
}

func TestRateLimitAppliesConfiguredFloor(t *testing.T) {
	src := &fakeSource{msgErrs: []error{rateLimitErr(time.Second)}}
	rec := &sleepRecorder{}
	f := New(src, testConfig())
	f.sleep = rec.sleep

	if _, err := f.Messages(context.Background(), "c1", ""); err != nil {
		t.Fatalf("Messages: %v", err)
	}

	for _, wait := range rec.all() {
		if wait == 5*time.Second {
			return
		}
	}
	t.Fatalf("retry-after below floor must wait the floor, waits: %v", rec.all())
}

func TestRateLimitBackoffGrows(t *testing.T) {
	src := &fakeSource{msgErrs: []error{rateLimitErr(time.Second), rateLimitErr(time.Second)}}
	rec := &sleepRecorder{}
	f := New(src, testConfig())
	f.sleep = rec.sleep

	if _, err := f.Messages(context.Background(), "c1", ""); err != nil {
		t.Fatalf("Messages: %v", err)
	}

	waits := rec.all()
	if len(waits) < 2 {
		t.Fatalf("want two backoff waits, got %v", waits)
	}
	if waits[0] != 5*time.Second || waits[1] != 10*time.Second {
		t.Fatalf("repeated rate limits should grow the wait: %v", waits)
	}
}

func TestTerminalErrorNotRetried(t *testing.T) {
	for _, status := range []int{403, 404} {
		src := &fakeSource{msgErrs: []error{restErr(status)}}
		f := New(src, testConfig())
		f.sleep = func(time.Duration) {}

		_, err := f.Messages(context.Background(), "c1", "")
		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		if !IsTerminal(err) {
			t.Fatalf("status %d should classify as terminal: %v", status, err)
		}
		if src.msgCalls != 1 {
			t.Fatalf("status %d: terminal error was retried %d times", status, src.msgCalls-1)
		}
	}
}

func TestTransientErrorRetried(t *testing.T) {
	src := &fakeSource{msgErrs: []error{errors.New("connection reset")}}
	f := New(src, testConfig())
	f.sleep = func(time.Duration) {}

	if _, err := f.Messages(context.Background(), "c1", ""); err != nil {
		t.Fatalf("transient error should be retried to success: %v", err)
	}
	if src.msgCalls != 2 {
		t.Fatalf("want 2 calls, got %d", src.msgCalls)
	}
}

func TestTransientRetriesBounded(t *testing.T) {
	src := &fakeSource{msgErrs: []error{
		errors.New("timeout"), errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
	}}
	f := New(src, testConfig())
	f.sleep = func(time.Duration) {}

	_, err := f.Messages(context.Background(), "c1", "")
	if err == nil {
		t.Fatal("expected retries-exhausted error")
	}
	if IsTerminal(err) {
		t.Fatalf("exhausted transient error should not classify as terminal: %v", err)
	}
	// Initial attempt plus MaxRetries.
	if src.msgCalls != 3 {
		t.Fatalf("want 3 calls, got %d", src.msgCalls)
	}
}

func TestPacingBetweenCalls(t *testing.T) {
	cfg := testConfig()
	cfg.CallDelay = 100 * time.Millisecond
	src := &fakeSource{}
	rec := &sleepRecorder{}
	f := New(src, cfg)
	f.sleep = rec.sleep

	if _, err := f.Messages(context.Background(), "c1", ""); err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if _, err := f.Messages(context.Background(), "c1", ""); err != nil {
		t.Fatalf("Messages: %v", err)
	}

	var paced bool
	for _, wait := range rec.all() {
		if wait > 0 && wait <= 100*time.Millisecond {
			paced = true
		}
	}
	if !paced {
		t.Fatalf("back-to-back calls were not paced, waits: %v", rec.all())
	}
}

func TestReactionsPaginatesUsers(t *testing.T) {
	first := make([]*discordgo.User, 100)
	for i := range first {
		first[i] = &discordgo.User{ID: "u" + strconv.Itoa(i)}
	}
	second := []*discordgo.User{{ID: "u100"}, {ID: "u101"}}

	src := &fakeSource{reactPages: [][]*discordgo.User{first, second}}
	f := New(src, testConfig())
	f.sleep = func(time.Duration) {}

	users, err := f.Reactions(context.Background(), "c1", "m1", "😹")
	if err != nil {
		t.Fatalf("Reactions: %v", err)
	}
	if len(users) != 102 {
		t.Fatalf("want 102 users, got %d", len(users))
	}
	if len(src.reactAfter) != 2 || src.reactAfter[0] != "" || src.reactAfter[1] != "u99" {
		t.Fatalf("after cursors wrong: %v", src.reactAfter)
	}
}

func TestCanceledContextStopsRetrying(t *testing.T) {
	src := &fakeSource{msgErrs: []error{errors.New("timeout")}}
	f := New(src, testConfig())
	f.sleep = func(time.Duration) {}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Messages(ctx, "c1", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if src.msgCalls != 0 {
		t.Fatalf("canceled fetch should not call the API, got %d calls", src.msgCalls)
	}
}
