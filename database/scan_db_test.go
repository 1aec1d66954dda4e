package database

import (
	"testing"

	"discord-reaction-tracker/models"
)

func TestScanStateLifecycle(t *testing.T) {
	s := newTestStore(t)

	st, err := s.GetScanState("g1", "c1")
	if err != nil {
		t.Fatalf("GetScanState: %v", err)
	}
	if st != nil {
		t.Fatalf("expected no state for unscanned channel, got %+v", st)
	}

	if err := s.UpsertScanState("g1", "c1", "", models.ScanPending); err != nil {
		t.Fatalf("UpsertScanState: %v", err)
	}
	if err := s.UpsertScanState("g1", "c1", "41", models.ScanInProgress); err != nil {
		t.Fatalf("UpsertScanState: %v", err)
	}

	st, err = s.GetScanState("g1", "c1")
	if err != nil {
		t.Fatalf("GetScanState: %v", err)
	}
	if st == nil || st.LastScannedMessageID != "41" || st.Status != models.ScanInProgress {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestListScanStatesScopedAndOrdered(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertScanState("g1", "c2", "10", models.ScanCompleted); err != nil {
		t.Fatalf("UpsertScanState: %v", err)
	}
	if err := s.UpsertScanState("g1", "c1", "", models.ScanFailed); err != nil {
		t.Fatalf("UpsertScanState: %v", err)
	}
	if err := s.UpsertScanState("g2", "c1", "", models.ScanPending); err != nil {
		t.Fatalf("UpsertScanState: %v", err)
	}

	states, err := s.ListScanStates("g1")
	if err != nil {
		t.Fatalf("ListScanStates: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("want 2 states for g1, got %d", len(states))
	}
	if states[0].ChannelID != "c1" || states[1].ChannelID != "c2" {
		t.Fatalf("states not ordered by channel id: %+v", states)
	}
}

func TestResetScanStates(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertScanState("g1", "c1", "41", models.ScanCompleted); err != nil {
		t.Fatalf("UpsertScanState: %v", err)
	}
	if err := s.UpsertScanState("g2", "c1", "7", models.ScanCompleted); err != nil {
		t.Fatalf("UpsertScanState: %v", err)
	}

	if err := s.ResetScanStates("g1"); err != nil {
		t.Fatalf("ResetScanStates: %v", err)
	}

	states, err := s.ListScanStates("g1")
	if err != nil {
		t.Fatalf("ListScanStates: %v", err)
	}
	if len(states) != 0 {
		t.Fatalf("g1 states not cleared: %+v", states)
	}

	// Other guilds are untouched.
	states, err = s.ListScanStates("g2")
	if err != nil {
		t.Fatalf("ListScanStates: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("g2 states should survive a g1 reset: %+v", states)
	}
}
