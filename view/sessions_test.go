package view

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestSessions(t *testing.T, idle time.Duration) *Sessions {
	t.Helper()
	zap.ReplaceGlobals(zap.NewNop())
	s, err := NewSessions(newFakeAPI(), Options{}, idle)
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSessionsIssueIDs(t *testing.T) {
	s := newTestSessions(t, time.Hour)

	for _, id := range []string{"", "not-a-uuid", "../../etc"} {
		sess := s.Get(id)
		if _, err := uuid.Parse(sess.ID); err != nil || sess.ID == id {
			t.Errorf("Get(%q) issued %q", id, sess.ID)
		}
	}

	first := s.Get("")
	if again := s.Get(first.ID); again != first {
		t.Error("same id returned a different session")
	}
	if other := s.Get(""); other == first || other.Controller == first.Controller || other.Renderer == first.Renderer {
		t.Error("new browser shares state with an existing session")
	}

	known := uuid.NewString()
	if sess := s.Get(known); sess.ID != known {
		t.Errorf("well-formed id replaced: %q", sess.ID)
	}
}

func TestSessionsSweepIdle(t *testing.T) {
	s := newTestSessions(t, 10*time.Minute)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	idle := s.Get("")
	active := s.Get("")

	now = now.Add(8 * time.Minute)
	s.Get(active.ID)
	now = now.Add(5 * time.Minute)

	if n := s.Sweep(); n != 1 {
		t.Fatalf("Sweep = %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
	if s.Get(active.ID) != active {
		t.Error("active session evicted")
	}
	if s.Get(idle.ID) == idle {
		t.Error("evicted session came back")
	}
}
