package challenge

import (
	"errors"
	"testing"
	"time"
)

func TestParseColorChoice(t *testing.T) {
	cases := map[string]ColorChoice{
		"white": ColorWhite,
		" W ":   ColorWhite,
		"b":     ColorBlack,
		"Black": ColorBlack,
		"":      ColorRandom,
		"red":   ColorRandom,
	}
	for in, want := range cases {
		if got := ParseColorChoice(in); got != want {
			t.Fatalf("ParseColorChoice(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateChallengeAutoAccept(t *testing.T) {
	m := NewManager()
	ch, err := m.CreateChallenge("roomA", "u1", "alice", "u2", "bob", ColorWhite)
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	if ch.Status != StatusAccepted || ch.ResolveRoom != "roomA" {
		t.Fatalf("unexpected challenge: %+v", ch)
	}
	// accepted challenges do not block new ones
	if _, err := m.CreateChallenge("roomA", "u3", "carol", "u2", "bob", ColorRandom); err != nil {
		t.Fatalf("second challenge: %v", err)
	}
}

func TestCreateChallengeErrors(t *testing.T) {
	m := NewManager(WithAutoAccept(false))
	if _, err := m.CreateChallenge("", "u1", "", "u2", "", ColorRandom); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("missing room err = %v", err)
	}
	if _, err := m.CreateChallenge("roomA", "u1", "", "u1", "", ColorRandom); !errors.Is(err, ErrSelfChallenge) {
		t.Fatalf("self err = %v", err)
	}
	if _, err := m.CreateChallenge("roomA", "u1", "", "u2", "", ColorRandom); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := m.CreateChallenge("roomA", "u3", "", "u2", "", ColorRandom); !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("duplicate err = %v", err)
	}
}

func TestAcceptDeclineAndExpiry(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(WithAutoAccept(false), WithPendingTTL(time.Minute))
	m.now = func() time.Time { return clock }

	if _, err := m.CreateChallenge("roomA", "u1", "alice", "u2", "bob", ColorBlack); err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	if _, ok := m.Pending("u2"); !ok {
		t.Fatalf("expected pending challenge")
	}
	ch, err := m.Accept("u2", "roomB")
	if err != nil || ch.Status != StatusAccepted || ch.ResolveRoom != "roomB" {
		t.Fatalf("Accept: %+v %v", ch, err)
	}
	if _, err := m.Decline("u2", "roomB"); !errors.Is(err, ErrNoPendingForUser) {
		t.Fatalf("decline after accept err = %v", err)
	}

	if _, err := m.CreateChallenge("roomA", "u1", "alice", "u2", "bob", ColorBlack); err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if _, ok := m.Pending("u2"); ok {
		t.Fatalf("expected challenge to expire")
	}
	if len(m.byTarget) != 0 {
		t.Fatalf("expired challenge retained: %+v", m.byTarget)
	}
}

func TestResolvedChallengesAreNotRetained(t *testing.T) {
	auto := NewManager()
	for i := 0; i < 100; i++ {
		if _, err := auto.CreateChallenge("roomA", "u1", "alice", "u2", "bob", ColorRandom); err != nil {
			t.Fatalf("CreateChallenge #%d: %v", i, err)
		}
	}
	if len(auto.byTarget) != 0 {
		t.Fatalf("auto-accepted challenges retained: %d targets", len(auto.byTarget))
	}

	manual := NewManager(WithAutoAccept(false))
	for i := 0; i < 100; i++ {
		if _, err := manual.CreateChallenge("roomA", "u1", "alice", "u2", "bob", ColorRandom); err != nil {
			t.Fatalf("CreateChallenge #%d: %v", i, err)
		}
		if _, err := manual.Decline("u2", "roomA"); err != nil {
			t.Fatalf("Decline #%d: %v", i, err)
		}
	}
	if len(manual.byTarget) != 0 {
		t.Fatalf("declined challenges retained: %+v", manual.byTarget)
	}
}
