// Package challenge keeps the in-memory registry of player challenges.
package challenge

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/park285/chessvar-bot/internal/obslog"
	"go.uber.org/zap"
)

type Manager struct {
	mu sync.RWMutex
	// targetID -> pending challenges, latest last
	byTarget   map[string][]*Challenge
	seq        uint64
	autoAccept bool
	pendingTTL time.Duration
	now        func() time.Time
}

type Option func(*Manager)

// WithAutoAccept controls whether new challenges start accepted. Accepted
// challenges are handed back to the caller and not kept.
func WithAutoAccept(on bool) Option {
	return func(m *Manager) { m.autoAccept = on }
}

// WithPendingTTL expires pending challenges older than d.
func WithPendingTTL(d time.Duration) Option {
	return func(m *Manager) { m.pendingTTL = d }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		byTarget:   make(map[string][]*Challenge),
		autoAccept: true,
		pendingTTL: 10 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) CreateChallenge(originRoom, challengerID, challengerName, targetID, targetName string, color ColorChoice) (*Challenge, error) {
	originRoom, challengerID, targetID = strings.TrimSpace(originRoom), strings.TrimSpace(challengerID), strings.TrimSpace(targetID)
	if originRoom == "" || challengerID == "" || targetID == "" {
		return nil, ErrInvalidArgs
	}
	if challengerID == targetID {
		return nil, ErrSelfChallenge
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.sweep(targetID)
	if len(list) > 0 {
		return nil, ErrAlreadyPending
	}
	ch := &Challenge{
		ID:             m.nextID(),
		OriginRoom:     originRoom,
		ChallengerID:   challengerID,
		ChallengerName: strings.TrimSpace(challengerName),
		TargetID:       targetID,
		TargetName:     strings.TrimSpace(targetName),
		Color:          color,
		CreatedAt:      m.now(),
		Status:         StatusPending,
	}
	if m.autoAccept {
		ch.Status = StatusAccepted
		ch.ResolveRoom = originRoom
	} else {
		m.byTarget[targetID] = append(list, ch)
	}
	obslog.L().Info("var_challenge_create",
		zap.String("challenge_id", ch.ID),
		zap.String("room", originRoom),
		zap.String("challenger_id", challengerID),
		zap.String("target_id", targetID),
		zap.String("status", string(ch.Status)),
	)
	return ch, nil
}

// Pending returns the latest pending challenge for targetID.
func (m *Manager) Pending(targetID string) (*Challenge, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.sweep(strings.TrimSpace(targetID))
	if len(list) == 0 {
		return nil, false
	}
	return list[len(list)-1], true
}

func (m *Manager) Accept(targetID, acceptRoom string) (*Challenge, error) {
	return m.resolve(targetID, acceptRoom, StatusAccepted)
}

func (m *Manager) Decline(targetID, declineRoom string) (*Challenge, error) {
	return m.resolve(targetID, declineRoom, StatusDeclined)
}

func (m *Manager) resolve(targetID, room string, status Status) (*Challenge, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, ErrInvalidArgs
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.sweep(targetID)
	if len(list) == 0 {
		return nil, ErrNoPendingForUser
	}
	ch := list[len(list)-1]
	ch.Status = status
	ch.ResolveRoom = strings.TrimSpace(room)
	m.store(targetID, list[:len(list)-1])
	obslog.L().Info("var_challenge_resolve",
		zap.String("challenge_id", ch.ID),
		zap.String("target_id", targetID),
		zap.String("status", string(status)),
	)
	return ch, nil
}

// sweep drops expired challenges of targetID and returns the pending rest;
// caller holds mu.
func (m *Manager) sweep(targetID string) []*Challenge {
	list := m.byTarget[targetID]
	if m.pendingTTL > 0 {
		cutoff := m.now().Add(-m.pendingTTL)
		kept := list[:0]
		for _, ch := range list {
			if ch.CreatedAt.Before(cutoff) {
				ch.Status = StatusExpired
				continue
			}
			kept = append(kept, ch)
		}
		list = kept
	}
	m.store(targetID, list)
	return list
}

func (m *Manager) store(targetID string, list []*Challenge) {
	if len(list) == 0 {
		delete(m.byTarget, targetID)
		return
	}
	m.byTarget[targetID] = list
}

func (m *Manager) nextID() string {
	n := atomic.AddUint64(&m.seq, 1)
	return fmt.Sprintf("ch-%d-%d", m.now().UnixNano(), n)
}
