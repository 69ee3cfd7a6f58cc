// Package lobby pairs players through short join codes.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/chessvar-bot/internal/obslog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Manager struct {
	rdb   *redis.Client
	store *Store
	games GameHost
	now   func() time.Time
}

func NewManager(rdb *redis.Client, games GameHost) *Manager {
	return &Manager{rdb: rdb, store: NewStore(rdb), games: games, now: time.Now}
}

// Make opens a lobby owned by userID. color is the creator's preferred side.
func (m *Manager) Make(ctx context.Context, room, userID, userName, color string) (*MakeResult, error) {
	room, userID = strings.TrimSpace(room), strings.TrimSpace(userID)
	if room == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	if g, _ := m.games.GetActiveGameByUserInRoom(ctx, userID, room); g != nil {
		return nil, ErrPlayerBusyInRoom
	}
	if open, err := m.openLobbyOf(ctx, userID); err != nil {
		return nil, err
	} else if open != nil {
		return nil, ErrCreatorHasLobby
	}

	for i := 0; i < 5; i++ {
		code, err := codeGen()
		if err != nil {
			return nil, err
		}
		ok, err := m.store.reserve(ctx, code)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		meta := &Meta{
			ID:          code,
			State:       StateLobby,
			CreatedAt:   m.now(),
			CreatorID:   userID,
			CreatorName: strings.TrimSpace(userName),
			CreatorRoom: room,
			Color:       strings.ToLower(strings.TrimSpace(color)),
		}
		if err := m.store.SaveMeta(ctx, code, meta); err != nil {
			return nil, err
		}
		// creator counts as the first participant
		if err := m.store.AddParticipant(ctx, code, userID); err != nil {
			return nil, err
		}
		if err := m.store.AddOpen(ctx, code); err != nil {
			return nil, err
		}
		obslog.L().Info("lobby_make", zap.String("code", code), zap.String("room", room), zap.String("creator_id", userID))
		return &MakeResult{Code: code, Meta: meta}, nil
	}
	return nil, fmt.Errorf("failed to allocate lobby code")
}

// Join adds userID to the lobby. The second participant starts the game.
func (m *Manager) Join(ctx context.Context, room, code, userID, userName string) (*JoinResult, error) {
	room, userID = strings.TrimSpace(room), strings.TrimSpace(userID)
	code = strings.ToUpper(strings.TrimSpace(code))
	if room == "" || code == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	meta, err := m.store.LoadMeta(ctx, code)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrLobbyGone
	}
	if meta.State != StateLobby {
		return nil, ErrLobbyActive
	}
	if meta.CreatorID == userID {
		return nil, ErrAlreadyJoined
	}
	if g, _ := m.games.GetActiveGameByUserInRoom(ctx, userID, room); g != nil {
		return nil, ErrPlayerBusyInRoom
	}
	if g, _ := m.games.GetActiveGameByUserInRoom(ctx, meta.CreatorID, meta.CreatorRoom); g != nil {
		return nil, ErrPlayerBusyInRoom
	}

	partKey := m.store.keyParticipants(code)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		members, err := tx.SMembers(ctx, partKey).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		for _, mem := range members {
			if mem == userID {
				return ErrAlreadyJoined
			}
		}
		if len(members) >= 2 {
			return ErrFull
		}
		pipe := tx.TxPipeline()
		pipe.SAdd(ctx, partKey, userID)
		pipe.Expire(ctx, partKey, ttlLobby)
		_, pErr := pipe.Exec(ctx)
		return pErr
	}, partKey)
	if errors.Is(err, redis.TxFailedErr) {
		// another joiner won the slot
		err = ErrFull
	}
	if err != nil {
		obslog.L().Warn("lobby_join_error", zap.String("code", code), zap.String("room", room), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	g, err := m.games.CreateGame(ctx, meta.CreatorRoom, room, meta.CreatorID, meta.CreatorName, userID, userName, meta.Color)
	if err != nil {
		// free the slot so the lobby stays joinable
		if rbErr := m.store.RemoveParticipant(ctx, code, userID); rbErr != nil {
			obslog.L().Error("lobby_join_rollback_error", zap.String("code", code), zap.String("user_id", userID), zap.Error(rbErr))
		}
		obslog.L().Warn("lobby_join_error", zap.String("code", code), zap.String("room", room), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	meta.State = StateActive
	meta.GameID = g.ID
	meta.WhiteID, meta.WhiteName = g.WhiteID, g.WhiteName
	meta.BlackID, meta.BlackName = g.BlackID, g.BlackName
	if err := m.store.SaveMeta(ctx, code, meta); err != nil {
		return nil, err
	}
	_ = m.store.RemoveOpen(ctx, code)
	obslog.L().Info("lobby_start_game",
		zap.String("code", code),
		zap.String("game_id", g.ID),
		zap.String("white_id", g.WhiteID),
		zap.String("black_id", g.BlackID),
	)
	return &JoinResult{Started: true, Game: g, Meta: meta}, nil
}

// ListLobby returns the lobbies still waiting for an opponent.
func (m *Manager) ListLobby(ctx context.Context) ([]*Meta, error) { return m.store.ListOpen(ctx) }

func (m *Manager) openLobbyOf(ctx context.Context, userID string) (*Meta, error) {
	codes, err := m.store.CodesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range codes {
		meta, err := m.store.LoadMeta(ctx, c)
		if err != nil {
			return nil, err
		}
		if meta != nil && meta.State == StateLobby && meta.CreatorID == userID {
			return meta, nil
		}
	}
	return nil, nil
}
