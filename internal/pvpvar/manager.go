// Package pvpvar hosts many capture-all games in Redis.
//
// Each game is a JSON blob under var:game:<id> with a TTL, indexed per user.
// Moves run inside a WATCH transaction so concurrent writers on the same game
// observe a MoveConflict instead of clobbering each other.
package pvpvar

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/chessvar-bot/internal/chessvar"
	"github.com/park285/chessvar-bot/internal/obslog"
	"github.com/park285/chessvar-bot/internal/render"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTTL = 24 * time.Hour

// Archive stores final results.
type Archive interface {
	SaveResult(ctx context.Context, g *Game, method string) error
}

type Manager struct {
	rdb        *redis.Client
	renderer   render.BoardRenderer
	archive    Archive
	placement  string
	validation chessvar.Validation
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*Manager)

// WithStartPlacement sets the FEN placement new games begin from.
func WithStartPlacement(placement string) Option {
	return func(m *Manager) { m.placement = strings.TrimSpace(placement) }
}

func WithValidation(v chessvar.Validation) Option {
	return func(m *Manager) { m.validation = v }
}

func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

func WithRenderer(r render.BoardRenderer) Option {
	return func(m *Manager) { m.renderer = r }
}

func NewManager(rdb *redis.Client, opts ...Option) (*Manager, error) {
	if rdb == nil {
		return nil, ErrNotInitialized
	}
	m := &Manager{
		rdb:        rdb,
		renderer:   render.NewPNGRenderer(),
		placement:  chessvar.EmptyPlacement,
		validation: chessvar.ValidationStrict,
		ttl:        defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if _, err := chessvar.ParsePlacement(m.placement); err != nil {
		return nil, err
	}
	return m, nil
}

// OpenRedis dials REDIS_URL and verifies the connection.
func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redisOptions(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// redisOptions accepts redis:// and rediss:// URLs, including query options.
func redisOptions(redisURL string) (*redis.Options, error) {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL required for game manager")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	return opts, nil
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// AttachArchive wires a store for final results.
func (m *Manager) AttachArchive(a Archive) {
	if m != nil {
		m.archive = a
	}
}

// CreateGame starts a match between challenger and target from the configured placement.
func (m *Manager) CreateGame(ctx context.Context, originRoom, resolveRoom, challengerID, challengerName, targetID, targetName, colorChoice string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	challengerID, targetID = strings.TrimSpace(challengerID), strings.TrimSpace(targetID)
	if challengerID == "" || targetID == "" || challengerID == targetID {
		return nil, ErrInvalidParticipants
	}

	whiteID, whiteName := challengerID, challengerName
	blackID, blackName := targetID, targetName
	if c, ok := chessvar.ParseColor(colorChoice); ok {
		if c == chessvar.Black {
			whiteID, whiteName, blackID, blackName = targetID, targetName, challengerID, challengerName
		}
	} else if n, _ := rand.Int(rand.Reader, big.NewInt(2)); n != nil && n.Int64() == 0 {
		whiteID, whiteName, blackID, blackName = targetID, targetName, challengerID, challengerName
	}

	now := m.now()
	g := &Game{
		ID:          uuid.NewString(),
		Placement:   m.placement,
		Moves:       []string{},
		Turn:        White,
		Status:      StatusActive,
		Validation:  m.validation.String(),
		WhiteID:     whiteID,
		WhiteName:   strings.TrimSpace(whiteName),
		BlackID:     blackID,
		BlackName:   strings.TrimSpace(blackName),
		OriginRoom:  strings.TrimSpace(originRoom),
		ResolveRoom: strings.TrimSpace(resolveRoom),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.save(ctx, g); err != nil {
		return nil, err
	}
	if err := m.indexParticipants(ctx, g.ID, g.WhiteID, g.BlackID); err != nil {
		return nil, err
	}
	obslog.L().Info("var_game_create",
		zap.String("game_id", g.ID),
		zap.String("origin_room", g.OriginRoom),
		zap.String("resolve_room", g.ResolveRoom),
		zap.String("white_id", g.WhiteID),
		zap.String("black_id", g.BlackID),
		zap.String("validation", g.Validation),
	)
	return g, nil
}

// GetActiveGameByUser returns the most recently updated active game for a user.
func (m *Manager) GetActiveGameByUser(ctx context.Context, userID string) (*Game, error) {
	return m.latestActive(ctx, userID, func(*Game) bool { return true })
}

// GetActiveGameByUserInRoom limits GetActiveGameByUser to games bound to room.
func (m *Manager) GetActiveGameByUserInRoom(ctx context.Context, userID, room string) (*Game, error) {
	if strings.TrimSpace(room) == "" {
		return nil, nil
	}
	return m.latestActive(ctx, userID, func(g *Game) bool { return g.inRoom(room) })
}

func (m *Manager) latestActive(ctx context.Context, userID string, keep func(*Game) bool) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}
	ids, err := m.rdb.SMembers(ctx, idxUserKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	var list []*Game
	for _, id := range ids {
		g, gerr := m.get(ctx, id)
		if gerr != nil || g == nil || g.Status != StatusActive || !keep(g) {
			continue
		}
		list = append(list, g)
	}
	if len(list) == 0 {
		return nil, nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list[0], nil
}

// LoadGame returns the game by ID, or nil when it expired.
func (m *Manager) LoadGame(ctx context.Context, id string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	return m.get(ctx, id)
}

var (
	errNotYourTurn = errors.New("not_your_turn")
	errIllegalMove = errors.New("illegal_move")
	errBadSquare   = errors.New("bad_square")
)

// PlayMove applies from→to in the user's latest active game.
// A nil game with a nil error means the user has no active game.
func (m *Manager) PlayMove(ctx context.Context, userID, from, to string) (*Game, MoveResult, error) {
	g, err := m.GetActiveGameByUser(ctx, userID)
	if err != nil || g == nil {
		return nil, "", err
	}
	return m.applyMove(ctx, g, userID, "", from, to)
}

// PlayMoveByRoom is PlayMove restricted to the user's game in roomID.
func (m *Manager) PlayMoveByRoom(ctx context.Context, userID, roomID, from, to string) (*Game, MoveResult, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(roomID) == "" {
		return nil, "", fmt.Errorf("invalid parameters")
	}
	g, err := m.GetActiveGameByUserInRoom(ctx, userID, roomID)
	if err != nil || g == nil {
		return nil, "", err
	}
	return m.applyMove(ctx, g, userID, roomID, from, to)
}

func (m *Manager) applyMove(ctx context.Context, g *Game, userID, roomID, from, to string) (*Game, MoveResult, error) {
	gameK := gameKey(g.ID)
	oldLen := len(g.Moves)
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))

	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := loadTx(ctx, tx, gameK)
		if err != nil {
			return err
		}
		if cur.Status != StatusActive || len(cur.Moves) != oldLen {
			return redis.TxFailedErr
		}
		if roomID != "" && !cur.inRoom(roomID) {
			return ErrGameNotInRoom
		}
		side := cur.SideOf(userID)
		if side == "" {
			return ErrNotParticipant
		}
		if side != cur.Turn {
			return errNotYourTurn
		}

		engine, err := engineFor(cur)
		if err != nil {
			return err
		}
		applied, err := engine.RequestMove(from, to)
		if errors.Is(err, chessvar.ErrInvalidSquare) {
			return errBadSquare
		}
		if err != nil {
			return err
		}
		if !applied {
			return errIllegalMove
		}

		cur.Placement = engine.Placement()
		cur.Turn = sideOf(engine.CurrentPlayer())
		cur.Moves = append(cur.Moves, from+to)
		cur.UpdatedAt = m.now()
		if winner, done := engine.GameState().Winner(); done {
			cur.Status = StatusFinished
			cur.Outcome = string(sideOf(winner))
			if winner == chessvar.White {
				cur.Winner = cur.WhiteID
			} else {
				cur.Winner = cur.BlackID
			}
		}

		raw, err := json.Marshal(cur)
		if err != nil {
			return err
		}
		pipe := tx.TxPipeline()
		pipe.Set(ctx, gameK, raw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		g = cur
		return nil
	}, gameK)

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		return g, MoveConflict, nil
	case errors.Is(err, errIllegalMove):
		return g, MoveIllegal, nil
	case errors.Is(err, errNotYourTurn):
		return g, MoveNotYourTurn, nil
	case errors.Is(err, errBadSquare):
		return g, MoveBadSquare, nil
	default:
		return nil, "", err
	}

	obslog.L().Info("var_move",
		zap.String("game_id", g.ID),
		zap.String("room_id", strings.TrimSpace(roomID)),
		zap.String("user_id", strings.TrimSpace(userID)),
		zap.String("move", g.LastMove()),
		zap.String("turn", string(g.Turn)),
		zap.String("status", string(g.Status)),
		zap.String("outcome", g.Outcome),
	)
	if g.Status == StatusFinished {
		_ = m.persistIfFinal(ctx, g, "capture_all")
	}
	return g, MoveApplied, nil
}

// Resign ends the user's latest active game in the opponent's favour.
func (m *Manager) Resign(ctx context.Context, userID string) (*Game, error) {
	g, err := m.GetActiveGameByUser(ctx, userID)
	if err != nil || g == nil {
		return nil, err
	}
	return m.resign(ctx, g, userID, "")
}

// ResignByRoom resigns only the user's game bound to roomID.
func (m *Manager) ResignByRoom(ctx context.Context, userID, roomID string) (*Game, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("invalid parameters")
	}
	g, err := m.GetActiveGameByUserInRoom(ctx, userID, roomID)
	if err != nil || g == nil {
		return nil, err
	}
	return m.resign(ctx, g, userID, roomID)
}

func (m *Manager) resign(ctx context.Context, g *Game, userID, roomID string) (*Game, error) {
	gameK := gameKey(g.ID)
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := loadTx(ctx, tx, gameK)
		if err != nil {
			return err
		}
		if cur.Status != StatusActive {
			return redis.TxFailedErr
		}
		if roomID != "" && !cur.inRoom(roomID) {
			return ErrGameNotInRoom
		}
		if cur.SideOf(userID) == "" {
			return ErrNotParticipant
		}
		cur.Status = StatusResigned
		cur.Winner = cur.opponentID(userID)
		cur.Outcome = "resign"
		cur.UpdatedAt = m.now()
		raw, err := json.Marshal(cur)
		if err != nil {
			return err
		}
		pipe := tx.TxPipeline()
		pipe.Set(ctx, gameK, raw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		g = cur
		return nil
	}, gameK)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, ErrGameNotActive
		}
		return nil, err
	}
	obslog.L().Info("var_resign",
		zap.String("game_id", g.ID),
		zap.String("resigner", strings.TrimSpace(userID)),
		zap.String("room_id", strings.TrimSpace(roomID)),
		zap.String("winner", g.Winner),
	)
	_ = m.persistIfFinal(ctx, g, "resignation")
	return g, nil
}

// Engine rebuilds the rules engine for a stored game.
func Engine(g *Game) (*chessvar.Game, error) {
	if g == nil {
		return nil, ErrGameNotFound
	}
	return engineFor(g)
}

func engineFor(g *Game) (*chessvar.Game, error) {
	board, err := chessvar.ParsePlacement(g.Placement)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", g.ID, err)
	}
	v, err := chessvar.ParseValidation(g.Validation)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", g.ID, err)
	}
	return chessvar.NewGame(
		chessvar.WithBoard(board),
		chessvar.WithTurn(g.Turn.Color()),
		chessvar.WithValidation(v),
		chessvar.WithMoveCount(len(g.Moves)),
	), nil
}

func loadTx(ctx context.Context, tx *redis.Tx, key string) (*Game, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	var cur Game
	if err := json.Unmarshal(raw, &cur); err != nil {
		return nil, err
	}
	return &cur, nil
}

func (m *Manager) save(ctx context.Context, g *Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, gameKey(g.ID), raw, m.ttl).Err()
}

func (m *Manager) get(ctx context.Context, id string) (*Game, error) {
	raw, err := m.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (m *Manager) indexParticipants(ctx context.Context, id string, users ...string) error {
	for _, u := range users {
		if strings.TrimSpace(u) == "" {
			continue
		}
		key := idxUserKey(u)
		if err := m.rdb.SAdd(ctx, key, id).Err(); err != nil {
			return err
		}
		// index expires with the games it points at
		_ = m.rdb.Expire(ctx, key, m.ttl).Err()
	}
	return nil
}

func (m *Manager) persistIfFinal(ctx context.Context, g *Game, method string) error {
	if m == nil || m.archive == nil || g == nil {
		return nil
	}
	if g.Status != StatusFinished && g.Status != StatusResigned {
		return nil
	}
	if err := m.archive.SaveResult(ctx, g, method); err != nil {
		obslog.L().Error("var_result_persist_error", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.Error(err))
		return err
	}
	obslog.L().Info("var_result_persist", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.String("method", method))
	return nil
}

func gameKey(id string) string      { return "var:game:" + strings.TrimSpace(id) }
func idxUserKey(user string) string { return "var:index:user:" + strings.TrimSpace(user) }
