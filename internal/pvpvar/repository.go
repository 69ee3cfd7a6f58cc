package pvpvar

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS var_games (
    game_id       TEXT PRIMARY KEY,
    white_id      TEXT NOT NULL,
    white_name    TEXT NOT NULL,
    black_id      TEXT NOT NULL,
    black_name    TEXT NOT NULL,
    origin_room   TEXT NOT NULL,
    resolve_room  TEXT NOT NULL,
    validation    TEXT NOT NULL,
    result        TEXT NOT NULL,
    result_method TEXT NOT NULL,
    final_board   TEXT NOT NULL,
    moves         JSONB NOT NULL,
    transcript    TEXT NOT NULL,
    started_at    TIMESTAMPTZ NOT NULL,
    ended_at      TIMESTAMPTZ NOT NULL,
    duration_ms   BIGINT NOT NULL
)`

// Repository archives finished games in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// EnsureSchema creates the archive table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, schemaSQL)
	return err
}

// SaveResult upserts a final game result.
func (r *Repository) SaveResult(ctx context.Context, g *Game, method string) error {
	if r == nil || r.db == nil || g == nil {
		return nil
	}
	result := ResultToken(g)
	movesRaw, err := json.Marshal(g.Moves)
	if err != nil {
		return err
	}
	duration := g.UpdatedAt.Sub(g.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO var_games (
        game_id, white_id, white_name, black_id, black_name,
        origin_room, resolve_room, validation,
        result, result_method, final_board, moves, transcript,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
      ) ON CONFLICT (game_id) DO UPDATE SET
        result=EXCLUDED.result,
        result_method=EXCLUDED.result_method,
        final_board=EXCLUDED.final_board,
        moves=EXCLUDED.moves,
        transcript=EXCLUDED.transcript,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		g.ID,
		g.WhiteID, g.WhiteName,
		g.BlackID, g.BlackName,
		g.OriginRoom, g.ResolveRoom, g.Validation,
		result, strings.TrimSpace(method), g.Placement, string(movesRaw), BuildTranscript(g, method),
		g.CreatedAt, g.UpdatedAt, duration,
	)
	return err
}

// ResultToken maps the winner to "white", "black" or "" when undecided.
func ResultToken(g *Game) string {
	if g == nil {
		return ""
	}
	switch {
	case g.Winner != "" && g.Winner == g.WhiteID:
		return string(White)
	case g.Winner != "" && g.Winner == g.BlackID:
		return string(Black)
	default:
		return ""
	}
}

func scoreFor(result string) string {
	switch result {
	case string(White):
		return "1-0"
	case string(Black):
		return "0-1"
	default:
		return "*"
	}
}

// BuildTranscript writes a header block followed by numbered move pairs.
func BuildTranscript(g *Game, method string) string {
	if g == nil {
		return ""
	}
	var b strings.Builder
	date := g.UpdatedAt
	if date.IsZero() {
		date = time.Now()
	}
	score := scoreFor(ResultToken(g))
	fmt.Fprintf(&b, "[Event \"ChessVar capture-all\"]\n")
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	fmt.Fprintf(&b, "[White \"%s\"]\n", sanitizeTag(g.WhiteName))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", sanitizeTag(g.BlackName))
	if m := strings.TrimSpace(method); m != "" {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", sanitizeTag(strings.ToLower(m)))
	}
	fmt.Fprintf(&b, "[Result \"%s\"]\n\n", score)

	for i := 0; i < len(g.Moves); i += 2 {
		fmt.Fprintf(&b, "%d. %s", i/2+1, strings.TrimSpace(g.Moves[i]))
		if i+1 < len(g.Moves) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(g.Moves[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(score)
	return b.String()
}

func sanitizeTag(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
