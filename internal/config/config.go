package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/park285/chessvar-bot/internal/chessvar"
)

type AppConfig struct {
	IrisBaseURL string
	IrisWSURL   string

	// IrisEgress selects reply transport: http, ws or auto.
	IrisEgress string
	// DryRun logs outgoing WebSocket replies instead of sending them.
	DryRun bool

	BotPrefix string

	XUserID    string
	XUserEmail string
	XSessionID string

	RedisURL    string
	DatabaseURL string

	AllowedRooms []string
	MessagesDir  string

	// StartPlacement is the FEN placement new games start from.
	StartPlacement string
	Validation     chessvar.Validation
	GameTTLSec     int

	// AutoAccept starts challenges immediately; otherwise the target must
	// answer with accept or decline within ChallengeTTLSec.
	AutoAccept      bool
	ChallengeTTLSec int
}

// Load reads configuration from the environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		StartPlacement: chessvar.StandardPlacement,
		Validation:     chessvar.ValidationStrict,
		GameTTLSec:     86400,
		IrisEgress:     "http",

		AutoAccept:      true,
		ChallengeTTLSec: 600,
	}

	cfg.IrisBaseURL = env("IRIS_BASE_URL")
	cfg.IrisWSURL = env("IRIS_WS_URL")
	cfg.BotPrefix = env("BOT_PREFIX")
	if v := strings.ToLower(env("IRIS_EGRESS")); v != "" {
		switch v {
		case "http", "ws", "auto":
			cfg.IrisEgress = v
		default:
			return nil, fmt.Errorf("IRIS_EGRESS: unsupported mode %q", v)
		}
	}
	cfg.DryRun = strings.EqualFold(env("DRY_RUN"), "true")

	cfg.XUserID = env("X_USER_ID")
	cfg.XUserEmail = env("X_USER_EMAIL")
	cfg.XSessionID = env("X_SESSION_ID")

	cfg.RedisURL = env("REDIS_URL")
	cfg.DatabaseURL = env("DATABASE_URL")
	cfg.MessagesDir = env("MESSAGES_DIR")
	cfg.AllowedRooms = splitList(env("ALLOWED_ROOMS"))

	if v := env("VAR_START_LAYOUT"); v != "" {
		placement, err := ResolveLayout(v)
		if err != nil {
			return nil, err
		}
		cfg.StartPlacement = placement
	}
	if v := env("VAR_VALIDATION"); v != "" {
		mode, err := chessvar.ParseValidation(v)
		if err != nil {
			return nil, fmt.Errorf("VAR_VALIDATION: %w", err)
		}
		cfg.Validation = mode
	}
	if v := env("VAR_GAME_TTL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GameTTLSec = n
		}
	}
	if v := env("VAR_AUTO_ACCEPT"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("VAR_AUTO_ACCEPT: %w", err)
		}
		cfg.AutoAccept = on
	}
	if v := env("VAR_CHALLENGE_TTL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChallengeTTLSec = n
		}
	}

	if cfg.IrisBaseURL == "" {
		return nil, errors.New("IRIS_BASE_URL is required")
	}
	if cfg.IrisWSURL == "" {
		return nil, errors.New("IRIS_WS_URL is required")
	}
	if cfg.BotPrefix == "" {
		return nil, errors.New("BOT_PREFIX is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// ResolveLayout maps "standard" and "empty" to placements; anything else must
// be a valid FEN placement.
func ResolveLayout(v string) (string, error) {
	switch strings.ToLower(v) {
	case "standard":
		return chessvar.StandardPlacement, nil
	case "empty":
		return chessvar.EmptyPlacement, nil
	}
	b, err := chessvar.ParsePlacement(v)
	if err != nil {
		return "", fmt.Errorf("VAR_START_LAYOUT: %w", err)
	}
	return b.Placement(), nil
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
