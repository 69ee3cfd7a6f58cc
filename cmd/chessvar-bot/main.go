package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/chessvar-bot/internal/challenge"
	appcfg "github.com/park285/chessvar-bot/internal/config"
	"github.com/park285/chessvar-bot/internal/irisfast"
	"github.com/park285/chessvar-bot/internal/lobby"
	"github.com/park285/chessvar-bot/internal/msgcat"
	"github.com/park285/chessvar-bot/internal/obslog"
	"github.com/park285/chessvar-bot/internal/presenter"
	"github.com/park285/chessvar-bot/internal/pvpvar"
	"go.uber.org/zap"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config_error", zap.Error(err))
	}

	headers := func() map[string]string {
		h := map[string]string{}
		if cfg.XUserID != "" {
			h["X-User-Id"] = cfg.XUserID
		}
		if cfg.XUserEmail != "" {
			h["X-User-Email"] = cfg.XUserEmail
		}
		if cfg.XSessionID != "" {
			h["X-Session-Id"] = cfg.XSessionID
		}
		return h
	}
	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))
	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})

	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	rdb, err := pvpvar.OpenRedis(startCtx, cfg.RedisURL)
	startCancel()
	if err != nil {
		logger.Fatal("redis_init_error", zap.Error(err))
	}
	games, err := pvpvar.NewManager(rdb,
		pvpvar.WithStartPlacement(cfg.StartPlacement),
		pvpvar.WithValidation(cfg.Validation),
		pvpvar.WithTTL(time.Duration(cfg.GameTTLSec)*time.Second),
	)
	if err != nil {
		logger.Fatal("game_manager_init_error", zap.Error(err))
	}
	defer func() { _ = games.Close() }()

	if cfg.DatabaseURL != "" {
		repo, err := pvpvar.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("archive_init_error", zap.Error(err))
		}
		defer func() { _ = repo.Close() }()
		schemaCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := repo.EnsureSchema(schemaCtx); err != nil {
			logger.Warn("archive_schema_error", zap.Error(err))
		}
		cancel()
		games.AttachArchive(repo)
	} else {
		logger.Info("archive_disabled")
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("msgcat_init_error", zap.Error(err))
	}

	challenges := challenge.NewManager(
		challenge.WithAutoAccept(cfg.AutoAccept),
		challenge.WithPendingTTL(time.Duration(cfg.ChallengeTTLSec)*time.Second),
	)
	b := &bot{
		prefix:       cfg.BotPrefix,
		allowedRooms: cfg.AllowedRooms,
		timeout:      15 * time.Second,
		games:        games,
		challenges:   challenges,
		lobbies:      lobby.NewManager(rdb, games),
		present:      presenter.NewPresenter(irisfast.NewEgress(cfg.IrisEgress, cfg.DryRun, client, ws, logger)),
		format:       presenter.NewFormatter(catalog, cfg.BotPrefix),
	}
	ws.OnMessage(func(msg *irisfast.Message) {
		if !b.accepts(msg) {
			return
		}
		// keep the read loop free
		go b.handle(msg)
	})

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(connCtx); err != nil {
		connCancel()
		logger.Fatal("ws_connect_error", zap.Error(err))
	}
	connCancel()
	logger.Info("bot_started",
		zap.String("prefix", cfg.BotPrefix),
		zap.String("egress", cfg.IrisEgress),
		zap.String("validation", cfg.Validation.String()),
		zap.Bool("auto_accept", cfg.AutoAccept),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	_ = ws.Close(closeCtx)
	logger.Info("bot_stopped")
}
