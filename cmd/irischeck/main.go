// Command irischeck checks the Iris bridge: it fetches /config, optionally
// sends a test reply, then watches the WebSocket for a short window.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/park285/chessvar-bot/internal/irisfast"
	"github.com/park285/chessvar-bot/internal/obslog"
	"go.uber.org/zap"
)

var (
	sendRoom = flag.String("send", "", "Room to send a test reply to")
	egress   = flag.String("egress", "http", "Reply path for -send: http, ws or auto")
	watchFor = flag.Duration("watch", 10*time.Second, "How long to observe WebSocket traffic")
)

func main() {
	flag.Parse()
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	baseURL := os.Getenv("IRIS_BASE_URL")
	wsURL := os.Getenv("IRIS_WS_URL")
	if baseURL == "" {
		logger.Fatal("IRIS_BASE_URL is required")
	}

	headers := func() map[string]string {
		m := map[string]string{}
		for env, header := range map[string]string{
			"X_USER_ID":    "X-User-Id",
			"X_USER_EMAIL": "X-User-Email",
			"X_SESSION_ID": "X-Session-Id",
		} {
			if v := os.Getenv(env); v != "" {
				m[header] = v
			}
		}
		return m
	}

	client := irisfast.NewClient(baseURL,
		irisfast.WithHeaderProvider(headers),
		irisfast.WithTimeout(8*time.Second),
		irisfast.WithRetry(1),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	cfg, err := client.GetConfig(ctx)
	cancel()
	if err != nil {
		logger.Warn("iris_config_error", zap.Error(err))
	} else {
		logger.Info("iris_config_ok",
			zap.Int("port", cfg.Port),
			zap.Int("polling_speed", cfg.PollingSpeed),
			zap.Int("message_rate", cfg.MessageRate),
			zap.String("endpoint", cfg.WebserverEndpoint),
		)
	}

	if wsURL == "" {
		if *sendRoom != "" {
			sendCheck(irisfast.NewEgress("http", false, client, nil, logger), *sendRoom)
		}
		logger.Info("ws_check_skipped", zap.String("reason", "IRIS_WS_URL not set"))
		return
	}

	ws := irisfast.NewWebSocket(wsURL, 0, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		logger.Info("ws_message",
			zap.String("room", msg.Room),
			zap.String("user_id", msg.UserID()),
			zap.String("sender", msg.SenderName()),
			zap.String("text", msg.Msg),
		)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = ws.Connect(cctx)
	ccancel()
	if err != nil {
		logger.Warn("ws_connect_error", zap.Error(err))
		return
	}
	if *sendRoom != "" {
		sendCheck(irisfast.NewEgress(*egress, false, client, ws, logger), *sendRoom)
	}

	t := time.NewTimer(*watchFor)
	<-t.C

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	_ = ws.Close(closeCtx)
}

func sendCheck(out irisfast.Egress, room string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := out.SendText(ctx, room, "irischeck "+time.Now().Format(time.RFC3339)); err != nil {
		obslog.L().Warn("check_send_error", zap.String("room", room), zap.Error(err))
		return
	}
	obslog.L().Info("check_sent", zap.String("room", room))
}
