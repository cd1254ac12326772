package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dogfight/domain"
	"dogfight/game"
	"dogfight/session"
	"dogfight/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	setupLogger(utils.GetEnvDefault("LOG_LEVEL", "info"))

	mode := utils.GetEnvDefault("MODE", "local")
	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "9090")
	hostPort := fmt.Sprintf("%s:%s", addr, port)

	cfg := game.DefaultConfig()
	cfg.TickRate = utils.GetEnvInt("TICK_RATE", cfg.TickRate)

	ctrl := session.NewController(cfg)

	// キー捕捉と描画は外部コラボレーター。ここでは操縦AIを入力源と
	// して束縛する
	var (
		result session.Result
		err    error
	)
	switch mode {
	case "local":
		result, err = ctrl.RunLocal(ctx,
			session.NewAutopilot(domain.PlayerOne),
			session.NewAutopilot(domain.PlayerTwo),
		)
	case "server":
		slog.InfoContext(ctx, "hosting match", "addr", hostPort)
		result, err = ctrl.RunServer(ctx, hostPort, session.NewAutopilot(domain.PlayerOne))
	case "client":
		slog.InfoContext(ctx, "joining match", "addr", hostPort)
		result, err = ctrl.RunClient(ctx, hostPort, session.NewAutopilot(domain.PlayerTwo))
	default:
		slog.Error("unknown MODE", "mode", mode)
		os.Exit(2)
	}

	if err != nil {
		slog.ErrorContext(ctx, "match aborted", "reason", result.Reason.String(), "err", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "match finished",
		"reason", result.Reason.String(),
		"tick", result.Final.Tick,
		"winner", result.Final.Winner(),
	)
}

func setupLogger(level string) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})))
}
