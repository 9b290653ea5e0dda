package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/aoe2league/recbot/internal/channel"
	"github.com/aoe2league/recbot/internal/channel/discord"
	"github.com/aoe2league/recbot/internal/command"
	"github.com/aoe2league/recbot/internal/config"
	"github.com/aoe2league/recbot/internal/creds"
	"github.com/aoe2league/recbot/internal/intake"
	"github.com/aoe2league/recbot/internal/logger"
	"github.com/aoe2league/recbot/internal/notify"
	"github.com/aoe2league/recbot/internal/results"
	"github.com/aoe2league/recbot/internal/server"
	"github.com/aoe2league/recbot/internal/storage"
	"github.com/aoe2league/recbot/internal/version"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and serve replay intake",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.toml")
	return cmd
}

func runServe(configPath string) error {
	_ = godotenv.Load()

	if configPath == "" {
		configPath = os.Getenv("RECBOT_CONFIG")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(cfg.Log)
	log.Info("starting recbot", slog.String("version", version.Version))

	// An unusable token means every submission would fail downstream, so
	// refuse to start at all.
	if _, err := creds.Load(cfg.Google.TokenPath); err != nil {
		return fmt.Errorf("credentials check: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, err := storage.NewS3Gateway(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("storage gateway: %w", err)
	}

	ledger, err := results.OpenLedger(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			log.Error("close ledger", slog.Any("error", err))
		}
	}()

	adapter := discord.NewAdapter(cfg.Discord.Token, log)
	pipeline := intake.NewPipeline(gateway, cfg.Intake.MaxReplayBytes, log)
	notifier := notify.NewNotifier(adapter, cfg.Discord.AdminUserID, log)
	guard := command.NewGuard(cfg.Discord.AdminUserID)
	router := command.NewRouter(cfg.Discord, pipeline, adapter, notifier, gateway, ledger, guard, adapter, log)

	queue := channel.NewQueue(0, log)
	conn, err := connectChannel(ctx, adapter, queue)
	if err != nil {
		return fmt.Errorf("discord connect: %w", err)
	}
	log.Info("channel connected", slog.String("channel", conn.ChannelType().String()))

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Reindex.Schedule, func() {
		total, added, err := router.Reindex(ctx)
		if err != nil {
			log.Error("scheduled reindex failed", slog.Any("error", err))
			return
		}
		log.Info("scheduled reindex done", slog.Int("total", total), slog.Int("added", added))
	}); err != nil {
		return fmt.Errorf("reindex schedule %q: %w", cfg.Reindex.Schedule, err)
	}
	scheduler.Start()

	srv := server.NewServer(cfg.Server.Addr, ledger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()

	log.Info("recbot running", slog.String("addr", cfg.Server.Addr))
	queue.Run(ctx, router.Route)

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	<-scheduler.Stop().Done()
	if err := conn.Stop(shutdownCtx); err != nil && !errors.Is(err, channel.ErrStopNotSupported) {
		log.Error("discord disconnect", slog.Any("error", err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", slog.Any("error", err))
	}
	return nil
}

// connectChannel bridges any channel receiver onto the inbound queue.
func connectChannel(ctx context.Context, receiver channel.Receiver, queue *channel.Queue) (channel.Connection, error) {
	return receiver.Connect(ctx, func(ctx context.Context, msg channel.InboundMessage) error {
		queue.Push(ctx, msg)
		return nil
	})
}
