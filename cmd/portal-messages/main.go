package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clippy-oss/homie/portal-messages/internal/cli"
	"github.com/clippy-oss/homie/portal-messages/internal/config"
	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/logger"
	"github.com/clippy-oss/homie/portal-messages/internal/repository"
	"github.com/clippy-oss/homie/portal-messages/internal/schedule"
	"github.com/clippy-oss/homie/portal-messages/internal/service"
	mcpTransport "github.com/clippy-oss/homie/portal-messages/internal/transport/mcp"
	"github.com/clippy-oss/homie/portal-messages/internal/tui"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "portal-messages: %v\n", err)
		os.Exit(2)
	}

	// The TUI owns the terminal, so its logs go to a file instead of stderr
	var logOut io.Writer
	if cfg.Mode == config.ModeTUI {
		logOut = openTUILog()
	}
	logger.Init(cfg.LogLevel, logOut)

	sessionID := uuid.NewString()
	log := logger.Session("main", sessionID).With().Str("name", cfg.SessionName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	sched := schedule.NewClockScheduler(nil)

	seed, err := loadSeed(ctx, cfg.SeedDBPath, sched.Now(), log)
	if err != nil {
		log.Fatal().Err(err).Str("seed_db", cfg.SeedDBPath).Msg("failed to load seed catalogue")
	}

	store := repository.NewConversationStore(seed, sched.Now)
	msgSvc := service.NewMessageService(store, sched, domain.NewEventBus(), service.StatusSimulatorConfig{
		DeliveredAfter: cfg.DeliveredAfter,
		ReadAfter:      cfg.ReadAfter,
	})
	defer msgSvc.Close()

	log.Info().
		Str("mode", cfg.Mode).
		Int("conversations", len(seed)).
		Dur("delivered_after", cfg.DeliveredAfter).
		Dur("read_after", cfg.ReadAfter).
		Msg("portal messages starting")

	switch cfg.Mode {
	case config.ModeInteractive:
		err = cli.NewInteractiveCLI(cli.NewCommandHandler(msgSvc), os.Stdin, os.Stdout).Run(ctx)
	case config.ModeHeadless:
		err = cli.NewHeadlessCLI(cli.NewCommandHandler(msgSvc), os.Stdin, os.Stdout).Run(ctx)
	case config.ModeMCP:
		err = mcpTransport.NewServer(msgSvc, mcpTransport.ServerConfig{}).Serve(ctx, os.Stdin, os.Stdout)
	default:
		err = tui.Run(ctx, msgSvc, os.Stdin, os.Stdout)
	}

	if err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("session ended with error")
	}
	log.Info().Msg("shutdown complete")
}

func loadSeed(ctx context.Context, path string, now time.Time, log zerolog.Logger) ([]*domain.Conversation, error) {
	if path == "" {
		return repository.SampleConversations(now), nil
	}

	db, err := repository.OpenSeedDB(path)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	seed, err := repository.NewSeedRepository(db).Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(seed) == 0 {
		log.Warn().Str("seed_db", path).Msg("seed catalogue is empty, using built-in samples")
		return repository.SampleConversations(now), nil
	}
	return seed, nil
}

func openTUILog() io.Writer {
	path := filepath.Join(os.TempDir(), "portal-messages.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return io.Discard
	}
	return f
}
