package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"filmwatch/internal/bot"
	"filmwatch/internal/config"
	"filmwatch/internal/daemon"
	"filmwatch/internal/logging"
	"filmwatch/internal/metadata"
	"filmwatch/internal/notifications"
	"filmwatch/internal/search"
	"filmwatch/internal/session"
	"filmwatch/internal/store"
	"filmwatch/internal/sweeper"
	"filmwatch/internal/watchlist"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(os.Getenv("FILMWATCH_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		os.Exit(1)
	}

	providers, err := metadata.BuildProviders(cfg)
	if err != nil {
		logger.Error("build metadata providers", logging.Error(err))
		_ = st.Close()
		os.Exit(1)
	}

	sessions := session.NewStore()
	resolver := search.NewResolver(providers, sessions, logger)
	manager := watchlist.NewManager(st, providers, sessions, logger)
	dispatcher := notifications.NewService(cfg)
	sw := sweeper.New(st, providers, dispatcher, cfg.SweepInterval(), cfg.QueryTimeout(), logger)

	poller := buildPoller(cfg, st, sessions, resolver, manager, providers, logger)

	d, err := daemon.New(cfg, st, sw, poller, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("filmwatchd shutting down")
	d.Stop()
}

// buildPoller wires the chat transport when a token is configured. Without
// one the daemon still runs release sweeps, it just has no conversation side.
func buildPoller(cfg *config.Config, st *store.Store, sessions *session.Store, resolver *search.Resolver, manager *watchlist.Manager, providers metadata.Providers, logger *slog.Logger) *bot.Poller {
	if cfg.Telegram.Token == "" {
		return nil
	}
	client := bot.NewClient(cfg)
	handler := bot.NewHandler(client, st, sessions, resolver, manager, providers, cfg.Users.DefaultLanguage, logger)
	return bot.NewPoller(client, handler, cfg.Telegram.PollTimeout, logger)
}
