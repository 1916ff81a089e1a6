// Package daemon coordinates the background services and enforces
// single-instance execution.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"filmwatch/internal/bot"
	"filmwatch/internal/config"
	"filmwatch/internal/logging"
	"filmwatch/internal/store"
	"filmwatch/internal/sweeper"
)

// Daemon owns the release sweeper and the chat poller for one process.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	sweeper *sweeper.Sweeper
	poller  *bot.Poller

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The poller may be
// nil when no chat token is configured; the sweeper still runs.
func New(cfg *config.Config, st *store.Store, sw *sweeper.Sweeper, poller *bot.Poller, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || sw == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, sweeper, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "filmwatchd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		sweeper:  sw,
		poller:   poller,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the background services.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another filmwatch daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.sweeper.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start sweeper: %w", err)
	}

	if d.poller != nil {
		if err := d.poller.Start(runCtx); err != nil {
			d.sweeper.Stop()
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return fmt.Errorf("start poller: %w", err)
		}
	} else {
		d.logger.Warn("no chat token configured; running sweeps only")
	}

	d.running.Store(true)
	d.logger.Info("filmwatch daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.poller != nil {
		d.poller.Stop()
	}
	d.sweeper.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("filmwatch daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
