package daemon_test

import (
	"context"
	"testing"
	"time"

	"filmwatch/internal/daemon"
	"filmwatch/internal/logging"
	"filmwatch/internal/metadata"
	"filmwatch/internal/notifications"
	"filmwatch/internal/sweeper"
	"filmwatch/internal/testsupport"
)

type noopDispatcher struct{}

func (noopDispatcher) NotifyReleased(context.Context, int64, string, int, string) error { return nil }
func (noopDispatcher) Test(context.Context, int64) error                                { return nil }

var _ notifications.Service = noopDispatcher{}

func newTestDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	sw := sweeper.New(st, metadata.Providers{}, noopDispatcher{}, time.Hour, time.Second, logging.NewNop())

	d, err := daemon.New(cfg, st, sw, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newTestDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second Start must fail while running")
	}
	d.Stop()

	// Stop when not running is a no-op.
	d.Stop()
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	sw := sweeper.New(st, metadata.Providers{}, noopDispatcher{}, time.Hour, time.Second, logging.NewNop())

	first, err := daemon.New(cfg, st, sw, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer first.Stop()

	otherSweeper := sweeper.New(st, metadata.Providers{}, noopDispatcher{}, time.Hour, time.Second, logging.NewNop())
	second, err := daemon.New(cfg, st, otherSweeper, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance must not acquire the lock")
	}
}

func TestDaemonNewRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
