package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timer"
)

func newStore(t *testing.T, ttl time.Duration) (*TimerSessionStore, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTimerSessionStore(client, "", ttl), srv
}

func TestTimerSessionStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store, srv := newStore(t, 0)
	ctx := context.Background()

	if _, err := store.Get(ctx, "emp-1"); !errors.Is(err, timer.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	start := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)
	project := "hr-portal"
	if err := store.Put(ctx, &timer.Session{EmployeeID: "emp-1", State: timer.StateRunning, StartTime: start, CurrentType: timelog.TypeOvertime, Project: &project}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if !srv.Exists(DefaultKeyPrefix + "emp-1") {
		t.Fatalf("expected key with default prefix")
	}

	got, err := store.Get(ctx, "emp-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !got.IsRunning() || !got.StartTime.Equal(start) || got.CurrentType != timelog.TypeOvertime {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.Project == nil || *got.Project != project || got.Task != nil {
		t.Fatalf("unexpected optional fields: %+v", got)
	}

	if err := store.Delete(ctx, "emp-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := store.Delete(ctx, "emp-1"); !errors.Is(err, timer.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestTimerSessionStore_TTL(t *testing.T) {
	t.Parallel()

	store, srv := newStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Put(ctx, &timer.Session{EmployeeID: "emp-2", State: timer.StateRunning, CurrentType: timelog.TypeWork}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if ttl := srv.TTL(DefaultKeyPrefix + "emp-2"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}

	srv.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, "emp-2"); !errors.Is(err, timer.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestTimerSessionStore_WithTimerService(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t, 0)
	sink := &captureSink{}
	svc := timer.NewService(store, sink, nil)
	ctx := context.Background()

	if _, err := svc.Start(ctx, timer.StartInput{EmployeeID: "emp-3"}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	current, err := svc.Current(ctx, "emp-3")
	if err != nil || !current.IsRunning() {
		t.Fatalf("expected running session from redis, got %+v %v", current, err)
	}
	if _, err := svc.Stop(ctx, timer.StopInput{EmployeeID: "emp-3"}); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if sink.count != 1 {
		t.Fatalf("expected one log emitted, got %d", sink.count)
	}
	if _, err := store.Get(ctx, "emp-3"); !errors.Is(err, timer.ErrSessionNotFound) {
		t.Fatalf("expected session cleared, got %v", err)
	}
}

type captureSink struct {
	count int
}

func (c *captureSink) AddLog(_ context.Context, in timelog.AddLogInput) (*timelog.TimeLog, error) {
	c.count++
	return &timelog.TimeLog{ID: *in.ID, EmployeeID: in.EmployeeID, Type: in.Type}, nil
}
