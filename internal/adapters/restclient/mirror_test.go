package restclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
)

type failingAPI struct {
	TimeLogAPI
	err error
}

func (f failingAPI) AddTimeLog(ctx context.Context, req dto.AddTimeLogRequest) (*dto.TimeLog, error) {
	return nil, f.err
}

func (f failingAPI) DeleteTimeLog(ctx context.Context, id string) error {
	return f.err
}

func TestTimeLogMirror_CommitAgainstServer(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.AddTimeLog(ctx, workLog("emp-1", time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), 30)); err != nil {
		t.Fatalf("seed AddTimeLog: %v", err)
	}

	var m *TimeLogMirror
	var seen []MutationState
	var pendingVisible bool
	m = NewTimeLogMirror(c, "emp-1", func(mut Mutation) {
		seen = append(seen, mut.State)
		if mut.State == StatePending && mut.Kind == KindAdd {
			for _, e := range m.Entries() {
				if e.Log.ID == mut.LogID && e.State == StatePending {
					pendingVisible = true
				}
			}
		}
	})

	if err := m.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(m.Entries()) != 1 {
		t.Fatalf("expected 1 entry after refresh, got %d", len(m.Entries()))
	}

	created, err := m.Add(ctx, workLog("", time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), 60))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !pendingVisible {
		t.Fatal("expected pending entry to be visible before commit")
	}

	entries := m.Entries()
	if len(entries) != 2 || entries[1].Log.ID != created.ID || entries[1].State != StateCommitted {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	badEnd := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	if _, err := m.Update(ctx, created.ID, dto.UpdateTimeLogRequest{EndTime: &badEnd}); err == nil {
		t.Fatal("expected update with end before start to fail")
	}
	entries = m.Entries()
	if entries[1].Log.Duration != 60 || entries[1].State != StateCommitted {
		t.Fatalf("expected rollback to committed entry, got %+v", entries[1])
	}

	muts := m.Mutations()
	if len(muts) != 2 || muts[0].State != StateCommitted || muts[1].State != StateFailed {
		t.Fatalf("unexpected mutation history: %+v", muts)
	}
	want := []MutationState{StatePending, StateCommitted, StatePending, StateFailed}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestTimeLogMirror_FailedMutationsRollBack(t *testing.T) {
	t.Parallel()

	boom := errors.New("network down")
	m := NewTimeLogMirror(failingAPI{err: boom}, "emp-1", nil)
	m.entries["log-1"] = Entry{Log: dto.TimeLog{ID: "log-1", Duration: 30}, State: StateCommitted}

	if _, err := m.Add(context.Background(), workLog("", time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), 60)); !errors.Is(err, boom) {
		t.Fatalf("expected network error, got %v", err)
	}
	if err := m.Delete(context.Background(), "log-1"); !errors.Is(err, boom) {
		t.Fatalf("expected network error, got %v", err)
	}

	entries := m.Entries()
	if len(entries) != 1 || entries[0].Log.ID != "log-1" || entries[0].State != StateCommitted {
		t.Fatalf("expected only the original committed entry, got %+v", entries)
	}

	for _, mut := range m.Mutations() {
		if mut.State != StateFailed || !errors.Is(mut.Err, boom) {
			t.Fatalf("expected failed mutation, got %+v", mut)
		}
	}
}
