package timelog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeLogRepo struct {
	logs map[string]*TimeLog
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: make(map[string]*TimeLog)}
}

func (r *fakeLogRepo) Create(_ context.Context, l *TimeLog) (*TimeLog, error) {
	if _, ok := r.logs[l.ID]; ok {
		return nil, ErrLogAlreadyExists
	}
	clone := l.Clone()
	r.logs[l.ID] = &clone
	out := clone.Clone()
	return &out, nil
}

func (r *fakeLogRepo) Update(_ context.Context, l *TimeLog) (*TimeLog, error) {
	if _, ok := r.logs[l.ID]; !ok {
		return nil, ErrLogNotFound
	}
	clone := l.Clone()
	r.logs[l.ID] = &clone
	out := clone.Clone()
	return &out, nil
}

func (r *fakeLogRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.logs[id]; !ok {
		return ErrLogNotFound
	}
	delete(r.logs, id)
	return nil
}

func (r *fakeLogRepo) FindByID(_ context.Context, id string) (*TimeLog, error) {
	l, ok := r.logs[id]
	if !ok {
		return nil, ErrLogNotFound
	}
	out := l.Clone()
	return &out, nil
}

func (r *fakeLogRepo) List(_ context.Context, filter ListFilter) ([]*TimeLog, error) {
	var out []*TimeLog
	for _, l := range r.logs {
		if filter.Matches(l) {
			clone := l.Clone()
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func newTestService(now time.Time) (*Service, *fakeLogRepo, *stubClock) {
	repo := newFakeLogRepo()
	clk := &stubClock{now: now}
	svc := NewService(repo, clk, nil)
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("log-%d", seq)
	}
	return svc, repo, clk
}

func TestService_AddLog_ComputesRoundedDuration(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(90*time.Minute + 40*time.Second)
	project := "  payroll  "

	created, err := svc.AddLog(context.Background(), AddLogInput{
		EmployeeID: " emp-1 ",
		Date:       "2025-03-01",
		StartTime:  start,
		EndTime:    end,
		Type:       TypeMeeting,
		Project:    &project,
	})
	if err != nil {
		t.Fatalf("AddLog returned error: %v", err)
	}

	if created.ID != "log-1" {
		t.Fatalf("expected generated id, got %s", created.ID)
	}
	if created.EmployeeID != "emp-1" {
		t.Fatalf("expected trimmed employee id, got %q", created.EmployeeID)
	}
	if created.Duration != 91 {
		t.Fatalf("expected rounded duration 91, got %d", created.Duration)
	}
	if created.Project == nil || *created.Project != "payroll" {
		t.Fatalf("expected trimmed project, got %+v", created.Project)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps from clock")
	}
}

func TestService_AddLog_DefaultsDateAndType(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	start := time.Date(2025, 3, 2, 22, 30, 0, 0, time.UTC)

	created, err := svc.AddLog(context.Background(), AddLogInput{
		EmployeeID: "emp-1",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("AddLog returned error: %v", err)
	}
	if created.Date != "2025-03-02" {
		t.Fatalf("expected date from start time, got %s", created.Date)
	}
	if created.Type != TypeWork {
		t.Fatalf("expected default type work, got %s", created.Type)
	}
}

func TestService_AddLog_ExplicitIDAndDuration(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	start := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	id := "emp-1-1740906000000"
	duration := 59

	created, err := svc.AddLog(context.Background(), AddLogInput{
		ID:         &id,
		EmployeeID: "emp-1",
		StartTime:  start,
		EndTime:    start.Add(59*time.Minute + 59*time.Second),
		Duration:   &duration,
		Type:       TypeOvertime,
	})
	if err != nil {
		t.Fatalf("AddLog returned error: %v", err)
	}
	if created.ID != id || created.Duration != 59 {
		t.Fatalf("expected explicit id and duration, got %s %d", created.ID, created.Duration)
	}
}

func TestService_AddLog_Validation(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   AddLogInput
		want error
	}{
		{"missing employee", AddLogInput{StartTime: start, EndTime: start.Add(time.Hour)}, ErrInvalidEmployeeID},
		{"bad date", AddLogInput{EmployeeID: "e", Date: "02/03/2025", StartTime: start, EndTime: start.Add(time.Hour)}, ErrInvalidDate},
		{"missing date and start", AddLogInput{EmployeeID: "e", EndTime: start}, ErrInvalidDate},
		{"missing start", AddLogInput{EmployeeID: "e", Date: "2025-03-02", EndTime: start}, ErrInvalidStartTime},
		{"missing end", AddLogInput{EmployeeID: "e", StartTime: start}, ErrInvalidEndTime},
		{"end before start", AddLogInput{EmployeeID: "e", StartTime: start, EndTime: start.Add(-time.Minute)}, ErrInvalidTimeRange},
		{"equal times", AddLogInput{EmployeeID: "e", StartTime: start, EndTime: start}, ErrInvalidTimeRange},
		{"unknown type", AddLogInput{EmployeeID: "e", StartTime: start, EndTime: start.Add(time.Hour), Type: "nap"}, ErrInvalidType},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, _, _ := newTestService(time.Now().UTC())
			_, err := svc.AddLog(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !IsValidation(err) {
				t.Fatalf("expected validation classification for %v", err)
			}
		})
	}
}

func TestService_UpdateLog_MergesAndRecomputes(t *testing.T) {
	t.Parallel()

	svc, _, clk := newTestService(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	notes := "initial"

	created, err := svc.AddLog(context.Background(), AddLogInput{
		EmployeeID: "emp-1",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Notes:      &notes,
	})
	if err != nil {
		t.Fatalf("AddLog returned error: %v", err)
	}

	clk.now = clk.now.Add(2 * time.Hour)
	newEnd := start.Add(150 * time.Minute)
	overtime := TypeOvertime

	updated, err := svc.UpdateLog(context.Background(), UpdateLogInput{
		ID:      created.ID,
		EndTime: &newEnd,
		Type:    &overtime,
	})
	if err != nil {
		t.Fatalf("UpdateLog returned error: %v", err)
	}

	if updated.Duration != 150 {
		t.Fatalf("expected recomputed duration 150, got %d", updated.Duration)
	}
	if updated.Type != TypeOvertime {
		t.Fatalf("expected type overtime, got %s", updated.Type)
	}
	if updated.Notes == nil || *updated.Notes != "initial" {
		t.Fatalf("expected untouched notes, got %+v", updated.Notes)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected UpdatedAt refreshed to %v, got %v", clk.now, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected CreatedAt unchanged")
	}
}

func TestService_UpdateLog_RejectsInvertedRange(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	created, err := svc.AddLog(context.Background(), AddLogInput{EmployeeID: "emp-1", StartTime: start, EndTime: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("AddLog returned error: %v", err)
	}

	newStart := start.Add(2 * time.Hour)
	_, err = svc.UpdateLog(context.Background(), UpdateLogInput{ID: created.ID, StartTime: &newStart})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestService_UpdateLog_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	notes := "x"
	_, err := svc.UpdateLog(context.Background(), UpdateLogInput{ID: "missing", Notes: &notes})
	if !errors.Is(err, ErrLogNotFound) {
		t.Fatalf("expected ErrLogNotFound, got %v", err)
	}
}

func TestService_DeleteLog(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(time.Now().UTC())
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	created, err := svc.AddLog(context.Background(), AddLogInput{EmployeeID: "emp-1", StartTime: start, EndTime: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("AddLog returned error: %v", err)
	}

	if err := svc.DeleteLog(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteLog returned error: %v", err)
	}
	if len(repo.logs) != 0 {
		t.Fatalf("expected log removed")
	}
	if err := svc.DeleteLog(context.Background(), created.ID); !errors.Is(err, ErrLogNotFound) {
		t.Fatalf("expected ErrLogNotFound on second delete, got %v", err)
	}
}

func TestService_ListLogs_FiltersByEmployeeAndInclusiveRange(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	seed := []struct {
		employee string
		day      int
	}{
		{"emp-1", 1}, {"emp-1", 5}, {"emp-1", 10}, {"emp-1", 11}, {"emp-2", 5},
	}
	for _, s := range seed {
		start := time.Date(2025, 3, s.day, 9, 0, 0, 0, time.UTC)
		if _, err := svc.AddLog(context.Background(), AddLogInput{EmployeeID: s.employee, StartTime: start, EndTime: start.Add(time.Hour)}); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	logs, err := svc.ListLogs(context.Background(), ListLogsInput{EmployeeID: "emp-1", From: "2025-03-01", To: "2025-03-10"})
	if err != nil {
		t.Fatalf("ListLogs returned error: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs in inclusive range, got %d", len(logs))
	}
	for _, l := range logs {
		if l.EmployeeID != "emp-1" {
			t.Fatalf("unexpected employee %s", l.EmployeeID)
		}
	}

	if _, err := svc.ListLogs(context.Background(), ListLogsInput{From: "2025-03-10", To: "2025-03-01"}); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(29*time.Minute + 31*time.Second)

	if got := RoundedMinutes(start, end); got != 30 {
		t.Fatalf("RoundedMinutes = %d, want 30", got)
	}
	if got := FloorMinutes(start, end); got != 29 {
		t.Fatalf("FloorMinutes = %d, want 29", got)
	}

	logs := []TimeLog{
		{Duration: 60, Type: TypeWork},
		{Duration: 30, Type: TypeBreak},
		{Duration: 120, Type: TypeOvertime},
	}
	if got := SumDuration(logs, nil); got != 210 {
		t.Fatalf("SumDuration(all) = %d", got)
	}
	if got := SumDuration(logs, OfType(TypeOvertime)); got != 120 {
		t.Fatalf("SumDuration(overtime) = %d", got)
	}
}

func TestCloneAll_IsIndependent(t *testing.T) {
	t.Parallel()

	notes := "original"
	logs := []TimeLog{{ID: "a", Notes: &notes}}
	copied := CloneAll(logs)
	*logs[0].Notes = "mutated"
	logs[0].Duration = 99

	if *copied[0].Notes != "original" || copied[0].Duration != 0 {
		t.Fatalf("expected snapshot to be independent, got %+v", copied[0])
	}
}
