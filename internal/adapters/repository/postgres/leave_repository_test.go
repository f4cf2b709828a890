package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/leave"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var leaveMockColumns = []string{"id", "employee_id", "type", "start_date", "end_date", "days", "reason", "status", "reviewed_by", "reviewed_at", "notes", "created_at", "updated_at"}

func TestLeaveRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewLeaveRepository(mock)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	reason := "trip"
	req := &leave.Request{
		ID:         "leave-1",
		EmployeeID: "emp-1",
		Type:       leave.TypeVacation,
		StartDate:  "2025-03-10",
		EndDate:    "2025-03-12",
		Days:       3,
		Reason:     &reason,
		Status:     leave.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	rows := pgxmock.NewRows(leaveMockColumns).
		AddRow("leave-1", "emp-1", "vacation", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), 3, "trip", "pending", nil, nil, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO leave_requests`)).
		WithArgs("leave-1", "emp-1", "vacation", "2025-03-10", "2025-03-12", 3, "trip", "pending", nil, nil, nil, now, now).
		WillReturnRows(rows)

	created, err := repo.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.StartDate != "2025-03-10" || created.EndDate != "2025-03-12" || created.Days != 3 {
		t.Fatalf("unexpected request: %+v", created)
	}
	if created.Reason == nil || *created.Reason != "trip" || created.ReviewedBy != nil {
		t.Fatalf("unexpected nullable fields: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLeaveRepository_Create_RangeViolation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewLeaveRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO leave_requests`)).
		WillReturnError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "leave_requests_range_check"})

	_, err = repo.Create(context.Background(), &leave.Request{ID: "leave-1", StartDate: "2025-03-12", EndDate: "2025-03-10"})
	if !errors.Is(err, leave.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestLeaveRepository_List_Filters(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewLeaveRepository(mock)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(leaveMockColumns).
		AddRow("leave-2", "emp-1", "sick", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 1, nil, "approved", "hr-1", now, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM leave_requests WHERE employee_id = $1 AND status = $2`)).
		WithArgs("emp-1", "approved").
		WillReturnRows(rows)

	approved := leave.StatusApproved
	list, err := repo.List(context.Background(), leave.ListFilter{EmployeeID: "emp-1", Status: &approved})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].ReviewedBy == nil || *list[0].ReviewedBy != "hr-1" || list[0].ReviewedAt == nil {
		t.Fatalf("unexpected list: %+v", list)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLeaveRepository_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewLeaveRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM leave_requests`)).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(leaveMockColumns))

	if _, err := repo.FindByID(context.Background(), "missing"); !errors.Is(err, leave.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
