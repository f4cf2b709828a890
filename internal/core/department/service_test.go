package department

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	departments map[string]*Department
	order       []string
	seq         int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{departments: make(map[string]*Department)}
}

func (r *fakeRepo) Create(_ context.Context, d *Department) (*Department, error) {
	for _, existing := range r.departments {
		if existing.Code == d.Code {
			return nil, ErrCodeAlreadyExists
		}
	}
	clone := d.Clone()
	r.seq++
	id := fmt.Sprintf("dep-%d", r.seq)
	clone.ID = id
	r.departments[id] = clone
	r.order = append(r.order, id)
	return clone.Clone(), nil
}

func (r *fakeRepo) Update(_ context.Context, d *Department) (*Department, error) {
	if _, ok := r.departments[d.ID]; !ok {
		return nil, ErrDepartmentNotFound
	}
	r.departments[d.ID] = d.Clone()
	return d.Clone(), nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.departments[id]; !ok {
		return ErrDepartmentNotFound
	}
	delete(r.departments, id)
	for i, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Department, error) {
	d, ok := r.departments[id]
	if !ok {
		return nil, ErrDepartmentNotFound
	}
	return d.Clone(), nil
}

func (r *fakeRepo) FindByCode(_ context.Context, code string) (*Department, error) {
	for _, d := range r.departments {
		if d.Code == code {
			return d.Clone(), nil
		}
	}
	return nil, ErrDepartmentNotFound
}

func (r *fakeRepo) List(_ context.Context, filter ListDepartmentsFilter) ([]*Department, string, error) {
	var filtered []*Department
	for _, id := range r.order {
		d := r.departments[id]
		if filter.Matches(d) {
			filtered = append(filtered, d.Clone())
		}
	}

	if filter.Offset > len(filtered) {
		return []*Department{}, "", nil
	}

	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := filtered[filter.Offset:end]

	var nextToken string
	if end < len(filtered) {
		nextToken = strconv.Itoa(end)
	}

	return page, nextToken, nil
}

func TestService_CreateDepartment_Success(t *testing.T) {
	t.Parallel()

	desc := "  Builds the product "
	head := " emp-1 "
	clk := &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(newFakeRepo(), clk, nil)

	created, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{
		Name:           "  Engineering  ",
		Code:           " ENG ",
		HeadEmployeeID: &head,
		Description:    &desc,
	})
	if err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}

	if created.Name != "Engineering" || created.Code != "eng" {
		t.Fatalf("expected normalized name and code, got %s %s", created.Name, created.Code)
	}
	if created.HeadEmployeeID == nil || *created.HeadEmployeeID != "emp-1" {
		t.Fatalf("expected trimmed head, got %+v", created.HeadEmployeeID)
	}
	if created.Description == nil || *created.Description != "Builds the product" {
		t.Fatalf("expected trimmed description, got %+v", created.Description)
	}
	if created.Status != StatusActive || created.ParentID != nil {
		t.Fatalf("unexpected department: %+v", created)
	}
	if !created.CreatedAt.Equal(clk.now) {
		t.Fatalf("expected timestamps to use clock")
	}
}

func TestService_CreateDepartment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Name: " ", Code: "x"}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Name: "X", Code: "bad code"}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	ghost := "ghost"
	if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Name: "X", Code: "x", ParentID: &ghost}); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}

	if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Name: "X", Code: "x"}); err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}
	if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Name: "Y", Code: "X"}); !errors.Is(err, ErrCodeAlreadyExists) {
		t.Fatalf("expected ErrCodeAlreadyExists, got %v", err)
	}
}

func TestService_Hierarchy(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	ctx := context.Background()

	root, err := svc.CreateDepartment(ctx, CreateDepartmentInput{Name: "Company", Code: "root"})
	if err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}
	mid, err := svc.CreateDepartment(ctx, CreateDepartmentInput{Name: "Engineering", Code: "eng", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}
	leaf, err := svc.CreateDepartment(ctx, CreateDepartmentInput{Name: "Platform", Code: "platform", ParentID: &mid.ID})
	if err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}

	if _, err := svc.UpdateDepartment(ctx, UpdateDepartmentInput{ID: root.ID, ParentID: &leaf.ID, ParentIDSet: true}); !errors.Is(err, ErrHierarchyCycle) {
		t.Fatalf("expected ErrHierarchyCycle, got %v", err)
	}
	if _, err := svc.UpdateDepartment(ctx, UpdateDepartmentInput{ID: mid.ID, ParentID: &mid.ID, ParentIDSet: true}); !errors.Is(err, ErrHierarchyCycle) {
		t.Fatalf("expected ErrHierarchyCycle for self parent, got %v", err)
	}

	children, err := svc.ListDepartments(ctx, ListDepartmentsInput{ParentID: &root.ID})
	if err != nil {
		t.Fatalf("ListDepartments returned error: %v", err)
	}
	if len(children.Departments) != 1 || children.Departments[0].ID != mid.ID {
		t.Fatalf("unexpected children: %+v", children.Departments)
	}

	if err := svc.DeleteDepartment(ctx, DeleteDepartmentInput{ID: mid.ID}); !errors.Is(err, ErrHasChildren) {
		t.Fatalf("expected ErrHasChildren, got %v", err)
	}

	moved, err := svc.UpdateDepartment(ctx, UpdateDepartmentInput{ID: leaf.ID, ParentID: &root.ID, ParentIDSet: true})
	if err != nil {
		t.Fatalf("UpdateDepartment returned error: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != root.ID {
		t.Fatalf("expected leaf moved under root")
	}
	if err := svc.DeleteDepartment(ctx, DeleteDepartmentInput{ID: mid.ID}); err != nil {
		t.Fatalf("DeleteDepartment returned error: %v", err)
	}
	if err := svc.EnsureDepartment(ctx, mid.ID); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}

func TestService_UpdateDepartment_Fields(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(newFakeRepo(), clk, nil)

	created, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Name: "Sales", Code: "sales"})
	if err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}

	clk.now = clk.now.Add(time.Hour)
	name := " Global Sales "
	inactive := StatusInactive
	updated, err := svc.UpdateDepartment(context.Background(), UpdateDepartmentInput{ID: created.ID, Name: &name, Status: &inactive})
	if err != nil {
		t.Fatalf("UpdateDepartment returned error: %v", err)
	}
	if updated.Name != "Global Sales" || updated.Status != StatusInactive || !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("unexpected department: %+v", updated)
	}

	bad := Status("archived")
	if _, err := svc.UpdateDepartment(context.Background(), UpdateDepartmentInput{ID: created.ID, Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestService_ListDepartments_Pagination(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Name: "D", Code: fmt.Sprintf("d-%d", i)}); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	page1, err := svc.ListDepartments(context.Background(), ListDepartmentsInput{PageSize: 2})
	if err != nil {
		t.Fatalf("ListDepartments returned error: %v", err)
	}
	if len(page1.Departments) != 2 || page1.NextPageToken != "2" {
		t.Fatalf("unexpected page1: %+v", page1)
	}

	page2, err := svc.ListDepartments(context.Background(), ListDepartmentsInput{PageSize: 2, PageToken: page1.NextPageToken})
	if err != nil {
		t.Fatalf("ListDepartments returned error: %v", err)
	}
	if len(page2.Departments) != 1 || page2.NextPageToken != "" {
		t.Fatalf("unexpected page2: %+v", page2)
	}

	if _, err := svc.ListDepartments(context.Background(), ListDepartmentsInput{PageToken: "-1"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}
