package employee

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecodeLegacy_BothShapes(t *testing.T) {
	t.Parallel()

	legacy := []byte(`{"employeeId":"EMP001","firstName":"Sarah","lastName":"Johnson","email":"sarah@company.com",
		"department":"dep-eng","manager":"emp-9","status":"Active","startDate":"2022-01-15","salary":"85,000"}`)
	current := []byte(`{"employeeCode":"EMP001","firstName":"Sarah","lastName":"Johnson","email":"sarah@company.com",
		"departmentId":"dep-eng","managerId":"emp-9","status":"active","startDate":"2022-01-15T00:00:00Z","salary":85000}`)

	a, err := DecodeLegacy(legacy)
	if err != nil {
		t.Fatalf("DecodeLegacy(legacy) returned error: %v", err)
	}
	b, err := DecodeLegacy(current)
	if err != nil {
		t.Fatalf("DecodeLegacy(current) returned error: %v", err)
	}

	for _, in := range []CreateEmployeeInput{a, b} {
		if in.EmployeeCode != "EMP001" {
			t.Fatalf("unexpected code %q", in.EmployeeCode)
		}
		if in.DepartmentID == nil || *in.DepartmentID != "dep-eng" {
			t.Fatalf("expected department id, got %+v", in.DepartmentID)
		}
		if in.ManagerID == nil || *in.ManagerID != "emp-9" {
			t.Fatalf("expected manager id, got %+v", in.ManagerID)
		}
		if in.Status == nil || *in.Status != StatusActive {
			t.Fatalf("expected active status, got %+v", in.Status)
		}
		if !in.Salary.Equal(decimal.NewFromInt(85000)) {
			t.Fatalf("unexpected salary %s", in.Salary)
		}
		if in.StartDate == nil || in.StartDate.Format("2006-01-02") != "2022-01-15" {
			t.Fatalf("unexpected start date %+v", in.StartDate)
		}
	}
}

func TestDecodeLegacy_NameFallbackAndErrors(t *testing.T) {
	t.Parallel()

	in, err := DecodeLegacy([]byte(`{"employeeId":"e1","name":"Mary Ann Smith","email":"m@example.com"}`))
	if err != nil {
		t.Fatalf("DecodeLegacy returned error: %v", err)
	}
	if in.FirstName != "Mary" || in.LastName != "Ann Smith" || !in.Salary.IsZero() {
		t.Fatalf("unexpected decode: %+v", in)
	}

	if _, err := DecodeLegacy([]byte(`{"salary":"lots"}`)); !errors.Is(err, ErrInvalidSalary) {
		t.Fatalf("expected ErrInvalidSalary, got %v", err)
	}
	if _, err := DecodeLegacy([]byte(`{"startDate":"15/01/2022"}`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if _, err := DecodeLegacy([]byte(`not json`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
