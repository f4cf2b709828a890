package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status は社員の在籍状態を表します。
type Status string

const (
	StatusActive     Status = "active"
	StatusProbation  Status = "probation"
	StatusSuspended  Status = "suspended"
	StatusTerminated Status = "terminated"
)

// Employee は社員エンティティです。部署・上長は ID で参照します。
type Employee struct {
	ID           string
	EmployeeCode string
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	Position     *string
	DepartmentID *string
	ManagerID    *string
	Status       Status
	StartDate    *time.Time
	EndDate      *time.Time
	Salary       decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName は表示用の氏名です。
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Clone はポインタフィールドを含めてコピーします。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	c.Phone = cloneString(e.Phone)
	c.Position = cloneString(e.Position)
	c.DepartmentID = cloneString(e.DepartmentID)
	c.ManagerID = cloneString(e.ManagerID)
	c.StartDate = cloneTime(e.StartDate)
	c.EndDate = cloneTime(e.EndDate)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
