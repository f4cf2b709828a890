package leave

import (
	"time"
)

// DateLayout は休暇期間の日付形式です。
const DateLayout = "2006-01-02"

// Type は休暇の種別です。
type Type string

const (
	TypeVacation  Type = "vacation"
	TypeSick      Type = "sick"
	TypeUnpaid    Type = "unpaid"
	TypeMaternity Type = "maternity"
	TypeStudy     Type = "study"
	TypeEmergency Type = "emergency"
)

// IsValidType は既知の種別か判定します。
func IsValidType(t Type) bool {
	switch t {
	case TypeVacation, TypeSick, TypeUnpaid, TypeMaternity, TypeStudy, TypeEmergency:
		return true
	default:
		return false
	}
}

// Status は休暇申請の審査状態です。
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// IsValidStatus は既知の状態か判定します。
func IsValidStatus(s Status) bool {
	return s == StatusPending || s == StatusApproved || s == StatusDenied
}

// Request は休暇申請です。期間は両端を含みます。
type Request struct {
	ID         string
	EmployeeID string
	Type       Type
	StartDate  string
	EndDate    string
	Days       int
	Reason     *string
	Status     Status
	ReviewedBy *string
	ReviewedAt *time.Time
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone はポインタ項目を含めてコピーします。
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := *r
	if r.Reason != nil {
		v := *r.Reason
		c.Reason = &v
	}
	if r.ReviewedBy != nil {
		v := *r.ReviewedBy
		c.ReviewedBy = &v
	}
	if r.ReviewedAt != nil {
		v := *r.ReviewedAt
		c.ReviewedAt = &v
	}
	if r.Notes != nil {
		v := *r.Notes
		c.Notes = &v
	}
	return &c
}

// Overlaps は期間が重なるか判定します。日付は DateLayout なので文字列比較で足ります。
func (r *Request) Overlaps(start, end string) bool {
	return r.StartDate <= end && start <= r.EndDate
}

// Blocking は重複判定の対象になる状態か判定します。却下済みは対象外です。
func (r *Request) Blocking() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// CountDays は開始日から終了日までの日数を両端を含めて数えます。
func CountDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
