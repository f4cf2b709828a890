package timesheet

import (
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
)

// Status はタイムシートの承認状態です。
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Timesheet は社員一人・一期間分の作業記録の集計です。Logs は生成時点のコピーです。
type Timesheet struct {
	ID              string
	EmployeeID      string
	PeriodStart     string
	PeriodEnd       string
	Logs            []timelog.TimeLog
	TotalMinutes    int
	OvertimeMinutes int
	BreakMinutes    int
	TotalHours      float64
	OvertimeHours   float64
	Status          Status
	SubmittedAt     *time.Time
	ApprovedBy      *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Summary は作業記録の集計値です。
type Summary struct {
	TotalMinutes    int
	OvertimeMinutes int
	BreakMinutes    int
}

// TotalHours は総時間 (時間単位) です。
func (s Summary) TotalHours() float64 {
	return float64(s.TotalMinutes) / 60
}

// OvertimeHours は残業時間 (時間単位) です。
func (s Summary) OvertimeHours() float64 {
	return float64(s.OvertimeMinutes) / 60
}

// Summarize は種別を問わず全記録を合計し、残業と休憩を別途集計します。
func Summarize(logs []timelog.TimeLog) Summary {
	return Summary{
		TotalMinutes:    timelog.SumDuration(logs, nil),
		OvertimeMinutes: timelog.SumDuration(logs, timelog.OfType(timelog.TypeOvertime)),
		BreakMinutes:    timelog.SumDuration(logs, timelog.OfType(timelog.TypeBreak)),
	}
}

// Clone は Logs を含めてコピーします。
func (t *Timesheet) Clone() *Timesheet {
	if t == nil {
		return nil
	}
	c := *t
	c.Logs = timelog.CloneAll(t.Logs)
	if t.SubmittedAt != nil {
		v := *t.SubmittedAt
		c.SubmittedAt = &v
	}
	if t.ApprovedBy != nil {
		v := *t.ApprovedBy
		c.ApprovedBy = &v
	}
	if t.Notes != nil {
		v := *t.Notes
		c.Notes = &v
	}
	return &c
}

// DuplicatePolicy は同一期間を再生成したときの扱いです。
type DuplicatePolicy string

const (
	// PolicyAppend は生成のたびに新しいタイムシートを追加します。
	PolicyAppend DuplicatePolicy = "append"
	// PolicyUpsert は (社員, 開始日, 終了日) をキーに置き換えます。
	PolicyUpsert DuplicatePolicy = "upsert"
)

func canTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusSubmitted
	case StatusSubmitted:
		return to == StatusApproved || to == StatusRejected
	case StatusRejected:
		return to == StatusSubmitted
	default:
		return false
	}
}
