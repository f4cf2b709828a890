package timelog

import (
	"math"
	"time"
)

// Type は作業記録の種別を表します。
type Type string

const (
	TypeWork     Type = "work"
	TypeMeeting  Type = "meeting"
	TypeBreak    Type = "break"
	TypeOvertime Type = "overtime"
	TypeOther    Type = "other"
)

// DateLayout は TimeLog.Date の書式です。文字列比較で期間判定するため ISO 形式に固定します。
const DateLayout = "2006-01-02"

// TimeLog は一区間の勤務・休憩・会議などの記録です。
type TimeLog struct {
	ID         string
	EmployeeID string
	Date       string
	StartTime  time.Time
	EndTime    time.Time
	Duration   int
	Type       Type
	Project    *string
	Task       *string
	Notes      *string
	Billable   *bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone は TimeLog のディープコピーを返します。
func (l TimeLog) Clone() TimeLog {
	l.Project = cloneString(l.Project)
	l.Task = cloneString(l.Task)
	l.Notes = cloneString(l.Notes)
	if l.Billable != nil {
		b := *l.Billable
		l.Billable = &b
	}
	return l
}

// CloneAll はスライス全体をコピーします。スナップショット保持用です。
func CloneAll(logs []TimeLog) []TimeLog {
	if logs == nil {
		return nil
	}
	out := make([]TimeLog, len(logs))
	for i, l := range logs {
		out[i] = l.Clone()
	}
	return out
}

// RoundedMinutes は手入力時の所要時間 (分, 四捨五入) を返します。
func RoundedMinutes(start, end time.Time) int {
	return int(math.Round(float64(end.Sub(start).Milliseconds()) / 60000))
}

// FloorMinutes はタイマー停止時の所要時間 (分, 切り捨て) を返します。
func FloorMinutes(start, end time.Time) int {
	return int(end.Sub(start).Milliseconds() / 60000)
}

// SumDuration は条件に一致する記録の分数を合計します。match が nil の場合は全件です。
func SumDuration(logs []TimeLog, match func(TimeLog) bool) int {
	total := 0
	for _, l := range logs {
		if match == nil || match(l) {
			total += l.Duration
		}
	}
	return total
}

// OfType は種別一致の述語を返します。
func OfType(t Type) func(TimeLog) bool {
	return func(l TimeLog) bool { return l.Type == t }
}

// IsValidType は種別が定義済みかを返します。
func IsValidType(t Type) bool {
	switch t {
	case TypeWork, TypeMeeting, TypeBreak, TypeOvertime, TypeOther:
		return true
	default:
		return false
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
