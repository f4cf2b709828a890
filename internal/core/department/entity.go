package department

import "time"

// Status は部署の状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Department は部署エンティティです。ParentID で階層を構成します。
type Department struct {
	ID             string
	Name           string
	Code           string
	HeadEmployeeID *string
	ParentID       *string
	Status         Status
	Description    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone はポインタフィールドを含めてコピーします。
func (d *Department) Clone() *Department {
	if d == nil {
		return nil
	}
	c := *d
	c.HeadEmployeeID = cloneString(d.HeadEmployeeID)
	c.ParentID = cloneString(d.ParentID)
	c.Description = cloneString(d.Description)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
