package employee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// legacyPayload は旧形式を含む社員 JSON の受け口です。
// manager / managerId, department / departmentId, employeeId / employeeCode のどちらでも受け付けます。
type legacyPayload struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeCode string          `json:"employeeCode"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        *string         `json:"phone"`
	Position     *string         `json:"position"`
	Department   *string         `json:"department"`
	DepartmentID *string         `json:"departmentId"`
	Manager      *string         `json:"manager"`
	ManagerID    *string         `json:"managerId"`
	Status       *string         `json:"status"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	Salary       json.RawMessage `json:"salary"`
}

// DecodeLegacy は新旧どちらの形式の社員 JSON も正規の作成入力に変換します。
// salary は数値と数値文字列の両方を受け付けます。
func DecodeLegacy(data []byte) (CreateEmployeeInput, error) {
	var p legacyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return CreateEmployeeInput{}, fmt.Errorf("%v: %w", err, ErrInvalidPayload)
	}

	in := CreateEmployeeInput{
		EmployeeCode: firstNonEmpty(p.EmployeeCode, p.EmployeeID),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Phone:        p.Phone,
		Position:     p.Position,
		DepartmentID: firstPresent(p.DepartmentID, p.Department),
		ManagerID:    firstPresent(p.ManagerID, p.Manager),
	}

	if in.FirstName == "" && in.LastName == "" && strings.TrimSpace(p.Name) != "" {
		parts := strings.Fields(p.Name)
		in.FirstName = parts[0]
		in.LastName = strings.Join(parts[1:], " ")
	}

	if p.Status != nil {
		status := Status(strings.ToLower(strings.TrimSpace(*p.Status)))
		in.Status = &status
	}

	start, err := parseLegacyDate(p.StartDate)
	if err != nil {
		return CreateEmployeeInput{}, fmt.Errorf("startDate: %w", err)
	}
	in.StartDate = start

	end, err := parseLegacyDate(p.EndDate)
	if err != nil {
		return CreateEmployeeInput{}, fmt.Errorf("endDate: %w", err)
	}
	in.EndDate = end

	salary, err := parseLegacySalary(p.Salary)
	if err != nil {
		return CreateEmployeeInput{}, err
	}
	in.Salary = salary

	return in, nil
}

func parseLegacySalary(raw json.RawMessage) (decimal.Decimal, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return decimal.Zero, nil
	}

	text := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return decimal.Zero, fmt.Errorf("salary: %w", ErrInvalidSalary)
		}
		text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
		if text == "" {
			return decimal.Zero, nil
		}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("salary %q: %w", text, ErrInvalidSalary)
	}
	return d, nil
}

func parseLegacyDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t, nil
		}
	}
	return nil, ErrInvalidPayload
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPresent(values ...*string) *string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return v
		}
	}
	return nil
}
