package postgres

import (
	"encoding/json"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/shopspring/decimal"
)

// JSONB 列に保存する際の表現です。列名と揃えて snake_case にしています。

type timeLogDocument struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Date       string    `json:"date"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Duration   int       `json:"duration"`
	Type       string    `json:"type"`
	Project    *string   `json:"project,omitempty"`
	Task       *string   `json:"task,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	Billable   *bool     `json:"billable,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func encodeTimeLogs(logs []timelog.TimeLog) ([]byte, error) {
	docs := make([]timeLogDocument, 0, len(logs))
	for _, l := range logs {
		docs = append(docs, timeLogDocument{
			ID:         l.ID,
			EmployeeID: l.EmployeeID,
			Date:       l.Date,
			StartTime:  l.StartTime,
			EndTime:    l.EndTime,
			Duration:   l.Duration,
			Type:       string(l.Type),
			Project:    l.Project,
			Task:       l.Task,
			Notes:      l.Notes,
			Billable:   l.Billable,
			CreatedAt:  l.CreatedAt,
			UpdatedAt:  l.UpdatedAt,
		})
	}
	return json.Marshal(docs)
}

func decodeTimeLogs(raw []byte) ([]timelog.TimeLog, error) {
	if len(raw) == 0 {
		return []timelog.TimeLog{}, nil
	}
	var docs []timeLogDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	logs := make([]timelog.TimeLog, 0, len(docs))
	for _, d := range docs {
		logs = append(logs, timelog.TimeLog{
			ID:         d.ID,
			EmployeeID: d.EmployeeID,
			Date:       d.Date,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			Duration:   d.Duration,
			Type:       timelog.Type(d.Type),
			Project:    d.Project,
			Task:       d.Task,
			Notes:      d.Notes,
			Billable:   d.Billable,
			CreatedAt:  d.CreatedAt,
			UpdatedAt:  d.UpdatedAt,
		})
	}
	return logs, nil
}

type itemDocument struct {
	ID          string          `json:"id"`
	RecordID    string          `json:"record_id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IsAddition  bool            `json:"is_addition"`
	Category    *string         `json:"category,omitempty"`
}

func encodeItems(items []payroll.Item) ([]byte, error) {
	docs := make([]itemDocument, 0, len(items))
	for _, it := range items {
		docs = append(docs, itemDocument{
			ID:          it.ID,
			RecordID:    it.RecordID,
			Type:        string(it.Type),
			Description: it.Description,
			Amount:      it.Amount,
			IsAddition:  it.IsAddition,
			Category:    it.Category,
		})
	}
	return json.Marshal(docs)
}

func decodeItems(raw []byte) ([]payroll.Item, error) {
	if len(raw) == 0 {
		return []payroll.Item{}, nil
	}
	var docs []itemDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	items := make([]payroll.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, payroll.Item{
			ID:          d.ID,
			RecordID:    d.RecordID,
			Type:        payroll.ItemType(d.Type),
			Description: d.Description,
			Amount:      d.Amount,
			IsAddition:  d.IsAddition,
			Category:    d.Category,
		})
	}
	return items, nil
}

type ruleDocument struct {
	Type           string          `json:"type"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PercentOfBasic decimal.Decimal `json:"percent_of_basic"`
}

func encodeRules(rules []payroll.Rule) ([]byte, error) {
	docs := make([]ruleDocument, 0, len(rules))
	for _, r := range rules {
		docs = append(docs, ruleDocument{Type: r.Type, Description: r.Description, Amount: r.Amount, PercentOfBasic: r.PercentOfBasic})
	}
	return json.Marshal(docs)
}

func decodeRules(raw []byte) ([]payroll.Rule, error) {
	if len(raw) == 0 {
		return []payroll.Rule{}, nil
	}
	var docs []ruleDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	rules := make([]payroll.Rule, 0, len(docs))
	for _, d := range docs {
		rules = append(rules, payroll.Rule{Type: d.Type, Description: d.Description, Amount: d.Amount, PercentOfBasic: d.PercentOfBasic})
	}
	return rules, nil
}

func encodeStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func decodeStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}
