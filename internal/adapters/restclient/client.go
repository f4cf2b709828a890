// Package restclient は REST API の型付きクライアントとローカルミラーを提供します。
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
)

// APIError は API が success=false を返したときのエラーです。
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("restclient: %d %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client は /api/v1 の型付きクライアントです。再試行は行いません。
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option は Client の設定を変更します。
type Option func(*Client)

// WithHTTPClient は利用する http.Client を差し替えます。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken は Authorization ヘッダーに付与する Bearer トークンを設定します。
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New は Client を生成します。baseURL はスキームとホストを含みます (例: http://localhost:8080)。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("restclient: encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("restclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("restclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("restclient: decode response: %w", err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("restclient: decode data: %w", err)
	}
	return nil
}

// ListTimeLogs は社員の作業記録を返します。from / to は空で無指定です。
func (c *Client) ListTimeLogs(ctx context.Context, employeeID, from, to string) ([]dto.TimeLog, error) {
	q := url.Values{}
	q.Set("employee_id", employeeID)
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}

	var logs []dto.TimeLog
	if err := c.do(ctx, http.MethodGet, "/time-logs", q, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// AddTimeLog は作業記録を登録します。
func (c *Client) AddTimeLog(ctx context.Context, req dto.AddTimeLogRequest) (*dto.TimeLog, error) {
	var out dto.TimeLog
	if err := c.do(ctx, http.MethodPost, "/time-logs", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTimeLog は作業記録を部分更新します。
func (c *Client) UpdateTimeLog(ctx context.Context, id string, req dto.UpdateTimeLogRequest) (*dto.TimeLog, error) {
	var out dto.TimeLog
	if err := c.do(ctx, http.MethodPatch, "/time-logs/"+url.PathEscape(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTimeLog は作業記録を削除します。
func (c *Client) DeleteTimeLog(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/time-logs/"+url.PathEscape(id), nil, nil, nil)
}

// StartTimer は計測を開始します。
func (c *Client) StartTimer(ctx context.Context, req dto.StartTimerRequest) (*dto.TimerSession, error) {
	var out dto.TimerSession
	if err := c.do(ctx, http.MethodPost, "/timer/start", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopTimer は計測を終了します。計測中でなければ Log は nil です。
func (c *Client) StopTimer(ctx context.Context, req dto.StopTimerRequest) (*dto.StopTimerResponse, error) {
	var out dto.StopTimerResponse
	if err := c.do(ctx, http.MethodPost, "/timer/stop", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateTimesheet はタイムシートを生成します。
func (c *Client) GenerateTimesheet(ctx context.Context, req dto.GenerateTimesheetRequest) (*dto.Timesheet, error) {
	var out dto.Timesheet
	if err := c.do(ctx, http.MethodPost, "/timesheets", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GeneratePayroll は給与レコードを作成します。
func (c *Client) GeneratePayroll(ctx context.Context, req dto.GeneratePayrollRequest) (*dto.PayrollRecord, error) {
	var out dto.PayrollRecord
	if err := c.do(ctx, http.MethodPost, "/payroll/records", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetEmployee は社員を取得します。
func (c *Client) GetEmployee(ctx context.Context, id string) (*dto.Employee, error) {
	var out dto.Employee
	if err := c.do(ctx, http.MethodGet, "/employees/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
