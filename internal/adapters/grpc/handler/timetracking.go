package handler

import (
	"context"

	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timer"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TimeTrackingServiceName は勤怠サービスの完全修飾名です。
const TimeTrackingServiceName = "hrpayroll.v1.TimeTrackingService"

// EmployeeRequest は社員 ID のみを受け取るリクエストです。
type EmployeeRequest struct {
	EmployeeID string `json:"employee_id"`
}

// ListLogsRequest は作業記録の検索条件です。
type ListLogsRequest struct {
	EmployeeID string `json:"employee_id"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Type       string `json:"type,omitempty"`
}

// ListLogsResponse は作業記録の一覧です。
type ListLogsResponse struct {
	Logs []dto.TimeLog `json:"logs"`
}

// TimesheetRequest はタイムシート ID を受け取るリクエストです。
type TimesheetRequest struct {
	ID string `json:"id"`
}

// ReviewTimesheetRequest は承認・差し戻しリクエストです。
type ReviewTimesheetRequest struct {
	ID         string  `json:"id"`
	ReviewerID string  `json:"reviewer_id"`
	Approve    bool    `json:"approve"`
	Notes      *string `json:"notes,omitempty"`
}

// TimeTrackingServer は勤怠サービスのサーバー側インターフェースです。
type TimeTrackingServer interface {
	StartTimer(context.Context, *dto.StartTimerRequest) (*dto.TimerSession, error)
	StopTimer(context.Context, *dto.StopTimerRequest) (*dto.StopTimerResponse, error)
	CurrentTimer(context.Context, *EmployeeRequest) (*dto.TimerSession, error)
	AddLog(context.Context, *dto.AddTimeLogRequest) (*dto.TimeLog, error)
	ListLogs(context.Context, *ListLogsRequest) (*ListLogsResponse, error)
	GenerateTimesheet(context.Context, *dto.GenerateTimesheetRequest) (*dto.Timesheet, error)
	SubmitTimesheet(context.Context, *TimesheetRequest) (*dto.Timesheet, error)
	ReviewTimesheet(context.Context, *ReviewTimesheetRequest) (*dto.Timesheet, error)
}

// TimeTrackingServiceDesc は勤怠サービスの記述子です。
var TimeTrackingServiceDesc = grpc.ServiceDesc{
	ServiceName: TimeTrackingServiceName,
	HandlerType: (*TimeTrackingServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(TimeTrackingServiceName, "StartTimer", TimeTrackingServer.StartTimer),
		unaryMethod(TimeTrackingServiceName, "StopTimer", TimeTrackingServer.StopTimer),
		unaryMethod(TimeTrackingServiceName, "CurrentTimer", TimeTrackingServer.CurrentTimer),
		unaryMethod(TimeTrackingServiceName, "AddLog", TimeTrackingServer.AddLog),
		unaryMethod(TimeTrackingServiceName, "ListLogs", TimeTrackingServer.ListLogs),
		unaryMethod(TimeTrackingServiceName, "GenerateTimesheet", TimeTrackingServer.GenerateTimesheet),
		unaryMethod(TimeTrackingServiceName, "SubmitTimesheet", TimeTrackingServer.SubmitTimesheet),
		unaryMethod(TimeTrackingServiceName, "ReviewTimesheet", TimeTrackingServer.ReviewTimesheet),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrpayroll/v1/time_tracking",
}

// RegisterTimeTrackingServer はサーバーに勤怠サービスを登録します。
func RegisterTimeTrackingServer(s grpc.ServiceRegistrar, srv TimeTrackingServer) {
	s.RegisterService(&TimeTrackingServiceDesc, srv)
}

// TimeTrackingGrpcHandler は TimeTrackingServer の実装です。
type TimeTrackingGrpcHandler struct {
	timer      timer.UseCase
	logs       timelog.UseCase
	timesheets timesheet.UseCase
}

// NewTimeTrackingGrpcHandler は TimeTrackingGrpcHandler を生成します。
func NewTimeTrackingGrpcHandler(t timer.UseCase, logs timelog.UseCase, timesheets timesheet.UseCase) *TimeTrackingGrpcHandler {
	return &TimeTrackingGrpcHandler{timer: t, logs: logs, timesheets: timesheets}
}

// StartTimer は計測を開始します。
func (h *TimeTrackingGrpcHandler) StartTimer(ctx context.Context, req *dto.StartTimerRequest) (*dto.TimerSession, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	session, err := h.timer.Start(ctx, timer.StartInput{
		EmployeeID: req.EmployeeID,
		Type:       timelog.Type(req.Type),
		Project:    req.Project,
		Task:       req.Task,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromSession(req.EmployeeID, session)
	return &out, nil
}

// StopTimer は計測を終了します。計測中でなければ Log は nil です。
func (h *TimeTrackingGrpcHandler) StopTimer(ctx context.Context, req *dto.StopTimerRequest) (*dto.StopTimerResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	logged, err := h.timer.Stop(ctx, timer.StopInput{
		EmployeeID: req.EmployeeID,
		Notes:      req.Notes,
		Billable:   req.Billable,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	resp := &dto.StopTimerResponse{}
	if logged != nil {
		l := dto.FromTimeLog(logged)
		resp.Log = &l
	}
	return resp, nil
}

// CurrentTimer は現在のタイマー状態を返します。
func (h *TimeTrackingGrpcHandler) CurrentTimer(ctx context.Context, req *EmployeeRequest) (*dto.TimerSession, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	session, err := h.timer.Current(ctx, req.EmployeeID)
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromSession(req.EmployeeID, session)
	return &out, nil
}

// AddLog は作業記録を登録します。
func (h *TimeTrackingGrpcHandler) AddLog(ctx context.Context, req *dto.AddTimeLogRequest) (*dto.TimeLog, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.logs.AddLog(ctx, req.ToInput())
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromTimeLog(created)
	return &out, nil
}

// ListLogs は作業記録を開始時刻順に返します。
func (h *TimeTrackingGrpcHandler) ListLogs(ctx context.Context, req *ListLogsRequest) (*ListLogsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := timelog.ListLogsInput{EmployeeID: req.EmployeeID, From: req.From, To: req.To}
	if req.Type != "" {
		t := timelog.Type(req.Type)
		in.Type = &t
	}

	logs, err := h.logs.ListLogs(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &ListLogsResponse{Logs: dto.FromTimeLogs(logs)}, nil
}

// GenerateTimesheet は期間内の作業記録を集計します。
func (h *TimeTrackingGrpcHandler) GenerateTimesheet(ctx context.Context, req *dto.GenerateTimesheetRequest) (*dto.Timesheet, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.timesheets.Generate(ctx, timesheet.GenerateInput{
		EmployeeID:  req.EmployeeID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromTimesheet(created)
	return &out, nil
}

// SubmitTimesheet はタイムシートを提出します。
func (h *TimeTrackingGrpcHandler) SubmitTimesheet(ctx context.Context, req *TimesheetRequest) (*dto.Timesheet, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	submitted, err := h.timesheets.Submit(ctx, req.ID)
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromTimesheet(submitted)
	return &out, nil
}

// ReviewTimesheet は Approve が true なら承認、false なら差し戻します。
func (h *TimeTrackingGrpcHandler) ReviewTimesheet(ctx context.Context, req *ReviewTimesheetRequest) (*dto.Timesheet, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := timesheet.ReviewInput{ID: req.ID, ReviewerID: req.ReviewerID, Notes: req.Notes}
	review := h.timesheets.Reject
	if req.Approve {
		review = h.timesheets.Approve
	}

	reviewed, err := review(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromTimesheet(reviewed)
	return &out, nil
}

// TimeTrackingClient は勤怠サービスのクライアントです。
type TimeTrackingClient struct {
	cc grpc.ClientConnInterface
}

// NewTimeTrackingClient は TimeTrackingClient を生成します。
func NewTimeTrackingClient(cc grpc.ClientConnInterface) *TimeTrackingClient {
	return &TimeTrackingClient{cc: cc}
}

func (c *TimeTrackingClient) StartTimer(ctx context.Context, in *dto.StartTimerRequest, opts ...grpc.CallOption) (*dto.TimerSession, error) {
	return invoke[dto.TimerSession](ctx, c.cc, TimeTrackingServiceName, "StartTimer", in, opts...)
}

func (c *TimeTrackingClient) StopTimer(ctx context.Context, in *dto.StopTimerRequest, opts ...grpc.CallOption) (*dto.StopTimerResponse, error) {
	return invoke[dto.StopTimerResponse](ctx, c.cc, TimeTrackingServiceName, "StopTimer", in, opts...)
}

func (c *TimeTrackingClient) CurrentTimer(ctx context.Context, in *EmployeeRequest, opts ...grpc.CallOption) (*dto.TimerSession, error) {
	return invoke[dto.TimerSession](ctx, c.cc, TimeTrackingServiceName, "CurrentTimer", in, opts...)
}

func (c *TimeTrackingClient) AddLog(ctx context.Context, in *dto.AddTimeLogRequest, opts ...grpc.CallOption) (*dto.TimeLog, error) {
	return invoke[dto.TimeLog](ctx, c.cc, TimeTrackingServiceName, "AddLog", in, opts...)
}

func (c *TimeTrackingClient) ListLogs(ctx context.Context, in *ListLogsRequest, opts ...grpc.CallOption) (*ListLogsResponse, error) {
	return invoke[ListLogsResponse](ctx, c.cc, TimeTrackingServiceName, "ListLogs", in, opts...)
}

func (c *TimeTrackingClient) GenerateTimesheet(ctx context.Context, in *dto.GenerateTimesheetRequest, opts ...grpc.CallOption) (*dto.Timesheet, error) {
	return invoke[dto.Timesheet](ctx, c.cc, TimeTrackingServiceName, "GenerateTimesheet", in, opts...)
}

func (c *TimeTrackingClient) SubmitTimesheet(ctx context.Context, in *TimesheetRequest, opts ...grpc.CallOption) (*dto.Timesheet, error) {
	return invoke[dto.Timesheet](ctx, c.cc, TimeTrackingServiceName, "SubmitTimesheet", in, opts...)
}

func (c *TimeTrackingClient) ReviewTimesheet(ctx context.Context, in *ReviewTimesheetRequest, opts ...grpc.CallOption) (*dto.Timesheet, error) {
	return invoke[dto.Timesheet](ctx, c.cc, TimeTrackingServiceName, "ReviewTimesheet", in, opts...)
}
