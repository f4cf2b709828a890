package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// PayrollServiceName は給与サービスの完全修飾名です。
const PayrollServiceName = "hrpayroll.v1.PayrollService"

// IDRequest は ID のみを受け取るリクエストです。
type IDRequest struct {
	ID string `json:"id"`
}

// ListRecordsRequest は給与レコードの検索条件です。0 は未指定です。
type ListRecordsRequest struct {
	EmployeeID string `json:"employee_id,omitempty"`
	Month      int    `json:"month,omitempty"`
	Year       int    `json:"year,omitempty"`
	Status     string `json:"status,omitempty"`
}

// ListRecordsResponse は給与レコードの一覧です。
type ListRecordsResponse struct {
	Records []dto.PayrollRecord `json:"records"`
}

// GeneratePayslipRequest は明細作成リクエストです。
type GeneratePayslipRequest struct {
	RecordID string `json:"record_id"`
}

// TaxRequest は税額計算リクエストです。
type TaxRequest struct {
	Gross decimal.Decimal `json:"gross"`
}

// TaxResponse は税額計算結果です。
type TaxResponse struct {
	Gross decimal.Decimal `json:"gross"`
	Tax   decimal.Decimal `json:"tax"`
}

// PayrollServer は給与サービスのサーバー側インターフェースです。
type PayrollServer interface {
	CalculateTax(context.Context, *TaxRequest) (*TaxResponse, error)
	GeneratePayroll(context.Context, *dto.GeneratePayrollRequest) (*dto.PayrollRecord, error)
	GetRecord(context.Context, *IDRequest) (*dto.PayrollRecord, error)
	ListRecords(context.Context, *ListRecordsRequest) (*ListRecordsResponse, error)
	ProcessPeriod(context.Context, *dto.ProcessPeriodRequest) (*dto.PayrollPeriod, error)
	GeneratePayslip(context.Context, *GeneratePayslipRequest) (*dto.Payslip, error)
	GetPayslip(context.Context, *IDRequest) (*dto.Payslip, error)
	GetSettings(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	NextPayDate(context.Context, *timestamppb.Timestamp) (*timestamppb.Timestamp, error)
}

// PayrollServiceDesc は給与サービスの記述子です。
var PayrollServiceDesc = grpc.ServiceDesc{
	ServiceName: PayrollServiceName,
	HandlerType: (*PayrollServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(PayrollServiceName, "CalculateTax", PayrollServer.CalculateTax),
		unaryMethod(PayrollServiceName, "GeneratePayroll", PayrollServer.GeneratePayroll),
		unaryMethod(PayrollServiceName, "GetRecord", PayrollServer.GetRecord),
		unaryMethod(PayrollServiceName, "ListRecords", PayrollServer.ListRecords),
		unaryMethod(PayrollServiceName, "ProcessPeriod", PayrollServer.ProcessPeriod),
		unaryMethod(PayrollServiceName, "GeneratePayslip", PayrollServer.GeneratePayslip),
		unaryMethod(PayrollServiceName, "GetPayslip", PayrollServer.GetPayslip),
		unaryMethod(PayrollServiceName, "GetSettings", PayrollServer.GetSettings),
		unaryMethod(PayrollServiceName, "NextPayDate", PayrollServer.NextPayDate),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrpayroll/v1/payroll",
}

// RegisterPayrollServer はサーバーに給与サービスを登録します。
func RegisterPayrollServer(s grpc.ServiceRegistrar, srv PayrollServer) {
	s.RegisterService(&PayrollServiceDesc, srv)
}

// PayrollGrpcHandler は PayrollServer の実装です。
type PayrollGrpcHandler struct {
	payroll  payroll.UseCase
	payslips payslip.UseCase
}

// NewPayrollGrpcHandler は PayrollGrpcHandler を生成します。
func NewPayrollGrpcHandler(p payroll.UseCase, slips payslip.UseCase) *PayrollGrpcHandler {
	return &PayrollGrpcHandler{payroll: p, payslips: slips}
}

// CalculateTax は総支給額に対する税額を返します。
func (h *PayrollGrpcHandler) CalculateTax(ctx context.Context, req *TaxRequest) (*TaxResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tax, err := h.payroll.CalculateTax(ctx, req.Gross)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &TaxResponse{Gross: req.Gross, Tax: tax}, nil
}

// GeneratePayroll は給与レコードを作成または再計算します。
func (h *PayrollGrpcHandler) GeneratePayroll(ctx context.Context, req *dto.GeneratePayrollRequest) (*dto.PayrollRecord, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	record, err := h.payroll.GeneratePayroll(ctx, req.ToInput())
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromRecord(record)
	return &out, nil
}

// GetRecord は給与レコードを取得します。
func (h *PayrollGrpcHandler) GetRecord(ctx context.Context, req *IDRequest) (*dto.PayrollRecord, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	record, err := h.payroll.GetRecord(ctx, req.ID)
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromRecord(record)
	return &out, nil
}

// ListRecords は給与レコードの一覧を返します。
func (h *PayrollGrpcHandler) ListRecords(ctx context.Context, req *ListRecordsRequest) (*ListRecordsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	filter := payroll.RecordFilter{EmployeeID: req.EmployeeID}
	if req.Month != 0 {
		month := req.Month
		filter.Month = &month
	}
	if req.Year != 0 {
		year := req.Year
		filter.Year = &year
	}
	if req.Status != "" {
		s := payroll.Status(req.Status)
		filter.Status = &s
	}

	records, err := h.payroll.ListRecords(ctx, filter)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &ListRecordsResponse{Records: dto.FromRecords(records)}, nil
}

// ProcessPeriod は月次の給与期間を締めます。
func (h *PayrollGrpcHandler) ProcessPeriod(ctx context.Context, req *dto.ProcessPeriodRequest) (*dto.PayrollPeriod, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	period, err := h.payroll.ProcessPeriod(ctx, payroll.ProcessPeriodInput{
		Month:       req.Month,
		Year:        req.Year,
		ProcessedBy: req.ProcessedBy,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromPeriod(period)
	return &out, nil
}

// GeneratePayslip は給与レコードから明細を作成します。
func (h *PayrollGrpcHandler) GeneratePayslip(ctx context.Context, req *GeneratePayslipRequest) (*dto.Payslip, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	slip, err := h.payslips.Generate(ctx, req.RecordID)
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromPayslip(slip)
	return &out, nil
}

// GetPayslip は明細を取得します。
func (h *PayrollGrpcHandler) GetPayslip(ctx context.Context, req *IDRequest) (*dto.Payslip, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	slip, err := h.payslips.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromPayslip(slip)
	return &out, nil
}

// GetSettings は現在の給与設定を google.protobuf.Struct で返します。
func (h *PayrollGrpcHandler) GetSettings(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	settings, err := h.payroll.GetSettings(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	raw, err := json.Marshal(dto.FromSettings(settings))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// NextPayDate は指定日以降で最初の支給日 (UTC の 0 時) を返します。
func (h *PayrollGrpcHandler) NextPayDate(ctx context.Context, req *timestamppb.Timestamp) (*timestamppb.Timestamp, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := req.CheckValid(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	settings, err := h.payroll.GetSettings(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	from := req.AsTime().UTC()
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	pay, err := time.Parse("2006-01-02", payroll.PayDate(int(day.Month()), day.Year(), settings.PayDay))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if pay.Before(day) {
		next := day.AddDate(0, 1, 1-day.Day())
		pay, err = time.Parse("2006-01-02", payroll.PayDate(int(next.Month()), next.Year(), settings.PayDay))
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
	}
	return timestamppb.New(pay), nil
}

// PayrollClient は給与サービスのクライアントです。
type PayrollClient struct {
	cc grpc.ClientConnInterface
}

// NewPayrollClient は PayrollClient を生成します。
func NewPayrollClient(cc grpc.ClientConnInterface) *PayrollClient {
	return &PayrollClient{cc: cc}
}

func (c *PayrollClient) CalculateTax(ctx context.Context, in *TaxRequest, opts ...grpc.CallOption) (*TaxResponse, error) {
	return invoke[TaxResponse](ctx, c.cc, PayrollServiceName, "CalculateTax", in, opts...)
}

func (c *PayrollClient) GeneratePayroll(ctx context.Context, in *dto.GeneratePayrollRequest, opts ...grpc.CallOption) (*dto.PayrollRecord, error) {
	return invoke[dto.PayrollRecord](ctx, c.cc, PayrollServiceName, "GeneratePayroll", in, opts...)
}

func (c *PayrollClient) GetRecord(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*dto.PayrollRecord, error) {
	return invoke[dto.PayrollRecord](ctx, c.cc, PayrollServiceName, "GetRecord", in, opts...)
}

func (c *PayrollClient) ListRecords(ctx context.Context, in *ListRecordsRequest, opts ...grpc.CallOption) (*ListRecordsResponse, error) {
	return invoke[ListRecordsResponse](ctx, c.cc, PayrollServiceName, "ListRecords", in, opts...)
}

func (c *PayrollClient) ProcessPeriod(ctx context.Context, in *dto.ProcessPeriodRequest, opts ...grpc.CallOption) (*dto.PayrollPeriod, error) {
	return invoke[dto.PayrollPeriod](ctx, c.cc, PayrollServiceName, "ProcessPeriod", in, opts...)
}

func (c *PayrollClient) GeneratePayslip(ctx context.Context, in *GeneratePayslipRequest, opts ...grpc.CallOption) (*dto.Payslip, error) {
	return invoke[dto.Payslip](ctx, c.cc, PayrollServiceName, "GeneratePayslip", in, opts...)
}

func (c *PayrollClient) GetPayslip(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*dto.Payslip, error) {
	return invoke[dto.Payslip](ctx, c.cc, PayrollServiceName, "GetPayslip", in, opts...)
}

func (c *PayrollClient) GetSettings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, PayrollServiceName, "GetSettings", in, opts...)
}

func (c *PayrollClient) NextPayDate(ctx context.Context, in *timestamppb.Timestamp, opts ...grpc.CallOption) (*timestamppb.Timestamp, error) {
	return invoke[timestamppb.Timestamp](ctx, c.cc, PayrollServiceName, "NextPayDate", in, opts...)
}
