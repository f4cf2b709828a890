package handler

import (
	"context"
	"encoding/json"

	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DirectoryServiceName は社員・部署サービスの完全修飾名です。
const DirectoryServiceName = "hrpayroll.v1.DirectoryService"

// CreateEmployeeRequest は社員作成リクエストです。Payload は旧形式・新形式どちらの JSON も受け付けます。
type CreateEmployeeRequest struct {
	Payload json.RawMessage `json:"payload"`
}

// ListEmployeesRequest は社員一覧の検索条件です。
type ListEmployeesRequest struct {
	DepartmentID string `json:"department_id,omitempty"`
	ManagerID    string `json:"manager_id,omitempty"`
	Status       string `json:"status,omitempty"`
	PageSize     int    `json:"page_size,omitempty"`
	PageToken    string `json:"page_token,omitempty"`
}

// ListEmployeesResponse は社員一覧です。
type ListEmployeesResponse struct {
	Employees     []dto.Employee `json:"employees"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

// ListDepartmentsRequest は部署一覧の検索条件です。
type ListDepartmentsRequest struct {
	ParentID  string `json:"parent_id,omitempty"`
	Status    string `json:"status,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

// ListDepartmentsResponse は部署一覧です。
type ListDepartmentsResponse struct {
	Departments   []dto.Department `json:"departments"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

// DirectoryServer は社員・部署サービスのサーバー側インターフェースです。
type DirectoryServer interface {
	CreateEmployee(context.Context, *CreateEmployeeRequest) (*dto.Employee, error)
	GetEmployee(context.Context, *IDRequest) (*dto.Employee, error)
	ListEmployees(context.Context, *ListEmployeesRequest) (*ListEmployeesResponse, error)
	CreateDepartment(context.Context, *dto.CreateDepartmentRequest) (*dto.Department, error)
	GetDepartment(context.Context, *IDRequest) (*dto.Department, error)
	ListDepartments(context.Context, *ListDepartmentsRequest) (*ListDepartmentsResponse, error)
}

// DirectoryServiceDesc は社員・部署サービスの記述子です。
var DirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: DirectoryServiceName,
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(DirectoryServiceName, "CreateEmployee", DirectoryServer.CreateEmployee),
		unaryMethod(DirectoryServiceName, "GetEmployee", DirectoryServer.GetEmployee),
		unaryMethod(DirectoryServiceName, "ListEmployees", DirectoryServer.ListEmployees),
		unaryMethod(DirectoryServiceName, "CreateDepartment", DirectoryServer.CreateDepartment),
		unaryMethod(DirectoryServiceName, "GetDepartment", DirectoryServer.GetDepartment),
		unaryMethod(DirectoryServiceName, "ListDepartments", DirectoryServer.ListDepartments),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrpayroll/v1/directory",
}

// RegisterDirectoryServer はサーバーに社員・部署サービスを登録します。
func RegisterDirectoryServer(s grpc.ServiceRegistrar, srv DirectoryServer) {
	s.RegisterService(&DirectoryServiceDesc, srv)
}

// DirectoryGrpcHandler は DirectoryServer の実装です。
type DirectoryGrpcHandler struct {
	employees   employee.UseCase
	departments department.UseCase
}

// NewDirectoryGrpcHandler は DirectoryGrpcHandler を生成します。
func NewDirectoryGrpcHandler(employees employee.UseCase, departments department.UseCase) *DirectoryGrpcHandler {
	return &DirectoryGrpcHandler{employees: employees, departments: departments}
}

// CreateEmployee は社員を作成します。
func (h *DirectoryGrpcHandler) CreateEmployee(ctx context.Context, req *CreateEmployeeRequest) (*dto.Employee, error) {
	if req == nil || len(req.Payload) == 0 {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in, err := employee.DecodeLegacy(req.Payload)
	if err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.employees.CreateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromEmployee(created)
	return &out, nil
}

// GetEmployee は社員を取得します。
func (h *DirectoryGrpcHandler) GetEmployee(ctx context.Context, req *IDRequest) (*dto.Employee, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromEmployee(found)
	return &out, nil
}

// ListEmployees は社員の一覧を取得します。
func (h *DirectoryGrpcHandler) ListEmployees(ctx context.Context, req *ListEmployeesRequest) (*ListEmployeesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := employee.ListEmployeesInput{
		DepartmentID: req.DepartmentID,
		ManagerID:    req.ManagerID,
		PageSize:     req.PageSize,
		PageToken:    req.PageToken,
	}
	if req.Status != "" {
		s := employee.Status(req.Status)
		in.Status = &s
	}

	result, err := h.employees.ListEmployees(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &ListEmployeesResponse{
		Employees:     dto.FromEmployees(result.Employees),
		NextPageToken: result.NextPageToken,
	}, nil
}

// CreateDepartment は部署を作成します。
func (h *DirectoryGrpcHandler) CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.Department, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.departments.CreateDepartment(ctx, department.CreateDepartmentInput{
		Name:           req.Name,
		Code:           req.Code,
		HeadEmployeeID: req.HeadEmployeeID,
		ParentID:       req.ParentID,
		Description:    req.Description,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromDepartment(created)
	return &out, nil
}

// GetDepartment は部署を取得します。
func (h *DirectoryGrpcHandler) GetDepartment(ctx context.Context, req *IDRequest) (*dto.Department, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.departments.GetDepartment(ctx, department.GetDepartmentInput{ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}

	out := dto.FromDepartment(found)
	return &out, nil
}

// ListDepartments は部署の一覧を取得します。
func (h *DirectoryGrpcHandler) ListDepartments(ctx context.Context, req *ListDepartmentsRequest) (*ListDepartmentsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := department.ListDepartmentsInput{PageSize: req.PageSize, PageToken: req.PageToken}
	if req.ParentID != "" {
		parent := req.ParentID
		in.ParentID = &parent
	}
	if req.Status != "" {
		s := department.Status(req.Status)
		in.Status = &s
	}

	result, err := h.departments.ListDepartments(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &ListDepartmentsResponse{
		Departments:   dto.FromDepartments(result.Departments),
		NextPageToken: result.NextPageToken,
	}, nil
}

// DirectoryClient は社員・部署サービスのクライアントです。
type DirectoryClient struct {
	cc grpc.ClientConnInterface
}

// NewDirectoryClient は DirectoryClient を生成します。
func NewDirectoryClient(cc grpc.ClientConnInterface) *DirectoryClient {
	return &DirectoryClient{cc: cc}
}

func (c *DirectoryClient) CreateEmployee(ctx context.Context, in *CreateEmployeeRequest, opts ...grpc.CallOption) (*dto.Employee, error) {
	return invoke[dto.Employee](ctx, c.cc, DirectoryServiceName, "CreateEmployee", in, opts...)
}

func (c *DirectoryClient) GetEmployee(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*dto.Employee, error) {
	return invoke[dto.Employee](ctx, c.cc, DirectoryServiceName, "GetEmployee", in, opts...)
}

func (c *DirectoryClient) ListEmployees(ctx context.Context, in *ListEmployeesRequest, opts ...grpc.CallOption) (*ListEmployeesResponse, error) {
	return invoke[ListEmployeesResponse](ctx, c.cc, DirectoryServiceName, "ListEmployees", in, opts...)
}

func (c *DirectoryClient) CreateDepartment(ctx context.Context, in *dto.CreateDepartmentRequest, opts ...grpc.CallOption) (*dto.Department, error) {
	return invoke[dto.Department](ctx, c.cc, DirectoryServiceName, "CreateDepartment", in, opts...)
}

func (c *DirectoryClient) GetDepartment(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*dto.Department, error) {
	return invoke[dto.Department](ctx, c.cc, DirectoryServiceName, "GetDepartment", in, opts...)
}

func (c *DirectoryClient) ListDepartments(ctx context.Context, in *ListDepartmentsRequest, opts ...grpc.CallOption) (*ListDepartmentsResponse, error) {
	return invoke[ListDepartmentsResponse](ctx, c.cc, DirectoryServiceName, "ListDepartments", in, opts...)
}
