package handler

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName は gRPC のサービス名です。
const ServiceName = "hr.v1.HRService"

// HRServiceServer は HRService のサーバー実装が満たすインターフェースです。
type HRServiceServer interface {
	UpdateSalary(context.Context, *UpdateSalaryRequest) (*UpdateSalaryResponse, error)
	UpdateRole(context.Context, *UpdateRoleRequest) (*UpdateRoleResponse, error)
	GetSalaryHistory(context.Context, *GetHistoryRequest) (*GetSalaryHistoryResponse, error)
	GetRoleHistory(context.Context, *GetHistoryRequest) (*GetRoleHistoryResponse, error)
	GetEmployeeAnalytics(context.Context, *GetEmployeeRequest) (*GetEmployeeAnalyticsResponse, error)
	GetEmployee(context.Context, *GetEmployeeRequest) (*GetEmployeeResponse, error)
	GetDepartmentOverview(context.Context, *Empty) (*GetDepartmentOverviewResponse, error)
	GetCompanyOverview(context.Context, *Empty) (*GetCompanyOverviewResponse, error)
	GetRecentHires(context.Context, *GetRecentHiresRequest) (*GetRecentHiresResponse, error)
	GetDashboard(context.Context, *Empty) (*GetDashboardResponse, error)
}

// HRServiceDesc は HRService のサービス記述子です。
var HRServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HRServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("UpdateSalary", HRServiceServer.UpdateSalary),
		unaryMethod("UpdateRole", HRServiceServer.UpdateRole),
		unaryMethod("GetSalaryHistory", HRServiceServer.GetSalaryHistory),
		unaryMethod("GetRoleHistory", HRServiceServer.GetRoleHistory),
		unaryMethod("GetEmployeeAnalytics", HRServiceServer.GetEmployeeAnalytics),
		unaryMethod("GetEmployee", HRServiceServer.GetEmployee),
		unaryMethod("GetDepartmentOverview", HRServiceServer.GetDepartmentOverview),
		unaryMethod("GetCompanyOverview", HRServiceServer.GetCompanyOverview),
		unaryMethod("GetRecentHires", HRServiceServer.GetRecentHires),
		unaryMethod("GetDashboard", HRServiceServer.GetDashboard),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterHRServiceServer は srv を gRPC サーバーに登録します。
func RegisterHRServiceServer(s grpc.ServiceRegistrar, srv HRServiceServer) {
	s.RegisterService(&HRServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unaryMethod[Req, Resp any](name string, call func(HRServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	method := fullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(HRServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(HRServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// HRServiceClient は HRService のクライアントです。呼び出しは JSON コーデックで行われます。
type HRServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewHRServiceClient は HRServiceClient を生成します。
func NewHRServiceClient(cc grpc.ClientConnInterface) *HRServiceClient {
	return &HRServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HRServiceClient) UpdateSalary(ctx context.Context, in *UpdateSalaryRequest, opts ...grpc.CallOption) (*UpdateSalaryResponse, error) {
	return invoke[UpdateSalaryResponse](ctx, c.cc, "UpdateSalary", in, opts)
}

func (c *HRServiceClient) UpdateRole(ctx context.Context, in *UpdateRoleRequest, opts ...grpc.CallOption) (*UpdateRoleResponse, error) {
	return invoke[UpdateRoleResponse](ctx, c.cc, "UpdateRole", in, opts)
}

func (c *HRServiceClient) GetSalaryHistory(ctx context.Context, in *GetHistoryRequest, opts ...grpc.CallOption) (*GetSalaryHistoryResponse, error) {
	return invoke[GetSalaryHistoryResponse](ctx, c.cc, "GetSalaryHistory", in, opts)
}

func (c *HRServiceClient) GetRoleHistory(ctx context.Context, in *GetHistoryRequest, opts ...grpc.CallOption) (*GetRoleHistoryResponse, error) {
	return invoke[GetRoleHistoryResponse](ctx, c.cc, "GetRoleHistory", in, opts)
}

func (c *HRServiceClient) GetEmployeeAnalytics(ctx context.Context, in *GetEmployeeRequest, opts ...grpc.CallOption) (*GetEmployeeAnalyticsResponse, error) {
	return invoke[GetEmployeeAnalyticsResponse](ctx, c.cc, "GetEmployeeAnalytics", in, opts)
}

func (c *HRServiceClient) GetEmployee(ctx context.Context, in *GetEmployeeRequest, opts ...grpc.CallOption) (*GetEmployeeResponse, error) {
	return invoke[GetEmployeeResponse](ctx, c.cc, "GetEmployee", in, opts)
}

func (c *HRServiceClient) GetDepartmentOverview(ctx context.Context, opts ...grpc.CallOption) (*GetDepartmentOverviewResponse, error) {
	return invoke[GetDepartmentOverviewResponse](ctx, c.cc, "GetDepartmentOverview", &Empty{}, opts)
}

func (c *HRServiceClient) GetCompanyOverview(ctx context.Context, opts ...grpc.CallOption) (*GetCompanyOverviewResponse, error) {
	return invoke[GetCompanyOverviewResponse](ctx, c.cc, "GetCompanyOverview", &Empty{}, opts)
}

func (c *HRServiceClient) GetRecentHires(ctx context.Context, in *GetRecentHiresRequest, opts ...grpc.CallOption) (*GetRecentHiresResponse, error) {
	return invoke[GetRecentHiresResponse](ctx, c.cc, "GetRecentHires", in, opts)
}

func (c *HRServiceClient) GetDashboard(ctx context.Context, opts ...grpc.CallOption) (*GetDashboardResponse, error) {
	return invoke[GetDashboardResponse](ctx, c.cc, "GetDashboard", &Empty{}, opts)
}
