package handler

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ivanvallejoss/hr-system/internal/core/dashboard"
	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	"github.com/ivanvallejoss/hr-system/internal/platform/authz"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Authorizer は操作者区分の権限判定です。*authz.Authorizer が満たします。
type Authorizer interface {
	Authorize(subject, object, action string) error
}

// HRGrpcHandler は HRService の gRPC 実装です。
type HRGrpcHandler struct {
	employees  employee.UseCase
	reports    report.UseCase
	dashboards dashboard.UseCase
	authorizer Authorizer
	validate   *validator.Validate
	logger     logrus.FieldLogger
}

var _ HRServiceServer = (*HRGrpcHandler)(nil)

// NewHRGrpcHandler は HRGrpcHandler を生成します。
func NewHRGrpcHandler(employees employee.UseCase, reports report.UseCase, dashboards dashboard.UseCase, authorizer Authorizer, logger logrus.FieldLogger) *HRGrpcHandler {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &HRGrpcHandler{
		employees:  employees,
		reports:    reports,
		dashboards: dashboards,
		authorizer: authorizer,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}
}

// UpdateSalary は社員の給与を変更します。
func (h *HRGrpcHandler) UpdateSalary(ctx context.Context, req *UpdateSalaryRequest) (*UpdateSalaryResponse, error) {
	actor, err := h.begin(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "UpdateSalary", err)
	}
	if err := h.authorizer.Authorize(actor.Tier, authz.ObjectSalary, authz.ActionUpdate); err != nil {
		return nil, h.fail(ctx, "UpdateSalary", err)
	}

	newSalary, err := decimal.NewFromString(req.NewSalary)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "new_salary must be a decimal number")
	}
	effective, err := parseDate(req.EffectiveDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "effective_date must be YYYY-MM-DD")
	}

	record, err := h.employees.UpdateSalary(ctx, employee.UpdateSalaryInput{
		EmployeeID:    req.EmployeeID,
		NewSalary:     newSalary,
		ChangedBy:     actor.userIDPtr(),
		Reason:        req.Reason,
		EffectiveDate: effective,
	})
	if err != nil {
		return nil, h.fail(ctx, "UpdateSalary", err)
	}

	return &UpdateSalaryResponse{Record: toSalaryRecord(record)}, nil
}

// UpdateRole は社員の職種・等級を変更します。
func (h *HRGrpcHandler) UpdateRole(ctx context.Context, req *UpdateRoleRequest) (*UpdateRoleResponse, error) {
	actor, err := h.begin(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "UpdateRole", err)
	}
	if err := h.authorizer.Authorize(actor.Tier, authz.ObjectRole, authz.ActionUpdate); err != nil {
		return nil, h.fail(ctx, "UpdateRole", err)
	}

	effective, err := parseDate(req.EffectiveDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "effective_date must be YYYY-MM-DD")
	}

	in := employee.UpdateRoleInput{
		EmployeeID:    req.EmployeeID,
		ChangedBy:     actor.userIDPtr(),
		Reason:        req.Reason,
		EffectiveDate: effective,
	}
	if req.NewRoleID != "" {
		roleID := req.NewRoleID
		in.NewRoleID = &roleID
	}
	if req.NewSeniority != "" {
		level, err := employee.ParseSeniority(req.NewSeniority)
		if err != nil {
			return nil, h.fail(ctx, "UpdateRole", err)
		}
		in.NewSeniority = &level
	}

	record, err := h.employees.UpdateRole(ctx, in)
	if err != nil {
		return nil, h.fail(ctx, "UpdateRole", err)
	}

	return &UpdateRoleResponse{Record: toRoleRecord(record)}, nil
}

// GetSalaryHistory は給与変更履歴を新しい順に返します。本人は自分の履歴を参照できます。
func (h *HRGrpcHandler) GetSalaryHistory(ctx context.Context, req *GetHistoryRequest) (*GetSalaryHistoryResponse, error) {
	in, err := h.historyInput(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "GetSalaryHistory", err)
	}

	records, err := h.employees.GetSalaryHistory(ctx, in)
	if err != nil {
		return nil, h.fail(ctx, "GetSalaryHistory", err)
	}

	out := make([]*SalaryRecord, 0, len(records))
	for _, r := range records {
		out = append(out, toSalaryRecord(r))
	}
	return &GetSalaryHistoryResponse{Records: out}, nil
}

// GetRoleHistory は職種変更履歴を新しい順に返します。本人は自分の履歴を参照できます。
func (h *HRGrpcHandler) GetRoleHistory(ctx context.Context, req *GetHistoryRequest) (*GetRoleHistoryResponse, error) {
	in, err := h.historyInput(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "GetRoleHistory", err)
	}

	records, err := h.employees.GetRoleHistory(ctx, in)
	if err != nil {
		return nil, h.fail(ctx, "GetRoleHistory", err)
	}

	out := make([]*RoleRecord, 0, len(records))
	for _, r := range records {
		out = append(out, toRoleRecord(r))
	}
	return &GetRoleHistoryResponse{Records: out}, nil
}

// GetEmployeeAnalytics は社員の給与成長率・昇給回数・昇格回数を返します。
func (h *HRGrpcHandler) GetEmployeeAnalytics(ctx context.Context, req *GetEmployeeRequest) (*GetEmployeeAnalyticsResponse, error) {
	actor, err := h.begin(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "GetEmployeeAnalytics", err)
	}
	if err := h.authorizeEmployeeRead(ctx, actor, req.EmployeeID, authz.ObjectAnalytics, authz.ObjectOwnAnalytics); err != nil {
		return nil, h.fail(ctx, "GetEmployeeAnalytics", err)
	}

	a, err := h.employees.GetAnalytics(ctx, employee.GetAnalyticsInput{EmployeeID: req.EmployeeID})
	if err != nil {
		return nil, h.fail(ctx, "GetEmployeeAnalytics", err)
	}

	return &GetEmployeeAnalyticsResponse{Analytics: &Analytics{
		EmployeeID:             a.EmployeeID,
		SalaryGrowthPercentage: a.SalaryGrowthPercentage,
		TotalSalaryIncreases:   a.TotalSalaryIncreases,
		TotalPromotions:        a.TotalPromotions,
	}}, nil
}

// GetEmployee は社員の現在状態を返します。
func (h *HRGrpcHandler) GetEmployee(ctx context.Context, req *GetEmployeeRequest) (*GetEmployeeResponse, error) {
	actor, err := h.begin(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "GetEmployee", err)
	}
	if err := h.authorizeEmployeeRead(ctx, actor, req.EmployeeID, authz.ObjectEmployee, authz.ObjectOwnEmployee); err != nil {
		return nil, h.fail(ctx, "GetEmployee", err)
	}

	emp, err := h.employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: req.EmployeeID})
	if err != nil {
		return nil, h.fail(ctx, "GetEmployee", err)
	}

	return &GetEmployeeResponse{Employee: toEmployee(emp)}, nil
}

// GetDepartmentOverview は部署ごとの在籍人数と予算消化状況を返します。
func (h *HRGrpcHandler) GetDepartmentOverview(ctx context.Context, req *Empty) (*GetDepartmentOverviewResponse, error) {
	if err := h.authorizeReports(ctx, req); err != nil {
		return nil, h.fail(ctx, "GetDepartmentOverview", err)
	}

	departments, err := h.reports.DepartmentOverview(ctx)
	if err != nil {
		return nil, h.fail(ctx, "GetDepartmentOverview", err)
	}
	return &GetDepartmentOverviewResponse{Departments: departments}, nil
}

// GetCompanyOverview は会社全体の在籍人数と等級構成を返します。
func (h *HRGrpcHandler) GetCompanyOverview(ctx context.Context, req *Empty) (*GetCompanyOverviewResponse, error) {
	if err := h.authorizeReports(ctx, req); err != nil {
		return nil, h.fail(ctx, "GetCompanyOverview", err)
	}

	overview, err := h.reports.CompanyOverview(ctx)
	if err != nil {
		return nil, h.fail(ctx, "GetCompanyOverview", err)
	}
	return &GetCompanyOverviewResponse{Overview: overview}, nil
}

// GetRecentHires は直近の入社者を返します。
func (h *HRGrpcHandler) GetRecentHires(ctx context.Context, req *GetRecentHiresRequest) (*GetRecentHiresResponse, error) {
	if err := h.authorizeReports(ctx, req); err != nil {
		return nil, h.fail(ctx, "GetRecentHires", err)
	}

	hires, err := h.reports.RecentHires(ctx, req.Days)
	if err != nil {
		return nil, h.fail(ctx, "GetRecentHires", err)
	}
	return &GetRecentHiresResponse{RecentHires: hires}, nil
}

// GetDashboard は操作者の区分に応じたダッシュボードを返します。
func (h *HRGrpcHandler) GetDashboard(ctx context.Context, req *Empty) (*GetDashboardResponse, error) {
	actor, err := h.begin(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "GetDashboard", err)
	}
	if actor.UserID == "" {
		return nil, h.fail(ctx, "GetDashboard", authz.ErrUnauthenticated)
	}
	if err := h.authorizer.Authorize(actor.Tier, authz.ObjectDashboard, authz.ActionRead); err != nil {
		return nil, h.fail(ctx, "GetDashboard", err)
	}

	d, err := h.dashboards.Dashboard(ctx, actor.UserID)
	if err != nil {
		return nil, h.fail(ctx, "GetDashboard", err)
	}
	return toDashboardResponse(d), nil
}

// begin はリクエストを検証し、操作者を取り出します。操作者がいない場合の扱いは Authorizer が決めます。
func (h *HRGrpcHandler) begin(ctx context.Context, req interface{}) (Actor, error) {
	if req == nil {
		return Actor{}, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		return Actor{}, err
	}

	actor, _ := ActorFromContext(ctx)
	return actor, nil
}

func (h *HRGrpcHandler) authorizeReports(ctx context.Context, req interface{}) error {
	actor, err := h.begin(ctx, req)
	if err != nil {
		return err
	}
	return h.authorizer.Authorize(actor.Tier, authz.ObjectReports, authz.ActionRead)
}

// authorizeEmployeeRead は object の権限がない場合でも、対象が操作者本人なら ownObject で判定します。
func (h *HRGrpcHandler) authorizeEmployeeRead(ctx context.Context, actor Actor, employeeID, object, ownObject string) error {
	err := h.authorizer.Authorize(actor.Tier, object, authz.ActionRead)
	if err == nil || !errors.Is(err, authz.ErrForbidden) {
		return err
	}

	self, found, lookupErr := h.employees.FindEmployeeByUser(ctx, actor.UserID)
	if lookupErr != nil {
		if errors.Is(lookupErr, employee.ErrInvalidUserID) {
			return err
		}
		return lookupErr
	}
	if !found || !sameEmployeeID(self.ID, employeeID) {
		return err
	}
	return h.authorizer.Authorize(actor.Tier, ownObject, authz.ActionRead)
}

func sameEmployeeID(stored, requested string) bool {
	id, err := uuid.Parse(strings.TrimSpace(requested))
	if err != nil {
		return false
	}
	return stored == id.String()
}

func (h *HRGrpcHandler) historyInput(ctx context.Context, req *GetHistoryRequest) (employee.GetHistoryInput, error) {
	actor, err := h.begin(ctx, req)
	if err != nil {
		return employee.GetHistoryInput{}, err
	}
	if err := h.authorizeEmployeeRead(ctx, actor, req.EmployeeID, authz.ObjectHistory, authz.ObjectOwnHistory); err != nil {
		return employee.GetHistoryInput{}, err
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return employee.GetHistoryInput{}, status.Error(codes.InvalidArgument, "start_date must be YYYY-MM-DD")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return employee.GetHistoryInput{}, status.Error(codes.InvalidArgument, "end_date must be YYYY-MM-DD")
	}

	return employee.GetHistoryInput{EmployeeID: req.EmployeeID, StartDate: start, EndDate: end}, nil
}

// fail はエラーを gRPC ステータスに変換し、内部エラーのみ記録します。
func (h *HRGrpcHandler) fail(ctx context.Context, method string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	st := toStatusError(err)
	if status.Code(st) == codes.Internal {
		fields := logrus.Fields{"method": method}
		if actor, ok := ActorFromContext(ctx); ok {
			fields["actor_id"] = actor.UserID
		}
		h.logger.WithFields(fields).WithError(err).Error("rpc_failed")
	}
	return st
}

func (a Actor) userIDPtr() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}
