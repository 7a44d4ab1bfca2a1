package employee

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200

	defaultRaiseWindowMonths = 12
	daysPerMonth             = 30
)

// Service は社員の給与・職種変更と履歴参照のユースケースをまとめます。
type Service struct {
	repo    Repository
	history HistoryRepository
	roles   RoleLookup
	clock   Clock
	tx      TransactionManager
	logger  logrus.FieldLogger
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	UpdateSalary(ctx context.Context, in UpdateSalaryInput) (*SalaryHistory, error)
	UpdateRole(ctx context.Context, in UpdateRoleInput) (*RoleHistory, error)
	GetSalaryHistory(ctx context.Context, in GetHistoryInput) ([]*SalaryHistory, error)
	GetRoleHistory(ctx context.Context, in GetHistoryInput) ([]*RoleHistory, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	FindEmployeeByUser(ctx context.Context, userID string) (*Employee, bool, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	HireEmployee(ctx context.Context, in HireEmployeeInput) (*Employee, error)
	TerminateEmployee(ctx context.Context, in TerminateEmployeeInput) (*Employee, error)
	ListWithoutRecentRaises(ctx context.Context, months int) ([]*Employee, error)
	GetAnalytics(ctx context.Context, in GetAnalyticsInput) (*EmployeeAnalytics, error)
}

// NewService は Service を生成します。logger が nil の場合は監査ログを出力しません。
func NewService(repo Repository, history HistoryRepository, roles RoleLookup, clock Clock, tx TransactionManager, logger logrus.FieldLogger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{repo: repo, history: history, roles: roles, clock: clock, tx: tx, logger: logger}
}

// UpdateSalaryInput は給与変更の入力です。EffectiveDate が nil の場合は当日になります。
type UpdateSalaryInput struct {
	EmployeeID    string
	NewSalary     decimal.Decimal
	ChangedBy     *string
	Reason        string
	EffectiveDate *time.Time
}

// UpdateRoleInput は職種・等級変更の入力です。nil の項目は現在値を引き継ぎます。
type UpdateRoleInput struct {
	EmployeeID    string
	NewRoleID     *string
	NewSeniority  *Seniority
	ChangedBy     *string
	Reason        string
	EffectiveDate *time.Time
}

// GetHistoryInput は履歴参照の入力です。
type GetHistoryInput struct {
	EmployeeID string
	StartDate  *time.Time
	EndDate    *time.Time
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// GetAnalyticsInput は集計取得時の入力です。
type GetAnalyticsInput struct {
	EmployeeID string
}

// ListEmployeesInput は社員一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize     int
	PageToken    string
	ActiveOnly   bool
	DepartmentID *string
	ManagerID    *string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// HireEmployeeInput は社員登録時の入力です。
type HireEmployeeInput struct {
	UserID    string
	FullName  string
	RoleID    string
	Seniority *Seniority
	Salary    decimal.Decimal
	HireDate  *time.Time
	ManagerID *string
}

// TerminateEmployeeInput は退職処理の入力です。
type TerminateEmployeeInput struct {
	ID              string
	TerminationDate *time.Time
}

// UpdateSalary は給与を変更し、変更履歴を同一トランザクションで記録します。
func (s *Service) UpdateSalary(ctx context.Context, in UpdateSalaryInput) (*SalaryHistory, error) {
	id, err := normalizeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}

	newSalary, err := normalizeSalary(in.NewSalary)
	if err != nil {
		return nil, err
	}

	changedBy, err := normalizeActor(in.ChangedBy)
	if err != nil {
		return nil, err
	}

	effective := s.effectiveDate(in.EffectiveDate)

	var created *SalaryHistory
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.lockEmployee(txCtx, id)
		if err != nil {
			return err
		}

		if newSalary.Equal(emp.CurrentSalary) {
			return ErrSameSalary
		}
		if effective.Before(normalizeDate(emp.HireDate)) {
			return ErrEffectiveDateBeforeHire
		}

		now := s.clock.Now()
		record := &SalaryHistory{
			ID:            uuid.NewString(),
			EmployeeID:    emp.ID,
			EmployeeName:  emp.FullName,
			OldSalary:     emp.CurrentSalary,
			NewSalary:     newSalary,
			ChangedBy:     changedBy,
			ChangeReason:  strings.TrimSpace(in.Reason),
			EffectiveDate: effective,
			CreatedAt:     now,
		}
		if err := record.Validate(emp.HireDate); err != nil {
			return err
		}

		result, err := s.history.CreateSalaryHistory(txCtx, record)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateSalary(txCtx, emp.ID, newSalary, now); err != nil {
			return err
		}

		if result.EmployeeName == "" {
			result.EmployeeName = emp.FullName
		}
		created = result
		return nil
	}); err != nil {
		s.auditRejected("salary_update", id, in.ChangedBy, err)
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"event":          "salary_updated",
		"actor":          actorField(created.ChangedBy),
		"employee_id":    created.EmployeeID,
		"old_salary":     created.OldSalary.StringFixed(2),
		"new_salary":     created.NewSalary.StringFixed(2),
		"effective_date": created.EffectiveDate.Format(time.DateOnly),
	}).Info("employee salary updated")

	return created, nil
}

// UpdateRole は職種・等級を変更し、変更履歴を同一トランザクションで記録します。
func (s *Service) UpdateRole(ctx context.Context, in UpdateRoleInput) (*RoleHistory, error) {
	id, err := normalizeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}

	var roleID *string
	if in.NewRoleID != nil {
		normalized, err := normalizeID(*in.NewRoleID)
		if err != nil {
			return nil, fmt.Errorf("role_id: %w", err)
		}
		roleID = &normalized
	}

	var seniority *Seniority
	if in.NewSeniority != nil {
		parsed, err := ParseSeniority(string(*in.NewSeniority))
		if err != nil {
			return nil, err
		}
		seniority = &parsed
	}

	changedBy, err := normalizeActor(in.ChangedBy)
	if err != nil {
		return nil, err
	}

	effective := s.effectiveDate(in.EffectiveDate)

	var created *RoleHistory
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.lockEmployee(txCtx, id)
		if err != nil {
			return err
		}

		oldRole := emp.Role
		newRole := emp.Role
		if roleID != nil && *roleID != emp.Role.ID {
			ref, found, err := s.roles.FindRole(txCtx, *roleID)
			if err != nil {
				return err
			}
			if !found {
				return ErrRoleNotFound
			}
			newRole = *ref
		}

		newSeniority := emp.Seniority
		if seniority != nil {
			newSeniority = *seniority
		}

		if newRole.ID == oldRole.ID && newSeniority == emp.Seniority {
			return ErrNoRoleChange
		}
		if effective.Before(normalizeDate(emp.HireDate)) {
			return ErrEffectiveDateBeforeHire
		}

		now := s.clock.Now()
		record := &RoleHistory{
			ID:            uuid.NewString(),
			EmployeeID:    emp.ID,
			EmployeeName:  emp.FullName,
			OldRole:       &oldRole,
			NewRole:       &newRole,
			OldSeniority:  emp.Seniority,
			NewSeniority:  newSeniority,
			ChangedBy:     changedBy,
			ChangeReason:  strings.TrimSpace(in.Reason),
			EffectiveDate: effective,
			CreatedAt:     now,
		}
		if err := record.Validate(emp.HireDate); err != nil {
			return err
		}

		result, err := s.history.CreateRoleHistory(txCtx, record)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateRole(txCtx, emp.ID, newRole.ID, newSeniority, now); err != nil {
			return err
		}

		if result.EmployeeName == "" {
			result.EmployeeName = emp.FullName
		}
		created = result
		return nil
	}); err != nil {
		s.auditRejected("role_update", id, in.ChangedBy, err)
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"event":          "role_updated",
		"actor":          actorField(created.ChangedBy),
		"employee_id":    created.EmployeeID,
		"old_role":       roleTitle(created.OldRole),
		"new_role":       roleTitle(created.NewRole),
		"old_seniority":  string(created.OldSeniority),
		"new_seniority":  string(created.NewSeniority),
		"effective_date": created.EffectiveDate.Format(time.DateOnly),
	}).Info("employee role updated")

	return created, nil
}

// GetSalaryHistory は給与変更履歴を新しい順に返します。
func (s *Service) GetSalaryHistory(ctx context.Context, in GetHistoryInput) ([]*SalaryHistory, error) {
	filter, err := normalizeHistoryInput(in)
	if err != nil {
		return nil, err
	}

	var records []*SalaryHistory
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmployeeExists(txCtx, filter.EmployeeID); err != nil {
			return err
		}
		result, err := s.history.ListSalaryHistory(txCtx, filter)
		if err != nil {
			return err
		}
		records = result
		return nil
	}); err != nil {
		return nil, err
	}

	return records, nil
}

// GetRoleHistory は職種変更履歴を新しい順に返します。
func (s *Service) GetRoleHistory(ctx context.Context, in GetHistoryInput) ([]*RoleHistory, error) {
	filter, err := normalizeHistoryInput(in)
	if err != nil {
		return nil, err
	}

	var records []*RoleHistory
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmployeeExists(txCtx, filter.EmployeeID); err != nil {
			return err
		}
		result, err := s.history.ListRoleHistory(txCtx, filter)
		if err != nil {
			return err
		}
		records = result
		return nil
	}); err != nil {
		return nil, err
	}

	return records, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !found {
			return ErrEmployeeNotFound
		}
		result = emp
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// FindEmployeeByUser はユーザー ID に紐づく社員を返します。存在しない場合は found が false になります。
func (s *Service) FindEmployeeByUser(ctx context.Context, userID string) (*Employee, bool, error) {
	normalized, err := normalizeUserID(userID)
	if err != nil {
		return nil, false, err
	}

	var (
		result *Employee
		found  bool
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, ok, err := s.repo.FindByUserID(txCtx, normalized)
		if err != nil {
			return err
		}
		result, found = emp, ok
		return nil
	}); err != nil {
		return nil, false, err
	}

	return result, found, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var departmentID *string
	if in.DepartmentID != nil {
		id, err := normalizeID(*in.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("department_id: %w", err)
		}
		departmentID = &id
	}

	var managerID *string
	if in.ManagerID != nil {
		id, err := normalizeID(*in.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("manager_id: %w", err)
		}
		managerID = &id
	}

	result := &ListEmployeesResult{}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		employees, token, err := s.repo.List(txCtx, ListFilter{
			ActiveOnly:   in.ActiveOnly,
			DepartmentID: departmentID,
			ManagerID:    managerID,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			return err
		}
		result.Employees = employees
		result.NextPageToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// HireEmployee は社員を登録します。登録時の給与・職種は履歴を持たない初期値です。
func (s *Service) HireEmployee(ctx context.Context, in HireEmployeeInput) (*Employee, error) {
	userID, err := normalizeUserID(in.UserID)
	if err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, ErrInvalidName
	}

	roleID, err := normalizeID(in.RoleID)
	if err != nil {
		return nil, fmt.Errorf("role_id: %w", err)
	}

	seniority := SeniorityJunior
	if in.Seniority != nil {
		parsed, err := ParseSeniority(string(*in.Seniority))
		if err != nil {
			return nil, err
		}
		seniority = parsed
	}

	salary, err := normalizeSalary(in.Salary)
	if err != nil {
		return nil, err
	}

	var managerID *string
	if in.ManagerID != nil {
		id, err := normalizeID(*in.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("manager_id: %w", err)
		}
		managerID = &id
	}

	hireDate := s.effectiveDate(in.HireDate)

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, exists, err := s.repo.FindByUserID(txCtx, userID); err != nil {
			return err
		} else if exists {
			return ErrUserAlreadyEmployed
		}

		role, found, err := s.roles.FindRole(txCtx, roleID)
		if err != nil {
			return err
		}
		if !found {
			return ErrRoleNotFound
		}

		if managerID != nil {
			if _, found, err := s.repo.FindByID(txCtx, *managerID); err != nil {
				return err
			} else if !found {
				return ErrManagerNotFound
			}
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			UserID:        userID,
			FullName:      fullName,
			Role:          *role,
			Seniority:     seniority,
			CurrentSalary: salary,
			HireDate:      hireDate,
			ManagerID:     managerID,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"event":       "employee_hired",
		"employee_id": created.ID,
		"role":        created.Role.Title,
		"seniority":   string(created.Seniority),
		"hire_date":   created.HireDate.Format(time.DateOnly),
	}).Info("employee hired")

	return created, nil
}

// TerminateEmployee は退職日を設定します。退職日は入社日以降である必要があります。
func (s *Service) TerminateEmployee(ctx context.Context, in TerminateEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	terminationDate := s.effectiveDate(in.TerminationDate)

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.lockEmployee(txCtx, id)
		if err != nil {
			return err
		}
		if terminationDate.Before(normalizeDate(emp.HireDate)) {
			return ErrTerminationBeforeHire
		}

		now := s.clock.Now()
		if err := s.repo.UpdateTermination(txCtx, emp.ID, terminationDate, now); err != nil {
			return err
		}

		emp.TerminationDate = &terminationDate
		emp.UpdatedAt = now
		updated = emp
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"event":            "employee_terminated",
		"employee_id":      updated.ID,
		"termination_date": terminationDate.Format(time.DateOnly),
	}).Info("employee terminated")

	return updated, nil
}

// ListWithoutRecentRaises は直近 months か月 (1 か月 = 30 日) に昇給のない在籍社員を返します。
func (s *Service) ListWithoutRecentRaises(ctx context.Context, months int) ([]*Employee, error) {
	if months <= 0 {
		months = defaultRaiseWindowMonths
	}
	cutoff := normalizeDate(s.clock.Now()).AddDate(0, 0, -months*daysPerMonth)

	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListWithoutRecentRaises(txCtx, cutoff)
		if err != nil {
			return err
		}
		employees = result
		return nil
	}); err != nil {
		return nil, err
	}

	return employees, nil
}

// GetAnalytics は社員の給与成長率・昇給回数・昇格回数を計算します。
func (s *Service) GetAnalytics(ctx context.Context, in GetAnalyticsInput) (*EmployeeAnalytics, error) {
	id, err := normalizeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}

	var result *EmployeeAnalytics
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !found {
			return ErrEmployeeNotFound
		}

		salaries, err := s.history.ListSalaryHistory(txCtx, HistoryFilter{EmployeeID: id})
		if err != nil {
			return err
		}
		roles, err := s.history.ListRoleHistory(txCtx, HistoryFilter{EmployeeID: id})
		if err != nil {
			return err
		}

		result = BuildAnalytics(emp, salaries, roles)
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) lockEmployee(ctx context.Context, id string) (*Employee, error) {
	emp, found, err := s.repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEmployeeNotFound
	}
	return emp, nil
}

func (s *Service) ensureEmployeeExists(ctx context.Context, id string) error {
	_, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Service) effectiveDate(raw *time.Time) time.Time {
	if raw == nil {
		return normalizeDate(s.clock.Now())
	}
	return normalizeDate(*raw)
}

func (s *Service) auditRejected(operation, employeeID string, actor *string, err error) {
	s.logger.WithFields(logrus.Fields{
		"event":       operation + "_rejected",
		"actor":       actorField(actor),
		"employee_id": employeeID,
	}).WithError(err).Warn("employee change rejected")
}

func actorField(actor *string) string {
	if actor == nil {
		return ""
	}
	return *actor
}

func normalizeHistoryInput(in GetHistoryInput) (HistoryFilter, error) {
	id, err := normalizeID(in.EmployeeID)
	if err != nil {
		return HistoryFilter{}, err
	}

	filter := HistoryFilter{EmployeeID: id}
	if in.StartDate != nil {
		start := normalizeDate(*in.StartDate)
		filter.StartDate = &start
	}
	if in.EndDate != nil {
		end := normalizeDate(*in.EndDate)
		filter.EndDate = &end
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return HistoryFilter{}, ErrInvalidDateRange
	}
	return filter, nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidID
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}

func normalizeUserID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidUserID
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidUserID
	}
	return parsed.String(), nil
}

func normalizeActor(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := normalizeID(*raw)
	if err != nil {
		return nil, fmt.Errorf("changed_by: %w", err)
	}
	return &id, nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
