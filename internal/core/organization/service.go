package organization

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
)

// Service は部署・職種に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は組織ユースケースの公開インターフェースです。
type UseCase interface {
	CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error)
	GetDepartment(ctx context.Context, in GetDepartmentInput) (*Department, error)
	ListDepartments(ctx context.Context, in ListDepartmentsInput) (*ListDepartmentsResult, error)
	AssignDepartmentManager(ctx context.Context, in AssignDepartmentManagerInput) (*Department, error)
	CreateRole(ctx context.Context, in CreateRoleInput) (*Role, error)
	GetRole(ctx context.Context, in GetRoleInput) (*Role, error)
	ListRoles(ctx context.Context, in ListRolesInput) (*ListRolesResult, error)
	DeleteRole(ctx context.Context, in DeleteRoleInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateDepartmentInput は部署作成時の入力です。
type CreateDepartmentInput struct {
	Name        string
	Description *string
	Budget      *decimal.Decimal
}

// GetDepartmentInput は部署取得時の入力です。
type GetDepartmentInput struct {
	ID string
}

// ListDepartmentsInput は部署一覧取得時の入力です。
type ListDepartmentsInput struct {
	PageSize  int
	PageToken string
}

// ListDepartmentsResult は部署一覧の取得結果です。
type ListDepartmentsResult struct {
	Departments   []*Department
	NextPageToken string
}

// AssignDepartmentManagerInput は部署責任者の設定入力です。ManagerID が nil の場合は解除します。
type AssignDepartmentManagerInput struct {
	DepartmentID string
	ManagerID    *string
}

// CreateRoleInput は職種作成時の入力です。
type CreateRoleInput struct {
	Title        string
	DepartmentID string
	Description  *string
}

// GetRoleInput は職種取得時の入力です。
type GetRoleInput struct {
	ID string
}

// ListRolesInput は職種一覧取得時の入力です。
type ListRolesInput struct {
	DepartmentID *string
	PageSize     int
	PageToken    string
}

// ListRolesResult は職種一覧の取得結果です。
type ListRolesResult struct {
	Roles         []*Role
	NextPageToken string
}

// DeleteRoleInput は職種削除時の入力です。
type DeleteRoleInput struct {
	ID string
}

// CreateDepartment は新しい部署を作成します。
func (s *Service) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	budget, err := normalizeBudget(in.Budget)
	if err != nil {
		return nil, err
	}

	var created *Department
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureDepartmentNameNotExists(txCtx, name); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.CreateDepartment(txCtx, &Department{
			Name:        name,
			Description: normalizeDescription(in.Description),
			Budget:      budget,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetDepartment は ID で部署を取得します。
func (s *Service) GetDepartment(ctx context.Context, in GetDepartmentInput) (*Department, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var department *Department
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindDepartmentByID(txCtx, id)
		if err != nil {
			return err
		}
		department = result
		return nil
	}); err != nil {
		return nil, err
	}

	return department, nil
}

// ListDepartments は部署の一覧を取得します。
func (s *Service) ListDepartments(ctx context.Context, in ListDepartmentsInput) (*ListDepartmentsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	result := &ListDepartmentsResult{}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		departments, token, err := s.repo.ListDepartments(txCtx, ListFilter{Limit: limit, Offset: offset})
		if err != nil {
			return err
		}
		result.Departments = departments
		result.NextPageToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// AssignDepartmentManager は部署責任者を設定または解除します。
func (s *Service) AssignDepartmentManager(ctx context.Context, in AssignDepartmentManagerInput) (*Department, error) {
	departmentID, err := normalizeID(in.DepartmentID)
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

	var updated *Department
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.SetDepartmentManager(txCtx, departmentID, managerID, s.clock.Now())
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// CreateRole は部署に職種を追加します。
func (s *Service) CreateRole(ctx context.Context, in CreateRoleInput) (*Role, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	departmentID, err := normalizeID(in.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("department_id: %w", err)
	}

	var created *Role
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		department, err := s.repo.FindDepartmentByID(txCtx, departmentID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.CreateRole(txCtx, &Role{
			Title:          title,
			DepartmentID:   department.ID,
			DepartmentName: department.Name,
			Description:    normalizeDescription(in.Description),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetRole は ID で職種を取得します。
func (s *Service) GetRole(ctx context.Context, in GetRoleInput) (*Role, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var role *Role
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindRoleByID(txCtx, id)
		if err != nil {
			return err
		}
		role = result
		return nil
	}); err != nil {
		return nil, err
	}

	return role, nil
}

// ListRoles は職種の一覧を取得します。
func (s *Service) ListRoles(ctx context.Context, in ListRolesInput) (*ListRolesResult, error) {
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

	result := &ListRolesResult{}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		roles, token, err := s.repo.ListRoles(txCtx, ListRolesFilter{
			DepartmentID: departmentID,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			return err
		}
		result.Roles = roles
		result.NextPageToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteRole は職種を削除します。社員が参照している場合は削除できません。
// 変更履歴からの参照はスキーマ側で NULL に置き換えられ、履歴自体は残ります。
func (s *Service) DeleteRole(ctx context.Context, in DeleteRoleInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		count, err := s.repo.CountEmployeesWithRole(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrRoleInUse
		}
		return s.repo.DeleteRole(txCtx, id)
	})
}

func (s *Service) ensureDepartmentNameNotExists(ctx context.Context, name string) error {
	department, err := s.repo.FindDepartmentByName(ctx, name)
	if err != nil && !errors.Is(err, ErrDepartmentNotFound) {
		return err
	}
	if department != nil {
		return ErrDepartmentNameExists
	}
	return nil
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

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeBudget(raw *decimal.Decimal) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	if raw.IsNegative() {
		return nil, ErrInvalidBudget
	}
	budget := raw.Round(2)
	return &budget, nil
}

func normalizeDescription(raw *string) *string {
	if raw == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}

	desc := trimmed
	return &desc
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
