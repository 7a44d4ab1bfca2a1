package organization

import (
	"context"
	"time"
)

// Repository は部署・職種の永続化を行うインターフェースです。
type Repository interface {
	CreateDepartment(ctx context.Context, department *Department) (*Department, error)
	FindDepartmentByID(ctx context.Context, id string) (*Department, error)
	FindDepartmentByName(ctx context.Context, name string) (*Department, error)
	ListDepartments(ctx context.Context, filter ListFilter) ([]*Department, string, error)
	SetDepartmentManager(ctx context.Context, departmentID string, managerID *string, updatedAt time.Time) (*Department, error)

	CreateRole(ctx context.Context, role *Role) (*Role, error)
	FindRoleByID(ctx context.Context, id string) (*Role, error)
	ListRoles(ctx context.Context, filter ListRolesFilter) ([]*Role, string, error)
	DeleteRole(ctx context.Context, id string) error
	CountEmployeesWithRole(ctx context.Context, roleID string) (int, error)
}

// ListFilter は一覧取得時のページング条件です。
type ListFilter struct {
	Limit  int
	Offset int
}

// ListRolesFilter は職種一覧の検索条件です。
type ListRolesFilter struct {
	DepartmentID *string
	Limit        int
	Offset       int
}
