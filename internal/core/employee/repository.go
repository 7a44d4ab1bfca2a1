package employee

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository は社員の永続化操作を定義します。
// 参照系は見つからない場合に (nil, false, nil) を返します。
type Repository interface {
	Create(ctx context.Context, e *Employee) (*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, bool, error)
	// FindByIDForUpdate は行ロックを取得して社員を読み込みます。書き込みトランザクション内で使用します。
	FindByIDForUpdate(ctx context.Context, id string) (*Employee, bool, error)
	FindByUserID(ctx context.Context, userID string) (*Employee, bool, error)
	List(ctx context.Context, filter ListFilter) ([]*Employee, string, error)
	UpdateSalary(ctx context.Context, id string, salary decimal.Decimal, updatedAt time.Time) error
	UpdateRole(ctx context.Context, id, roleID string, seniority Seniority, updatedAt time.Time) error
	UpdateTermination(ctx context.Context, id string, terminationDate time.Time, updatedAt time.Time) error
	// ListWithoutRecentRaises は cutoff 以降に昇給記録がない在籍社員を返します。
	ListWithoutRecentRaises(ctx context.Context, cutoff time.Time) ([]*Employee, error)
}

// ListFilter は社員一覧の絞り込み条件です。
type ListFilter struct {
	ActiveOnly   bool
	DepartmentID *string
	ManagerID    *string
	Limit        int
	Offset       int
}

// RoleLookup は職種の存在確認を提供します。
type RoleLookup interface {
	FindRole(ctx context.Context, id string) (*RoleRef, bool, error)
}

// HistoryRepository は変更履歴の追記と参照を定義します。更新・削除の操作はありません。
type HistoryRepository interface {
	CreateSalaryHistory(ctx context.Context, h *SalaryHistory) (*SalaryHistory, error)
	CreateRoleHistory(ctx context.Context, h *RoleHistory) (*RoleHistory, error)
	// ListSalaryHistory は effective_date の降順、同日の場合は created_at の降順で返します。
	ListSalaryHistory(ctx context.Context, filter HistoryFilter) ([]*SalaryHistory, error)
	ListRoleHistory(ctx context.Context, filter HistoryFilter) ([]*RoleHistory, error)
}

// HistoryFilter は履歴参照の条件です。日付は両端を含みます。
type HistoryFilter struct {
	EmployeeID string
	StartDate  *time.Time
	EndDate    *time.Time
}
