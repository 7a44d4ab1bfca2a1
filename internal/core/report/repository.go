package report

import (
	"context"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
)

// Filter は履歴レポートの絞り込み条件です。日付範囲は実効日付に対して両端を含みます。
type Filter struct {
	EmployeeID   *string
	DepartmentID *string
	StartDate    *time.Time
	EndDate      *time.Time
	Year         *int
}

// Repository はレポート用の読み取り専用クエリを定義します。
type Repository interface {
	ListSalaryChanges(ctx context.Context, filter Filter) ([]SalaryChange, error)
	ListRoleChanges(ctx context.Context, filter Filter) ([]*employee.RoleHistory, error)
	ListDepartmentStats(ctx context.Context) ([]DepartmentStats, error)
	CountActiveBySeniority(ctx context.Context) (map[employee.Seniority]int, error)
	// ListHiresSince は since 以降に入社した社員を入社日の降順で返します。
	ListHiresSince(ctx context.Context, since time.Time) ([]Hire, error)
}

// Cache はダッシュボード集計の読み取りキャッシュです。
// 取得・保存の失敗は集計結果の正しさに影響しません。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (noopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
