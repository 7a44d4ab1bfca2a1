package organization

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department は部署エンティティです。
type Department struct {
	ID          string
	Name        string
	Description *string
	Budget      *decimal.Decimal
	ManagerID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Role は部署に属する職種エンティティです。
type Role struct {
	ID             string
	Title          string
	DepartmentID   string
	DepartmentName string
	Description    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// String は "Developer - IT" 形式の表示名を返します。
func (r *Role) String() string {
	if r == nil {
		return ""
	}
	if r.DepartmentName == "" {
		return r.Title
	}
	return r.Title + " - " + r.DepartmentName
}
