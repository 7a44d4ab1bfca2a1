package employee

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SalaryHistory は給与変更の監査レコードです。作成後に値を変更する手段は提供されません。
type SalaryHistory struct {
	ID            string
	EmployeeID    string
	EmployeeName  string
	OldSalary     decimal.Decimal
	NewSalary     decimal.Decimal
	ChangedBy     *string
	ChangeReason  string
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// Validate はレコード単体の整合性を検証します。
func (h *SalaryHistory) Validate(hireDate time.Time) error {
	if h.OldSalary.IsNegative() || h.NewSalary.IsNegative() {
		return ErrNegativeSalary
	}
	if h.OldSalary.Equal(h.NewSalary) {
		return ErrSameSalary
	}
	if normalizeDate(h.EffectiveDate).Before(normalizeDate(hireDate)) {
		return ErrEffectiveDateBeforeHire
	}
	return nil
}

// MaxSalary は給与列 NUMERIC(10,2) に格納できる上限です。
var MaxSalary = decimal.RequireFromString("99999999.99")

// normalizeSalary は給与を 2 桁に丸め、正の値かつ上限以下であることを確かめます。
func normalizeSalary(v decimal.Decimal) (decimal.Decimal, error) {
	v = v.Round(2)
	if !v.IsPositive() {
		return decimal.Zero, ErrNonPositiveSalary
	}
	if v.GreaterThan(MaxSalary) {
		return decimal.Zero, ErrSalaryOutOfRange
	}
	return v, nil
}

// ChangeAmount は new - old を返します。
func (h *SalaryHistory) ChangeAmount() decimal.Decimal {
	return h.NewSalary.Sub(h.OldSalary)
}

// ChangePercentage は変更率 (%) を小数第 2 位で丸めて返します。旧給与が 0 の場合は 0 です。
func (h *SalaryHistory) ChangePercentage() decimal.Decimal {
	if h.OldSalary.IsZero() {
		return decimal.Zero
	}
	return h.ChangeAmount().Div(h.OldSalary).Mul(decimal.NewFromInt(100)).Round(2)
}

func (h *SalaryHistory) IsRaise() bool {
	return h.NewSalary.GreaterThan(h.OldSalary)
}

func (h *SalaryHistory) IsDecrease() bool {
	return h.NewSalary.LessThan(h.OldSalary)
}

func (h *SalaryHistory) String() string {
	return fmt.Sprintf("%s: $%s -> $%s", h.EmployeeName, h.OldSalary.StringFixed(2), h.NewSalary.StringFixed(2))
}

// SeniorityChange は等級変更の方向です。
type SeniorityChange string

const (
	SeniorityChangeNone      SeniorityChange = ""
	SeniorityChangePromotion SeniorityChange = "promotion"
	SeniorityChangeDemotion  SeniorityChange = "demotion"
)

// RoleHistory は職種・等級変更の監査レコードです。
// OldRole / NewRole は職種が削除されると nil になり、レコード自体は保持されます。
type RoleHistory struct {
	ID            string
	EmployeeID    string
	EmployeeName  string
	OldRole       *RoleRef
	NewRole       *RoleRef
	OldSeniority  Seniority
	NewSeniority  Seniority
	ChangedBy     *string
	ChangeReason  string
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// Validate はレコード単体の整合性を検証します。
func (h *RoleHistory) Validate(hireDate time.Time) error {
	if !h.OldSeniority.Valid() || !h.NewSeniority.Valid() {
		return ErrInvalidSeniority
	}
	if sameRole(h.OldRole, h.NewRole) && h.OldSeniority == h.NewSeniority {
		return ErrNoRoleChange
	}
	if normalizeDate(h.EffectiveDate).Before(normalizeDate(hireDate)) {
		return ErrEffectiveDateBeforeHire
	}
	return nil
}

// PromotionOrDemotion は等級の順位比較で昇格・降格を判定します。
func (h *RoleHistory) PromotionOrDemotion() SeniorityChange {
	oldRank, newRank := h.OldSeniority.Rank(), h.NewSeniority.Rank()
	switch {
	case newRank > oldRank:
		return SeniorityChangePromotion
	case newRank < oldRank:
		return SeniorityChangeDemotion
	default:
		return SeniorityChangeNone
	}
}

func (h *RoleHistory) IsPromotion() bool {
	return h.PromotionOrDemotion() == SeniorityChangePromotion
}

func (h *RoleHistory) IsDemotion() bool {
	return h.PromotionOrDemotion() == SeniorityChangeDemotion
}

// IsLateralMove は等級を変えずに職種だけが変わった場合に true を返します。
func (h *RoleHistory) IsLateralMove() bool {
	return h.OldSeniority == h.NewSeniority && !sameRole(h.OldRole, h.NewRole)
}

// ChangedDepartment は新旧の職種が異なる部署に属する場合に true を返します。
// どちらかの職種が参照できない場合は false です。
func (h *RoleHistory) ChangedDepartment() bool {
	if h.OldRole == nil || h.NewRole == nil {
		return false
	}
	return h.OldRole.DepartmentID != h.NewRole.DepartmentID
}

func (h *RoleHistory) String() string {
	return fmt.Sprintf("%s: %s -> %s", h.EmployeeName, roleTitle(h.OldRole), roleTitle(h.NewRole))
}

func roleTitle(r *RoleRef) string {
	if r == nil {
		return "None"
	}
	return r.Title
}

func sameRole(a, b *RoleRef) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

func normalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
