package report

import (
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/shopspring/decimal"
)

// BudgetStatus は部署予算に対する給与総額の消化度合いです。
type BudgetStatus string

const (
	BudgetStatusUnknown BudgetStatus = "unknown"
	BudgetStatusOK      BudgetStatus = "ok"
	BudgetStatusWarning BudgetStatus = "warning"
	BudgetStatusDanger  BudgetStatus = "danger"
)

var (
	budgetWarningThreshold = decimal.NewFromInt(60)
	budgetDangerThreshold  = decimal.NewFromInt(80)
)

// DepartmentStats は部署ごとの在籍社員集計の生データです。
type DepartmentStats struct {
	DepartmentID  string
	Name          string
	Budget        *decimal.Decimal
	ManagerName   *string
	EmployeeCount int
	TotalSalaries decimal.Decimal
}

// DepartmentSummary は部署ダッシュボード用の集計です。
type DepartmentSummary struct {
	DepartmentID           string           `json:"department_id"`
	Name                   string           `json:"name"`
	EmployeeCount          int              `json:"employee_count"`
	Budget                 *decimal.Decimal `json:"budget,omitempty"`
	TotalSalaries          decimal.Decimal  `json:"total_salaries"`
	AvgSalary              decimal.Decimal  `json:"avg_salary"`
	ManagerName            *string          `json:"manager_name,omitempty"`
	SalaryBudgetPercentage *decimal.Decimal `json:"salary_budget_percentage,omitempty"`
	RemainingBudget        *decimal.Decimal `json:"remaining_budget,omitempty"`
	BudgetStatus           BudgetStatus     `json:"budget_status"`
}

// SeniorityCount は等級ごとの在籍人数です。
type SeniorityCount struct {
	Level employee.Seniority `json:"level"`
	Count int                `json:"count"`
}

// CompanyOverview は会社全体の在籍社員集計です。
type CompanyOverview struct {
	TotalEmployees     int              `json:"total_employees"`
	SeniorityBreakdown []SeniorityCount `json:"seniority_breakdown"`
}

// Hire は最近の入社者 1 名分の情報です。
type Hire struct {
	EmployeeID     string    `json:"employee_id"`
	FullName       string    `json:"full_name"`
	RoleTitle      string    `json:"role_title"`
	DepartmentName string    `json:"department_name"`
	HireDate       time.Time `json:"hire_date"`
}

// RecentHires は直近 Days 日以内の入社者一覧です。
type RecentHires struct {
	Days  int       `json:"days"`
	Since time.Time `json:"since"`
	Hires []Hire    `json:"hires"`
	Count int       `json:"count"`
}

// SalaryReport は給与変更レポートです。
type SalaryReport struct {
	Changes      SalaryHistories
	Raises       int
	Decreases    int
	TopIncreases SalaryHistories
	ByMonth      []MonthlySalaryStats
	ByRole       []RoleGrowth
}

// RoleReport は職種変更レポートです。
type RoleReport struct {
	Changes      RoleHistories
	Promotions   int
	Demotions    int
	LateralMoves int
	ByMonth      []MonthlyRoleStats
}
