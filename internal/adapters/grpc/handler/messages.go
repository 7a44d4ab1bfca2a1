package handler

import (
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/dashboard"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	"github.com/ivanvallejoss/hr-system/internal/core/user"
)

// dateLayout は日付項目の書式です。
const dateLayout = "2006-01-02"

// Empty は入力を持たない RPC のリクエストです。
type Empty struct{}

type UpdateSalaryRequest struct {
	EmployeeID    string `json:"employee_id" validate:"required,uuid_rfc4122"`
	NewSalary     string `json:"new_salary" validate:"required,numeric"`
	Reason        string `json:"reason" validate:"max=1000"`
	EffectiveDate string `json:"effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateSalaryResponse struct {
	Record *SalaryRecord `json:"record"`
}

type UpdateRoleRequest struct {
	EmployeeID    string `json:"employee_id" validate:"required,uuid_rfc4122"`
	NewRoleID     string `json:"new_role_id,omitempty" validate:"omitempty,uuid_rfc4122"`
	NewSeniority  string `json:"new_seniority,omitempty" validate:"omitempty,oneof=junior mid senior"`
	Reason        string `json:"reason" validate:"max=1000"`
	EffectiveDate string `json:"effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateRoleResponse struct {
	Record *RoleRecord `json:"record"`
}

type GetHistoryRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid_rfc4122"`
	StartDate  string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type GetSalaryHistoryResponse struct {
	Records []*SalaryRecord `json:"records"`
}

type GetRoleHistoryResponse struct {
	Records []*RoleRecord `json:"records"`
}

type GetEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid_rfc4122"`
}

type GetEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

type GetEmployeeAnalyticsResponse struct {
	Analytics *Analytics `json:"analytics"`
}

type GetDepartmentOverviewResponse struct {
	Departments []report.DepartmentSummary `json:"departments"`
}

type GetCompanyOverviewResponse struct {
	Overview *report.CompanyOverview `json:"overview"`
}

type GetRecentHiresRequest struct {
	Days int `json:"days,omitempty" validate:"omitempty,min=1,max=365"`
}

type GetRecentHiresResponse struct {
	RecentHires *report.RecentHires `json:"recent_hires"`
}

type GetDashboardResponse struct {
	Kind     dashboard.Kind     `json:"kind"`
	User     *User              `json:"user"`
	Employee *EmployeeDashboard `json:"employee,omitempty"`
	HR       *dashboard.HRView  `json:"hr,omitempty"`
	Admin    *AdminDashboard    `json:"admin,omitempty"`
}

// Role は職種のスナップショットです。
type Role struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
}

// Employee は社員の現在状態です。金額は小数第 2 位までの文字列です。
type Employee struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	FullName        string  `json:"full_name"`
	Role            Role    `json:"role"`
	Seniority       string  `json:"seniority"`
	CurrentSalary   string  `json:"current_salary"`
	HireDate        string  `json:"hire_date"`
	TerminationDate *string `json:"termination_date,omitempty"`
	ManagerID       *string `json:"manager_id,omitempty"`
	IsTeamLead      bool    `json:"is_team_lead"`
	IsActive        bool    `json:"is_active"`
}

type SalaryRecord struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employee_id"`
	EmployeeName     string    `json:"employee_name"`
	OldSalary        string    `json:"old_salary"`
	NewSalary        string    `json:"new_salary"`
	ChangeAmount     string    `json:"change_amount"`
	ChangePercentage string    `json:"change_percentage"`
	ChangedBy        *string   `json:"changed_by,omitempty"`
	Reason           string    `json:"reason"`
	EffectiveDate    string    `json:"effective_date"`
	CreatedAt        time.Time `json:"created_at"`
	Summary          string    `json:"summary"`
}

type RoleRecord struct {
	ID                string    `json:"id"`
	EmployeeID        string    `json:"employee_id"`
	EmployeeName      string    `json:"employee_name"`
	OldRole           *Role     `json:"old_role,omitempty"`
	NewRole           *Role     `json:"new_role,omitempty"`
	OldSeniority      string    `json:"old_seniority"`
	NewSeniority      string    `json:"new_seniority"`
	SeniorityChange   string    `json:"seniority_change,omitempty"`
	LateralMove       bool      `json:"lateral_move"`
	ChangedDepartment bool      `json:"changed_department"`
	ChangedBy         *string   `json:"changed_by,omitempty"`
	Reason            string    `json:"reason"`
	EffectiveDate     string    `json:"effective_date"`
	CreatedAt         time.Time `json:"created_at"`
	Summary           string    `json:"summary"`
}

type Analytics struct {
	EmployeeID             string  `json:"employee_id"`
	SalaryGrowthPercentage float64 `json:"salary_growth_percentage"`
	TotalSalaryIncreases   int     `json:"total_salary_increases"`
	TotalPromotions        int     `json:"total_promotions"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

type DepartmentTeam struct {
	DepartmentName string      `json:"department_name"`
	Members        []*Employee `json:"members"`
}

type EmployeeDashboard struct {
	Employee         *Employee                    `json:"employee"`
	Duration         dashboard.EmploymentDuration `json:"employment_duration"`
	IsTeamLead       bool                         `json:"is_team_lead"`
	TeamMembers      []*Employee                  `json:"team_members,omitempty"`
	TeamStats        *dashboard.TeamStats         `json:"team_stats,omitempty"`
	TeamByDepartment []DepartmentTeam             `json:"team_by_department,omitempty"`
}

type AdminDashboard struct {
	System               dashboard.SystemOverview `json:"system"`
	UsersWithoutEmployee []*User                  `json:"users_without_employee"`
	TierDistribution     []user.TierCount         `json:"tier_distribution"`
	RecentUsers          []*User                  `json:"recent_users"`
	Company              *report.CompanyOverview  `json:"company"`
}
