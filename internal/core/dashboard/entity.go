package dashboard

import (
	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	"github.com/ivanvallejoss/hr-system/internal/core/user"
)

// Kind はユーザーに表示するダッシュボードの種類です。
type Kind string

const (
	KindEmployee Kind = "employee"
	KindTeamLead Kind = "team_lead"
	KindHR       Kind = "hr"
	KindAdmin    Kind = "admin"
)

// EmploymentDuration は入社日からの在籍期間です。
// Years は 365 日、Months は 30 日単位の切り捨てです。
type EmploymentDuration struct {
	Days   int `json:"days"`
	Years  int `json:"years"`
	Months int `json:"months"`
}

// TeamStats は部下の等級別人数です。
type TeamStats struct {
	TotalMembers int `json:"total_members"`
	JuniorCount  int `json:"junior_count"`
	MidCount     int `json:"mid_count"`
	SeniorCount  int `json:"senior_count"`
}

// DepartmentTeam は同じ部署に所属する部下のまとまりです。
type DepartmentTeam struct {
	DepartmentName string               `json:"department_name"`
	Members        []*employee.Employee `json:"members"`
}

// EmployeeView は社員本人向けダッシュボードです。
// チームリーダーの場合のみ Team 以下が埋まります。
type EmployeeView struct {
	Employee         *employee.Employee   `json:"employee"`
	Duration         EmploymentDuration   `json:"employment_duration"`
	IsTeamLead       bool                 `json:"is_team_lead"`
	TeamMembers      []*employee.Employee `json:"team_members,omitempty"`
	TeamStats        *TeamStats           `json:"team_stats,omitempty"`
	TeamByDepartment []DepartmentTeam     `json:"team_by_department,omitempty"`
}

// HRView は人事向けダッシュボードです。
type HRView struct {
	Departments []report.DepartmentSummary `json:"departments"`
	RecentHires *report.RecentHires        `json:"recent_hires"`
	Company     *report.CompanyOverview    `json:"company"`
}

// SystemOverview は管理者向けのシステム全体の件数です。
type SystemOverview struct {
	TotalUsers       int `json:"total_users"`
	ActiveEmployees  int `json:"active_employees"`
	TotalDepartments int `json:"total_departments"`
}

// AdminView は管理者向けダッシュボードです。
type AdminView struct {
	System               SystemOverview          `json:"system"`
	UsersWithoutEmployee []*user.User            `json:"users_without_employee"`
	TierDistribution     []user.TierCount        `json:"tier_distribution"`
	RecentUsers          []*user.User            `json:"recent_users"`
	Company              *report.CompanyOverview `json:"company"`
}

// Dashboard は振り分け後のダッシュボードです。Kind に対応するビューだけが設定されます。
type Dashboard struct {
	Kind     Kind          `json:"kind"`
	User     *user.User    `json:"user"`
	Employee *EmployeeView `json:"employee,omitempty"`
	HR       *HRView       `json:"hr,omitempty"`
	Admin    *AdminView    `json:"admin,omitempty"`
}
