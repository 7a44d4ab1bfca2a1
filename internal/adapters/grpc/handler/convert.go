package handler

import (
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/dashboard"
	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/user"
)

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// parseDate は空文字を nil として扱います。書式はリクエスト検証で確認済みです。
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toRole(r *employee.RoleRef) *Role {
	if r == nil {
		return nil
	}
	return &Role{
		ID:             r.ID,
		Title:          r.Title,
		DepartmentID:   r.DepartmentID,
		DepartmentName: r.DepartmentName,
	}
}

func toEmployee(e *employee.Employee) *Employee {
	if e == nil {
		return nil
	}

	out := &Employee{
		ID:            e.ID,
		UserID:        e.UserID,
		FullName:      e.FullName,
		Role:          *toRole(&e.Role),
		Seniority:     string(e.Seniority),
		CurrentSalary: e.CurrentSalary.StringFixed(2),
		HireDate:      formatDate(e.HireDate),
		ManagerID:     e.ManagerID,
		IsTeamLead:    e.IsTeamLead,
		IsActive:      e.IsActive(),
	}
	if e.TerminationDate != nil {
		d := formatDate(*e.TerminationDate)
		out.TerminationDate = &d
	}
	return out
}

func toEmployees(list []*employee.Employee) []*Employee {
	out := make([]*Employee, 0, len(list))
	for _, e := range list {
		out = append(out, toEmployee(e))
	}
	return out
}

func toSalaryRecord(h *employee.SalaryHistory) *SalaryRecord {
	if h == nil {
		return nil
	}
	return &SalaryRecord{
		ID:               h.ID,
		EmployeeID:       h.EmployeeID,
		EmployeeName:     h.EmployeeName,
		OldSalary:        h.OldSalary.StringFixed(2),
		NewSalary:        h.NewSalary.StringFixed(2),
		ChangeAmount:     h.ChangeAmount().StringFixed(2),
		ChangePercentage: h.ChangePercentage().StringFixed(2),
		ChangedBy:        h.ChangedBy,
		Reason:           h.ChangeReason,
		EffectiveDate:    formatDate(h.EffectiveDate),
		CreatedAt:        h.CreatedAt,
		Summary:          h.String(),
	}
}

func toRoleRecord(h *employee.RoleHistory) *RoleRecord {
	if h == nil {
		return nil
	}
	return &RoleRecord{
		ID:                h.ID,
		EmployeeID:        h.EmployeeID,
		EmployeeName:      h.EmployeeName,
		OldRole:           toRole(h.OldRole),
		NewRole:           toRole(h.NewRole),
		OldSeniority:      string(h.OldSeniority),
		NewSeniority:      string(h.NewSeniority),
		SeniorityChange:   string(h.PromotionOrDemotion()),
		LateralMove:       h.IsLateralMove(),
		ChangedDepartment: h.ChangedDepartment(),
		ChangedBy:         h.ChangedBy,
		Reason:            h.ChangeReason,
		EffectiveDate:     formatDate(h.EffectiveDate),
		CreatedAt:         h.CreatedAt,
		Summary:           h.String(),
	}
}

func toUser(u *user.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Status:    string(u.Status),
		Tier:      string(u.Tier),
		CreatedAt: u.CreatedAt,
	}
}

func toUsers(list []*user.User) []*User {
	out := make([]*User, 0, len(list))
	for _, u := range list {
		out = append(out, toUser(u))
	}
	return out
}

func toDashboardResponse(d *dashboard.Dashboard) *GetDashboardResponse {
	resp := &GetDashboardResponse{Kind: d.Kind, User: toUser(d.User), HR: d.HR}

	if v := d.Employee; v != nil {
		teams := make([]DepartmentTeam, 0, len(v.TeamByDepartment))
		for _, t := range v.TeamByDepartment {
			teams = append(teams, DepartmentTeam{DepartmentName: t.DepartmentName, Members: toEmployees(t.Members)})
		}
		resp.Employee = &EmployeeDashboard{
			Employee:         toEmployee(v.Employee),
			Duration:         v.Duration,
			IsTeamLead:       v.IsTeamLead,
			TeamStats:        v.TeamStats,
			TeamByDepartment: teams,
		}
		if v.IsTeamLead {
			resp.Employee.TeamMembers = toEmployees(v.TeamMembers)
		}
	}

	if v := d.Admin; v != nil {
		resp.Admin = &AdminDashboard{
			System:               v.System,
			UsersWithoutEmployee: toUsers(v.UsersWithoutEmployee),
			TierDistribution:     v.TierDistribution,
			RecentUsers:          toUsers(v.RecentUsers),
			Company:              v.Company,
		}
	}

	return resp
}
