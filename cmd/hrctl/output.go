package main

import (
	"github.com/ivanvallejoss/hr-system/internal/core/employee"
)

type salaryView struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	EmployeeName     string  `json:"employee_name"`
	OldSalary        string  `json:"old_salary"`
	NewSalary        string  `json:"new_salary"`
	ChangeAmount     string  `json:"change_amount"`
	ChangePercentage string  `json:"change_percentage"`
	Reason           string  `json:"reason"`
	EffectiveDate    string  `json:"effective_date"`
	ChangedBy        *string `json:"changed_by,omitempty"`
	Summary          string  `json:"summary"`
}

type roleView struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	OldRole       string  `json:"old_role,omitempty"`
	NewRole       string  `json:"new_role,omitempty"`
	OldSeniority  string  `json:"old_seniority"`
	NewSeniority  string  `json:"new_seniority"`
	Direction     string  `json:"direction,omitempty"`
	Reason        string  `json:"reason"`
	EffectiveDate string  `json:"effective_date"`
	ChangedBy     *string `json:"changed_by,omitempty"`
	Summary       string  `json:"summary"`
}

func salaryRecord(h *employee.SalaryHistory) salaryView {
	return salaryView{
		ID:               h.ID,
		EmployeeID:       h.EmployeeID,
		EmployeeName:     h.EmployeeName,
		OldSalary:        h.OldSalary.StringFixed(2),
		NewSalary:        h.NewSalary.StringFixed(2),
		ChangeAmount:     h.ChangeAmount().StringFixed(2),
		ChangePercentage: h.ChangePercentage().StringFixed(2),
		Reason:           h.ChangeReason,
		EffectiveDate:    h.EffectiveDate.Format(dateLayout),
		ChangedBy:        h.ChangedBy,
		Summary:          h.String(),
	}
}

func roleRecord(h *employee.RoleHistory) roleView {
	v := roleView{
		ID:            h.ID,
		EmployeeID:    h.EmployeeID,
		EmployeeName:  h.EmployeeName,
		OldSeniority:  string(h.OldSeniority),
		NewSeniority:  string(h.NewSeniority),
		Direction:     string(h.PromotionOrDemotion()),
		Reason:        h.ChangeReason,
		EffectiveDate: h.EffectiveDate.Format(dateLayout),
		ChangedBy:     h.ChangedBy,
		Summary:       h.String(),
	}
	if h.OldRole != nil {
		v.OldRole = h.OldRole.Title
	}
	if h.NewRole != nil {
		v.NewRole = h.NewRole.Title
	}
	return v
}
