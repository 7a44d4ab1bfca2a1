package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ivanvallejoss/hr-system/internal/adapters/export/xlsx"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	"github.com/spf13/cobra"
)

type reportFlags struct {
	employeeID   string
	departmentID string
	from         string
	to           string
	year         int
	xlsxPath     string
}

func (f *reportFlags) filter() (report.Filter, error) {
	start, err := parseDate(f.from)
	if err != nil {
		return report.Filter{}, err
	}
	end, err := parseDate(f.to)
	if err != nil {
		return report.Filter{}, err
	}
	filter := report.Filter{
		EmployeeID:   optional(f.employeeID),
		DepartmentID: optional(f.departmentID),
		StartDate:    start,
		EndDate:      end,
	}
	if f.year != 0 {
		year := f.year
		filter.Year = &year
	}
	return filter, nil
}

// export は --xlsx が指定された場合にファイルへ書き出し、書き出し先の概要を返します。
func (f *reportFlags) export(write func(io.Writer) error) (any, error) {
	out, err := os.Create(f.xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", f.xlsxPath, err)
	}
	if err := write(out); err != nil {
		_ = out.Close()
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", f.xlsxPath, err)
	}
	return map[string]string{"written": f.xlsxPath}, nil
}

func (c *cli) newReportCmd() *cobra.Command {
	flags := &reportFlags{}

	salary := &cobra.Command{
		Use:   "salary",
		Short: "Salary change report with monthly and per-role aggregates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				r, err := s.Reports.SalaryReport(ctx, filter)
				if err != nil {
					return nil, err
				}
				if flags.xlsxPath != "" {
					return flags.export(func(w io.Writer) error { return xlsx.WriteSalaryReport(w, r) })
				}
				return newSalaryReportView(r), nil
			})
		},
	}

	role := &cobra.Command{
		Use:   "role",
		Short: "Role change report with promotion and lateral move counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				r, err := s.Reports.RoleReport(ctx, filter)
				if err != nil {
					return nil, err
				}
				if flags.xlsxPath != "" {
					return flags.export(func(w io.Writer) error { return xlsx.WriteRoleReport(w, r) })
				}
				return newRoleReportView(r), nil
			})
		},
	}

	cmd := &cobra.Command{Use: "report", Short: "History reports"}
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.employeeID, "employee", "", "restrict to one employee ID")
	pf.StringVar(&flags.departmentID, "department", "", "restrict to a department ID")
	pf.StringVar(&flags.from, "from", "", "earliest effective date YYYY-MM-DD")
	pf.StringVar(&flags.to, "to", "", "latest effective date YYYY-MM-DD")
	pf.IntVar(&flags.year, "year", 0, "restrict to an effective year")
	pf.StringVar(&flags.xlsxPath, "xlsx", "", "write the report to this .xlsx file instead of stdout")
	cmd.AddCommand(salary, role)
	return cmd
}

func (c *cli) newStatsCmd() *cobra.Command {
	departments := &cobra.Command{
		Use:   "departments",
		Short: "Per-department headcount, payroll and budget status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Reports.DepartmentOverview(ctx)
			})
		},
	}

	company := &cobra.Command{
		Use:   "company",
		Short: "Company headcount by seniority",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Reports.CompanyOverview(ctx)
			})
		},
	}

	var days int
	hires := &cobra.Command{
		Use:   "recent-hires",
		Short: "Employees hired in the last N days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Reports.RecentHires(ctx, days)
			})
		},
	}
	hires.Flags().IntVar(&days, "days", report.DefaultRecentHireDays, "look-back window in days")

	cmd := &cobra.Command{Use: "stats", Short: "Cached dashboard aggregates"}
	cmd.AddCommand(departments, company, hires)
	return cmd
}

type salaryReportView struct {
	Total        int          `json:"total_changes"`
	Raises       int          `json:"raises"`
	Decreases    int          `json:"decreases"`
	Changes      []salaryView `json:"changes"`
	TopIncreases []salaryView `json:"top_increases"`
	ByMonth      any          `json:"by_month"`
	ByRole       any          `json:"by_role"`
}

func newSalaryReportView(r *report.SalaryReport) salaryReportView {
	v := salaryReportView{
		Total:     len(r.Changes),
		Raises:    r.Raises,
		Decreases: r.Decreases,
		ByMonth:   r.ByMonth,
		ByRole:    r.ByRole,
	}
	for _, c := range r.Changes {
		v.Changes = append(v.Changes, salaryRecord(c.SalaryHistory))
	}
	for _, c := range r.TopIncreases {
		v.TopIncreases = append(v.TopIncreases, salaryRecord(c.SalaryHistory))
	}
	return v
}

type roleReportView struct {
	Total        int        `json:"total_changes"`
	Promotions   int        `json:"promotions"`
	Demotions    int        `json:"demotions"`
	LateralMoves int        `json:"lateral_moves"`
	Changes      []roleView `json:"changes"`
	ByMonth      any        `json:"by_month"`
}

func newRoleReportView(r *report.RoleReport) roleReportView {
	v := roleReportView{
		Total:        len(r.Changes),
		Promotions:   r.Promotions,
		Demotions:    r.Demotions,
		LateralMoves: r.LateralMoves,
		ByMonth:      r.ByMonth,
	}
	for _, h := range r.Changes {
		v.Changes = append(v.Changes, roleRecord(h))
	}
	return v
}
