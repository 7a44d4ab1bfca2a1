package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	pgdb "github.com/ivanvallejoss/hr-system/internal/platform/db/postgres"
)

// ReportRepository はレポート・ダッシュボード用の読み取り専用クエリ実装です。
type ReportRepository struct {
	pool pgdb.Queryer
}

// NewReportRepository は ReportRepository を生成します。
func NewReportRepository(pool pgdb.Queryer) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// ListSalaryChanges は給与変更履歴を社員の現在の職種名付きで返します。
func (r *ReportRepository) ListSalaryChanges(ctx context.Context, filter report.Filter) ([]report.SalaryChange, error) {
	args := make([]any, 0, 5)
	conditions := make([]string, 0, 5)

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, "sh.employee_id = "+placeholder(args))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		conditions = append(conditions, "cr.department_id = "+placeholder(args))
	}
	args, conditions = appendDateRange(args, conditions, "sh.effective_date", filter.StartDate, filter.EndDate)
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, "EXTRACT(YEAR FROM sh.effective_date)::int = "+placeholder(args))
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+salaryHistoryColumns+`,
               cr.title
          FROM salary_history sh
          JOIN employees e ON e.id = sh.employee_id
          JOIN roles cr ON cr.id = e.role_id`+whereClause(conditions)+`
         ORDER BY sh.effective_date DESC, sh.created_at DESC
    `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := make([]report.SalaryChange, 0)
	for rows.Next() {
		var (
			h         employee.SalaryHistory
			oldSalary string
			newSalary string
			changedBy sql.NullString
			roleTitle string
		)
		if err := rows.Scan(
			&h.ID,
			&h.EmployeeID,
			&h.EmployeeName,
			&oldSalary,
			&newSalary,
			&changedBy,
			&h.ChangeReason,
			&h.EffectiveDate,
			&h.CreatedAt,
			&roleTitle,
		); err != nil {
			return nil, err
		}
		if h.OldSalary, err = parseDecimal(oldSalary); err != nil {
			return nil, err
		}
		if h.NewSalary, err = parseDecimal(newSalary); err != nil {
			return nil, err
		}
		h.ChangedBy = stringPtr(changedBy)
		h.EffectiveDate = dateOnly(h.EffectiveDate)

		changes = append(changes, report.SalaryChange{SalaryHistory: &h, RoleTitle: roleTitle})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// ListRoleChanges は職種変更履歴を返します。部署条件は新旧どちらかの職種に一致するものです。
func (r *ReportRepository) ListRoleChanges(ctx context.Context, filter report.Filter) ([]*employee.RoleHistory, error) {
	args := make([]any, 0, 5)
	conditions := make([]string, 0, 5)

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, "rh.employee_id = "+placeholder(args))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		p := placeholder(args)
		conditions = append(conditions, "(orl.department_id = "+p+" OR nrl.department_id = "+p+")")
	}
	args, conditions = appendDateRange(args, conditions, "rh.effective_date", filter.StartDate, filter.EndDate)
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, "EXTRACT(YEAR FROM rh.effective_date)::int = "+placeholder(args))
	}

	return queryRoleHistory(ctx, pgdb.QueryerFromContext(ctx, r.pool), `
        SELECT`+roleHistoryColumns+`
          FROM role_history rh`+roleHistoryJoins+whereClause(conditions)+`
         ORDER BY rh.effective_date DESC, rh.created_at DESC
    `, args...)
}

// ListDepartmentStats は部署ごとの在籍社員数と給与総額を返します。
func (r *ReportRepository) ListDepartmentStats(ctx context.Context) ([]report.DepartmentStats, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT d.id,
               d.name,
               d.budget::text,
               m.full_name,
               COUNT(e.id),
               COALESCE(SUM(e.current_salary), 0)::text
          FROM departments d
     LEFT JOIN employees m ON m.id = d.manager_id
     LEFT JOIN roles r ON r.department_id = d.id
     LEFT JOIN employees e ON e.role_id = r.id AND e.termination_date IS NULL
         GROUP BY d.id, d.name, d.budget, m.full_name
         ORDER BY d.name ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]report.DepartmentStats, 0)
	for rows.Next() {
		var (
			st          report.DepartmentStats
			budget      sql.NullString
			managerName sql.NullString
			total       string
		)
		if err := rows.Scan(&st.DepartmentID, &st.Name, &budget, &managerName, &st.EmployeeCount, &total); err != nil {
			return nil, err
		}
		if st.Budget, err = parseNullableDecimal(budget); err != nil {
			return nil, err
		}
		if st.TotalSalaries, err = parseDecimal(total); err != nil {
			return nil, err
		}
		st.ManagerName = stringPtr(managerName)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// CountActiveBySeniority は在籍社員を等級別に数えます。
func (r *ReportRepository) CountActiveBySeniority(ctx context.Context) (map[employee.Seniority]int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT seniority_level, COUNT(*)
          FROM employees
         WHERE termination_date IS NULL
         GROUP BY seniority_level
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[employee.Seniority]int)
	for rows.Next() {
		var (
			level string
			count int
		)
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		counts[employee.Seniority(level)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// ListHiresSince は since 以降の入社者を入社日の降順で返します。
func (r *ReportRepository) ListHiresSince(ctx context.Context, since time.Time) ([]report.Hire, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT e.id, e.full_name, r.title, d.name, e.hire_date
          FROM employees e
          JOIN roles r ON r.id = e.role_id
          JOIN departments d ON d.id = r.department_id
         WHERE e.hire_date >= $1
         ORDER BY e.hire_date DESC, e.full_name ASC
    `, dateOnly(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hires := make([]report.Hire, 0)
	for rows.Next() {
		var h report.Hire
		if err := rows.Scan(&h.EmployeeID, &h.FullName, &h.RoleTitle, &h.DepartmentName, &h.HireDate); err != nil {
			return nil, err
		}
		h.HireDate = dateOnly(h.HireDate)
		hires = append(hires, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hires, nil
}
