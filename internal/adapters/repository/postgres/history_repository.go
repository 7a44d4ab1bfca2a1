package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	pgdb "github.com/ivanvallejoss/hr-system/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const salaryHistoryColumns = `
               sh.id,
               sh.employee_id,
               e.full_name,
               sh.old_salary::text,
               sh.new_salary::text,
               sh.changed_by,
               sh.change_reason,
               sh.effective_date,
               sh.created_at`

const roleHistoryColumns = `
               rh.id,
               rh.employee_id,
               e.full_name,
               orl.id,
               orl.title,
               od.id,
               od.name,
               nrl.id,
               nrl.title,
               nd.id,
               nd.name,
               rh.old_seniority,
               rh.new_seniority,
               rh.changed_by,
               rh.change_reason,
               rh.effective_date,
               rh.created_at`

const roleHistoryJoins = `
          JOIN employees e ON e.id = rh.employee_id
     LEFT JOIN roles orl ON orl.id = rh.old_role_id
     LEFT JOIN departments od ON od.id = orl.department_id
     LEFT JOIN roles nrl ON nrl.id = rh.new_role_id
     LEFT JOIN departments nd ON nd.id = nrl.department_id`

// HistoryRepository は給与・職種変更履歴の追記専用リポジトリです。
type HistoryRepository struct {
	pool pgdb.Queryer
}

// NewHistoryRepository は HistoryRepository を生成します。
func NewHistoryRepository(pool pgdb.Queryer) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// CreateSalaryHistory は給与変更履歴を追加します。
func (r *HistoryRepository) CreateSalaryHistory(ctx context.Context, h *employee.SalaryHistory) (*employee.SalaryHistory, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var createdAt time.Time
	if err := exec.QueryRow(ctx, `
        INSERT INTO salary_history (id, employee_id, old_salary, new_salary, changed_by, change_reason, effective_date, created_at)
        VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7, $8)
        RETURNING created_at
    `,
		h.ID,
		h.EmployeeID,
		h.OldSalary.StringFixed(2),
		h.NewSalary.StringFixed(2),
		nullableString(h.ChangedBy),
		h.ChangeReason,
		dateOnly(h.EffectiveDate),
		h.CreatedAt,
	).Scan(&createdAt); err != nil {
		return nil, translateHistoryPgError(err)
	}

	created := *h
	created.EffectiveDate = dateOnly(h.EffectiveDate)
	created.CreatedAt = createdAt
	return &created, nil
}

// CreateRoleHistory は職種・等級変更履歴を追加します。
func (r *HistoryRepository) CreateRoleHistory(ctx context.Context, h *employee.RoleHistory) (*employee.RoleHistory, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var createdAt time.Time
	if err := exec.QueryRow(ctx, `
        INSERT INTO role_history (id, employee_id, old_role_id, new_role_id, old_seniority, new_seniority, changed_by, change_reason, effective_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at
    `,
		h.ID,
		h.EmployeeID,
		roleRefID(h.OldRole),
		roleRefID(h.NewRole),
		string(h.OldSeniority),
		string(h.NewSeniority),
		nullableString(h.ChangedBy),
		h.ChangeReason,
		dateOnly(h.EffectiveDate),
		h.CreatedAt,
	).Scan(&createdAt); err != nil {
		return nil, translateHistoryPgError(err)
	}

	created := *h
	created.EffectiveDate = dateOnly(h.EffectiveDate)
	created.CreatedAt = createdAt
	return &created, nil
}

// ListSalaryHistory は社員の給与変更履歴を新しい順に返します。
func (r *HistoryRepository) ListSalaryHistory(ctx context.Context, filter employee.HistoryFilter) ([]*employee.SalaryHistory, error) {
	args := []any{filter.EmployeeID}
	conditions := []string{"sh.employee_id = $1"}
	args, conditions = appendDateRange(args, conditions, "sh.effective_date", filter.StartDate, filter.EndDate)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+salaryHistoryColumns+`
          FROM salary_history sh
          JOIN employees e ON e.id = sh.employee_id
         WHERE `+strings.Join(conditions, " AND ")+`
         ORDER BY sh.effective_date DESC, sh.created_at DESC
    `, args...)
	if err != nil {
		return nil, translateHistoryPgError(err)
	}
	defer rows.Close()

	records := make([]*employee.SalaryHistory, 0)
	for rows.Next() {
		h, err := scanSalaryHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, translateHistoryPgError(err)
	}
	return records, nil
}

// ListRoleHistory は社員の職種変更履歴を新しい順に返します。
func (r *HistoryRepository) ListRoleHistory(ctx context.Context, filter employee.HistoryFilter) ([]*employee.RoleHistory, error) {
	args := []any{filter.EmployeeID}
	conditions := []string{"rh.employee_id = $1"}
	args, conditions = appendDateRange(args, conditions, "rh.effective_date", filter.StartDate, filter.EndDate)

	return queryRoleHistory(ctx, pgdb.QueryerFromContext(ctx, r.pool), `
        SELECT`+roleHistoryColumns+`
          FROM role_history rh`+roleHistoryJoins+`
         WHERE `+strings.Join(conditions, " AND ")+`
         ORDER BY rh.effective_date DESC, rh.created_at DESC
    `, args...)
}

func queryRoleHistory(ctx context.Context, exec pgdb.Queryer, query string, args ...any) ([]*employee.RoleHistory, error) {
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateHistoryPgError(err)
	}
	defer rows.Close()

	records := make([]*employee.RoleHistory, 0)
	for rows.Next() {
		h, err := scanRoleHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, translateHistoryPgError(err)
	}
	return records, nil
}

func appendDateRange(args []any, conditions []string, column string, start, end *time.Time) ([]any, []string) {
	if start != nil {
		args = append(args, dateOnly(*start))
		conditions = append(conditions, column+" >= "+placeholder(args))
	}
	if end != nil {
		args = append(args, dateOnly(*end))
		conditions = append(conditions, column+" <= "+placeholder(args))
	}
	return args, conditions
}

func scanSalaryHistory(row pgx.Row) (*employee.SalaryHistory, error) {
	var (
		h         employee.SalaryHistory
		oldSalary string
		newSalary string
		changedBy sql.NullString
	)

	if err := row.Scan(
		&h.ID,
		&h.EmployeeID,
		&h.EmployeeName,
		&oldSalary,
		&newSalary,
		&changedBy,
		&h.ChangeReason,
		&h.EffectiveDate,
		&h.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if h.OldSalary, err = parseDecimal(oldSalary); err != nil {
		return nil, err
	}
	if h.NewSalary, err = parseDecimal(newSalary); err != nil {
		return nil, err
	}
	h.ChangedBy = stringPtr(changedBy)
	h.EffectiveDate = dateOnly(h.EffectiveDate)
	return &h, nil
}

func scanRoleHistory(row pgx.Row) (*employee.RoleHistory, error) {
	var (
		h            employee.RoleHistory
		oldRoleID    sql.NullString
		oldTitle     sql.NullString
		oldDeptID    sql.NullString
		oldDeptName  sql.NullString
		newRoleID    sql.NullString
		newTitle     sql.NullString
		newDeptID    sql.NullString
		newDeptName  sql.NullString
		oldSeniority string
		newSeniority string
		changedBy    sql.NullString
	)

	if err := row.Scan(
		&h.ID,
		&h.EmployeeID,
		&h.EmployeeName,
		&oldRoleID,
		&oldTitle,
		&oldDeptID,
		&oldDeptName,
		&newRoleID,
		&newTitle,
		&newDeptID,
		&newDeptName,
		&oldSeniority,
		&newSeniority,
		&changedBy,
		&h.ChangeReason,
		&h.EffectiveDate,
		&h.CreatedAt,
	); err != nil {
		return nil, err
	}

	h.OldRole = roleRefFromColumns(oldRoleID, oldTitle, oldDeptID, oldDeptName)
	h.NewRole = roleRefFromColumns(newRoleID, newTitle, newDeptID, newDeptName)
	h.OldSeniority = employee.Seniority(oldSeniority)
	h.NewSeniority = employee.Seniority(newSeniority)
	h.ChangedBy = stringPtr(changedBy)
	h.EffectiveDate = dateOnly(h.EffectiveDate)
	return &h, nil
}

// 職種が削除済みの場合は nil。
func roleRefFromColumns(id, title, deptID, deptName sql.NullString) *employee.RoleRef {
	if !id.Valid {
		return nil
	}
	return &employee.RoleRef{
		ID:             id.String,
		Title:          title.String,
		DepartmentID:   deptID.String,
		DepartmentName: deptName.String,
	}
}

func roleRefID(ref *employee.RoleRef) any {
	if ref == nil {
		return nil
	}
	return ref.ID
}

func translateHistoryPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "salary_history_employee_id_fkey", "role_history_employee_id_fkey":
				return employee.ErrEmployeeNotFound
			case "role_history_old_role_id_fkey", "role_history_new_role_id_fkey":
				return employee.ErrRoleNotFound
			case "salary_history_changed_by_fkey", "role_history_changed_by_fkey":
				return employee.ErrInvalidUserID
			default:
				return err
			}
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "salary_history_values_check":
				return employee.ErrInvalidValue
			case "role_history_seniority_check":
				return employee.ErrInvalidSeniority
			default:
				return err
			}
		}
	}

	return err
}
