package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	pgdb "github.com/ivanvallejoss/hr-system/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const employeeColumns = `
               e.id,
               e.user_id,
               e.full_name,
               r.id,
               r.title,
               d.id,
               d.name,
               e.seniority_level,
               e.current_salary::text,
               e.hire_date,
               e.termination_date,
               e.manager_id,
               EXISTS (SELECT 1 FROM employees sub WHERE sub.manager_id = e.id),
               e.created_at,
               e.updated_at`

const employeeJoins = `
          JOIN roles r ON r.id = e.role_id
          JOIN departments d ON d.id = r.department_id`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH e AS (
            INSERT INTO employees (user_id, full_name, role_id, seniority_level, current_salary, hire_date, manager_id, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)
            RETURNING *
        )
        SELECT`+employeeColumns+`
          FROM e`+employeeJoins,
		e.UserID,
		e.FullName,
		e.Role.ID,
		string(e.Seniority),
		e.CurrentSalary.StringFixed(2),
		dateOnly(e.HireDate),
		nullableString(e.ManagerID),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	if !found {
		return nil, employee.ErrRoleNotFound
	}
	return created, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, bool, error) {
	return r.findOne(ctx, `
        SELECT`+employeeColumns+`
          FROM employees e`+employeeJoins+`
         WHERE e.id = $1
         LIMIT 1
    `, id)
}

// FindByIDForUpdate は社員行をロックして取得します。
func (r *EmployeeRepository) FindByIDForUpdate(ctx context.Context, id string) (*employee.Employee, bool, error) {
	return r.findOne(ctx, `
        SELECT`+employeeColumns+`
          FROM employees e`+employeeJoins+`
         WHERE e.id = $1
           FOR UPDATE OF e
    `, id)
}

// FindByUserID はユーザー ID で社員を取得します。
func (r *EmployeeRepository) FindByUserID(ctx context.Context, userID string) (*employee.Employee, bool, error) {
	return r.findOne(ctx, `
        SELECT`+employeeColumns+`
          FROM employees e`+employeeJoins+`
         WHERE e.user_id = $1
         LIMIT 1
    `, userID)
}

func (r *EmployeeRepository) findOne(ctx context.Context, query string, args ...any) (*employee.Employee, bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	emp, found, err := scanEmployee(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, false, translateEmployeePgError(err)
	}
	return emp, found, nil
}

// List は社員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.ActiveOnly {
		conditions = append(conditions, "e.termination_date IS NULL")
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		conditions = append(conditions, "r.department_id = "+placeholder(args))
	}
	if filter.ManagerID != nil {
		args = append(args, *filter.ManagerID)
		conditions = append(conditions, "e.manager_id = "+placeholder(args))
	}

	args = append(args, limitWithBuffer)
	limitPlaceholder := placeholder(args)
	args = append(args, filter.Offset)
	offsetPlaceholder := placeholder(args)

	query := `
        SELECT` + employeeColumns + `
          FROM employees e` + employeeJoins + whereClause(conditions) + `
         ORDER BY e.full_name ASC, e.id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	employees, err := r.queryEmployees(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

// ListWithoutRecentRaises は cutoff 以降に給与変更がない在籍社員を返します。
func (r *EmployeeRepository) ListWithoutRecentRaises(ctx context.Context, cutoff time.Time) ([]*employee.Employee, error) {
	return r.queryEmployees(ctx, `
        SELECT`+employeeColumns+`
          FROM employees e`+employeeJoins+`
         WHERE e.termination_date IS NULL
           AND NOT EXISTS (
               SELECT 1 FROM salary_history sh
                WHERE sh.employee_id = e.id AND sh.effective_date >= $1
           )
         ORDER BY e.full_name ASC, e.id ASC
    `, dateOnly(cutoff))
}

func (r *EmployeeRepository) queryEmployees(ctx context.Context, query string, args ...any) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, _, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return employees, nil
}

// UpdateSalary は現在給与のみを更新します。
func (r *EmployeeRepository) UpdateSalary(ctx context.Context, id string, salary decimal.Decimal, updatedAt time.Time) error {
	return r.execUpdate(ctx, `
        UPDATE employees
           SET current_salary = $1::numeric,
               updated_at = $2
         WHERE id = $3
    `, salary.StringFixed(2), updatedAt, id)
}

// UpdateRole は職種と等級のみを更新します。
func (r *EmployeeRepository) UpdateRole(ctx context.Context, id, roleID string, seniority employee.Seniority, updatedAt time.Time) error {
	return r.execUpdate(ctx, `
        UPDATE employees
           SET role_id = $1,
               seniority_level = $2,
               updated_at = $3
         WHERE id = $4
    `, roleID, string(seniority), updatedAt, id)
}

// UpdateTermination は退職日を設定します。
func (r *EmployeeRepository) UpdateTermination(ctx context.Context, id string, terminationDate time.Time, updatedAt time.Time) error {
	return r.execUpdate(ctx, `
        UPDATE employees
           SET termination_date = $1,
               updated_at = $2
         WHERE id = $3
    `, dateOnly(terminationDate), updatedAt, id)
}

func (r *EmployeeRepository) execUpdate(ctx context.Context, query string, args ...any) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, bool, error) {
	var (
		id              string
		userID          string
		fullName        string
		roleID          string
		roleTitle       string
		departmentID    string
		departmentName  string
		seniority       string
		salary          string
		hireDate        time.Time
		terminationDate sql.NullTime
		managerID       sql.NullString
		isTeamLead      bool
		createdAt       time.Time
		updatedAt       time.Time
	)

	if err := row.Scan(
		&id,
		&userID,
		&fullName,
		&roleID,
		&roleTitle,
		&departmentID,
		&departmentName,
		&seniority,
		&salary,
		&hireDate,
		&terminationDate,
		&managerID,
		&isTeamLead,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	currentSalary, err := parseDecimal(salary)
	if err != nil {
		return nil, false, err
	}

	return &employee.Employee{
		ID:       id,
		UserID:   userID,
		FullName: fullName,
		Role: employee.RoleRef{
			ID:             roleID,
			Title:          roleTitle,
			DepartmentID:   departmentID,
			DepartmentName: departmentName,
		},
		Seniority:       employee.Seniority(seniority),
		CurrentSalary:   currentSalary,
		HireDate:        dateOnly(hireDate),
		TerminationDate: datePtr(terminationDate),
		ManagerID:       stringPtr(managerID),
		IsTeamLead:      isTeamLead,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, true, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrUserAlreadyEmployed
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "employees_role_id_fkey":
				return employee.ErrRoleNotFound
			case "employees_manager_id_fkey":
				return employee.ErrManagerNotFound
			case "employees_user_id_fkey":
				return employee.ErrInvalidUserID
			default:
				return err
			}
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "employees_salary_check":
				return employee.ErrNonPositiveSalary
			case "employees_termination_check":
				return employee.ErrTerminationBeforeHire
			case "employees_seniority_check":
				return employee.ErrInvalidSeniority
			default:
				return err
			}
		}
	}

	return err
}
