package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/organization"
	pgdb "github.com/ivanvallejoss/hr-system/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const departmentColumns = `id, name, description, budget::text, manager_id, created_at, updated_at`

const roleSelect = `
        SELECT r.id, r.title, r.department_id, d.name, r.description, r.created_at, r.updated_at
          FROM roles r
          JOIN departments d ON d.id = r.department_id`

// OrganizationRepository は部署・職種の PostgreSQL 実装です。
// 社員サービス向けの職種参照 (employee.RoleLookup) も提供します。
type OrganizationRepository struct {
	pool pgdb.Queryer
}

// NewOrganizationRepository は OrganizationRepository を生成します。
func NewOrganizationRepository(pool pgdb.Queryer) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

// CreateDepartment は部署を新規作成します。
func (r *OrganizationRepository) CreateDepartment(ctx context.Context, d *organization.Department) (*organization.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO departments (name, description, budget, manager_id, created_at, updated_at)
        VALUES ($1, $2, $3::numeric, $4, $5, $6)
        RETURNING `+departmentColumns,
		d.Name, nullableString(d.Description), nullableDecimal(d.Budget), nullableString(d.ManagerID), d.CreatedAt, d.UpdatedAt)

	created, err := scanDepartment(row)
	if err != nil {
		return nil, translateOrganizationPgError(err)
	}
	return created, nil
}

// FindDepartmentByID は ID で部署を取得します。
func (r *OrganizationRepository) FindDepartmentByID(ctx context.Context, id string) (*organization.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+departmentColumns+`
          FROM departments
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanDepartment(row)
	if err != nil {
		return nil, translateOrganizationPgError(err)
	}
	return found, nil
}

// FindDepartmentByName は部署名で部署を取得します。
func (r *OrganizationRepository) FindDepartmentByName(ctx context.Context, name string) (*organization.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+departmentColumns+`
          FROM departments
         WHERE name = $1
         LIMIT 1
    `, name)

	found, err := scanDepartment(row)
	if err != nil {
		return nil, translateOrganizationPgError(err)
	}
	return found, nil
}

// ListDepartments は部署名順に部署一覧を返します。
func (r *OrganizationRepository) ListDepartments(ctx context.Context, filter organization.ListFilter) ([]*organization.Department, string, error) {
	if filter.Limit <= 0 {
		return nil, "", organization.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", organization.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+departmentColumns+`
          FROM departments
         ORDER BY name ASC, id ASC
         LIMIT $1
        OFFSET $2
    `, limitWithBuffer, filter.Offset)
	if err != nil {
		return nil, "", translateOrganizationPgError(err)
	}
	defer rows.Close()

	var departments []*organization.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, "", translateOrganizationPgError(err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateOrganizationPgError(err)
	}

	var nextToken string
	if len(departments) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		departments = departments[:filter.Limit]
	}
	return departments, nextToken, nil
}

// SetDepartmentManager は部署責任者を設定します。managerID が nil の場合は解除します。
func (r *OrganizationRepository) SetDepartmentManager(ctx context.Context, departmentID string, managerID *string, updatedAt time.Time) (*organization.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE departments
           SET manager_id = $1,
               updated_at = $2
         WHERE id = $3
        RETURNING `+departmentColumns,
		nullableString(managerID), updatedAt, departmentID)

	updated, err := scanDepartment(row)
	if err != nil {
		return nil, translateOrganizationPgError(err)
	}
	return updated, nil
}

// CreateRole は職種を新規作成します。
func (r *OrganizationRepository) CreateRole(ctx context.Context, role *organization.Role) (*organization.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH r AS (
            INSERT INTO roles (title, department_id, description, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING *
        )
        SELECT r.id, r.title, r.department_id, d.name, r.description, r.created_at, r.updated_at
          FROM r
          JOIN departments d ON d.id = r.department_id
    `, role.Title, role.DepartmentID, nullableString(role.Description), role.CreatedAt, role.UpdatedAt)

	created, err := scanRole(row)
	if err != nil {
		return nil, translateOrganizationPgError(err)
	}
	return created, nil
}

// FindRoleByID は ID で職種を取得します。
func (r *OrganizationRepository) FindRoleByID(ctx context.Context, id string) (*organization.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, roleSelect+`
         WHERE r.id = $1
         LIMIT 1
    `, id)

	found, err := scanRole(row)
	if err != nil {
		return nil, translateOrganizationPgError(err)
	}
	return found, nil
}

// FindRole は社員サービス向けに職種参照を返します。存在しない場合は (nil, false, nil) です。
func (r *OrganizationRepository) FindRole(ctx context.Context, id string) (*employee.RoleRef, bool, error) {
	role, err := r.FindRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, organization.ErrRoleNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &employee.RoleRef{
		ID:             role.ID,
		Title:          role.Title,
		DepartmentID:   role.DepartmentID,
		DepartmentName: role.DepartmentName,
	}, true, nil
}

// ListRoles は職種一覧を返します。
func (r *OrganizationRepository) ListRoles(ctx context.Context, filter organization.ListRolesFilter) ([]*organization.Role, string, error) {
	if filter.Limit <= 0 {
		return nil, "", organization.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", organization.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	conditions := make([]string, 0, 1)

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		conditions = append(conditions, "r.department_id = "+placeholder(args))
	}

	args = append(args, limitWithBuffer)
	limitPlaceholder := placeholder(args)
	args = append(args, filter.Offset)
	offsetPlaceholder := placeholder(args)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, roleSelect+whereClause(conditions)+`
         ORDER BY d.name ASC, r.title ASC, r.id ASC
         LIMIT `+limitPlaceholder+`
        OFFSET `+offsetPlaceholder+`
    `, args...)
	if err != nil {
		return nil, "", translateOrganizationPgError(err)
	}
	defer rows.Close()

	var roles []*organization.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, "", translateOrganizationPgError(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateOrganizationPgError(err)
	}

	var nextToken string
	if len(roles) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		roles = roles[:filter.Limit]
	}
	return roles, nextToken, nil
}

// DeleteRole は職種を削除します。履歴側の参照は NULL になります。
func (r *OrganizationRepository) DeleteRole(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return translateOrganizationPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrRoleNotFound
	}
	return nil
}

// CountEmployeesWithRole は職種を現在参照している社員数を返します。
func (r *OrganizationRepository) CountEmployeesWithRole(ctx context.Context, roleID string) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var count int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE role_id = $1`, roleID).Scan(&count); err != nil {
		return 0, translateOrganizationPgError(err)
	}
	return count, nil
}

func scanDepartment(row pgx.Row) (*organization.Department, error) {
	var (
		id                   string
		name                 string
		description          sql.NullString
		budget               sql.NullString
		managerID            sql.NullString
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &description, &budget, &managerID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organization.ErrDepartmentNotFound
		}
		return nil, err
	}

	parsedBudget, err := parseNullableDecimal(budget)
	if err != nil {
		return nil, err
	}

	return &organization.Department{
		ID:          id,
		Name:        name,
		Description: stringPtr(description),
		Budget:      parsedBudget,
		ManagerID:   stringPtr(managerID),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func scanRole(row pgx.Row) (*organization.Role, error) {
	var (
		role        organization.Role
		description sql.NullString
	)

	if err := row.Scan(&role.ID, &role.Title, &role.DepartmentID, &role.DepartmentName, &description, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organization.ErrRoleNotFound
		}
		return nil, err
	}

	role.Description = stringPtr(description)
	return &role, nil
}

func translateOrganizationPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == "departments_name_key" {
				return organization.ErrDepartmentNameExists
			}
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "departments_manager_id_fkey":
				return organization.ErrManagerNotFound
			case "roles_department_id_fkey":
				return organization.ErrDepartmentNotFound
			case "employees_role_id_fkey":
				return organization.ErrRoleInUse
			}
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "departments_name_check":
				return organization.ErrInvalidName
			case "departments_budget_check":
				return organization.ErrInvalidBudget
			case "roles_title_check":
				return organization.ErrInvalidTitle
			}
		}
	}

	return err
}
