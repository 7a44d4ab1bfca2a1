package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/organization"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

var roleRowColumns = []string{"id", "title", "department_id", "department_name", "description", "created_at", "updated_at"}

func TestOrganizationRepository_CreateDepartment(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewOrganizationRepository(mock)
	now := time.Now().UTC()
	budget := decimal.RequireFromString("500000")

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO departments")).
		WithArgs("IT", nil, "500000.00", nil, now, now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "budget", "manager_id", "created_at", "updated_at"}).
			AddRow("dept-1", "IT", nil, "500000.00", nil, now, now))

	created, err := repo.CreateDepartment(context.Background(), &organization.Department{
		Name:      "IT",
		Budget:    &budget,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}
	if created.Budget == nil || !created.Budget.Equal(budget) {
		t.Fatalf("unexpected budget %v", created.Budget)
	}
	if created.Description != nil || created.ManagerID != nil {
		t.Fatalf("expected nullable columns to be nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrganizationRepository_CreateDepartment_DuplicateName(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewOrganizationRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO departments")).
		WithArgs("IT", nil, nil, nil, now, now).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "departments_name_key"})

	_, err = repo.CreateDepartment(context.Background(), &organization.Department{Name: "IT", CreatedAt: now, UpdatedAt: now})
	if !errors.Is(err, organization.ErrDepartmentNameExists) {
		t.Fatalf("expected ErrDepartmentNameExists, got %v", err)
	}
}

func TestOrganizationRepository_FindRole(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewOrganizationRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = $1")).
		WithArgs("role-1").
		WillReturnRows(pgxmock.NewRows(roleRowColumns).AddRow("role-1", "Developer", "dept-1", "IT", nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = $1")).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(roleRowColumns))

	ref, found, err := repo.FindRole(context.Background(), "role-1")
	if err != nil || !found {
		t.Fatalf("expected role to be found, got %v %v", found, err)
	}
	if ref.Title != "Developer" || ref.DepartmentName != "IT" {
		t.Fatalf("unexpected role ref %+v", ref)
	}

	ref, found, err = repo.FindRole(context.Background(), "missing")
	if err != nil || found || ref != nil {
		t.Fatalf("expected not found without error, got %+v %v %v", ref, found, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrganizationRepository_ListRoles_ByDepartment(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewOrganizationRepository(mock)
	now := time.Now().UTC()
	departmentID := "dept-1"

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.department_id = $1")).
		WithArgs(departmentID, 2, 0).
		WillReturnRows(pgxmock.NewRows(roleRowColumns).
			AddRow("role-1", "Developer", "dept-1", "IT", nil, now, now).
			AddRow("role-2", "Senior Developer", "dept-1", "IT", nil, now, now))

	roles, nextToken, err := repo.ListRoles(context.Background(), organization.ListRolesFilter{DepartmentID: &departmentID, Limit: 1})
	if err != nil {
		t.Fatalf("ListRoles returned error: %v", err)
	}
	if len(roles) != 1 || nextToken != "1" {
		t.Fatalf("unexpected page: %d roles, token %q", len(roles), nextToken)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrganizationRepository_DeleteRole_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewOrganizationRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM roles")).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.DeleteRole(context.Background(), "missing"); !errors.Is(err, organization.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}
