package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/ivanvallejoss/hr-system/internal/core/dashboard"
	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/organization"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	"github.com/ivanvallejoss/hr-system/internal/core/user"
	"github.com/ivanvallejoss/hr-system/internal/platform/authz"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	var validationErrs validator.ValidationErrors

	switch {
	case err == nil:
		return nil
	case errors.As(err, &validationErrs):
		return status.Error(codes.InvalidArgument, validationErrs.Error())
	case errors.Is(err, authz.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, authz.ErrForbidden),
		errors.Is(err, dashboard.ErrInactiveEmployee),
		errors.Is(err, dashboard.ErrInactiveUser),
		errors.Is(err, dashboard.ErrNotTeamLead):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, employee.ErrValueConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, employee.ErrInvalidValue),
		errors.Is(err, employee.ErrTemporalOrder),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidUserID),
		errors.Is(err, employee.ErrInvalidDateRange),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, report.ErrInvalidID),
		errors.Is(err, report.ErrInvalidDateRange),
		errors.Is(err, report.ErrInvalidYear),
		errors.Is(err, user.ErrInvalidID),
		errors.Is(err, organization.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrUserAlreadyEmployed):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, employee.ErrNotFound),
		errors.Is(err, dashboard.ErrEmployeeProfileNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, organization.ErrDepartmentNotFound),
		errors.Is(err, organization.ErrRoleNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
