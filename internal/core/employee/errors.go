package employee

import "errors"

// エラー種別。具体的なエラーはいずれかの種別をラップし、errors.Is で判定できます。
var (
	// ErrValueConflict は新しい値が現在値と同じ場合の種別です。
	ErrValueConflict = errors.New("employee: value conflict")
	// ErrInvalidValue は値がドメイン制約に違反する場合の種別です。
	ErrInvalidValue = errors.New("employee: invalid value")
	// ErrTemporalOrder は実効日付が入社日より前の場合の種別です。
	ErrTemporalOrder = errors.New("employee: temporal order violation")
	// ErrNotFound は参照先の社員・職種が存在しない場合の種別です。
	ErrNotFound = errors.New("employee: not found")
)

var (
	ErrSameSalary              = newKindError(ErrValueConflict, "employee: new salary must be different from current salary")
	ErrNoRoleChange            = newKindError(ErrValueConflict, "employee: must change either role or seniority")
	ErrNonPositiveSalary       = newKindError(ErrInvalidValue, "employee: salary must be positive")
	ErrNegativeSalary          = newKindError(ErrInvalidValue, "employee: salaries cannot be negative")
	ErrSalaryOutOfRange        = newKindError(ErrInvalidValue, "employee: salary exceeds 99999999.99")
	ErrInvalidSeniority        = newKindError(ErrInvalidValue, "employee: invalid seniority level")
	ErrEffectiveDateBeforeHire = newKindError(ErrTemporalOrder, "employee: effective date cannot be before hire date")
	ErrTerminationBeforeHire   = newKindError(ErrTemporalOrder, "employee: termination date cannot be before hire date")
	ErrEmployeeNotFound        = newKindError(ErrNotFound, "employee: employee not found")
	ErrRoleNotFound            = newKindError(ErrNotFound, "employee: role not found")
	ErrManagerNotFound         = newKindError(ErrNotFound, "employee: manager not found")
)

var (
	ErrInvalidID           = errors.New("employee: invalid id")
	ErrInvalidUserID       = errors.New("employee: invalid user id")
	ErrInvalidName         = errors.New("employee: invalid full name")
	ErrInvalidDateRange    = errors.New("employee: start date must not be after end date")
	ErrInvalidPageSize     = errors.New("employee: invalid page size")
	ErrInvalidPageToken    = errors.New("employee: invalid page token")
	ErrUserAlreadyEmployed = errors.New("employee: user already has an employee profile")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}
