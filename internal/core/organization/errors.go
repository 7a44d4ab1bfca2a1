package organization

import "errors"

var (
	// ErrDepartmentNotFound は部署が存在しない場合に返却されます。
	ErrDepartmentNotFound = errors.New("organization: department not found")
	// ErrRoleNotFound は職種が存在しない場合に返却されます。
	ErrRoleNotFound = errors.New("organization: role not found")
	// ErrManagerNotFound は部署責任者に指定した社員が存在しない場合に返却されます。
	ErrManagerNotFound = errors.New("organization: manager not found")
	// ErrDepartmentNameExists は部署名の重複時に返却されます。
	ErrDepartmentNameExists = errors.New("organization: department name already exists")
	// ErrRoleInUse は社員が参照している職種を削除しようとした場合に返却されます。
	ErrRoleInUse = errors.New("organization: role is assigned to employees")
	// ErrInvalidName は部署名が不正な場合に返却されます。
	ErrInvalidName = errors.New("organization: invalid name")
	// ErrInvalidTitle は職種名が不正な場合に返却されます。
	ErrInvalidTitle = errors.New("organization: invalid title")
	// ErrInvalidBudget は予算が負の場合に返却されます。
	ErrInvalidBudget = errors.New("organization: invalid budget")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("organization: invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("organization: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("organization: invalid page token")
)
