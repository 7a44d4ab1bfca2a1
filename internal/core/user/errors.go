package user

import "errors"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = errors.New("user: not found")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = errors.New("user: email already exists")
	// ErrUserHasEmployee は社員プロファイルを持つユーザーを削除しようとした場合に返却されます。
	ErrUserHasEmployee = errors.New("user: user has an employee profile")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("user: invalid email")
	// ErrInvalidName は名前が不正な場合に返却されます。
	ErrInvalidName = errors.New("user: invalid name")
	// ErrInvalidStatus はステータスが不正な場合に返却されます。
	ErrInvalidStatus = errors.New("user: invalid status")
	// ErrInvalidTier は区分が不正な場合に返却されます。
	ErrInvalidTier = errors.New("user: invalid tier")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("user: invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("user: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("user: invalid page token")
)
