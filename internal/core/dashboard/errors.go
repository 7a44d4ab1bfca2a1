package dashboard

import "errors"

var (
	// ErrEmployeeProfileNotFound はユーザーに社員プロファイルがない場合に返されます。
	ErrEmployeeProfileNotFound = errors.New("dashboard: employee profile not found")
	// ErrInactiveEmployee は退職済み社員がダッシュボードを開こうとした場合に返されます。
	ErrInactiveEmployee = errors.New("dashboard: employee is not active")
	// ErrInactiveUser は停止中のユーザーの場合に返されます。
	ErrInactiveUser = errors.New("dashboard: user is not active")
	// ErrNotTeamLead は部下を持たない社員がチームリーダー画面を要求した場合に返されます。
	ErrNotTeamLead = errors.New("dashboard: employee does not lead a team")
)
