package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Seniority は社員の等級です。
type Seniority string

const (
	SeniorityJunior Seniority = "JUNIOR"
	SeniorityMid    Seniority = "MID"
	SenioritySenior Seniority = "SENIOR"
)

// Rank は等級の順位を返します。JUNIOR(1) < MID(2) < SENIOR(3)、未知の値は 0 です。
func (s Seniority) Rank() int {
	switch s {
	case SeniorityJunior:
		return 1
	case SeniorityMid:
		return 2
	case SenioritySenior:
		return 3
	default:
		return 0
	}
}

// Valid は既知の等級かどうかを返します。
func (s Seniority) Valid() bool {
	return s.Rank() > 0
}

// ParseSeniority は大文字小文字を区別せずに等級を解釈します。
func ParseSeniority(raw string) (Seniority, error) {
	s := Seniority(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidSeniority
	}
	return s, nil
}

// Seniorities は全等級を順位順に返します。
func Seniorities() []Seniority {
	return []Seniority{SeniorityJunior, SeniorityMid, SenioritySenior}
}

// RoleRef は社員・履歴から参照される職種のスナップショットです。
type RoleRef struct {
	ID             string
	Title          string
	DepartmentID   string
	DepartmentName string
}

// Employee は社員の現在状態を表す集約ルートです。
// CurrentSalary・Role・Seniority は最新の変更履歴の値と一致します。
type Employee struct {
	ID              string
	UserID          string
	FullName        string
	Role            RoleRef
	Seniority       Seniority
	CurrentSalary   decimal.Decimal
	HireDate        time.Time
	TerminationDate *time.Time
	ManagerID       *string
	IsTeamLead      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive は退職日が設定されていなければ true を返します。
func (e *Employee) IsActive() bool {
	return e.TerminationDate == nil
}
