package user

import (
	"strings"
	"time"
)

// Status はユーザーの状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Tier はアカウントの権限区分です。ダッシュボードの振り分けと操作権限に使われます。
type Tier string

const (
	TierEmployee Tier = "employee"
	TierTeamLead Tier = "team_lead"
	TierHR       Tier = "hr"
	TierAdmin    Tier = "admin"
)

// Tiers は定義済みの区分を権限の弱い順に返します。
func Tiers() []Tier {
	return []Tier{TierEmployee, TierTeamLead, TierHR, TierAdmin}
}

func (t Tier) Valid() bool {
	switch t {
	case TierEmployee, TierTeamLead, TierHR, TierAdmin:
		return true
	default:
		return false
	}
}

// ParseTier は大文字小文字と前後の空白を無視して区分を解釈します。
func ParseTier(raw string) (Tier, error) {
	tier := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if !tier.Valid() {
		return "", ErrInvalidTier
	}
	return tier, nil
}

// User は社員プロファイルに紐づく認証アカウントです。
type User struct {
	ID        string
	Email     string
	Name      string
	Status    Status
	Tier      Tier
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == StatusActive
}

// TierCount は区分ごとのユーザー数です。
type TierCount struct {
	Tier  Tier `json:"tier"`
	Count int  `json:"count"`
}

// SyncResult はチームリーダー区分の同期結果です。
type SyncResult struct {
	Promoted int
	Demoted  int
}
