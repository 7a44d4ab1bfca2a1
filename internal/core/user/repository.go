package user

import (
	"context"
	"time"
)

// Repository はユーザーエンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*User, string, error)

	Count(ctx context.Context) (int, error)
	CountByTier(ctx context.Context) (map[Tier]int, error)
	// ListWithoutEmployee は社員プロファイルを持たないユーザーを作成日の降順で返します。
	ListWithoutEmployee(ctx context.Context, limit int) ([]*User, error)
	ListCreatedSince(ctx context.Context, since time.Time, limit int) ([]*User, error)
	// SyncTeamLeadTiers は部下の有無に合わせて employee / team_lead 区分を付け替えます。
	SyncTeamLeadTiers(ctx context.Context, updatedAt time.Time) (SyncResult, error)
}

// ListUsersFilter は一覧取得時の条件です。
type ListUsersFilter struct {
	Status *Status
	Tier   *Tier
	Limit  int
	Offset int
}
