package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200

	DefaultRecentUserDays       = 30
	DefaultRecentUserLimit      = 10
	DefaultWithoutEmployeeLimit = 5
)

// Service はユーザーに関するユースケースをまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	logger logrus.FieldLogger
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, in DeleteUserInput) error
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
	ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error)
	CountUsers(ctx context.Context) (int, error)
	TierDistribution(ctx context.Context) ([]TierCount, error)
	UsersWithoutEmployee(ctx context.Context, limit int) ([]*User, error)
	RecentUsers(ctx context.Context, days, limit int) ([]*User, error)
	SyncTeamLeadTiers(ctx context.Context) (SyncResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, logger logrus.FieldLogger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{repo: repo, clock: clock, logger: logger}
}

// CreateUserInput はユーザー作成時の入力です。Tier 未指定時は employee です。
type CreateUserInput struct {
	Email string
	Name  string
	Tier  *Tier
}

// UpdateUserInput はユーザー更新時の入力です。
type UpdateUserInput struct {
	ID     string
	Name   *string
	Status *Status
	Tier   *Tier
}

// DeleteUserInput はユーザー削除時の入力です。
type DeleteUserInput struct {
	ID string
}

// GetUserInput はユーザー取得時の入力です。
type GetUserInput struct {
	ID string
}

// ListUsersInput は一覧取得時の入力です。
type ListUsersInput struct {
	PageSize  int
	PageToken string
	Status    *Status
	Tier      *Tier
}

// ListUsersResult は一覧取得結果を表します。
type ListUsersResult struct {
	Users         []*User
	NextPageToken string
}

// CreateUser は新しいユーザーを作成します。
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	tier := TierEmployee
	if in.Tier != nil {
		parsed, err := ParseTier(string(*in.Tier))
		if err != nil {
			return nil, err
		}
		tier = parsed
	}

	if err := s.ensureEmailNotExists(ctx, email); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	created, err := s.repo.Create(ctx, &User{
		Email:     email,
		Name:      name,
		Status:    StatusActive,
		Tier:      tier,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateUser はユーザー情報を更新します。
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousTier := existing.Tier

	if in.Name != nil {
		updatedName := strings.TrimSpace(*in.Name)
		if updatedName == "" {
			return nil, ErrInvalidName
		}
		existing.Name = updatedName
	}

	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		existing.Status = *in.Status
	}

	if in.Tier != nil {
		tier, err := ParseTier(string(*in.Tier))
		if err != nil {
			return nil, err
		}
		existing.Tier = tier
	}

	existing.UpdatedAt = s.clock.Now()

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	if updated.Tier != previousTier {
		s.logger.WithFields(logrus.Fields{
			"event":    "user_tier_changed",
			"user_id":  updated.ID,
			"old_tier": previousTier,
			"new_tier": updated.Tier,
		}).Info("user tier changed")
	}

	return updated, nil
}

// DeleteUser はユーザーを削除します。社員プロファイルを持つ場合は削除できません。
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// GetUser は ID でユーザーを取得します。
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// ListUsers はユーザーの一覧を取得します。
func (s *Service) ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var tierPtr *Tier
	if in.Tier != nil {
		tier, err := ParseTier(string(*in.Tier))
		if err != nil {
			return nil, err
		}
		tierPtr = &tier
	}

	users, nextToken, err := s.repo.List(ctx, ListUsersFilter{
		Limit:  limit,
		Offset: offset,
		Status: statusPtr,
		Tier:   tierPtr,
	})
	if err != nil {
		return nil, err
	}

	return &ListUsersResult{
		Users:         users,
		NextPageToken: nextToken,
	}, nil
}

// CountUsers は全ユーザー数を返します。
func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// TierDistribution は区分ごとのユーザー数を返します。0 件の区分も含みます。
func (s *Service) TierDistribution(ctx context.Context) ([]TierCount, error) {
	counts, err := s.repo.CountByTier(ctx)
	if err != nil {
		return nil, err
	}

	distribution := make([]TierCount, 0, len(Tiers()))
	for _, tier := range Tiers() {
		distribution = append(distribution, TierCount{Tier: tier, Count: counts[tier]})
	}
	return distribution, nil
}

// UsersWithoutEmployee は社員プロファイル未作成のユーザーを返します。
func (s *Service) UsersWithoutEmployee(ctx context.Context, limit int) ([]*User, error) {
	if limit <= 0 {
		limit = DefaultWithoutEmployeeLimit
	}
	return s.repo.ListWithoutEmployee(ctx, limit)
}

// RecentUsers は直近 days 日以内に作成されたユーザーを新しい順に返します。
func (s *Service) RecentUsers(ctx context.Context, days, limit int) ([]*User, error) {
	if days <= 0 {
		days = DefaultRecentUserDays
	}
	if limit <= 0 {
		limit = DefaultRecentUserLimit
	}

	today := s.clock.Now().UTC()
	since := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
	return s.repo.ListCreatedSince(ctx, since, limit)
}

// SyncTeamLeadTiers は部下を持つ社員のアカウントを team_lead に、部下がいなくなったアカウントを employee に戻します。
// hr / admin 区分は変更しません。
func (s *Service) SyncTeamLeadTiers(ctx context.Context) (SyncResult, error) {
	result, err := s.repo.SyncTeamLeadTiers(ctx, s.clock.Now())
	if err != nil {
		return SyncResult{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"event":    "team_lead_tiers_synced",
		"promoted": result.Promoted,
		"demoted":  result.Demoted,
	}).Info("team lead tiers synced")

	return result, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if user != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	return parsed.String(), nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
