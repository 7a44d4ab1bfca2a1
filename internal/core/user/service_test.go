package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	users     map[string]*User
	order     []string
	employed  map[string]bool
	leads     map[string]bool
	lastSince time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[string]*User),
		employed: make(map[string]bool),
		leads:    make(map[string]bool),
	}
}

func (r *fakeRepo) Create(_ context.Context, user *User) (*User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, ErrEmailAlreadyExists
		}
	}
	copy := *user
	copy.ID = uuid.NewString()
	r.users[copy.ID] = &copy
	r.order = append(r.order, copy.ID)
	return cloneUser(&copy), nil
}

func (r *fakeRepo) Update(_ context.Context, user *User) (*User, error) {
	existing, ok := r.users[user.ID]
	if !ok {
		return nil, ErrUserNotFound
	}
	*existing = *user
	return cloneUser(existing), nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	if r.employed[id] {
		return ErrUserHasEmployee
	}
	delete(r.users, id)
	for i, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeRepo) List(_ context.Context, filter ListUsersFilter) ([]*User, string, error) {
	var filtered []*User
	for _, id := range r.order {
		u := r.users[id]
		if filter.Status != nil && u.Status != *filter.Status {
			continue
		}
		if filter.Tier != nil && u.Tier != *filter.Tier {
			continue
		}
		filtered = append(filtered, cloneUser(u))
	}

	if filter.Offset > len(filtered) {
		return []*User{}, "", nil
	}

	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := filtered[filter.Offset:end]

	var nextToken string
	if end < len(filtered) {
		nextToken = strconv.Itoa(end)
	}

	return page, nextToken, nil
}

func (r *fakeRepo) Count(context.Context) (int, error) {
	return len(r.users), nil
}

func (r *fakeRepo) CountByTier(context.Context) (map[Tier]int, error) {
	counts := make(map[Tier]int)
	for _, u := range r.users {
		counts[u.Tier]++
	}
	return counts, nil
}

func (r *fakeRepo) ListWithoutEmployee(_ context.Context, limit int) ([]*User, error) {
	var out []*User
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		id := r.order[i]
		if !r.employed[id] {
			out = append(out, cloneUser(r.users[id]))
		}
	}
	return out, nil
}

func (r *fakeRepo) ListCreatedSince(_ context.Context, since time.Time, limit int) ([]*User, error) {
	r.lastSince = since
	var out []*User
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		u := r.users[r.order[i]]
		if !u.CreatedAt.Before(since) {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *fakeRepo) SyncTeamLeadTiers(_ context.Context, updatedAt time.Time) (SyncResult, error) {
	var result SyncResult
	for id, u := range r.users {
		switch {
		case u.Tier == TierEmployee && r.leads[id]:
			u.Tier = TierTeamLead
			u.UpdatedAt = updatedAt
			result.Promoted++
		case u.Tier == TierTeamLead && !r.leads[id]:
			u.Tier = TierEmployee
			u.UpdatedAt = updatedAt
			result.Demoted++
		}
	}
	return result, nil
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	copy := *u
	return &copy
}

func newTestService(repo *fakeRepo, clk *stubClock) *Service {
	return NewService(repo, clk, nil)
}

func TestService_CreateUser_Success(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(newFakeRepo(), clk)

	created, err := svc.CreateUser(context.Background(), CreateUserInput{Email: " USER@example.com ", Name: "  John Doe  "})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if created.Email != "user@example.com" {
		t.Errorf("expected normalized email, got %s", created.Email)
	}
	if created.Name != "John Doe" {
		t.Errorf("expected trimmed name, got %q", created.Name)
	}
	if created.Status != StatusActive {
		t.Errorf("expected status active, got %s", created.Status)
	}
	if created.Tier != TierEmployee {
		t.Errorf("expected default tier employee, got %s", created.Tier)
	}
	if created.CreatedAt != clk.now || created.UpdatedAt != clk.now {
		t.Errorf("expected timestamps to use clock, got %v and %v", created.CreatedAt, created.UpdatedAt)
	}
}

func TestService_CreateUser_WithTier(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Now()})

	tier := Tier(" HR ")
	created, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "hr@example.com", Name: "HR", Tier: &tier})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if created.Tier != TierHR {
		t.Fatalf("expected tier hr, got %s", created.Tier)
	}

	invalid := Tier("superuser")
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "x@example.com", Name: "X", Tier: &invalid}); !errors.Is(err, ErrInvalidTier) {
		t.Fatalf("expected ErrInvalidTier, got %v", err)
	}
}

func TestService_CreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Now()})

	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "john@example.com", Name: "John"}); err != nil {
		t.Fatalf("unexpected error preparing data: %v", err)
	}

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "JOHN@example.com", Name: "Johnny"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestService_UpdateUser_Success(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Now()}
	svc := newTestService(newFakeRepo(), clk)

	created, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "user@example.com", Name: "User"})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	newName := "New Name"
	newStatus := StatusInactive
	newTier := TierAdmin
	clk.now = clk.now.Add(time.Hour)

	updated, err := svc.UpdateUser(context.Background(), UpdateUserInput{ID: created.ID, Name: &newName, Status: &newStatus, Tier: &newTier})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	if updated.Name != newName || updated.Status != newStatus || updated.Tier != TierAdmin {
		t.Errorf("unexpected updated user %+v", updated)
	}
	if updated.UpdatedAt != clk.now {
		t.Errorf("expected UpdatedAt to use clock, got %v", updated.UpdatedAt)
	}
}

func TestService_UpdateUser_InvalidStatus(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Now()})

	created, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "user@example.com", Name: "User"})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	invalidStatus := Status("blocked")
	_, err = svc.UpdateUser(context.Background(), UpdateUserInput{ID: created.ID, Status: &invalidStatus})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestService_DeleteUser(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &stubClock{now: time.Now()})

	if err := svc.DeleteUser(context.Background(), DeleteUserInput{ID: ""}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if err := svc.DeleteUser(context.Background(), DeleteUserInput{ID: "user-1"}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for non-uuid, got %v", err)
	}

	created, _ := svc.CreateUser(context.Background(), CreateUserInput{Email: "emp@example.com", Name: "Emp"})
	repo.employed[created.ID] = true
	if err := svc.DeleteUser(context.Background(), DeleteUserInput{ID: created.ID}); !errors.Is(err, ErrUserHasEmployee) {
		t.Fatalf("expected ErrUserHasEmployee, got %v", err)
	}
}

func TestService_GetUser(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Now()})

	created, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "user@example.com", Name: "User"})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	found, err := svc.GetUser(context.Background(), GetUserInput{ID: " " + created.ID + " "})
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected ID %s, got %s", created.ID, found.ID)
	}

	if _, err := svc.GetUser(context.Background(), GetUserInput{ID: "   "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.GetUser(context.Background(), GetUserInput{ID: uuid.NewString()}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestService_ListUsers(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Now()})

	hr := TierHR
	for i := 0; i < 3; i++ {
		in := CreateUserInput{Email: fmt.Sprintf("user%d@example.com", i), Name: fmt.Sprintf("User %d", i)}
		if i == 0 {
			in.Tier = &hr
		}
		if _, err := svc.CreateUser(context.Background(), in); err != nil {
			t.Fatalf("CreateUser error: %v", err)
		}
	}

	result, err := svc.ListUsers(context.Background(), ListUsersInput{})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(result.Users) != 3 || result.NextPageToken != "" {
		t.Fatalf("unexpected result: %d users, token %q", len(result.Users), result.NextPageToken)
	}

	filtered, err := svc.ListUsers(context.Background(), ListUsersInput{Tier: &hr})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(filtered.Users) != 1 || filtered.Users[0].Tier != TierHR {
		t.Fatalf("unexpected tier filter result %+v", filtered.Users)
	}

	if _, err := svc.ListUsers(context.Background(), ListUsersInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListUsers(context.Background(), ListUsersInput{PageToken: "abc"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func TestService_TierDistribution_IncludesEmptyTiers(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Now()})

	admin := TierAdmin
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "a@example.com", Name: "A", Tier: &admin}); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "b@example.com", Name: "B"}); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	distribution, err := svc.TierDistribution(context.Background())
	if err != nil {
		t.Fatalf("TierDistribution returned error: %v", err)
	}

	want := []TierCount{{TierEmployee, 1}, {TierTeamLead, 0}, {TierHR, 0}, {TierAdmin, 1}}
	if len(distribution) != len(want) {
		t.Fatalf("expected %d tiers, got %d", len(want), len(distribution))
	}
	for i := range want {
		if distribution[i] != want[i] {
			t.Fatalf("tier %d: expected %+v, got %+v", i, want[i], distribution[i])
		}
	}
}

func TestService_RecentUsers_Defaults(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	clk := &stubClock{now: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
	svc := newTestService(repo, clk)

	if _, err := svc.RecentUsers(context.Background(), 0, 0); err != nil {
		t.Fatalf("RecentUsers returned error: %v", err)
	}
	if want := time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC); !repo.lastSince.Equal(want) {
		t.Fatalf("expected since %v, got %v", want, repo.lastSince)
	}
}

func TestService_SyncTeamLeadTiers(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	clk := &stubClock{now: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(repo, clk)

	lead, _ := svc.CreateUser(context.Background(), CreateUserInput{Email: "lead@example.com", Name: "Lead"})
	teamLead := TierTeamLead
	former, _ := svc.CreateUser(context.Background(), CreateUserInput{Email: "former@example.com", Name: "Former", Tier: &teamLead})
	hr := TierHR
	hrUser, _ := svc.CreateUser(context.Background(), CreateUserInput{Email: "hr@example.com", Name: "HR", Tier: &hr})

	repo.leads[lead.ID] = true
	repo.leads[hrUser.ID] = true

	result, err := svc.SyncTeamLeadTiers(context.Background())
	if err != nil {
		t.Fatalf("SyncTeamLeadTiers returned error: %v", err)
	}
	if result.Promoted != 1 || result.Demoted != 1 {
		t.Fatalf("unexpected sync result %+v", result)
	}

	if u, _ := svc.GetUser(context.Background(), GetUserInput{ID: lead.ID}); u.Tier != TierTeamLead {
		t.Fatalf("expected lead to be promoted, got %s", u.Tier)
	}
	if u, _ := svc.GetUser(context.Background(), GetUserInput{ID: former.ID}); u.Tier != TierEmployee {
		t.Fatalf("expected former lead to be demoted, got %s", u.Tier)
	}
	if u, _ := svc.GetUser(context.Background(), GetUserInput{ID: hrUser.ID}); u.Tier != TierHR {
		t.Fatalf("expected hr tier to be kept, got %s", u.Tier)
	}
}
