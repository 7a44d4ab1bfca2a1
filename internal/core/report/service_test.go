package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

type fakeReportRepo struct {
	salaryChanges []SalaryChange
	roleChanges   []*employee.RoleHistory
	departments   []DepartmentStats
	seniority     map[employee.Seniority]int
	hires         []Hire

	calls       map[string]int
	lastFilter  Filter
	lastSince   time.Time
	failQueries error
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{calls: make(map[string]int)}
}

func (r *fakeReportRepo) ListSalaryChanges(_ context.Context, filter Filter) ([]SalaryChange, error) {
	r.calls["salary"]++
	r.lastFilter = filter
	return r.salaryChanges, r.failQueries
}

func (r *fakeReportRepo) ListRoleChanges(_ context.Context, filter Filter) ([]*employee.RoleHistory, error) {
	r.calls["role"]++
	r.lastFilter = filter
	return r.roleChanges, r.failQueries
}

func (r *fakeReportRepo) ListDepartmentStats(context.Context) ([]DepartmentStats, error) {
	r.calls["departments"]++
	return r.departments, r.failQueries
}

func (r *fakeReportRepo) CountActiveBySeniority(context.Context) (map[employee.Seniority]int, error) {
	r.calls["seniority"]++
	return r.seniority, r.failQueries
}

func (r *fakeReportRepo) ListHiresSince(_ context.Context, since time.Time) ([]Hire, error) {
	r.calls["hires"]++
	r.lastSince = since
	return r.hires, r.failQueries
}

type memoryCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

var testNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestService_DepartmentOverview_ReadThrough(t *testing.T) {
	t.Parallel()

	manager := "Laura Gomez"
	repo := newFakeReportRepo()
	repo.departments = []DepartmentStats{
		{DepartmentID: "it", Name: "IT", Budget: decPtr("200000"), ManagerName: &manager, EmployeeCount: 2, TotalSalaries: decimal.RequireFromString("130000")},
		{DepartmentID: "ops", Name: "Operations", Budget: decPtr("100000"), EmployeeCount: 2, TotalSalaries: decimal.RequireFromString("90000")},
		{DepartmentID: "new", Name: "Research", EmployeeCount: 0, TotalSalaries: decimal.Zero},
	}
	cache := newMemoryCache()
	svc := NewService(repo, cache, stubClock{now: testNow}, nil, nil)

	first, err := svc.DepartmentOverview(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 3)

	it := first[0]
	assert.True(t, it.AvgSalary.Equal(decimal.NewFromInt(65000)))
	require.NotNil(t, it.SalaryBudgetPercentage)
	assert.True(t, it.SalaryBudgetPercentage.Equal(decimal.NewFromInt(65)), "got %s", it.SalaryBudgetPercentage)
	require.NotNil(t, it.RemainingBudget)
	assert.True(t, it.RemainingBudget.Equal(decimal.NewFromInt(70000)))
	assert.Equal(t, BudgetStatusWarning, it.BudgetStatus)
	assert.Equal(t, BudgetStatusDanger, first[1].BudgetStatus)

	research := first[2]
	assert.Nil(t, research.SalaryBudgetPercentage)
	assert.Nil(t, research.RemainingBudget)
	assert.True(t, research.AvgSalary.IsZero())
	assert.Equal(t, BudgetStatusUnknown, research.BudgetStatus)

	assert.Equal(t, DepartmentOverviewTTL, cache.ttls[DepartmentOverviewKey])

	second, err := svc.DepartmentOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls["departments"], "second call must be served from cache")
	require.Len(t, second, 3)
	assert.Equal(t, "IT", second[0].Name)
	assert.True(t, second[0].TotalSalaries.Equal(decimal.NewFromInt(130000)))
	require.NotNil(t, second[0].ManagerName)
	assert.Equal(t, manager, *second[0].ManagerName)
}

func TestService_CompanyOverview_AllLevelsPresent(t *testing.T) {
	t.Parallel()

	repo := newFakeReportRepo()
	repo.seniority = map[employee.Seniority]int{employee.SeniorityMid: 4, employee.SenioritySenior: 1}
	cache := newMemoryCache()
	svc := NewService(repo, cache, stubClock{now: testNow}, nil, nil)

	overview, err := svc.CompanyOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, overview.TotalEmployees)
	assert.Equal(t, []SeniorityCount{
		{Level: employee.SeniorityJunior, Count: 0},
		{Level: employee.SeniorityMid, Count: 4},
		{Level: employee.SenioritySenior, Count: 1},
	}, overview.SeniorityBreakdown)
	assert.Equal(t, CompanyOverviewTTL, cache.ttls[CompanyOverviewKey])
}

func TestService_RecentHires_DefaultWindow(t *testing.T) {
	t.Parallel()

	repo := newFakeReportRepo()
	repo.hires = []Hire{{EmployeeID: "e1", FullName: "Ana Perez", HireDate: day(2024, time.March, 1)}}
	cache := newMemoryCache()
	svc := NewService(repo, cache, stubClock{now: testNow}, nil, nil)

	hires, err := svc.RecentHires(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultRecentHireDays, hires.Days)
	assert.Equal(t, day(2024, time.February, 9), repo.lastSince)
	assert.Equal(t, 1, hires.Count)
	_, cached := cache.entries["recent_hires_30"]
	assert.True(t, cached)
	assert.Equal(t, RecentHiresTTL, cache.ttls["recent_hires_30"])

	none, err := NewService(newFakeReportRepo(), nil, stubClock{now: testNow}, nil, nil).RecentHires(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, none.Hires)
	assert.Zero(t, none.Count)
}

func TestService_CacheFailuresDoNotAffectResults(t *testing.T) {
	t.Parallel()

	repo := newFakeReportRepo()
	repo.seniority = map[employee.Seniority]int{employee.SeniorityJunior: 2}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis: connection refused")
	cache.setErr = errors.New("redis: connection refused")
	svc := NewService(repo, cache, stubClock{now: testNow}, nil, nil)

	for i := 0; i < 2; i++ {
		overview, err := svc.CompanyOverview(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, overview.TotalEmployees)
	}
	assert.Equal(t, 2, repo.calls["seniority"])
}

func TestService_CorruptCacheEntryIsRecomputed(t *testing.T) {
	t.Parallel()

	repo := newFakeReportRepo()
	repo.seniority = map[employee.Seniority]int{employee.SeniorityJunior: 1}
	cache := newMemoryCache()
	cache.entries[CompanyOverviewKey] = []byte("{not json")
	svc := NewService(repo, cache, stubClock{now: testNow}, nil, nil)

	overview, err := svc.CompanyOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, overview.TotalEmployees)
	assert.Equal(t, 1, repo.calls["seniority"])
}

func TestService_QueryErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	repo := newFakeReportRepo()
	repo.failQueries = errors.New("db down")
	cache := newMemoryCache()
	svc := NewService(repo, cache, stubClock{now: testNow}, nil, nil)

	_, err := svc.DepartmentOverview(context.Background())
	require.ErrorIs(t, err, repo.failQueries)
	assert.Empty(t, cache.entries)
}

func TestService_SalaryReport(t *testing.T) {
	t.Parallel()

	repo := newFakeReportRepo()
	repo.salaryChanges = sampleSalaryHistories()
	svc := NewService(repo, nil, stubClock{now: testNow}, nil, nil)

	year := 2024
	employeeID := uuid.NewString()
	report, err := svc.SalaryReport(context.Background(), Filter{EmployeeID: &employeeID, Year: &year})
	require.NoError(t, err)

	require.NotNil(t, repo.lastFilter.EmployeeID)
	assert.Equal(t, employeeID, *repo.lastFilter.EmployeeID)
	assert.Len(t, report.Changes, 3)
	assert.Equal(t, 2, report.Raises)
	assert.Equal(t, 1, report.Decreases)
	assert.Len(t, report.ByMonth, 2)
	assert.Len(t, report.ByRole, 2)
}

func TestService_RoleReport(t *testing.T) {
	t.Parallel()

	repo := newFakeReportRepo()
	repo.roleChanges = []*employee.RoleHistory{
		{OldSeniority: employee.SeniorityJunior, NewSeniority: employee.SeniorityMid, EffectiveDate: day(2024, time.January, 1)},
		{OldSeniority: employee.SeniorityMid, NewSeniority: employee.SeniorityJunior, EffectiveDate: day(2024, time.February, 1)},
	}
	svc := NewService(repo, nil, stubClock{now: testNow}, nil, nil)

	report, err := svc.RoleReport(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Promotions)
	assert.Equal(t, 1, report.Demotions)
	assert.Zero(t, report.LateralMoves)
	assert.Len(t, report.ByMonth, 2)
}

func TestService_FilterValidation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeReportRepo(), nil, stubClock{now: testNow}, nil, nil)

	start, end := day(2024, time.June, 1), day(2024, time.January, 1)
	_, err := svc.SalaryReport(context.Background(), Filter{StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	bad := "not-a-uuid"
	_, err = svc.RoleReport(context.Background(), Filter{DepartmentID: &bad})
	assert.ErrorIs(t, err, ErrInvalidID)

	year := 0
	_, err = svc.SalaryReport(context.Background(), Filter{Year: &year})
	assert.ErrorIs(t, err, ErrInvalidYear)
}
