package report

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/shopspring/decimal"
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

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	DepartmentOverviewKey = "department_stats_overview"
	CompanyOverviewKey    = "company_stats_overview"
	recentHiresKeyPrefix  = "recent_hires_"

	DepartmentOverviewTTL = 10 * time.Minute
	CompanyOverviewTTL    = 5 * time.Minute
	RecentHiresTTL        = 30 * time.Minute

	DefaultRecentHireDays = 30
)

// RecentHiresKey は入社者一覧のキャッシュキーを返します。
func RecentHiresKey(days int) string {
	return recentHiresKeyPrefix + strconv.Itoa(days)
}

// Service は履歴レポートとダッシュボード集計のユースケースをまとめます。
type Service struct {
	repo   Repository
	cache  Cache
	clock  Clock
	tx     TransactionManager
	logger logrus.FieldLogger
}

// UseCase はレポートユースケースの公開インターフェースです。
type UseCase interface {
	SalaryReport(ctx context.Context, filter Filter) (*SalaryReport, error)
	RoleReport(ctx context.Context, filter Filter) (*RoleReport, error)
	DepartmentOverview(ctx context.Context) ([]DepartmentSummary, error)
	CompanyOverview(ctx context.Context) (*CompanyOverview, error)
	RecentHires(ctx context.Context, days int) (*RecentHires, error)
}

// NewService は Service を生成します。cache が nil の場合は毎回集計します。
func NewService(repo Repository, cache Cache, clock Clock, tx TransactionManager, logger logrus.FieldLogger) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{repo: repo, cache: cache, clock: clock, tx: tx, logger: logger}
}

// SalaryReport は給与変更履歴を読み込み、各種集計を組み立てます。
func (s *Service) SalaryReport(ctx context.Context, filter Filter) (*SalaryReport, error) {
	normalized, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	var changes SalaryHistories
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		rows, err := s.repo.ListSalaryChanges(txCtx, normalized)
		if err != nil {
			return err
		}
		changes = SalaryHistories(rows)
		return nil
	}); err != nil {
		return nil, err
	}

	changes = changes.ByDateRange(normalized.StartDate, normalized.EndDate)
	if normalized.Year != nil {
		changes = changes.ByYear(*normalized.Year)
	}

	return &SalaryReport{
		Changes:      changes,
		Raises:       len(changes.RaisesOnly()),
		Decreases:    len(changes.DecreasesOnly()),
		TopIncreases: changes.TopIncreases(defaultTopIncreases),
		ByMonth:      changes.ByMonth(),
		ByRole:       changes.AvgGrowthByRole(),
	}, nil
}

// RoleReport は職種変更履歴を読み込み、各種集計を組み立てます。
func (s *Service) RoleReport(ctx context.Context, filter Filter) (*RoleReport, error) {
	normalized, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	var changes RoleHistories
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		rows, err := s.repo.ListRoleChanges(txCtx, normalized)
		if err != nil {
			return err
		}
		changes = RoleHistories(rows)
		return nil
	}); err != nil {
		return nil, err
	}

	changes = changes.ByDateRange(normalized.StartDate, normalized.EndDate)
	if normalized.Year != nil {
		changes = changes.ByYear(*normalized.Year)
	}

	return &RoleReport{
		Changes:      changes,
		Promotions:   len(changes.PromotionsOnly()),
		Demotions:    len(changes.DemotionsOnly()),
		LateralMoves: len(changes.LateralMovesOnly()),
		ByMonth:      changes.ByMonth(),
	}, nil
}

// DepartmentOverview は部署ごとの在籍人数・給与総額・予算消化率を返します。
func (s *Service) DepartmentOverview(ctx context.Context) ([]DepartmentSummary, error) {
	return readThrough(ctx, s, DepartmentOverviewKey, DepartmentOverviewTTL, func(ctx context.Context) ([]DepartmentSummary, error) {
		var stats []DepartmentStats
		if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
			rows, err := s.repo.ListDepartmentStats(txCtx)
			if err != nil {
				return err
			}
			stats = rows
			return nil
		}); err != nil {
			return nil, err
		}

		summaries := make([]DepartmentSummary, 0, len(stats))
		for _, st := range stats {
			summaries = append(summaries, summarizeDepartment(st))
		}
		return summaries, nil
	})
}

// CompanyOverview は在籍社員数と等級別の内訳を返します。内訳には全等級が含まれます。
func (s *Service) CompanyOverview(ctx context.Context) (*CompanyOverview, error) {
	return readThrough(ctx, s, CompanyOverviewKey, CompanyOverviewTTL, func(ctx context.Context) (*CompanyOverview, error) {
		var counts map[employee.Seniority]int
		if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
			result, err := s.repo.CountActiveBySeniority(txCtx)
			if err != nil {
				return err
			}
			counts = result
			return nil
		}); err != nil {
			return nil, err
		}

		overview := &CompanyOverview{}
		for _, level := range employee.Seniorities() {
			count := counts[level]
			overview.TotalEmployees += count
			overview.SeniorityBreakdown = append(overview.SeniorityBreakdown, SeniorityCount{Level: level, Count: count})
		}
		return overview, nil
	})
}

// RecentHires は直近 days 日以内の入社者を返します。days が 0 以下の場合は 30 日です。
func (s *Service) RecentHires(ctx context.Context, days int) (*RecentHires, error) {
	if days <= 0 {
		days = DefaultRecentHireDays
	}

	return readThrough(ctx, s, RecentHiresKey(days), RecentHiresTTL, func(ctx context.Context) (*RecentHires, error) {
		today := s.clock.Now().UTC()
		since := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)

		var hires []Hire
		if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
			result, err := s.repo.ListHiresSince(txCtx, since)
			if err != nil {
				return err
			}
			hires = result
			return nil
		}); err != nil {
			return nil, err
		}

		if hires == nil {
			hires = []Hire{}
		}
		return &RecentHires{Days: days, Since: since, Hires: hires, Count: len(hires)}, nil
	})
}

func readThrough[T any](ctx context.Context, s *Service, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	entry := s.logger.WithField("cache_key", key)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		entry.WithError(err).Warn("report cache get failed")
	} else if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		entry.Warn("report cache entry could not be decoded")
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		entry.WithError(err).Warn("report cache encode failed")
		return value, nil
	}
	if err := s.cache.Set(ctx, key, encoded, ttl); err != nil {
		entry.WithError(err).Warn("report cache set failed")
	}
	return value, nil
}

func summarizeDepartment(st DepartmentStats) DepartmentSummary {
	summary := DepartmentSummary{
		DepartmentID:  st.DepartmentID,
		Name:          st.Name,
		EmployeeCount: st.EmployeeCount,
		Budget:        st.Budget,
		TotalSalaries: st.TotalSalaries,
		AvgSalary:     average(st.TotalSalaries, st.EmployeeCount),
		ManagerName:   st.ManagerName,
		BudgetStatus:  BudgetStatusUnknown,
	}

	if st.Budget == nil || st.Budget.IsZero() || st.TotalSalaries.IsZero() {
		return summary
	}

	percentage := st.TotalSalaries.Div(*st.Budget).Mul(decimal.NewFromInt(100)).Round(2)
	remaining := st.Budget.Sub(st.TotalSalaries)
	summary.SalaryBudgetPercentage = &percentage
	summary.RemainingBudget = &remaining

	switch {
	case percentage.GreaterThanOrEqual(budgetDangerThreshold):
		summary.BudgetStatus = BudgetStatusDanger
	case percentage.GreaterThanOrEqual(budgetWarningThreshold):
		summary.BudgetStatus = BudgetStatusWarning
	default:
		summary.BudgetStatus = BudgetStatusOK
	}
	return summary
}

func normalizeFilter(in Filter) (Filter, error) {
	out := Filter{}

	if in.EmployeeID != nil {
		id, err := normalizeID(*in.EmployeeID)
		if err != nil {
			return Filter{}, err
		}
		out.EmployeeID = &id
	}
	if in.DepartmentID != nil {
		id, err := normalizeID(*in.DepartmentID)
		if err != nil {
			return Filter{}, err
		}
		out.DepartmentID = &id
	}
	if in.StartDate != nil {
		start := dateOf(*in.StartDate)
		out.StartDate = &start
	}
	if in.EndDate != nil {
		end := dateOf(*in.EndDate)
		out.EndDate = &end
	}
	if out.StartDate != nil && out.EndDate != nil && out.StartDate.After(*out.EndDate) {
		return Filter{}, ErrInvalidDateRange
	}
	if in.Year != nil {
		if *in.Year < 1 || *in.Year > 9999 {
			return Filter{}, ErrInvalidYear
		}
		year := *in.Year
		out.Year = &year
	}
	return out, nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}
