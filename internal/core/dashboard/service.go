package dashboard

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	"github.com/ivanvallejoss/hr-system/internal/core/user"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// EmployeeReader はダッシュボードが参照する社員ユースケースです。
type EmployeeReader interface {
	FindEmployeeByUser(ctx context.Context, userID string) (*employee.Employee, bool, error)
	ListEmployees(ctx context.Context, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error)
}

// StatsReader はダッシュボードが参照する集計ユースケースです。
type StatsReader interface {
	DepartmentOverview(ctx context.Context) ([]report.DepartmentSummary, error)
	CompanyOverview(ctx context.Context) (*report.CompanyOverview, error)
	RecentHires(ctx context.Context, days int) (*report.RecentHires, error)
}

// UserReader はダッシュボードが参照するユーザーユースケースです。
type UserReader interface {
	GetUser(ctx context.Context, in user.GetUserInput) (*user.User, error)
	CountUsers(ctx context.Context) (int, error)
	TierDistribution(ctx context.Context) ([]user.TierCount, error)
	UsersWithoutEmployee(ctx context.Context, limit int) ([]*user.User, error)
	RecentUsers(ctx context.Context, days, limit int) ([]*user.User, error)
}

const teamPageSize = 200

// Service はユーザー区分に応じたダッシュボードを組み立てます。
type Service struct {
	employees EmployeeReader
	stats     StatsReader
	users     UserReader
	clock     Clock
	logger    logrus.FieldLogger
}

// UseCase はダッシュボードユースケースの公開インターフェースです。
type UseCase interface {
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
	EmployeeDashboard(ctx context.Context, userID string) (*EmployeeView, error)
	TeamLeadDashboard(ctx context.Context, userID string) (*EmployeeView, error)
	HRDashboard(ctx context.Context) (*HRView, error)
	AdminDashboard(ctx context.Context) (*AdminView, error)
}

// NewService は Service を生成します。
func NewService(employees EmployeeReader, stats StatsReader, users UserReader, clock Clock, logger logrus.FieldLogger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{employees: employees, stats: stats, users: users, clock: clock, logger: logger}
}

// Route はユーザー区分と社員情報から表示すべきダッシュボードを決めます。
// admin, hr の順に区分を優先し、それ以外は部下の有無で team_lead か employee になります。
func Route(u *user.User, emp *employee.Employee) Kind {
	if u != nil {
		switch u.Tier {
		case user.TierAdmin:
			return KindAdmin
		case user.TierHR:
			return KindHR
		}
	}
	if emp != nil && emp.IsTeamLead {
		return KindTeamLead
	}
	return KindEmployee
}

// Dashboard はユーザーを振り分け、該当するダッシュボードを返します。
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	u, err := s.users.GetUser(ctx, user.GetUserInput{ID: userID})
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, ErrInactiveUser
	}

	emp, found, err := s.employees.FindEmployeeByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		emp = nil
	}

	result := &Dashboard{Kind: Route(u, emp), User: u}
	switch result.Kind {
	case KindAdmin:
		result.Admin, err = s.AdminDashboard(ctx)
	case KindHR:
		result.HR, err = s.HRDashboard(ctx)
	default:
		if emp == nil {
			return nil, ErrEmployeeProfileNotFound
		}
		result.Employee, err = s.buildEmployeeView(ctx, emp)
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": u.ID,
		"tier":    u.Tier,
		"kind":    result.Kind,
	}).Debug("dashboard_routed")

	return result, nil
}

// EmployeeDashboard は社員本人のダッシュボードを返します。
func (s *Service) EmployeeDashboard(ctx context.Context, userID string) (*EmployeeView, error) {
	emp, err := s.activeEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildEmployeeView(ctx, emp)
}

// TeamLeadDashboard は部下を持つ社員のダッシュボードを返します。
func (s *Service) TeamLeadDashboard(ctx context.Context, userID string) (*EmployeeView, error) {
	emp, err := s.activeEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !emp.IsTeamLead {
		return nil, ErrNotTeamLead
	}
	return s.buildEmployeeView(ctx, emp)
}

// HRDashboard は部署集計・最近の入社者・会社全体集計を返します。
func (s *Service) HRDashboard(ctx context.Context) (*HRView, error) {
	view := &HRView{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		departments, err := s.stats.DepartmentOverview(gctx)
		view.Departments = departments
		return err
	})
	g.Go(func() error {
		hires, err := s.stats.RecentHires(gctx, report.DefaultRecentHireDays)
		view.RecentHires = hires
		return err
	})
	g.Go(func() error {
		company, err := s.stats.CompanyOverview(gctx)
		view.Company = company
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return view, nil
}

// AdminDashboard はシステム全体の件数とユーザー管理向けの一覧を返します。
func (s *Service) AdminDashboard(ctx context.Context) (*AdminView, error) {
	view := &AdminView{}
	var departments []report.DepartmentSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.users.CountUsers(gctx)
		view.System.TotalUsers = total
		return err
	})
	g.Go(func() error {
		company, err := s.stats.CompanyOverview(gctx)
		view.Company = company
		return err
	})
	g.Go(func() error {
		var err error
		departments, err = s.stats.DepartmentOverview(gctx)
		return err
	})
	g.Go(func() error {
		users, err := s.users.UsersWithoutEmployee(gctx, user.DefaultWithoutEmployeeLimit)
		view.UsersWithoutEmployee = users
		return err
	})
	g.Go(func() error {
		distribution, err := s.users.TierDistribution(gctx)
		view.TierDistribution = distribution
		return err
	})
	g.Go(func() error {
		recent, err := s.users.RecentUsers(gctx, user.DefaultRecentUserDays, user.DefaultRecentUserLimit)
		view.RecentUsers = recent
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if view.Company != nil {
		view.System.ActiveEmployees = view.Company.TotalEmployees
	}
	view.System.TotalDepartments = len(departments)

	return view, nil
}

func (s *Service) activeEmployee(ctx context.Context, userID string) (*employee.Employee, error) {
	emp, found, err := s.employees.FindEmployeeByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEmployeeProfileNotFound
	}
	if !emp.IsActive() {
		return nil, ErrInactiveEmployee
	}
	return emp, nil
}

func (s *Service) buildEmployeeView(ctx context.Context, emp *employee.Employee) (*EmployeeView, error) {
	if !emp.IsActive() {
		return nil, ErrInactiveEmployee
	}

	view := &EmployeeView{
		Employee:   emp,
		Duration:   EmploymentDurationAt(emp.HireDate, s.clock.Now()),
		IsTeamLead: emp.IsTeamLead,
	}
	if !emp.IsTeamLead {
		return view, nil
	}

	members, err := s.teamMembers(ctx, emp.ID)
	if err != nil {
		return nil, err
	}

	stats := CalculateTeamStats(members)
	view.TeamMembers = members
	view.TeamStats = &stats
	view.TeamByDepartment = GroupByDepartment(members)
	return view, nil
}

func (s *Service) teamMembers(ctx context.Context, managerID string) ([]*employee.Employee, error) {
	var (
		members []*employee.Employee
		token   string
	)
	for {
		page, err := s.employees.ListEmployees(ctx, employee.ListEmployeesInput{
			PageSize:   teamPageSize,
			PageToken:  token,
			ActiveOnly: true,
			ManagerID:  &managerID,
		})
		if err != nil {
			return nil, err
		}
		members = append(members, page.Employees...)
		if page.NextPageToken == "" {
			return members, nil
		}
		token = page.NextPageToken
	}
}

// EmploymentDurationAt は hireDate から now までの在籍期間を返します。入社前は 0 です。
func EmploymentDurationAt(hireDate, now time.Time) EmploymentDuration {
	hire := time.Date(hireDate.Year(), hireDate.Month(), hireDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	days := int(today.Sub(hire).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return EmploymentDuration{Days: days, Years: days / 365, Months: days / 30}
}

// CalculateTeamStats は部下を等級別に数えます。
func CalculateTeamStats(members []*employee.Employee) TeamStats {
	stats := TeamStats{TotalMembers: len(members)}
	for _, m := range members {
		switch m.Seniority {
		case employee.SeniorityJunior:
			stats.JuniorCount++
		case employee.SeniorityMid:
			stats.MidCount++
		case employee.SenioritySenior:
			stats.SeniorCount++
		}
	}
	return stats
}

// GroupByDepartment は部下を職種の部署ごとにまとめ、部署名順に並べます。
func GroupByDepartment(members []*employee.Employee) []DepartmentTeam {
	index := make(map[string]int)
	teams := make([]DepartmentTeam, 0)
	for _, m := range members {
		name := m.Role.DepartmentName
		i, ok := index[name]
		if !ok {
			i = len(teams)
			index[name] = i
			teams = append(teams, DepartmentTeam{DepartmentName: name})
		}
		teams[i].Members = append(teams[i].Members, m)
	}

	slices.SortStableFunc(teams, func(a, b DepartmentTeam) int {
		return strings.Compare(a.DepartmentName, b.DepartmentName)
	})
	return teams
}

// IsAccessDenied はダッシュボードの閲覧拒否を表すエラーかどうかを返します。
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrInactiveEmployee) ||
		errors.Is(err, ErrInactiveUser) ||
		errors.Is(err, ErrNotTeamLead)
}
