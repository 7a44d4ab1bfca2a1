package app

import (
	"context"
	"fmt"

	"github.com/ivanvallejoss/hr-system/internal/adapters/cache/memory"
	rediscache "github.com/ivanvallejoss/hr-system/internal/adapters/cache/redis"
	"github.com/ivanvallejoss/hr-system/internal/adapters/repository/postgres"
	"github.com/ivanvallejoss/hr-system/internal/core/dashboard"
	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/organization"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	"github.com/ivanvallejoss/hr-system/internal/core/user"
	"github.com/ivanvallejoss/hr-system/internal/platform/config"
	pg "github.com/ivanvallejoss/hr-system/internal/platform/db/postgres"
	"github.com/ivanvallejoss/hr-system/internal/platform/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// App はプロセス内で共有するユースケース群です。
type App struct {
	Employees     *employee.Service
	Reports       *report.Service
	Users         *user.Service
	Organizations *organization.Service
	Dashboards    *dashboard.Service
	Metrics       *metrics.Metrics

	pool    *pgxpool.Pool
	closers []func() error
}

// New は設定からデータベース接続とキャッシュを初期化し、各サービスを組み立てます。
func New(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database pool: %w", err)
	}

	a := &App{pool: pool, Metrics: metrics.New()}

	cache, err := a.newCache(ctx, cfg.Cache)
	if err != nil {
		pool.Close()
		return nil, err
	}

	tx := pg.NewTransactionManager(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	orgRepo := postgres.NewOrganizationRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	a.Employees = employee.NewService(employeeRepo, historyRepo, orgRepo, nil, tx, logger.WithField("component", "employee"))
	a.Reports = report.NewService(reportRepo, a.Metrics.InstrumentCache(cache), nil, tx, logger.WithField("component", "report"))
	a.Users = user.NewService(userRepo, nil, logger.WithField("component", "user"))
	a.Organizations = organization.NewService(orgRepo, nil, tx)
	a.Dashboards = dashboard.NewService(a.Employees, a.Reports, a.Users, nil, logger.WithField("component", "dashboard"))

	logger.WithFields(logrus.Fields{
		"cache_driver": cfg.Cache.Driver,
		"authz_mode":   cfg.Authz.Mode,
	}).Info("app_initialized")

	return a, nil
}

func (a *App) newCache(ctx context.Context, cfg config.CacheConfig) (report.Cache, error) {
	switch cfg.Driver {
	case config.CacheDriverRedis:
		c, err := rediscache.Dial(ctx, rediscache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("initialize redis cache: %w", err)
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	default:
		return memory.New(cfg.Size, cfg.KeyPrefix), nil
	}
}

// Close は保持している接続をすべて閉じます。
func (a *App) Close() {
	for _, c := range a.closers {
		_ = c()
	}
	a.pool.Close()
}
