package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/app"
	"github.com/ivanvallejoss/hr-system/internal/core/dashboard"
	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/ivanvallejoss/hr-system/internal/core/organization"
	"github.com/ivanvallejoss/hr-system/internal/core/report"
	"github.com/ivanvallejoss/hr-system/internal/core/user"
	"github.com/ivanvallejoss/hr-system/internal/platform/config"
	"github.com/ivanvallejoss/hr-system/internal/platform/logging"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// services は CLI から呼び出すユースケースの集合です。
type services struct {
	Employees     employee.UseCase
	Reports       report.UseCase
	Users         user.UseCase
	Organizations organization.UseCase
	Dashboards    dashboard.UseCase
}

type opener func(ctx context.Context, configPath string) (*services, func(), error)

type cli struct {
	open       opener
	configPath string
}

func openServices(ctx context.Context, configPath string) (*services, func(), error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "assets/local.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(os.Stderr)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return &services{
		Employees:     a.Employees,
		Reports:       a.Reports,
		Users:         a.Users,
		Organizations: a.Organizations,
		Dashboards:    a.Dashboards,
	}, a.Close, nil
}

func newRootCmd(open opener) *cobra.Command {
	c := &cli{open: open}

	cmd := &cobra.Command{
		Use:           "hrctl",
		Short:         "Operate on employee salary and role history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")

	cmd.AddCommand(
		c.newSalaryCmd(),
		c.newRoleCmd(),
		c.newHistoryCmd(),
		c.newEmployeeCmd(),
		c.newReportCmd(),
		c.newStatsCmd(),
		c.newUserCmd(),
		c.newOrgCmd(),
		c.newDashboardCmd(),
	)
	return cmd
}

// with は設定を読み込んでユースケースを組み立て、fn の終了後に接続を閉じます。
func (c *cli) with(cmd *cobra.Command, fn func(ctx context.Context, s *services) (any, error)) error {
	s, closeFn, err := c.open(cmd.Context(), c.configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := fn(cmd.Context(), s)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", raw, err)
	}
	return &t, nil
}

func optional(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
