package main

import (
	"context"

	"github.com/ivanvallejoss/hr-system/internal/core/organization"
	"github.com/ivanvallejoss/hr-system/internal/core/user"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (c *cli) newUserCmd() *cobra.Command {
	var email, name, tier string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := user.CreateUserInput{Email: email, Name: name}
			if tier != "" {
				t, err := user.ParseTier(tier)
				if err != nil {
					return err
				}
				in.Tier = &t
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Users.CreateUser(ctx, in)
			})
		},
	}
	create.Flags().StringVar(&email, "email", "", "email address (required)")
	create.Flags().StringVar(&name, "name", "", "display name (required)")
	create.Flags().StringVar(&tier, "tier", "", "employee, team_lead, hr or admin (defaults to employee)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")

	var pageSize int
	var pageToken, filterTier string
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := user.ListUsersInput{PageSize: pageSize, PageToken: pageToken}
			if filterTier != "" {
				t, err := user.ParseTier(filterTier)
				if err != nil {
					return err
				}
				in.Tier = &t
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Users.ListUsers(ctx, in)
			})
		},
	}
	list.Flags().IntVar(&pageSize, "page-size", 50, "page size")
	list.Flags().StringVar(&pageToken, "page-token", "", "page token from a previous call")
	list.Flags().StringVar(&filterTier, "tier", "", "filter by tier")

	sync := &cobra.Command{
		Use:   "sync-team-leads",
		Short: "Align team_lead tiers with the employees that currently lead a team",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				res, err := s.Users.SyncTeamLeadTiers(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]int{"promoted": res.Promoted, "demoted": res.Demoted}, nil
			})
		},
	}

	cmd := &cobra.Command{Use: "user", Short: "User accounts and access tiers"}
	cmd.AddCommand(create, list, sync)
	return cmd
}

func (c *cli) newOrgCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "org", Short: "Departments and roles"}
	cmd.AddCommand(c.newDepartmentCmd(), c.newOrgRoleCmd())
	return cmd
}

func (c *cli) newDepartmentCmd() *cobra.Command {
	var name, description, budget string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a department",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := organization.CreateDepartmentInput{Name: name, Description: optional(description)}
			if budget != "" {
				b, err := decimal.NewFromString(budget)
				if err != nil {
					return err
				}
				in.Budget = &b
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Organizations.CreateDepartment(ctx, in)
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "department name (required)")
	create.Flags().StringVar(&description, "description", "", "description")
	create.Flags().StringVar(&budget, "budget", "", "annual salary budget")
	_ = create.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Organizations.ListDepartments(ctx, organization.ListDepartmentsInput{PageSize: 100})
			})
		},
	}

	var manager string
	assign := &cobra.Command{
		Use:   "assign-manager <department-id>",
		Short: "Set or clear (empty --manager) the department manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Organizations.AssignDepartmentManager(ctx, organization.AssignDepartmentManagerInput{
					DepartmentID: args[0],
					ManagerID:    optional(manager),
				})
			})
		},
	}
	assign.Flags().StringVar(&manager, "manager", "", "manager employee ID")

	cmd := &cobra.Command{Use: "department", Short: "Departments"}
	cmd.AddCommand(create, list, assign)
	return cmd
}

func (c *cli) newOrgRoleCmd() *cobra.Command {
	var title, departmentID, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a role within a department",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Organizations.CreateRole(ctx, organization.CreateRoleInput{
					Title:        title,
					DepartmentID: departmentID,
					Description:  optional(description),
				})
			})
		},
	}
	create.Flags().StringVar(&title, "title", "", "role title (required)")
	create.Flags().StringVar(&departmentID, "department", "", "department ID (required)")
	create.Flags().StringVar(&description, "description", "", "description")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("department")

	var listDepartment string
	list := &cobra.Command{
		Use:   "list",
		Short: "List roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Organizations.ListRoles(ctx, organization.ListRolesInput{DepartmentID: optional(listDepartment), PageSize: 100})
			})
		},
	}
	list.Flags().StringVar(&listDepartment, "department", "", "filter by department ID")

	remove := &cobra.Command{
		Use:   "delete <role-id>",
		Short: "Delete a role that no employee holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return nil, s.Organizations.DeleteRole(ctx, organization.DeleteRoleInput{ID: args[0]})
			})
		},
	}

	cmd := &cobra.Command{Use: "role", Short: "Roles"}
	cmd.AddCommand(create, list, remove)
	return cmd
}

func (c *cli) newDashboardCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Render the dashboard a user would see",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Dashboards.Dashboard(ctx, userID)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
