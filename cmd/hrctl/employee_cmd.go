package main

import (
	"context"
	"fmt"

	"github.com/ivanvallejoss/hr-system/internal/core/employee"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (c *cli) newSalaryCmd() *cobra.Command {
	var (
		employeeID string
		amount     string
		reason     string
		effective  string
		actor      string
	)

	set := &cobra.Command{
		Use:   "set",
		Short: "Change an employee's salary and record the change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			salary, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			date, err := parseDate(effective)
			if err != nil {
				return err
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				h, err := s.Employees.UpdateSalary(ctx, employee.UpdateSalaryInput{
					EmployeeID:    employeeID,
					NewSalary:     salary,
					ChangedBy:     optional(actor),
					Reason:        reason,
					EffectiveDate: date,
				})
				if err != nil {
					return nil, err
				}
				return salaryRecord(h), nil
			})
		},
	}
	set.Flags().StringVar(&employeeID, "employee", "", "employee ID (required)")
	set.Flags().StringVar(&amount, "amount", "", "new salary (required)")
	set.Flags().StringVar(&reason, "reason", "", "reason for the change")
	set.Flags().StringVar(&effective, "effective-date", "", "effective date YYYY-MM-DD (defaults to today)")
	set.Flags().StringVar(&actor, "actor", "", "user ID recorded as the author of the change")
	_ = set.MarkFlagRequired("employee")
	_ = set.MarkFlagRequired("amount")

	cmd := &cobra.Command{Use: "salary", Short: "Salary changes"}
	cmd.AddCommand(set)
	return cmd
}

func (c *cli) newRoleCmd() *cobra.Command {
	var (
		employeeID string
		roleID     string
		seniority  string
		reason     string
		effective  string
		actor      string
	)

	set := &cobra.Command{
		Use:   "set",
		Short: "Change an employee's role and/or seniority and record the change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := employee.UpdateRoleInput{
				EmployeeID: employeeID,
				NewRoleID:  optional(roleID),
				ChangedBy:  optional(actor),
				Reason:     reason,
			}
			if seniority != "" {
				level, err := employee.ParseSeniority(seniority)
				if err != nil {
					return err
				}
				in.NewSeniority = &level
			}
			date, err := parseDate(effective)
			if err != nil {
				return err
			}
			in.EffectiveDate = date

			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				h, err := s.Employees.UpdateRole(ctx, in)
				if err != nil {
					return nil, err
				}
				return roleRecord(h), nil
			})
		},
	}
	set.Flags().StringVar(&employeeID, "employee", "", "employee ID (required)")
	set.Flags().StringVar(&roleID, "role", "", "new role ID (keeps the current role when empty)")
	set.Flags().StringVar(&seniority, "seniority", "", "new seniority: junior, mid or senior")
	set.Flags().StringVar(&reason, "reason", "", "reason for the change")
	set.Flags().StringVar(&effective, "effective-date", "", "effective date YYYY-MM-DD (defaults to today)")
	set.Flags().StringVar(&actor, "actor", "", "user ID recorded as the author of the change")
	_ = set.MarkFlagRequired("employee")

	cmd := &cobra.Command{Use: "role", Short: "Role and seniority changes"}
	cmd.AddCommand(set)
	return cmd
}

func (c *cli) newHistoryCmd() *cobra.Command {
	var employeeID, from, to string

	input := func() (employee.GetHistoryInput, error) {
		start, err := parseDate(from)
		if err != nil {
			return employee.GetHistoryInput{}, err
		}
		end, err := parseDate(to)
		if err != nil {
			return employee.GetHistoryInput{}, err
		}
		return employee.GetHistoryInput{EmployeeID: employeeID, StartDate: start, EndDate: end}, nil
	}

	salary := &cobra.Command{
		Use:   "salary",
		Short: "List salary history, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := input()
			if err != nil {
				return err
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				records, err := s.Employees.GetSalaryHistory(ctx, in)
				if err != nil {
					return nil, err
				}
				out := make([]salaryView, 0, len(records))
				for _, h := range records {
					out = append(out, salaryRecord(h))
				}
				return out, nil
			})
		},
	}

	role := &cobra.Command{
		Use:   "role",
		Short: "List role history, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := input()
			if err != nil {
				return err
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				records, err := s.Employees.GetRoleHistory(ctx, in)
				if err != nil {
					return nil, err
				}
				out := make([]roleView, 0, len(records))
				for _, h := range records {
					out = append(out, roleRecord(h))
				}
				return out, nil
			})
		},
	}

	cmd := &cobra.Command{Use: "history", Short: "Change history of an employee"}
	cmd.PersistentFlags().StringVar(&employeeID, "employee", "", "employee ID (required)")
	cmd.PersistentFlags().StringVar(&from, "from", "", "earliest effective date YYYY-MM-DD")
	cmd.PersistentFlags().StringVar(&to, "to", "", "latest effective date YYYY-MM-DD")
	_ = cmd.MarkPersistentFlagRequired("employee")
	cmd.AddCommand(salary, role)
	return cmd
}

func (c *cli) newEmployeeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "employee", Short: "Employee profiles"}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show an employee profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: args[0]})
			})
		},
	}

	analytics := &cobra.Command{
		Use:   "analytics <id>",
		Short: "Show salary growth and promotion counts of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Employees.GetAnalytics(ctx, employee.GetAnalyticsInput{EmployeeID: args[0]})
			})
		},
	}

	var (
		pageSize   int
		pageToken  string
		all        bool
		department string
		manager    string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Employees.ListEmployees(ctx, employee.ListEmployeesInput{
					PageSize:     pageSize,
					PageToken:    pageToken,
					ActiveOnly:   !all,
					DepartmentID: optional(department),
					ManagerID:    optional(manager),
				})
			})
		},
	}
	list.Flags().IntVar(&pageSize, "page-size", 50, "page size")
	list.Flags().StringVar(&pageToken, "page-token", "", "page token from a previous call")
	list.Flags().BoolVar(&all, "all", false, "include terminated employees")
	list.Flags().StringVar(&department, "department", "", "filter by department ID")
	list.Flags().StringVar(&manager, "manager", "", "filter by manager employee ID")

	var (
		userID    string
		fullName  string
		roleID    string
		seniority string
		salary    string
		hireDate  string
		managerID string
	)
	hire := &cobra.Command{
		Use:   "hire",
		Short: "Create an employee profile for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := decimal.NewFromString(salary)
			if err != nil {
				return fmt.Errorf("invalid --salary %q: %w", salary, err)
			}
			date, err := parseDate(hireDate)
			if err != nil {
				return err
			}
			in := employee.HireEmployeeInput{
				UserID:    userID,
				FullName:  fullName,
				RoleID:    roleID,
				Salary:    amount,
				HireDate:  date,
				ManagerID: optional(managerID),
			}
			if seniority != "" {
				level, err := employee.ParseSeniority(seniority)
				if err != nil {
					return err
				}
				in.Seniority = &level
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Employees.HireEmployee(ctx, in)
			})
		},
	}
	hire.Flags().StringVar(&userID, "user", "", "user ID (required)")
	hire.Flags().StringVar(&fullName, "name", "", "full name (required)")
	hire.Flags().StringVar(&roleID, "role", "", "role ID (required)")
	hire.Flags().StringVar(&seniority, "seniority", "", "seniority: junior, mid or senior (defaults to junior)")
	hire.Flags().StringVar(&salary, "salary", "", "starting salary (required)")
	hire.Flags().StringVar(&hireDate, "hire-date", "", "hire date YYYY-MM-DD (defaults to today)")
	hire.Flags().StringVar(&managerID, "manager", "", "manager employee ID")
	for _, f := range []string{"user", "name", "role", "salary"} {
		_ = hire.MarkFlagRequired(f)
	}

	var terminationDate string
	terminate := &cobra.Command{
		Use:   "terminate <id>",
		Short: "Record the termination date of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(terminationDate)
			if err != nil {
				return err
			}
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Employees.TerminateEmployee(ctx, employee.TerminateEmployeeInput{ID: args[0], TerminationDate: date})
			})
		},
	}
	terminate.Flags().StringVar(&terminationDate, "date", "", "termination date YYYY-MM-DD (defaults to today)")

	var months int
	stale := &cobra.Command{
		Use:   "without-raise",
		Short: "List active employees without a raise in the last N months",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(ctx context.Context, s *services) (any, error) {
				return s.Employees.ListWithoutRecentRaises(ctx, months)
			})
		},
	}
	stale.Flags().IntVar(&months, "months", 12, "look-back window in months")

	cmd.AddCommand(get, analytics, list, hire, terminate, stale)
	return cmd
}
