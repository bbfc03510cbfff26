package console

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verificacao-programa/controle-epi/internal/employees"
	"github.com/verificacao-programa/controle-epi/internal/reports"
)

func (a *App) employeeCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "employee", Short: "Manage the employee directory"}
	cmd.AddCommand(
		a.employeeRegister(),
		a.employeeUpdate(),
		a.employeeRemove(),
		a.employeeGet(),
		a.employeeFind(),
		a.employeeList(),
	)
	return cmd
}

func (a *App) employeeRegister() *cobra.Command {
	var in employees.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := a.employees.Register(ctxOf(cmd), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "registered employee %d\n", id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "full name")
	f.StringVar(&in.NationalID, "national-id", "", "national id, 11 digits")
	f.StringVar(&in.Role, "role", "", "job role")
	f.StringVar(&in.Department, "department", "", "department")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("national-id")
	return cmd
}

func (a *App) employeeUpdate() *cobra.Command {
	var name, nid, role, dept string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change selected fields of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			changed := func(flag string, v *string) *string {
				if cmd.Flags().Changed(flag) {
					return v
				}
				return nil
			}
			in := employees.UpdateRequest{
				Name:       changed("name", &name),
				NationalID: changed("national-id", &nid),
				Role:       changed("role", &role),
				Department: changed("department", &dept),
			}
			e, err := a.employees.Update(ctxOf(cmd), id, in)
			if err != nil {
				return err
			}
			return printEmployee(cmd, e)
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "new name")
	f.StringVar(&nid, "national-id", "", "new national id")
	f.StringVar(&role, "role", "", "new role")
	f.StringVar(&dept, "department", "", "new department")
	return cmd
}

func (a *App) employeeRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete an employee with no active loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.employees.Remove(ctxOf(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "removed employee %d\n", id)
			return nil
		},
	}
}

func (a *App) employeeGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := a.employees.Get(ctxOf(cmd), id)
			if err != nil {
				return err
			}
			return printEmployee(cmd, e)
		},
	}
}

func (a *App) employeeFind() *cobra.Command {
	return &cobra.Command{
		Use:   "find NATIONAL_ID",
		Short: "Show the employee with this national id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.employees.FindByNationalID(ctxOf(cmd), args[0])
			if err != nil {
				return err
			}
			return printEmployee(cmd, e)
		},
	}
}

func (a *App) employeeList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.employees.ListAll(ctxOf(cmd))
			if err != nil {
				return err
			}
			t := reports.Table{Header: []string{"id", "name", "national_id", "role", "department"}}
			for _, e := range list {
				t.Rows = append(t.Rows, []string{strconv.FormatInt(e.ID, 10), e.Name, e.NationalID, e.Role, e.Department})
			}
			return printTable(out(cmd), t)
		},
	}
}

func printEmployee(cmd *cobra.Command, e employees.Employee) error {
	return printFields(out(cmd),
		"id", strconv.FormatInt(e.ID, 10),
		"name", e.Name,
		"national id", e.NationalID,
		"role", e.Role,
		"department", e.Department,
	)
}
