package console

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verificacao-programa/controle-epi/internal/loans"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
)

func (a *App) loanCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "loan", Short: "Lend and return equipment"}
	cmd.AddCommand(a.loanCreate(), a.loanReturn(), a.loanGet())
	return cmd
}

func (a *App) loanCreate() *cobra.Command {
	var in loans.CreateLoanRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Lend units of an item to an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			today, err := a.today()
			if err != nil {
				return err
			}
			in.Today = today
			r, err := a.loans.CreateLoan(ctxOf(cmd), in)
			if err != nil {
				return err
			}
			return printFields(out(cmd),
				"loan", strconv.FormatInt(r.ID, 10),
				"ulid", r.ULID,
				"loan date", dates.Format(r.LoanDate),
				"due date", dates.Format(r.DueDate),
			)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&in.EmployeeID, "employee", 0, "employee id")
	f.Int64Var(&in.EquipmentID, "equipment", 0, "equipment id")
	f.IntVar(&in.Quantity, "quantity", 1, "units to lend")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("equipment")
	return cmd
}

func (a *App) loanReturn() *cobra.Command {
	return &cobra.Command{
		Use:   "return ID",
		Short: "Return an active loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			r, err := a.loans.ReturnLoan(ctxOf(cmd), id, today)
			if err != nil {
				return err
			}
			if err := printFields(out(cmd),
				"loan", strconv.FormatInt(r.LoanID, 10),
				"returned", dates.Format(r.ReturnDate),
				"due date", dates.Format(r.DueDate),
				"units restored", strconv.Itoa(r.Quantity),
			); err != nil {
				return err
			}
			if r.Overdue {
				fmt.Fprintf(out(cmd), "returned %d day(s) late\n", r.OverdueDays)
			}
			return nil
		},
	}
}

func (a *App) loanGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID|ULID",
		Short: "Show one loan and its standing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := a.today()
			if err != nil {
				return err
			}
			l, err := a.loans.GetByKey(ctxOf(cmd), args[0])
			if err != nil {
				return err
			}
			st := l.Standing(today)
			kv := []string{
				"loan", strconv.FormatInt(l.ID, 10),
				"ulid", l.ULID,
				"employee", strconv.FormatInt(l.EmployeeID, 10),
				"equipment", strconv.FormatInt(l.EquipmentID, 10),
				"quantity", strconv.Itoa(l.Quantity),
				"loan date", dates.Format(l.LoanDate),
				"due date", dates.Format(l.DueDate),
				"status", string(l.Status),
			}
			if l.ReturnDate != nil {
				kv = append(kv, "returned", dates.Format(*l.ReturnDate))
			}
			if st.DaysRemaining != nil {
				kv = append(kv, "days remaining", strconv.Itoa(*st.DaysRemaining))
			}
			if st.DaysLate != nil {
				kv = append(kv, "days late", strconv.Itoa(*st.DaysLate))
			}
			return printFields(out(cmd), kv...)
		},
	}
}
