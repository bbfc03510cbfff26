package console

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verificacao-programa/controle-epi/internal/platform/csvenc"
	"github.com/verificacao-programa/controle-epi/internal/reports"
)

type view func(ctx context.Context, today time.Time, args []string) (reports.Table, error)

func (a *App) reportCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Read-only stock and loan views"}

	add := func(use, short string, args cobra.PositionalArgs, v view) {
		var csvPath, encName string
		c := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, argv []string) error {
				today, err := a.today()
				if err != nil {
					return err
				}
				t, err := v(ctxOf(cmd), today, argv)
				if err != nil {
					return err
				}
				if csvPath == "" {
					return printTable(out(cmd), t)
				}
				return writeCSVFile(csvPath, encName, t)
			},
		}
		c.Flags().StringVar(&csvPath, "csv", "", "write the view to this CSV file instead of the terminal")
		c.Flags().StringVar(&encName, "encoding", "utf-8", "CSV encoding: utf-8 or windows-1252")
		cmd.AddCommand(c)
	}

	add("stock", "Items with stock on hand and their validity", cobra.NoArgs,
		func(ctx context.Context, today time.Time, _ []string) (reports.Table, error) {
			l, err := a.reports.AvailableStock(ctx, today)
			return reports.StockTable(l), err
		})
	add("expired", "Items past their expiration date", cobra.NoArgs,
		func(ctx context.Context, today time.Time, _ []string) (reports.Table, error) {
			l, err := a.reports.ExpiredItems(ctx, today)
			return reports.StockTable(l), err
		})
	add("expiring", "Items expiring within the configured window", cobra.NoArgs,
		func(ctx context.Context, today time.Time, _ []string) (reports.Table, error) {
			l, err := a.reports.ExpiringSoon(ctx, today)
			return reports.StockTable(l), err
		})
	add("on-loan", "Units currently out on loan, per item", cobra.NoArgs,
		func(ctx context.Context, _ time.Time, _ []string) (reports.Table, error) {
			l, err := a.reports.OnLoan(ctx)
			return reports.OnLoanTable(l), err
		})
	add("loans", "Every loan, newest first", cobra.NoArgs,
		func(ctx context.Context, today time.Time, _ []string) (reports.Table, error) {
			l, err := a.reports.Loans(ctx, today)
			return reports.LoanTable(l), err
		})
	add("active", "Active loans, soonest due first", cobra.NoArgs,
		func(ctx context.Context, today time.Time, _ []string) (reports.Table, error) {
			l, err := a.reports.ActiveLoans(ctx, today)
			return reports.LoanTable(l), err
		})
	add("due-soon", "Active loans due within the configured window", cobra.NoArgs,
		func(ctx context.Context, today time.Time, _ []string) (reports.Table, error) {
			l, err := a.reports.DueSoon(ctx, today)
			return reports.LoanTable(l), err
		})
	add("employee-history ID", "All loans of one employee", cobra.ExactArgs(1),
		func(ctx context.Context, today time.Time, args []string) (reports.Table, error) {
			id, err := parseID(args[0])
			if err != nil {
				return reports.Table{}, err
			}
			l, err := a.reports.EmployeeHistory(ctx, id, today)
			return reports.LoanTable(l), err
		})
	add("equipment-history ID", "All loans of one item", cobra.ExactArgs(1),
		func(ctx context.Context, today time.Time, args []string) (reports.Table, error) {
			id, err := parseID(args[0])
			if err != nil {
				return reports.Table{}, err
			}
			l, err := a.reports.EquipmentHistory(ctx, id, today)
			return reports.LoanTable(l), err
		})
	return cmd
}

func writeCSVFile(path, encName string, t reports.Table) error {
	enc, err := csvenc.ParseEncoding(encName)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f, enc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
