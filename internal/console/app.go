// Package console is the command-line front end. It parses arguments, calls
// the engine services and renders their results; it holds no rules of its own.
package console

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/verificacao-programa/controle-epi/internal/employees"
	"github.com/verificacao-programa/controle-epi/internal/equipment"
	"github.com/verificacao-programa/controle-epi/internal/loans"
	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/platform/config"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
	"github.com/verificacao-programa/controle-epi/internal/platform/db"
	"github.com/verificacao-programa/controle-epi/internal/reports"
)

type App struct {
	configPath string
	todayFlag  string

	// Connect opens the store; replaced in tests.
	Connect func(config.DatabaseConfig) (*sql.DB, error)
	Clock   dates.Clock

	cfg       *config.Config
	conn      *sql.DB
	equipment *equipment.Service
	employees *employees.Service
	loans     *loans.Service
	reports   *reports.Service
}

func NewApp() *App {
	return &App{Connect: db.Connect, Clock: dates.SystemClock{}}
}

// NewRootCommand builds the epi command tree bound to a.
func (a *App) NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "epi",
		Short:         "PPE inventory and loan control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.Close()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "path to config file")
	root.PersistentFlags().StringVar(&a.todayFlag, "today", "", "treat this date (YYYY-MM-DD) as today")

	root.AddCommand(
		a.migrateCommand(),
		a.equipmentCommand(),
		a.employeeCommand(),
		a.loanCommand(),
		a.reportCommand(),
	)
	return root
}

func (a *App) open() error {
	if a.conn != nil {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	log.Printf("[INFO] mode:%s", cfg.Mode)

	conn, err := a.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	a.cfg = cfg
	a.conn = conn
	a.equipment = equipment.NewService(conn)
	a.employees = employees.NewService(conn)
	a.loans = loans.NewService(conn, cfg.Loan.PeriodDays)
	a.reports = reports.NewService(conn, cfg.Loan)
	return nil
}

func (a *App) Close() error {
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	return err
}

func (a *App) today() (time.Time, error) {
	if a.todayFlag == "" {
		return a.Clock.Today(), nil
	}
	t, err := dates.Parse(a.todayFlag)
	if err != nil {
		return time.Time{}, apperr.Invalid("--today: " + err.Error())
	}
	return t, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

func (a *App) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.Migrate(cmd.Context(), a.conn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
