package console

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verificacao-programa/controle-epi/internal/equipment"
	"github.com/verificacao-programa/controle-epi/internal/platform/csvenc"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
	"github.com/verificacao-programa/controle-epi/internal/reports"
)

func (a *App) equipmentCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "equipment", Aliases: []string{"epi"}, Short: "Manage the equipment catalog"}
	cmd.AddCommand(
		a.equipmentRegister(),
		a.equipmentUpdate(),
		a.equipmentRemove(),
		a.equipmentGet(),
		a.equipmentFind(),
		a.equipmentList(),
		a.equipmentImport(),
	)
	return cmd
}

func (a *App) equipmentRegister() *cobra.Command {
	var in equipment.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an item, or add stock to the item with the same name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.equipment.Register(ctxOf(cmd), in)
			if err != nil {
				return err
			}
			if res.Merged {
				fmt.Fprintf(out(cmd), "added %d unit(s) to existing item %d\n", in.Quantity, res.ID)
			} else {
				fmt.Fprintf(out(cmd), "registered item %d\n", res.ID)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "item name")
	f.StringVar(&in.Description, "description", "", "free text description")
	f.StringVar(&in.ExpirationDate, "expires", "", "expiration date (YYYY-MM-DD)")
	f.IntVar(&in.Quantity, "quantity", 0, "units to add")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("expires")
	return cmd
}

func (a *App) equipmentUpdate() *cobra.Command {
	var (
		name, desc, exp string
		qty             int
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change selected fields of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in equipment.UpdateRequest
			f := cmd.Flags()
			if f.Changed("name") {
				in.Name = &name
			}
			if f.Changed("description") {
				in.Description = &desc
			}
			if f.Changed("expires") {
				in.ExpirationDate = &exp
			}
			if f.Changed("quantity") {
				in.Quantity = &qty
			}
			it, err := a.equipment.Update(ctxOf(cmd), id, in)
			if err != nil {
				return err
			}
			return printItem(cmd, it)
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "new name")
	f.StringVar(&desc, "description", "", "new description")
	f.StringVar(&exp, "expires", "", "new expiration date (YYYY-MM-DD)")
	f.IntVar(&qty, "quantity", 0, "new stock on hand")
	return cmd
}

func (a *App) equipmentRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete an item with no active loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.equipment.Remove(ctxOf(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "removed item %d\n", id)
			return nil
		},
	}
}

func (a *App) equipmentGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			it, err := a.equipment.Get(ctxOf(cmd), id)
			if err != nil {
				return err
			}
			return printItem(cmd, it)
		},
	}
}

func (a *App) equipmentFind() *cobra.Command {
	return &cobra.Command{
		Use:   "find NAME",
		Short: "Show the item with this exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.equipment.FindByName(ctxOf(cmd), args[0])
			if err != nil {
				return err
			}
			return printItem(cmd, it)
		},
	}
}

func (a *App) equipmentList() *cobra.Command {
	var expired, available bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			today, err := a.today()
			if err != nil {
				return err
			}
			var items []equipment.Item
			switch {
			case expired:
				items, err = a.equipment.ListExpired(ctxOf(cmd), today)
			case available:
				items, err = a.equipment.ListAvailable(ctxOf(cmd))
			default:
				items, err = a.equipment.ListAll(ctxOf(cmd))
			}
			if err != nil {
				return err
			}
			lines := reports.StockLines(items, today, a.cfg.Loan.ExpiringSoonDays)
			return printTable(out(cmd), reports.StockTable(lines))
		},
	}
	cmd.Flags().BoolVar(&expired, "expired", false, "only items past their expiration date")
	cmd.Flags().BoolVar(&available, "available", false, "only items with stock on hand")
	cmd.MarkFlagsMutuallyExclusive("expired", "available")
	return cmd
}

func (a *App) equipmentImport() *cobra.Command {
	var encName string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Register items from a CSV file (name,description,expiration_date,quantity)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := csvenc.ParseEncoding(encName)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := a.equipment.Import(ctxOf(cmd), f, enc)
			if err != nil {
				return err
			}
			t := reports.Table{Header: []string{"line", "name", "id", "result"}}
			for _, r := range res.Rows {
				result := "created"
				switch {
				case r.Error != "":
					result = r.Error
				case r.Merged:
					result = "merged"
				}
				t.Rows = append(t.Rows, []string{strconv.Itoa(r.Line), r.Name, strconv.FormatInt(r.ID, 10), result})
			}
			if err := printTable(out(cmd), t); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "created %d, merged %d, failed %d\n", res.Created, res.Merged, res.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&encName, "encoding", "utf-8", "file encoding: utf-8 or windows-1252")
	return cmd
}

func printItem(cmd *cobra.Command, it equipment.Item) error {
	return printFields(out(cmd),
		"id", strconv.FormatInt(it.ID, 10),
		"name", it.Name,
		"description", it.Description,
		"expires", dates.Format(it.ExpirationDate),
		"quantity", strconv.Itoa(it.Quantity),
	)
}
