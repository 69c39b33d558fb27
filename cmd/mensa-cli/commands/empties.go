package commands

import (
	"os"

	"mensafetch/lib/util/serviceutil"
	"mensafetch/services/mensa"
	"mensafetch/services/mensa/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var emptiesDate *string

func init() {
	emptiesDate = emptiesCmd.Flags().String("date", "today", "Date token of the day to diff, or 'today'.")
	rootCmd.AddCommand(emptiesCmd)
}

var emptiesCmd = &cobra.Command{
	Use:   "empties [--date <token>]",
	Short: "Recomputes which dishes went empty between the two fetches of a day.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		date := resolveDate(*emptiesDate)

		database, err := cfg.Database.OpenDB(db.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer database.Close()
		service := mensa.NewService(database)

		empties, err := service.ComputeEmpties(ctx, date)
		if err != nil {
			serviceutil.Fatal("failed to compute empties", err)
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Dish", "Name", "Hash"})
		for _, e := range empties {
			name := ""
			if e.Name != nil {
				name = *e.Name
			}
			t.AppendRow(table.Row{e.DishID, name, e.CanonicalHash})
		}
		t.Render()
	},
}
