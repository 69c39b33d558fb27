package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"mensafetch/lib/util/serviceutil"
	"mensafetch/services/mensa"

	"github.com/spf13/cobra"
)

var (
	parseFile   *string
	parseUrl    *string
	parseDate   *string
	parseOutput *string
)

func init() {
	parseFile = parseCmd.Flags().String("file", "", "Parse a saved menu page instead of fetching one.")
	parseUrl = parseCmd.Flags().String("url", "", "Fetch the menu page from this url.")
	parseDate = parseCmd.Flags().String("date", "today", "Date token of the day to extract, or 'today'.")
	parseOutput = parseCmd.Flags().String("output", "", "Write the result here instead of stdout.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [--file <page.html> | --url <url>] [--date <token>] [--output <out.json>]",
	Short: "Extracts the dishes of one day from a menu page and prints them as JSON.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		date := resolveDate(*parseDate)

		document, err := loadDocument(ctx, *parseFile, *parseUrl)
		if err != nil {
			serviceutil.Fatal("failed to load menu page", err)
		}

		records, _, err := mensa.ParseDocument(document, date)
		if err != nil {
			serviceutil.Fatal("failed to parse menu page", err)
		}

		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			serviceutil.Fatal("failed to encode records", err)
		}

		output := *parseOutput
		if output == "" && cmd.Flags().Changed("date") {
			output = fmt.Sprintf("menu_%s.json", date)
		}
		if output == "" {
			fmt.Println(string(out))
			return
		}
		err = writeFileAtomic(output, out)
		if err != nil {
			serviceutil.Fatal("failed to write output file", err)
		}
		slog.Info("wrote menu", "file", output, "dishes", len(records))
	},
}
