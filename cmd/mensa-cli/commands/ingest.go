package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"mensafetch/lib/notify"
	"mensafetch/lib/util/serviceutil"
	"mensafetch/services/mensa"
	"mensafetch/services/mensa/db"

	"github.com/spf13/cobra"
)

var (
	ingestFile    *string
	ingestUrl     *string
	ingestDate    *string
	ingestAttempt *int64
)

func init() {
	ingestFile = ingestCmd.Flags().String("file", "", "Ingest a saved menu page instead of fetching one.")
	ingestUrl = ingestCmd.Flags().String("url", "", "Fetch the menu page from this url instead of the configured one.")
	ingestDate = ingestCmd.Flags().String("date", "today", "Date token of the day to ingest, or 'today'.")
	ingestAttempt = ingestCmd.Flags().Int64("attempt", 1, "Which fetch of the day this is (1 = morning, 2 = after lunch).")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest --attempt <1|2> [--date <token>] [--file <page.html> | --url <url>]",
	Short: "Fetches the menu page, stores today's snapshot and, on the second attempt, reports dishes that went empty.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		mailer := notify.NewMailer(cfg.Smtp)
		date := resolveDate(*ingestDate)

		err := runIngest(cmd, cfg, mailer, date)
		if err != nil {
			mailer.SendOrLog(
				fmt.Sprintf("mensa ingest failed (%s attempt %d)", date, *ingestAttempt),
				err.Error(),
			)
			serviceutil.Fatal("ingest failed", err)
		}
	},
}

func runIngest(cmd *cobra.Command, cfg Config, mailer notify.Mailer, date string) error {
	ctx := cmd.Context()

	url := *ingestUrl
	if url == "" && *ingestFile == "" {
		url = cfg.MenuUrl
	}
	document, err := loadDocument(ctx, *ingestFile, url)
	if err != nil {
		return fmt.Errorf("load menu page: %w", err)
	}

	database, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()
	service := mensa.NewService(database)

	snapshotId, records, err := service.Ingest(ctx, mensa.IngestRequest{
		Document:  document,
		DateToken: date,
		Attempt:   *ingestAttempt,
	})
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	slog.Info("stored snapshot",
		"id", snapshotId, "date", date,
		"attempt", *ingestAttempt, "dishes", len(records))

	if *ingestAttempt != 2 {
		return nil
	}

	empties, err := service.ComputeEmpties(ctx, date)
	if err != nil {
		return fmt.Errorf("compute empties: %w", err)
	}
	slog.Info("computed empties", "date", date, "count", len(empties))
	if len(empties) == 0 {
		return nil
	}

	var body strings.Builder
	for _, e := range empties {
		name := "(unnamed dish)"
		if e.Name != nil {
			name = *e.Name
		}
		fmt.Fprintf(&body, "- %s (%s)\n", name, e.CanonicalHash)
	}
	mailer.SendOrLog(
		fmt.Sprintf("%d dishes went empty on %s", len(empties), date),
		body.String(),
	)
	return nil
}
