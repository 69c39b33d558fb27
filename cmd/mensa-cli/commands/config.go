package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mensafetch/lib/configutil"
	configsqlite "mensafetch/lib/configutil/sqlite"
	"mensafetch/lib/fetch"
	"mensafetch/lib/notify"
	"mensafetch/lib/timezone"
	"mensafetch/lib/util/serviceutil"
)

type Config struct {
	MenuUrl  string              `json:"menu_url"`
	Database configsqlite.Struct `json:"database"`
	Smtp     notify.SmtpConfig   `json:"smtp"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

// resolveDate expands "today" (and the empty string) into the current
// date token in the canteen's timezone.
func resolveDate(date string) string {
	if date == "" || date == "today" {
		return timezone.DateToken(timezone.Now())
	}
	return date
}

func loadDocument(ctx context.Context, file, url string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if url != "" {
		return fetch.NewClient().Page(ctx, url)
	}
	return "", fmt.Errorf("either --file or --url must be specified")
}

// writeFileAtomic writes through a temp file in the target directory so
// a crash mid-write never leaves a truncated result behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".menu-*.json")
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
