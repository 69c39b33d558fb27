package main

import (
	"context"
	"net/http"

	"mensafetch/lib/configutil"
	configsqlite "mensafetch/lib/configutil/sqlite"
	"mensafetch/lib/telemetry"
	"mensafetch/lib/util/serviceutil"
	mensadb "mensafetch/services/mensa/db"
)

type Config struct {
	Database configsqlite.Struct `json:"database"`
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	database, err := config.Database.OpenDB(mensadb.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	t, err := telemetry.SetupFromEnv(ctx, "mensa-server")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InitSlog(false)
	telemetry.InstrumentPerfStats(ctx)

	api := NewApi(mensadb.New(database))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/menu", api.Menu)
	mux.HandleFunc("GET /api/empties", api.Empties)
	go serviceutil.StartHttpServer(8470, mux)

	<-ctx.Done()
}
