package main

import (
	"context"

	"mensafetch/cmd/mensa-cli/commands"
	"mensafetch/lib/telemetry"
	"mensafetch/lib/util/serviceutil"
)

func main() {
	ctx := context.Background()
	t, err := telemetry.SetupFromEnv(ctx, "mensa-cli")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InitSlog(false)
	commands.ExecuteContext(ctx)
}
