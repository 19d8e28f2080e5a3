package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sanjit42/naming-service/cmd/rosterctl/commands"
	"github.com/Sanjit42/naming-service/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.NewApp()
	defer app.Close()

	if err := commands.New(app).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
