package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/verificacao-programa/controle-epi/internal/console"
	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := console.NewApp()
	err := app.NewRootCommand().ExecuteContext(ctx)
	if cerr := app.Close(); cerr != nil {
		log.Printf("[WARN] close store: %v", cerr)
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", console.Describe(err))
		os.Exit(apperr.ExitCode(err))
	}
}
