package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobmcallan/peerscope/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(app.NewApp).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
