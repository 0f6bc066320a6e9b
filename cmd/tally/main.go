package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/tally-dev/tally/internal/commands"
	"github.com/tally-dev/tally/internal/logger"
)

func main() {
	logger.Init("warn")

	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand().ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		stop()
		os.Exit(1)
	}
}
