package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/de-tools/revops-pilot/pkg/runtime/terminal"
	"github.com/de-tools/revops-pilot/pkg/services/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := terminal.NewCLI(terminal.Options{
		Registry: source.DefaultRegistry(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", terminal.Classify(err), err)
		stop()
		os.Exit(terminal.ExitCode(err))
	}
}
