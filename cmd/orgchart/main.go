// Command orgchart lays out, renders, explores and serves organization charts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.New(os.Stderr, log.InfoLevel).Execute(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
