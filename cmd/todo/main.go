package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ixann-ui/ukk-todolist/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date), os.Args[1:])
	stop()
	os.Exit(code)
}
