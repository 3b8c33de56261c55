package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/keyclip/cmd"
	"github.com/tphakala/keyclip/internal/buildinfo"
	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/logger"
)

// buildDate and version are set at build time with -ldflags "-X main.version=..."
var (
	buildDate string
	version   string
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	info := buildinfo.NewContext(version, buildDate)

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings, info)
	runErr := rootCmd.ExecuteContext(ctx)

	sentry.Flush(2 * time.Second)
	if err := logger.Global().Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing logger: %v\n", err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}
