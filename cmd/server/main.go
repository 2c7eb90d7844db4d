package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/app"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/logger"
)

func main() {
	// Replaced by the configured logger once app.Run has loaded config.
	logger.SetAsDefault(logger.New(logger.WithOutput(os.Stderr)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, app.Run)
	stop()
	os.Exit(code)
}

// run starts the service and maps its outcome to a process exit code.
func run(ctx context.Context, start func(context.Context) error) int {
	if err := start(ctx); err != nil {
		slog.ErrorContext(ctx, "server exited with error",
			logger.Component("server"),
			logger.Error(err),
		)
		return 1
	}
	return 0
}
