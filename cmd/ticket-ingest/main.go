package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/TicketBox/config"
	"github.com/BearBump/TicketBox/internal/logger"
	"github.com/pkg/errors"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("config parse error: %v", err))
	}
	logger.Setup(cfg.TicketBox.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := RunTicketIngest(ctx, cfg, defaultIngestFactories(), nil); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
