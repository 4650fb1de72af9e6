package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gestrans/gestrans-backend/internal/carriers"
	"github.com/gestrans/gestrans-backend/pkg/config"
	"github.com/gestrans/gestrans-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	logg := logger.New(logger.Options{
		ServiceName: "gestrans-cli",
		Level:       logger.ParseLevel(os.Getenv(config.EnvLogLevel)),
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &cliEnv{
		openService: storeOpener(logg),
		loadJWT:     config.LoadJWT,
		now:         time.Now,
		logg:        logg,
	}
	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func storeOpener(logg *logger.Logger) func(context.Context) (carriers.Service, func() error, error) {
	return func(ctx context.Context) (carriers.Service, func() error, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, errors.New(strings.Join(config.Problems(err), "; "))
		}
		backend, err := carriers.OpenBackend(ctx, cfg, logg)
		if err != nil {
			return nil, nil, err
		}
		svc, err := carriers.NewService(backend.Store)
		if err != nil {
			_ = backend.Close()
			return nil, nil, err
		}
		return svc, backend.Close, nil
	}
}
