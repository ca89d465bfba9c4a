package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/quotegarden/client-core/internal/devstub"
	"github.com/quotegarden/client-core/internal/infrastructure/config"
	"github.com/quotegarden/client-core/pkg/logger"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	store := devstub.NewStore()
	store.Seed()

	e := devstub.NewRouter(store, log)
	log.Info().Str("port", cfg.Stub.Port).Msg("devstub listening")
	if err := e.Start(":" + cfg.Stub.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("devstub stopped")
	}
}
