// Package app assembles the client core: one backend adapter, one query
// cache, and the stores that share them. It also hosts the process-wide
// singleton through which consumers reach session and settings state without
// threading them through every call boundary.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quotegarden/client-core/internal/core/domain"
	"github.com/quotegarden/client-core/internal/core/ports"
	"github.com/quotegarden/client-core/internal/core/service"
	"github.com/quotegarden/client-core/internal/infrastructure/api"
	"github.com/quotegarden/client-core/internal/infrastructure/config"
	"github.com/quotegarden/client-core/internal/infrastructure/querycache"
)

// App holds the wired client core. The session mirror and settings snapshot
// inside it are the only shared mutable state of the core; every mutation
// goes through the store interfaces.
type App struct {
	Backend    ports.Backend
	Cache      ports.QueryCache
	Sessions   *service.Sessions
	Settings   *service.SiteSettings
	Dismissals *service.Dismissals
	Economy    *service.Economy

	log zerolog.Logger
}

// New wires the core from configuration. Nothing is fetched yet; the first
// session read and the settings poll happen after Start.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	backend, err := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	if err != nil {
		return nil, err
	}
	cache := querycache.New()

	return &App{
		Backend:    backend,
		Cache:      cache,
		Sessions:   service.NewSessions(backend, cache, log),
		Settings:   service.NewSiteSettings(backend, cfg.API.PollInterval, log),
		Dismissals: service.NewDismissals(),
		Economy:    service.NewEconomy(backend, cache, log),
		log:        log,
	}, nil
}

// Start begins the settings poll loop. Cancelling ctx stops it; the App
// itself holds no other background resources.
func (a *App) Start(ctx context.Context) {
	a.Settings.Start(ctx)
	a.log.Debug().Msg("client core started")
}

// View combines the latest settled session and settings values into the
// render decision, consulting the dismissal store for popup suppression.
func (a *App) View() domain.View {
	settings := a.Settings.Current()
	dismissed := a.Dismissals.IsDismissed(settings.Notification)
	return domain.Decide(a.Sessions.Snapshot(), settings, dismissed)
}

var (
	instanceMu sync.Mutex
	instance   *App
)

// Init initialises the process-wide App. Only the first successful call
// builds it; later calls return the same instance. A failed call leaves the
// singleton unset, so Init may be retried with corrected configuration.
func Init(cfg *config.Config, log zerolog.Logger) (*App, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		return instance, nil
	}
	a, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	instance = a
	return instance, nil
}

// Current returns the process-wide App. Panics if no Init call has succeeded.
func Current() *App {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		panic("app: Current() called before Init()")
	}
	return instance
}

// Reset tears down the singleton so that the next Init call rebuilds it.
// Intended for use in tests only.
func Reset() {
	instanceMu.Lock()
	instance = nil
	instanceMu.Unlock()
}
