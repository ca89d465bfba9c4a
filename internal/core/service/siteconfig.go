package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotegarden/client-core/internal/core/domain"
	"github.com/quotegarden/client-core/internal/core/ports"
	"github.com/quotegarden/client-core/internal/metrics"
)

const defaultPollInterval = 30 * time.Second

// SiteSettings owns the site-configuration snapshot. Reads never block and
// never fail: until the first poll succeeds they serve DefaultSettings, and
// after that the last known good snapshot. A refresh replaces the whole value
// or is discarded; partial patching is not possible by construction.
type SiteSettings struct {
	backend  ports.Backend
	interval time.Duration
	log      zerolog.Logger

	mu      sync.RWMutex
	current domain.Settings
}

// NewSiteSettings creates the store with the default fallback snapshot.
// If interval <= 0, defaultPollInterval is used.
func NewSiteSettings(backend ports.Backend, interval time.Duration, log zerolog.Logger) *SiteSettings {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &SiteSettings{
		backend:  backend,
		interval: interval,
		log:      log,
		current:  domain.DefaultSettings(),
	}
}

// Current returns the latest settled snapshot.
func (s *SiteSettings) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh fetches the snapshot once. On failure the previous snapshot stays
// observable and the error is returned for logging by the caller.
func (s *SiteSettings) Refresh(ctx context.Context) error {
	snap, err := s.backend.PublicSettings(ctx)
	if err != nil {
		metrics.SettingsRefreshes.WithLabelValues("error").Inc()
		return err
	}
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	metrics.SettingsRefreshes.WithLabelValues("ok").Inc()
	return nil
}

// Start launches the poll loop. It refreshes immediately, then on every tick
// until ctx is cancelled. Poll failures are logged and the loop keeps going.
func (s *SiteSettings) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *SiteSettings) run(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn().Err(err).Msg("initial settings poll failed, serving fallback")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.log.Warn().Err(err).Msg("settings poll failed, keeping last snapshot")
			}
		}
	}
}
