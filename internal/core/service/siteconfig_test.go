package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotegarden/client-core/internal/core/domain"
	"github.com/quotegarden/client-core/internal/core/ports"
)

func TestSiteSettings_FallbackBeforeFirstPoll(t *testing.T) {
	backend := &stubBackend{}
	s := NewSiteSettings(backend, time.Minute, zerolog.Nop())

	got := s.Current()
	if got.MaintenanceMode {
		t.Fatal("fallback snapshot must not enable maintenance")
	}
	if got.SiteName == "" {
		t.Fatal("fallback snapshot missing defaults")
	}
}

func TestSiteSettings_RefreshReplacesWholesale(t *testing.T) {
	backend := &stubBackend{}
	backend.settings = domain.Settings{
		MaintenanceMode: true,
		SiteName:        "QuoteGarden",
		Notification: domain.Notification{
			Enabled: true,
			Type:    domain.NotificationBanner,
			Message: "Back soon",
		},
	}
	s := NewSiteSettings(backend, time.Minute, zerolog.Nop())

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got := s.Current()
	if !got.MaintenanceMode || got.Notification.Message != "Back soon" {
		t.Fatalf("snapshot not replaced: %+v", got)
	}

	// The next poll replaces the whole value; nothing from the previous
	// snapshot survives a field going back to its zero value.
	backend.mu.Lock()
	backend.settings = domain.Settings{SiteName: "QuoteGarden"}
	backend.mu.Unlock()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	got = s.Current()
	if got.MaintenanceMode || got.Notification.Enabled {
		t.Fatalf("partial merge detected: %+v", got)
	}
}

func TestSiteSettings_FailedRefreshKeepsLastKnownGood(t *testing.T) {
	backend := &stubBackend{}
	backend.settings = domain.Settings{MaintenanceMode: true, SiteName: "QuoteGarden"}
	s := NewSiteSettings(backend, time.Minute, zerolog.Nop())

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	backend.mu.Lock()
	backend.settingsErr = &domain.TransportError{Op: "GET /api/settings/public", Err: errors.New("timeout")}
	backend.mu.Unlock()

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := s.Current(); !got.MaintenanceMode {
		t.Fatalf("failed refresh discarded the last known good snapshot: %+v", got)
	}
}

func TestSiteSettings_PollLoopStopsOnCancel(t *testing.T) {
	backend := &stubBackend{}
	s := NewSiteSettings(backend, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()
	// No assertion beyond not leaking: the loop exits on ctx cancel and the
	// race detector flags any write after Current below.
	_ = s.Current()
}

var _ ports.SettingsStore = (*SiteSettings)(nil)
