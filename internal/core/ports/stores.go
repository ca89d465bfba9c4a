package ports

import (
	"context"

	"github.com/quotegarden/client-core/internal/core/domain"
)

// SessionStore owns the authenticated-user mirror.
type SessionStore interface {
	// Current reads through the cache, blocking on the first fetch.
	Current(ctx context.Context) (domain.Session, error)
	// Snapshot returns the settled mirror without fetching; SessionLoading
	// before the first fetch settles.
	Snapshot() domain.Session
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, in RegisterInput) error
}

// SettingsStore owns the site-configuration snapshot.
type SettingsStore interface {
	// Current never blocks and never fails; it falls back to the last known
	// good snapshot (or defaults) when no poll has succeeded yet.
	Current() domain.Settings
	Refresh(ctx context.Context) error
}

// DismissalStore records which popup notifications were dismissed in this
// session.
type DismissalStore interface {
	IsDismissed(n domain.Notification) bool
	Dismiss(n domain.Notification)
}

// EconomyService submits currency-bearing codes. At most one submission per
// action kind may be outstanding; a second concurrent call of the same kind is
// refused with domain.ErrSubmissionInFlight before any network I/O.
type EconomyService interface {
	Redeem(ctx context.Context, code string) (domain.RedeemOutcome, error)
	UseReferral(ctx context.Context, code string) (domain.ReferralOutcome, error)
}
