package ports

import (
	"context"

	"github.com/quotegarden/client-core/internal/core/domain"
)

// RegisterInput carries the fields the registration endpoint accepts.
// BetaCode is only required while the site runs in gated-beta mode.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	BetaCode string `json:"betaCode,omitempty"`
}

// Backend is the HTTP contract of the platform API, as consumed by this core.
// Implementations map wire-level failures into the domain error taxonomy:
// declined credentials to ErrInvalidCredentials, domain declines to RuleError,
// network errors and 5xx responses to TransportError.
type Backend interface {
	// Me returns the authenticated user, or (nil, nil) when the server
	// confirms there is no session.
	Me(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, in RegisterInput) error

	// PublicSettings fetches the whole site-configuration snapshot.
	PublicSettings(ctx context.Context) (domain.Settings, error)

	Redeem(ctx context.Context, code string) (domain.RedeemOutcome, error)
	UseReferral(ctx context.Context, code string) (domain.ReferralOutcome, error)
}
