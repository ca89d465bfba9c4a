package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/quotegarden/client-core/internal/core/domain"
	"github.com/quotegarden/client-core/internal/core/ports"
	"github.com/quotegarden/client-core/internal/metrics"
)

// Sessions owns the authenticated-user mirror. The mirror is a cache entry
// under ports.QueryCurrentUser holding a *domain.User (nil once the server
// confirms no session). Every mutation follows the same discipline: send the
// request, wait for it to settle, then invalidate the query so the next read
// re-derives the identity from the server. The mirror is never written with a
// locally fabricated value; a mutation failure leaves it untouched.
type Sessions struct {
	backend  ports.Backend
	cache    ports.QueryCache
	validate *validator.Validate
	log      zerolog.Logger
}

func NewSessions(backend ports.Backend, cache ports.QueryCache, log zerolog.Logger) *Sessions {
	return &Sessions{
		backend:  backend,
		cache:    cache,
		validate: validator.New(),
		log:      log,
	}
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Current reads the mirror through the cache, blocking on the first fetch.
func (s *Sessions) Current(ctx context.Context) (domain.Session, error) {
	v, err := s.cache.Fetch(ctx, ports.QueryCurrentUser, s.fetchUser)
	if err != nil {
		return domain.Session{Status: domain.SessionLoading}, err
	}
	return sessionOf(v), nil
}

// Snapshot returns the settled mirror without fetching. Before the first
// fetch settles the session reports SessionLoading.
func (s *Sessions) Snapshot() domain.Session {
	v, ok := s.cache.Peek(ports.QueryCurrentUser)
	if !ok {
		return domain.Session{Status: domain.SessionLoading}
	}
	return sessionOf(v)
}

// Login authenticates against the backend and resynchronizes the mirror.
// On failure the mirror is left unchanged and the error is returned to the
// caller; nothing is retried.
func (s *Sessions) Login(ctx context.Context, email, password string) error {
	if err := checkStruct(s.validate, credentials{Email: email, Password: password}); err != nil {
		return err
	}
	if err := s.backend.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.log.Info().Str("email", email).Msg("login confirmed, resynchronizing session")
	s.cache.Invalidate(ports.QueryCurrentUser)
	return nil
}

// Logout terminates the server-side session, then invalidates the mirror.
// The mirror flips to absent only once the server has settled the request;
// setting it early would flash an authenticated view back on failure.
func (s *Sessions) Logout(ctx context.Context) error {
	if err := s.backend.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Msg("logout confirmed, resynchronizing session")
	s.cache.Invalidate(ports.QueryCurrentUser)
	return nil
}

// Register creates an account and resynchronizes the mirror, identical in
// discipline to Login.
func (s *Sessions) Register(ctx context.Context, in ports.RegisterInput) error {
	if err := checkStruct(s.validate, in); err != nil {
		return err
	}
	if err := s.backend.Register(ctx, in); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	s.log.Info().Str("username", in.Username).Msg("registration confirmed, resynchronizing session")
	s.cache.Invalidate(ports.QueryCurrentUser)
	return nil
}

func (s *Sessions) fetchUser(ctx context.Context) (any, error) {
	user, err := s.backend.Me(ctx)
	if err != nil {
		metrics.SessionRefreshes.WithLabelValues("error").Inc()
		return nil, err
	}
	if user == nil {
		metrics.SessionRefreshes.WithLabelValues("absent").Inc()
	} else {
		metrics.SessionRefreshes.WithLabelValues("present").Inc()
	}
	return user, nil
}

func sessionOf(v any) domain.Session {
	user, _ := v.(*domain.User)
	if user == nil {
		return domain.Session{Status: domain.SessionAbsent}
	}
	return domain.Session{Status: domain.SessionPresent, User: user}
}
