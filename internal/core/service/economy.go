package service

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/quotegarden/client-core/internal/core/domain"
	"github.com/quotegarden/client-core/internal/core/ports"
	"github.com/quotegarden/client-core/internal/metrics"
)

// Economy coordinates currency-bearing code submissions. Each submission is
// terminal: the server's verdict (or a transport failure) is surfaced once and
// never retried automatically, since the server may have executed the
// operation even when the response was lost.
//
// At most one submission per action kind may be outstanding. The guard is
// scoped to this instance; two client instances (tabs) do not coordinate.
type Economy struct {
	backend  ports.Backend
	cache    ports.QueryCache
	validate *validator.Validate
	log      zerolog.Logger

	mu       sync.Mutex
	inflight map[domain.ActionKind]bool
}

func NewEconomy(backend ports.Backend, cache ports.QueryCache, log zerolog.Logger) *Economy {
	return &Economy{
		backend:  backend,
		cache:    cache,
		validate: validator.New(),
		log:      log,
		inflight: make(map[domain.ActionKind]bool),
	}
}

type codeSubmission struct {
	Code string `validate:"required,max=64"`
}

// Redeem submits a promotional code. On success the current-user query is
// invalidated so the displayed balance is re-derived from the server's
// confirmed state, not computed by adding the credited amount locally.
func (e *Economy) Redeem(ctx context.Context, code string) (domain.RedeemOutcome, error) {
	code, err := e.normalize(code)
	if err != nil {
		metrics.EconomySubmissions.WithLabelValues(string(domain.ActionRedeem), "invalid").Inc()
		return domain.RedeemOutcome{}, err
	}
	if !e.tryAcquire(domain.ActionRedeem) {
		metrics.EconomyRefusals.WithLabelValues(string(domain.ActionRedeem)).Inc()
		return domain.RedeemOutcome{}, domain.ErrSubmissionInFlight
	}
	defer e.release(domain.ActionRedeem)
	timer := prometheus.NewTimer(metrics.SubmissionDuration.WithLabelValues(string(domain.ActionRedeem)))
	defer timer.ObserveDuration()

	out, err := e.backend.Redeem(ctx, code)
	if err != nil {
		e.recordFailure(domain.ActionRedeem, code, err)
		return domain.RedeemOutcome{}, err
	}

	e.log.Info().Str("code", code).Int("flowers_amount", out.FlowersAmount).Msg("redeem confirmed")
	metrics.EconomySubmissions.WithLabelValues(string(domain.ActionRedeem), "success").Inc()
	e.cache.Invalidate(ports.QueryCurrentUser)
	return out, nil
}

// UseReferral submits another user's referral code, with the same guard and
// resynchronization discipline as Redeem.
func (e *Economy) UseReferral(ctx context.Context, code string) (domain.ReferralOutcome, error) {
	code, err := e.normalize(code)
	if err != nil {
		metrics.EconomySubmissions.WithLabelValues(string(domain.ActionReferral), "invalid").Inc()
		return domain.ReferralOutcome{}, err
	}
	if !e.tryAcquire(domain.ActionReferral) {
		metrics.EconomyRefusals.WithLabelValues(string(domain.ActionReferral)).Inc()
		return domain.ReferralOutcome{}, domain.ErrSubmissionInFlight
	}
	defer e.release(domain.ActionReferral)
	timer := prometheus.NewTimer(metrics.SubmissionDuration.WithLabelValues(string(domain.ActionReferral)))
	defer timer.ObserveDuration()

	out, err := e.backend.UseReferral(ctx, code)
	if err != nil {
		e.recordFailure(domain.ActionReferral, code, err)
		return domain.ReferralOutcome{}, err
	}

	e.log.Info().Str("code", code).Int("bonus", out.Bonus).Msg("referral confirmed")
	metrics.EconomySubmissions.WithLabelValues(string(domain.ActionReferral), "success").Inc()
	e.cache.Invalidate(ports.QueryCurrentUser)
	return out, nil
}

// normalize trims, uppercases, and bounds the submitted code. An empty code
// is rejected before any network call.
func (e *Economy) normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", &domain.ValidationError{Msg: domain.ErrEmptyCode.Error(), Err: domain.ErrEmptyCode}
	}
	if err := checkStruct(e.validate, codeSubmission{Code: code}); err != nil {
		return "", err
	}
	return code, nil
}

// tryAcquire claims the in-flight slot for kind. It returns false when a
// submission of the same kind has not settled yet.
func (e *Economy) tryAcquire(kind domain.ActionKind) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[kind] {
		return false
	}
	e.inflight[kind] = true
	return true
}

func (e *Economy) release(kind domain.ActionKind) {
	e.mu.Lock()
	e.inflight[kind] = false
	e.mu.Unlock()
}

// recordFailure logs a terminal failure. No cache invalidation happens on any
// failure path, so the cached balance is guaranteed unchanged.
func (e *Economy) recordFailure(kind domain.ActionKind, code string, err error) {
	result := "declined"
	if domain.IsTransport(err) {
		result = "transport"
	}
	metrics.EconomySubmissions.WithLabelValues(string(kind), result).Inc()
	e.log.Warn().Str("code", code).Str("action", string(kind)).Err(err).Msg("submission failed")
}
