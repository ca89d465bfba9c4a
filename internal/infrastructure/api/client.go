// Package api is the HTTP adapter for the platform backend. It speaks the
// JSON-over-HTTPS contract with cookie-based sessions and translates wire
// failures into the domain error taxonomy: declined credentials map to
// domain.ErrInvalidCredentials, domain declines to domain.RuleError, and
// network errors or 5xx responses to domain.TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotegarden/client-core/internal/core/domain"
	"github.com/quotegarden/client-core/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Client implements ports.Backend over net/http. The cookie jar carries the
// session cookie across calls, mirroring the browser's behavior.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

// NewClient parses baseURL and builds a cookie-carrying HTTP client. A default
// timeout is applied when none is provided; all per-call deadlines beyond that
// come from the caller's context.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout, Jar: jar},
		log:  log,
	}, nil
}

// apiError is a settled non-2xx, non-5xx response with its decoded message.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.status, e.message)
}

// asRule converts a settled 4xx the caller has no dedicated mapping for into
// a RuleError, so the adapter never leaks its internal error type. Other
// errors pass through unchanged.
func asRule(err error) error {
	var ae *apiError
	if errors.As(err, &ae) {
		return &domain.RuleError{Msg: ae.message}
	}
	return err
}

// Me returns the authenticated user, or (nil, nil) when the server confirms
// there is no session.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, asRule(err)
	}
	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", body, nil)
	var ae *apiError
	if errors.As(err, &ae) {
		return fmt.Errorf("%s: %w", ae.message, domain.ErrInvalidCredentials)
	}
	return err
}

func (c *Client) Logout(ctx context.Context) error {
	return asRule(c.do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{}, nil))
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/register", in, nil)
	var ae *apiError
	if errors.As(err, &ae) {
		return &domain.RuleError{Msg: ae.message}
	}
	return err
}

// settingsPayload is the flat wire shape of GET /api/settings/public.
type settingsPayload struct {
	MaintenanceMode             bool   `json:"maintenanceMode"`
	BetaMode                    bool   `json:"betaMode"`
	BetaAccessType              string `json:"betaAccessType"`
	SiteName                    string `json:"siteName"`
	SiteDescription             string `json:"siteDescription"`
	NotificationEnabled         bool   `json:"notificationEnabled"`
	NotificationType            string `json:"notificationType"`
	NotificationMessage         string `json:"notificationMessage"`
	NotificationBackgroundColor string `json:"notificationBackgroundColor"`
	NotificationTextColor       string `json:"notificationTextColor"`
}

func (c *Client) PublicSettings(ctx context.Context) (domain.Settings, error) {
	var p settingsPayload
	if err := c.do(ctx, http.MethodGet, "/api/settings/public", nil, &p); err != nil {
		return domain.Settings{}, asRule(err)
	}
	return domain.Settings{
		MaintenanceMode: p.MaintenanceMode,
		BetaMode:        p.BetaMode,
		BetaAccessType:  p.BetaAccessType,
		SiteName:        p.SiteName,
		SiteDescription: p.SiteDescription,
		Notification: domain.Notification{
			Enabled:         p.NotificationEnabled,
			Type:            domain.NotificationType(p.NotificationType),
			Message:         p.NotificationMessage,
			BackgroundColor: p.NotificationBackgroundColor,
			TextColor:       p.NotificationTextColor,
		},
	}, nil
}

// redeemResponse is the wire shape of POST /api/redeem. The server reports
// declines either as a 4xx or as a 200 with success=false; both map to a
// RuleError carrying the server's message verbatim.
type redeemResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	FlowersAmount int    `json:"flowersAmount"`
}

func (c *Client) Redeem(ctx context.Context, code string) (domain.RedeemOutcome, error) {
	var resp redeemResponse
	err := c.do(ctx, http.MethodPost, "/api/redeem", map[string]string{"code": code}, &resp)
	var ae *apiError
	if errors.As(err, &ae) {
		return domain.RedeemOutcome{}, &domain.RuleError{Msg: ae.message}
	}
	if err != nil {
		return domain.RedeemOutcome{}, err
	}
	if !resp.Success {
		return domain.RedeemOutcome{}, &domain.RuleError{Msg: resp.Message}
	}
	return domain.RedeemOutcome{Message: resp.Message, FlowersAmount: resp.FlowersAmount}, nil
}

func (c *Client) UseReferral(ctx context.Context, code string) (domain.ReferralOutcome, error) {
	var resp struct {
		Bonus int `json:"bonus"`
	}
	err := c.do(ctx, http.MethodPost, "/api/referral/use", map[string]string{"code": code}, &resp)
	var ae *apiError
	if errors.As(err, &ae) {
		return domain.ReferralOutcome{}, &domain.RuleError{Msg: ae.message}
	}
	if err != nil {
		return domain.ReferralOutcome{}, err
	}
	return domain.ReferralOutcome{Bonus: resp.Bonus}, nil
}

// do performs one round trip. in (when non-nil) is JSON-encoded; out (when
// non-nil) receives the decoded 2xx body. Failures come back as:
//   - *domain.TransportError for network errors and 5xx responses
//   - *apiError for settled 4xx responses, with the {"error"|"message"}
//     envelope decoded
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}

	switch {
	case resp.StatusCode >= 500:
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("server error")
		return &domain.TransportError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return &apiError{status: resp.StatusCode, message: failureMessage(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &domain.TransportError{Op: op, Err: fmt.Errorf("decode: %w", err)}
		}
	}
	return nil
}

// failureMessage extracts the human-readable message from a 4xx body. Both
// envelope styles of the contract are accepted: {"error": ...} for auth and
// referral endpoints, {"message": ...} for redeem.
func failureMessage(raw []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return "request rejected"
}
