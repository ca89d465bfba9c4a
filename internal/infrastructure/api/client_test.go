package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotegarden/client-core/internal/core/domain"
	"github.com/quotegarden/client-core/internal/core/ports"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClient_MeNullUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/auth/me" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"user": nil})
	}))

	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}
}

func TestClient_MeDecodesUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"fern@quotegarden.dev","username":"fern","role":"member","flowers":120,"referralCode":"QG-F3RN"}}`))
	}))

	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.Username != "fern" || user.Flowers != 120 || user.ReferralCode != "QG-F3RN" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestClient_SessionCookieCarriesAcrossCalls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "qg_session", Value: "tok123", Path: "/"})
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("qg_session")
		if err != nil || cookie.Value != "tok123" {
			_, _ = w.Write([]byte(`{"user":null}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":"u1","username":"fern","role":"member"}}`))
	})
	c := newTestClient(t, mux)

	if err := c.Login(context.Background(), "fern@quotegarden.dev", "quiet-meadow"); err != nil {
		t.Fatalf("login: %v", err)
	}
	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user == nil || user.Username != "fern" {
		t.Fatalf("session cookie not carried: %+v", user)
	}
}

func TestClient_LoginInvalidCredentials(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))

	err := c.Login(context.Background(), "fern@quotegarden.dev", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestClient_RegisterConflict(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"email already registered"}`))
	}))

	err := c.Register(context.Background(), ports.RegisterInput{Email: "fern@quotegarden.dev", Username: "fern", Password: "quiet-meadow"})
	var re *domain.RuleError
	if !errors.As(err, &re) || re.Msg != "email already registered" {
		t.Fatalf("expected verbatim rule error, got %v", err)
	}
}

func TestClient_PublicSettingsMapsFlatPayload(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"maintenanceMode": true,
			"betaMode": true,
			"betaAccessType": "code",
			"siteName": "QuoteGarden",
			"siteDescription": "Share the words that grew on you.",
			"notificationEnabled": true,
			"notificationType": "popup",
			"notificationMessage": "Planned downtime on Sunday",
			"notificationBackgroundColor": "#2a9d8f",
			"notificationTextColor": "#ffffff"
		}`))
	}))

	got, err := c.PublicSettings(context.Background())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if !got.MaintenanceMode || !got.BetaMode || got.BetaAccessType != "code" {
		t.Fatalf("flags not mapped: %+v", got)
	}
	n := got.Notification
	if !n.Enabled || n.Type != domain.NotificationPopup || n.Message != "Planned downtime on Sunday" {
		t.Fatalf("notification not mapped: %+v", n)
	}
	if n.BackgroundColor != "#2a9d8f" || n.TextColor != "#ffffff" {
		t.Fatalf("colors not mapped: %+v", n)
	}
}

func TestClient_RedeemSuccess(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "BLOOM50" {
			t.Fatalf("unexpected code %q", body["code"])
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"You received 50 flowers!","flowersAmount":50}`))
	}))

	out, err := c.Redeem(context.Background(), "BLOOM50")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if out.FlowersAmount != 50 || out.Message == "" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestClient_RedeemDeclineShapes(t *testing.T) {
	// The backend reports declines either as a 200 with success=false or as
	// a 4xx with the same envelope; both carry the message verbatim.
	responses := []func(w http.ResponseWriter){
		func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(`{"success":false,"message":"code already redeemed"}`))
		},
		func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"message":"code already redeemed"}`))
		},
	}
	for i, respond := range responses {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respond(w)
		}))
		_, err := c.Redeem(context.Background(), "BLOOM50")
		var re *domain.RuleError
		if !errors.As(err, &re) || re.Msg != "code already redeemed" {
			t.Fatalf("shape %d: expected verbatim decline, got %v", i, err)
		}
	}
}

func TestClient_ReferralOutcomes(t *testing.T) {
	mux := http.NewServeMux()
	decline := false
	mux.HandleFunc("/api/referral/use", func(w http.ResponseWriter, r *http.Request) {
		if decline {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"you cannot use your own referral code"}`))
			return
		}
		_, _ = w.Write([]byte(`{"bonus":25}`))
	})
	c := newTestClient(t, mux)

	out, err := c.UseReferral(context.Background(), "QG-F3RN")
	if err != nil || out.Bonus != 25 {
		t.Fatalf("success case: %+v %v", out, err)
	}

	decline = true
	_, err = c.UseReferral(context.Background(), "QG-F3RN")
	var re *domain.RuleError
	if !errors.As(err, &re) || re.Msg != "you cannot use your own referral code" {
		t.Fatalf("expected verbatim decline, got %v", err)
	}
}

func TestClient_UnexpectedClientErrorIsRuleError(t *testing.T) {
	// A 4xx outside an endpoint's documented contract, such as a proxy
	// rejecting the request, must still land inside the error taxonomy.
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"blocked by proxy"}`))
	}))

	_, err := c.Me(context.Background())
	var re *domain.RuleError
	if !errors.As(err, &re) {
		t.Fatalf("me: expected RuleError, got %v", err)
	}
	if re.Msg != "blocked by proxy" {
		t.Fatalf("me: unexpected message %q", re.Msg)
	}

	re = nil
	if err := c.Logout(context.Background()); !errors.As(err, &re) {
		t.Fatalf("logout: expected RuleError, got %v", err)
	}

	re = nil
	if _, err := c.PublicSettings(context.Background()); !errors.As(err, &re) {
		t.Fatalf("settings: expected RuleError, got %v", err)
	}
}

func TestClient_ServerErrorIsTransport(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.Redeem(context.Background(), "BLOOM50")
	if !domain.IsTransport(err) {
		t.Fatalf("expected transport error for 5xx, got %v", err)
	}
}

func TestClient_NetworkFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	c, err := NewClient(srv.URL, time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Me(context.Background()); !domain.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

var _ ports.Backend = (*Client)(nil)
