package devstub

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const sessionCookie = "qg_session"

// Handler serves the platform API contract from the in-memory store.
type Handler struct {
	store *Store
	log   zerolog.Logger
}

func NewHandler(store *Store, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	BetaCode string `json:"betaCode"`
}

type codeRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// userPayload is the wire shape of a user inside {"user": ...}.
type userPayload struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	Flowers      int       `json:"flowers"`
	ReferralCode string    `json:"referralCode"`
	CreatedAt    time.Time `json:"createdAt"`
}

func payloadOf(acc *account) *userPayload {
	if acc == nil {
		return nil
	}
	return &userPayload{
		ID:           acc.ID,
		Email:        acc.Email,
		Username:     acc.Username,
		Role:         acc.Role,
		Flowers:      acc.Flowers,
		ReferralCode: acc.ReferralCode,
		CreatedAt:    acc.CreatedAt,
	}
}

// Me reports the session's user, or {"user": null} when unauthenticated.
// An unauthenticated /me is a settled answer, not an error.
func (h *Handler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"user": payloadOf(h.sessionUser(c))})
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	h.setSession(c, token)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		h.store.DeleteSession(cookie.Value)
	}
	h.clearSession(c)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Register creates the account and opens its session, so the client's
// follow-up /me fetch lands on the new identity.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.store.Register(req.Email, req.Username, req.Password, req.BetaCode); err != nil {
		switch err {
		case errEmailTaken:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errBetaCode:
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return err
		}
	}

	token, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setSession(c, token)
	return c.JSON(http.StatusCreated, map[string]bool{"success": true})
}

func (h *Handler) PublicSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Settings())
}

// UpdateSettings replaces the whole snapshot. Admin only; exists so local
// setups can flip maintenance mode and notifications while a client runs.
func (h *Handler) UpdateSettings(c echo.Context) error {
	user := h.sessionUser(c)
	if user == nil || user.Role != "admin" {
		return echo.NewHTTPError(http.StatusForbidden, "admin only")
	}

	var next siteSettings
	if err := c.Bind(&next); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	h.store.SetSettings(next)
	return c.JSON(http.StatusOK, next)
}

// redeemResult mirrors the redeem endpoint's success and failure shapes.
type redeemResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	FlowersAmount int    `json:"flowersAmount,omitempty"`
}

func (h *Handler) Redeem(c echo.Context) error {
	user := h.sessionUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req codeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	amount, message, ok := h.store.Redeem(user.ID, req.Code)
	if !ok {
		return c.JSON(http.StatusBadRequest, redeemResult{Success: false, Message: message})
	}
	return c.JSON(http.StatusOK, redeemResult{Success: true, Message: message, FlowersAmount: amount})
}

func (h *Handler) UseReferral(c echo.Context) error {
	user := h.sessionUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req codeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bonus, err := h.store.UseReferral(user.ID, req.Code)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"bonus": bonus})
}

func (h *Handler) sessionUser(c echo.Context) *account {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	return h.store.UserByToken(cookie.Value)
}

func (h *Handler) setSession(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
