package devstub

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = errors.New("invalid credentials")
var errEmailTaken = errors.New("email already registered")
var errBetaCode = errors.New("invalid beta access code")

// account is a server-side user record. The stub hashes passwords with bcrypt
// like the real backend so fixtures behave realistically under load tests.
type account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash []byte
	Role         string
	Flowers      int
	ReferralCode string
	CreatedAt    time.Time
	UsedReferral bool
}

type redeemCode struct {
	Amount int
	UsedBy map[string]bool
}

// siteSettings mirrors the flat public settings payload.
type siteSettings struct {
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

// Store holds all stub state in memory. It is safe for concurrent handlers.
type Store struct {
	mu            sync.Mutex
	accounts      map[string]*account // by id
	byEmail       map[string]string   // email → id
	byReferral    map[string]string   // referral code → id
	sessions      map[string]string   // session token → id
	redeemCodes   map[string]*redeemCode
	referralBonus int
	betaCode      string
	settings      siteSettings
}

func NewStore() *Store {
	return &Store{
		accounts:      make(map[string]*account),
		byEmail:       make(map[string]string),
		byReferral:    make(map[string]string),
		sessions:      make(map[string]string),
		redeemCodes:   make(map[string]*redeemCode),
		referralBonus: 25,
		betaCode:      "EARLYBIRD",
		settings: siteSettings{
			SiteName:        "QuoteGarden",
			SiteDescription: "Share the words that grew on you.",
		},
	}
}

// Seed installs a deterministic fixture set for the CLI and integration
// tests: one admin, one member, and two redeem codes.
func (s *Store) Seed() {
	_, _ = s.Register("admin@quotegarden.dev", "admin", "rosebush-gate", "")
	_, _ = s.Register("fern@quotegarden.dev", "fern", "quiet-meadow", "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[s.byEmail["admin@quotegarden.dev"]].Role = "admin"
	s.redeemCodes["BLOOM50"] = &redeemCode{Amount: 50, UsedBy: make(map[string]bool)}
	s.redeemCodes["WELCOME100"] = &redeemCode{Amount: 100, UsedBy: make(map[string]bool)}
}

// Register creates a member account. When beta mode gates registration by
// code, betaCode must match the configured one.
func (s *Store) Register(email, username, password, betaCode string) (*account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.BetaMode && s.settings.BetaAccessType == "code" && betaCode != s.betaCode {
		return nil, errBetaCode
	}
	if _, exists := s.byEmail[email]; exists {
		return nil, errEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	acc := &account{
		ID:           randomToken(8),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         "member",
		ReferralCode: "QG-" + strings.ToUpper(randomToken(4)),
		CreatedAt:    time.Now().UTC(),
	}
	s.accounts[acc.ID] = acc
	s.byEmail[acc.Email] = acc.ID
	s.byReferral[acc.ReferralCode] = acc.ID
	return acc, nil
}

// Authenticate verifies credentials and opens a session, returning its token.
func (s *Store) Authenticate(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return "", errInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(s.accounts[id].PasswordHash, []byte(password)) != nil {
		return "", errInvalidCredentials
	}

	token := randomToken(16)
	s.sessions[token] = id
	return token, nil
}

// UserByToken resolves a session token. A stale or empty token yields nil.
func (s *Store) UserByToken(token string) *account {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[token]
	if !ok {
		return nil
	}
	clone := *s.accounts[id]
	return &clone
}

func (s *Store) DeleteSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Redeem applies a promotional code once per user. The returned message is
// what the client surfaces verbatim; ok=false means a rule decline.
func (s *Store) Redeem(userID, code string) (amount int, message string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rc, found := s.redeemCodes[code]
	if !found {
		return 0, "invalid or expired code", false
	}
	if rc.UsedBy[userID] {
		return 0, "code already redeemed", false
	}

	rc.UsedBy[userID] = true
	s.accounts[userID].Flowers += rc.Amount
	return rc.Amount, fmt.Sprintf("You received %d flowers!", rc.Amount), true
}

// UseReferral credits both parties once per referee. Self-referral and repeat
// use are declined.
func (s *Store) UseReferral(userID, code string) (bonus int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	referrerID, found := s.byReferral[code]
	if !found {
		return 0, errors.New("invalid referral code")
	}
	if referrerID == userID {
		return 0, errors.New("you cannot use your own referral code")
	}
	me := s.accounts[userID]
	if me.UsedReferral {
		return 0, errors.New("referral code already used")
	}

	me.UsedReferral = true
	me.Flowers += s.referralBonus
	s.accounts[referrerID].Flowers += s.referralBonus
	return s.referralBonus, nil
}

func (s *Store) Settings() siteSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces the whole snapshot, mirroring the real backend's
// wholesale update semantics.
func (s *Store) SetSettings(next siteSettings) {
	s.mu.Lock()
	s.settings = next
	s.mu.Unlock()
}

func randomToken(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
