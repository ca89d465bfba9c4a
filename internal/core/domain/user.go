package domain

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User models the client-held mirror of a server-owned account. Flowers and
// ReferralCode are authoritative on the server; the mirror is replaced
// wholesale after every confirmed mutation, never patched by local arithmetic.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	Flowers      int       `json:"flowers"`
	ReferralCode string    `json:"referralCode"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SessionStatus is the observable state of the session mirror. Exactly one
// status is observable at any time.
type SessionStatus int

const (
	// SessionLoading means the first fetch of the current-user query has not settled.
	SessionLoading SessionStatus = iota
	// SessionAbsent means the server confirmed there is no authenticated user.
	SessionAbsent
	// SessionPresent means User holds the last server-confirmed identity.
	SessionPresent
)

func (s SessionStatus) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionAbsent:
		return "absent"
	case SessionPresent:
		return "present"
	default:
		return "unknown"
	}
}

// Session is the value consumers read from the session store. User is non-nil
// exactly when Status is SessionPresent.
type Session struct {
	Status SessionStatus
	User   *User
}

// IsAdmin reports whether a confirmed admin identity is present. Loading and
// absent sessions are never admin.
func (s Session) IsAdmin() bool {
	return s.Status == SessionPresent && s.User.IsAdmin()
}
