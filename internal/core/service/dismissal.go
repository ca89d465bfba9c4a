package service

import (
	"encoding/hex"
	"hash/fnv"
	"sync"

	"github.com/quotegarden/client-core/internal/core/domain"
)

// Dismissals records which popup notifications the user has dismissed during
// this session. The store's lifetime is the session scope: it is created at
// application start and dropped with the process, never persisted.
//
// Identity is derived from notification content (presentation type plus
// message text). Two campaigns reusing the exact same text and type are
// therefore indistinguishable; the wire contract carries no campaign
// identifier to key on, so content keying is kept for behavioral parity.
//
// Only popup identities are recorded here. Banner dismissal is ephemeral
// per-mount state owned by the presentational consumer, so banners reappear
// on every load.
type Dismissals struct {
	mu        sync.Mutex
	dismissed map[string]struct{}
}

func NewDismissals() *Dismissals {
	return &Dismissals{dismissed: make(map[string]struct{})}
}

// IsDismissed reports whether n's identity was dismissed this session.
// Banner notifications are never reported dismissed by this store.
func (d *Dismissals) IsDismissed(n domain.Notification) bool {
	if n.Type != domain.NotificationPopup {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.dismissed[identityKey(n)]
	return ok
}

// Dismiss marks n's identity dismissed for the rest of the session.
// Idempotent; banner notifications are ignored.
func (d *Dismissals) Dismiss(n domain.Notification) {
	if n.Type != domain.NotificationPopup {
		return
	}
	d.mu.Lock()
	d.dismissed[identityKey(n)] = struct{}{}
	d.mu.Unlock()
}

// identityKey maps notification content deterministically to a stable key.
// Distinct messages never collide beyond fnv64a collision odds; changing the
// message or the type yields a new identity and resets dismissal.
func identityKey(n domain.Notification) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(n.Type))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(n.Message))
	return hex.EncodeToString(h.Sum(nil))
}
