package domain

// NotificationType distinguishes the two site-notification presentations.
// Banners are low-intrusion and reappear on every load; popups are suppressed
// for the rest of the session once dismissed.
type NotificationType string

const (
	NotificationBanner NotificationType = "banner"
	NotificationPopup  NotificationType = "popup"
)

// Notification is the site-wide notification descriptor carried by the public
// settings payload.
type Notification struct {
	Enabled         bool
	Type            NotificationType
	Message         string
	BackgroundColor string
	TextColor       string
}

// Active reports whether the notification should be considered at all.
func (n Notification) Active() bool {
	return n.Enabled && n.Message != ""
}

// Settings is the immutable site-configuration snapshot. A refresh either
// replaces the whole value or is discarded; it is never partially patched.
type Settings struct {
	MaintenanceMode bool
	BetaMode        bool
	BetaAccessType  string
	SiteName        string
	SiteDescription string

	Notification Notification
}

// DefaultSettings is the last-known-good fallback used before the first
// successful poll. Maintenance defaults to off so an unreachable settings
// endpoint never locks users out.
func DefaultSettings() Settings {
	return Settings{SiteName: "QuoteGarden"}
}
