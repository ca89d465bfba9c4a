package domain

// Shell is the top-level surface the application renders.
type Shell string

const (
	// ShellNormal renders the full application.
	ShellNormal Shell = "normal"
	// ShellMaintenance suppresses every route behind the maintenance placeholder.
	ShellMaintenance Shell = "maintenance"
)

// View is the render-gate decision. Notification is non-nil when an overlay
// should be composited on top of the normal shell.
type View struct {
	Shell        Shell
	Notification *Notification
}

// Decide combines the latest settled session and settings values into a render
// decision. It is pure and total: every input combination maps to a View.
//
// Maintenance mode is an absolute override for everyone but a confirmed admin;
// no route bypasses it. A loading session counts as not-admin, so an admin
// whose identity has not settled yet sees the placeholder until it does.
//
// popupDismissed is the dismissal store's verdict for the current notification
// identity. It only suppresses popup notifications; banner visibility is
// per-mount state owned by the presentational consumer.
func Decide(session Session, settings Settings, popupDismissed bool) View {
	if settings.MaintenanceMode && !session.IsAdmin() {
		return View{Shell: ShellMaintenance}
	}

	view := View{Shell: ShellNormal}
	n := settings.Notification
	if !n.Active() {
		return view
	}
	if n.Type == NotificationPopup && popupDismissed {
		return view
	}
	view.Notification = &n
	return view
}
