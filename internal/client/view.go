package client

// AlertKind styles a transient alert.
type AlertKind string

const (
	AlertInfo  AlertKind = "info"
	AlertError AlertKind = "error"
)

// Alert is a short-lived notification. At most one is visible at a time and
// it auto-dismisses after the controller's alert TTL.
type Alert struct {
	Message string
	Kind    AlertKind
}

// Result is a completed research job ready for display.
type Result struct {
	ID          string
	Topic       string
	HTMLContent string
	DownloadURL string
}

// UIState is the full display state derived from the active job. The
// controller recomputes it on every event and hands it to the view, so views
// stay free of job logic.
type UIState struct {
	// Busy is true from submission until a terminal outcome; it maps to the
	// disabled submit control and visible spinner.
	Busy bool
	// Percent is the progress fill, 0-100.
	Percent int
	// Message is the current progress text.
	Message string
	// Failed marks the error visual on the progress bar. Percent keeps its
	// last value when Failed flips on.
	Failed bool
	// Alert is the transient notification, if any.
	Alert *Alert
	// Result is set once a job completes.
	Result *Result
}

// View renders a UIState. Implementations must be cheap; Render is called on
// every poll tick and also from the alert-dismiss timer goroutine, so it must
// be safe for concurrent use.
type View interface {
	Render(UIState)
}
