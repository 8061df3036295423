package sessionlog

import "time"

// Session is one recorded activation of the installation, from consent
// completing to deactivation.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`

	// Reason is how the session ended ("stopped" or "cutoff"), empty
	// while the session is still running.
	Reason string `json:"reason,omitempty"`

	// DurationS is the session length in seconds, 0 while running.
	DurationS float64 `json:"duration_s,omitempty"`

	// Preset is the activation preset, updated to the last applied
	// preset when the session ends.
	Preset string `json:"preset"`
}

// Filter controls which sessions to return.
type Filter struct {
	Reason string // optional: filter by end reason (stopped, cutoff)
	Limit  int    // default 50, max 200
	Offset int    // pagination offset
}

// ListResult contains the paginated session results.
type ListResult struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}
