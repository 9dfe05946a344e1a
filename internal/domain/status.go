package domain

// Reachability of a single upstream as seen by the composite status probe.
const (
	StatusConnected   = "connected"
	StatusUnavailable = "unavailable"
	StatusUnknown     = "unknown"
)
