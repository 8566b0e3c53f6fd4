package monitor

import "time"

// ServiceStatus is the outcome of one probe.
type ServiceStatus struct {
	Up        bool   `json:"up"`
	Required  bool   `json:"required"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// BacklogStatus describes the local write-behind queue.
type BacklogStatus struct {
	Readable bool `json:"readable"`
	Pending  int  `json:"pending"`
}

type Status struct {
	Healthy   bool                     `json:"healthy"`
	Services  map[string]ServiceStatus `json:"services"`
	Backlog   *BacklogStatus           `json:"backlog,omitempty"`
	CheckedAt time.Time                `json:"checked_at"`
}
