package entities

import "time"

type ServiceStatus struct {
	Status    string           `json:"status"`
	Details   string           `json:"details"`
	LatencyMs int64            `json:"latency_ms"`
	Counts    map[string]int64 `json:"counts,omitempty"`
}

type HealthCheckResponse struct {
	SystemStatus string                   `json:"systemStatus"`
	Services     map[string]ServiceStatus `json:"services"`
	Sync         *SyncHealth              `json:"sync,omitempty"`
	UpSince      time.Time                `json:"up_since"`
	Uptime       string                   `json:"uptime"`
}

// SyncHealth is the scheduler summary embedded in the health response
type SyncHealth struct {
	Running   bool       `json:"running"`
	Started   bool       `json:"started"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}
