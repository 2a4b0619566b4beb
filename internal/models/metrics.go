package models

import "time"

// SystemMetrics is a JSON friendly digest of the process counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	ConflictsTotal           uint64    `json:"conflictsTotal"`
	ExportsTotal             uint64    `json:"exportsTotal"`
	SnapshotSaves            uint64    `json:"snapshotSaves"`
	SnapshotFailures         uint64    `json:"snapshotFailures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
