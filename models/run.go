package models

import "time"

// Status values recorded for bootstrap steps and doctor checks.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
	StatusWarning = "warning"
)

// Run stores one recorded bootstrap run.
type Run struct {
	ID         int64
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Steps      []StepResult
}

// StepResult is the outcome of a single bootstrap step.
type StepResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// CheckResult is returned by doctor for each pre-flight check.
type CheckResult struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	LatencyMs int64  `json:"latencyMs,omitempty"`
	Error     string `json:"error,omitempty"`
}
