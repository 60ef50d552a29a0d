package domain

import "time"

// AuditOutcome records whether a command succeeded.
type AuditOutcome string

const (
	AuditOutcomeOK    AuditOutcome = "OK"
	AuditOutcomeError AuditOutcome = "ERROR"
)

// AuditLog is a per-command record written by the request pipeline.
type AuditLog struct {
	ID         string
	ActorType  string
	ActorID    *string
	Command    string
	Outcome    AuditOutcome
	ErrorCode  *string
	DurationMS int64
	CreatedAt  time.Time
}
