package security

import "time"

// Violation kinds, one per enforcement gate.
const (
	ViolationInvalidSession   = "invalid_session"
	ViolationSessionExpired   = "session_expired"
	ViolationOperationLimit   = "operation_limit_exceeded"
	ViolationPathTraversal    = "path_traversal_attempt"
	ViolationSandbox          = "sandbox_violation"
	ViolationPermissionDenied = "permission_denied"
	ViolationFileLockConflict = "file_lock_conflict"
)

// Violation records a single denied permission check. Violations are
// append-only; the framework never discards them while it is alive.
type Violation struct {
	Agent           string    `json:"agent"`
	Kind            string    `json:"kind"`
	AttemptedAction string    `json:"attempted_action"`
	Path            string    `json:"path,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	Details         string    `json:"details,omitempty"`
}

// AuditEvent is an entry in the security audit trail. Unlike violations,
// audit events also cover benign lifecycle activity such as session start
// and end.
type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Agent     string    `json:"agent"`
	Details   string    `json:"details,omitempty"`
}

// Audit event kinds.
const (
	AuditSessionStarted    = "session_started"
	AuditSessionEnded      = "session_ended"
	AuditViolation         = "violation"
	AuditPermissionGranted = "permission_granted"
	AuditLockAcquired      = "file_lock_acquired"
	AuditLockReleased      = "file_lock_released"
)

// Report is a point-in-time summary of the framework's state.
type Report struct {
	ActiveSessions   int            `json:"active_sessions"`
	FileLocks        int            `json:"file_locks"`
	TotalViolations  int            `json:"total_violations"`
	ViolationsByKind map[string]int `json:"violations_by_kind"`
	AuditEvents      int            `json:"audit_events"`
	Violations       []Violation    `json:"violations"`
}
