package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Default session bounds applied when the capability configuration leaves
// them unset.
const (
	DefaultMaxOperations  = 50
	DefaultSessionTimeout = 300 * time.Second
)

// AgentSession tracks one agent's participation in one run. A session is
// Created, stays Active while permission checks refresh its last-activity
// time, and ends either explicitly (Ended) or by inactivity (Expired). There
// is no transition out of Expired or Ended: both remove the session from the
// framework's table.
type AgentSession struct {
	Agent         string
	StartTime     time.Time
	LastActivity  time.Time
	Operations    int
	MaxOperations int
	Timeout       time.Duration
	AccessedPaths map[string]struct{}
}

// Expired reports whether the inactivity window has elapsed at now.
func (s *AgentSession) Expired(now time.Time) bool {
	return now.Sub(s.LastActivity) > s.Timeout
}

// Touch refreshes the last-activity time. Operation counting is the
// caller's responsibility.
func (s *AgentSession) Touch(now time.Time) {
	s.LastActivity = now
}

// newSessionID derives an opaque session identifier from the agent identity,
// the creation timestamp and a random salt, hashed and truncated.
func newSessionID(agent string, created time.Time) string {
	content := fmt.Sprintf("%s:%d:%s", agent, created.UnixNano(), uuid.NewString())
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}
