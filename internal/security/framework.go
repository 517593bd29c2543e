package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"teamresumes/agent-engine/pkg/logger"
	"teamresumes/agent-engine/pkg/types"
)

// Operation kinds understood by CheckPermission.
const (
	OpRead    = "read"
	OpWrite   = "write"
	OpExecute = "execute"
)

// CapabilityProvider resolves the capability configuration for an agent.
// A nil return means the agent runs with empty permission patterns, which
// denies everything at the pattern gate.
type CapabilityProvider interface {
	Capabilities(agent string) *types.CapabilityConfig
}

// CapabilityProviderFunc adapts a function to the CapabilityProvider interface.
type CapabilityProviderFunc func(agent string) *types.CapabilityConfig

func (f CapabilityProviderFunc) Capabilities(agent string) *types.CapabilityConfig {
	return f(agent)
}

// Framework mediates every file operation an agent session performs. All
// state lives behind one mutex: sessions, write locks, the violation list
// and the audit trail. A permission check walks a fixed gate order and the
// first failing gate records a violation of its own kind; checks never
// return an error, only a verdict.
type Framework struct {
	mu         sync.Mutex
	sessions   map[string]*AgentSession
	locks      map[string]string // path -> holding agent
	violations []Violation
	audit      []AuditEvent

	root         string
	sandbox      *SandboxPolicy
	capabilities CapabilityProvider
	globCache    map[string]glob.Glob
	auditLogging bool

	now func() time.Time
	log *logger.ComponentLogger
}

// NewFramework builds a framework with the default sandbox policy, rooted
// at the current working directory. The provider may be nil, in which case
// every pattern gate denies.
func NewFramework(provider CapabilityProvider) *Framework {
	root, err := os.Getwd()
	if err != nil {
		root = ""
	}
	return &Framework{
		sessions:     make(map[string]*AgentSession),
		locks:        make(map[string]string),
		root:         root,
		sandbox:      DefaultSandboxPolicy(),
		capabilities: provider,
		globCache:    make(map[string]glob.Glob),
		auditLogging: true,
		now:          time.Now,
		log:          logger.Component("security"),
	}
}

// SetSandboxPolicy replaces the sandbox allow-list. Intended for setup,
// before sessions exist.
func (f *Framework) SetSandboxPolicy(p *SandboxPolicy) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sandbox = p
}

// SetProjectRoot moves the root that absolute paths are resolved against.
// Intended for setup, before sessions exist.
func (f *Framework) SetProjectRoot(root string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	f.root = root
}

// CreateSession opens a session for the agent and returns its id. Limits
// come from the agent's capability configuration, falling back to the
// framework defaults when the configuration is silent.
func (f *Framework) CreateSession(agent string) (string, error) {
	if agent == "" {
		return "", fmt.Errorf("create session: agent name is empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	session := &AgentSession{
		Agent:         agent,
		StartTime:     now,
		LastActivity:  now,
		MaxOperations: DefaultMaxOperations,
		Timeout:       DefaultSessionTimeout,
		AccessedPaths: make(map[string]struct{}),
	}
	if cfg := f.capabilityFor(agent); cfg != nil {
		if cfg.Behavior.MaxOperations > 0 {
			session.MaxOperations = cfg.Behavior.MaxOperations
		}
		if cfg.Security.Timeout > 0 {
			session.Timeout = time.Duration(cfg.Security.Timeout) * time.Second
		}
	}

	id := newSessionID(agent, now)
	f.sessions[id] = session
	f.recordAudit(AuditSessionStarted, agent, "session "+id)
	f.log.Debug("session %s started for agent %s", id, agent)
	return id, nil
}

// CheckPermission runs the full gate sequence for one operation. The gates
// run in a fixed order and the first failure is final:
// session validity, expiry, operation ceiling, path containment, sandbox,
// permission patterns, write lock. A write that passes every gate acquires
// the lock on its path for the session.
func (f *Framework) CheckPermission(sessionID, operation, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok {
		f.recordViolation(Violation{
			Agent:           "unknown",
			Kind:            ViolationInvalidSession,
			AttemptedAction: operation,
			Path:            path,
			Details:         "no session with id " + sessionID,
		})
		return false
	}

	now := f.now()
	if session.Expired(now) {
		delete(f.sessions, sessionID)
		f.releaseLocksLocked(session.Agent)
		f.recordViolation(Violation{
			Agent:           session.Agent,
			Kind:            ViolationSessionExpired,
			AttemptedAction: operation,
			Path:            path,
			Details:         fmt.Sprintf("inactive for more than %s", session.Timeout),
		})
		return false
	}

	// The attempt itself counts against the ceiling, allowed or not.
	session.Operations++
	session.Touch(now)
	if session.Operations > session.MaxOperations {
		f.recordViolation(Violation{
			Agent:           session.Agent,
			Kind:            ViolationOperationLimit,
			AttemptedAction: operation,
			Path:            path,
			Details:         fmt.Sprintf("limit of %d operations reached", session.MaxOperations),
		})
		return false
	}

	normalized, contained := f.normalizePath(path)
	if !contained {
		f.recordViolation(Violation{
			Agent:           session.Agent,
			Kind:            ViolationPathTraversal,
			AttemptedAction: operation,
			Path:            path,
			Details:         "path escapes the project root",
		})
		return false
	}

	cfg := f.capabilityFor(session.Agent)
	sandboxed := cfg == nil || cfg.Security.SandboxMode
	if sandboxed && !f.sandbox.Contains(normalized) {
		f.recordViolation(Violation{
			Agent:           session.Agent,
			Kind:            ViolationSandbox,
			AttemptedAction: operation,
			Path:            path,
			Details:         "path outside the sandbox allow-list",
		})
		return false
	}

	if !f.matchesPatterns(patternsFor(cfg, operation), normalized) {
		f.recordViolation(Violation{
			Agent:           session.Agent,
			Kind:            ViolationPermissionDenied,
			AttemptedAction: operation,
			Path:            path,
			Details:         fmt.Sprintf("no %s pattern matches", operation),
		})
		return false
	}

	if operation == OpWrite {
		if holder, locked := f.locks[normalized]; locked && holder != session.Agent {
			f.recordViolation(Violation{
				Agent:           session.Agent,
				Kind:            ViolationFileLockConflict,
				AttemptedAction: operation,
				Path:            path,
				Details:         "file is locked by " + holder,
			})
			return false
		}
		f.locks[normalized] = session.Agent
		f.recordAudit(AuditLockAcquired, session.Agent, normalized)
	}

	session.AccessedPaths[normalized] = struct{}{}
	f.recordAudit(AuditPermissionGranted, session.Agent, operation+" "+normalized)
	return true
}

// ReleaseFileLock drops the agent's write lock on the path. Returns false
// when the lock does not exist or is held by a different agent.
func (f *Framework) ReleaseFileLock(agent, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	normalized, _ := f.normalizePath(path)
	holder, ok := f.locks[normalized]
	if !ok {
		return false
	}
	if holder != agent {
		f.log.Warn("agent %s tried to release lock on %s held by %s", agent, normalized, holder)
		return false
	}
	delete(f.locks, normalized)
	f.recordAudit(AuditLockReleased, agent, normalized)
	return true
}

// EndSession closes the session, releasing every lock it holds, and writes
// a summary audit event. Ending an unknown or already ended session is a
// no-op.
func (f *Framework) EndSession(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok {
		return
	}
	delete(f.sessions, sessionID)
	released := f.releaseLocksLocked(session.Agent)

	summary := fmt.Sprintf("operations=%d paths=%d locks_released=%d duration=%s",
		session.Operations, len(session.AccessedPaths), released, f.now().Sub(session.StartTime).Round(time.Millisecond))
	f.recordAudit(AuditSessionEnded, session.Agent, summary)
	f.log.Debug("session %s for agent %s ended: %s", sessionID, session.Agent, summary)
}

// SecurityReport summarizes sessions, locks, violations and the audit
// trail at the moment of the call.
func (f *Framework) SecurityReport() Report {
	f.mu.Lock()
	defer f.mu.Unlock()

	byKind := make(map[string]int, len(f.violations))
	for _, v := range f.violations {
		byKind[v.Kind]++
	}
	violations := make([]Violation, len(f.violations))
	copy(violations, f.violations)

	return Report{
		ActiveSessions:   len(f.sessions),
		FileLocks:        len(f.locks),
		TotalViolations:  len(f.violations),
		ViolationsByKind: byKind,
		AuditEvents:      len(f.audit),
		Violations:       violations,
	}
}

// AuditTrail returns a copy of the audit events recorded so far.
func (f *Framework) AuditTrail() []AuditEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make([]AuditEvent, len(f.audit))
	copy(events, f.audit)
	return events
}

func (f *Framework) capabilityFor(agent string) *types.CapabilityConfig {
	if f.capabilities == nil {
		return nil
	}
	return f.capabilities.Capabilities(agent)
}

func (f *Framework) matchesPatterns(patterns []string, path string) bool {
	for _, pattern := range patterns {
		g, ok := f.globCache[pattern]
		if !ok {
			compiled, err := glob.Compile(pattern)
			if err != nil {
				f.log.Warn("skipping malformed permission pattern %q: %v", pattern, err)
				continue
			}
			f.globCache[pattern] = compiled
			g = compiled
		}
		if g.Match(path) {
			return true
		}
	}
	return false
}

func (f *Framework) releaseLocksLocked(agent string) int {
	released := 0
	for path, holder := range f.locks {
		if holder == agent {
			delete(f.locks, path)
			released++
		}
	}
	return released
}

func (f *Framework) recordViolation(v Violation) {
	v.Timestamp = f.now()
	f.violations = append(f.violations, v)
	f.recordAudit(AuditViolation, v.Agent, v.Kind+" on "+v.Path)
	f.log.Warn("violation by %s: %s (%s %s)", v.Agent, v.Kind, v.AttemptedAction, v.Path)
}

func (f *Framework) recordAudit(kind, agent, details string) {
	if !f.auditLogging {
		return
	}
	f.audit = append(f.audit, AuditEvent{
		Timestamp: f.now(),
		Kind:      kind,
		Agent:     agent,
		Details:   details,
	})
}

func patternsFor(cfg *types.CapabilityConfig, operation string) []string {
	if cfg == nil {
		return nil
	}
	switch operation {
	case OpRead:
		return cfg.Permissions.Read
	case OpWrite:
		return cfg.Permissions.Write
	case OpExecute:
		return cfg.Permissions.Execute
	default:
		return nil
	}
}

// normalizePath resolves a path to root-relative slash form and reports
// whether it stays inside the project root. Absolute paths are admitted
// when they land under the root; anything that climbs above it is
// rejected. Callers hold the mutex.
func (f *Framework) normalizePath(path string) (string, bool) {
	normalized := strings.ReplaceAll(path, "\\", "/")
	if filepath.IsAbs(normalized) {
		if f.root == "" {
			return normalized, false
		}
		rel, err := filepath.Rel(f.root, normalized)
		if err != nil {
			return normalized, false
		}
		normalized = filepath.ToSlash(rel)
	}
	cleaned := filepath.ToSlash(filepath.Clean(normalized))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return cleaned, false
	}
	// Preserve the directory marker so prefix checks still see it.
	if strings.HasSuffix(normalized, "/") && !strings.HasSuffix(cleaned, "/") {
		cleaned += "/"
	}
	return cleaned, true
}
