package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamresumes/agent-engine/pkg/types"
)

func permissiveProvider() CapabilityProvider {
	return CapabilityProviderFunc(func(agent string) *types.CapabilityConfig {
		return &types.CapabilityConfig{
			Permissions: types.PermissionPatterns{
				Read:    []string{"*"},
				Write:   []string{"*"},
				Execute: []string{"*"},
			},
			Security: types.SecuritySettings{SandboxMode: true},
		}
	})
}

func TestCreateSession(t *testing.T) {
	f := NewFramework(permissiveProvider())

	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)
	assert.Len(t, id, 16)

	other, err := f.CreateSession("cv_writer")
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	_, err = f.CreateSession("")
	assert.Error(t, err)

	report := f.SecurityReport()
	assert.Equal(t, 2, report.ActiveSessions)
}

func TestCheckPermissionAllowed(t *testing.T) {
	f := NewFramework(permissiveProvider())
	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)

	assert.True(t, f.CheckPermission(id, OpRead, "cv/resume.md"))
	assert.True(t, f.CheckPermission(id, OpWrite, "docs/notes.md"))
	assert.True(t, f.CheckPermission(id, OpRead, "README.md"))

	report := f.SecurityReport()
	assert.Equal(t, 0, report.TotalViolations)
}

func TestCheckPermissionUnknownSession(t *testing.T) {
	f := NewFramework(permissiveProvider())

	assert.False(t, f.CheckPermission("nope", OpRead, "cv/resume.md"))

	report := f.SecurityReport()
	require.Len(t, report.Violations, 1)
	assert.Equal(t, ViolationInvalidSession, report.Violations[0].Kind)
	assert.Equal(t, "unknown", report.Violations[0].Agent)
}

func TestSandboxViolation(t *testing.T) {
	f := NewFramework(permissiveProvider())
	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)

	assert.False(t, f.CheckPermission(id, OpRead, "secrets/key.pem"))

	report := f.SecurityReport()
	require.Len(t, report.Violations, 1)
	assert.Equal(t, ViolationSandbox, report.Violations[0].Kind)
	assert.Equal(t, "cv_writer", report.Violations[0].Agent)
}

func TestRestrictedBeatsAllowed(t *testing.T) {
	f := NewFramework(permissiveProvider())
	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)

	assert.False(t, f.CheckPermission(id, OpRead, ".git/config"))
	assert.False(t, f.CheckPermission(id, OpRead, "node_modules/pkg/index.js"))
}

func TestPathTraversal(t *testing.T) {
	f := NewFramework(permissiveProvider())
	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)

	cases := []string{
		"../outside.txt",
		"cv/../../etc/passwd",
		"/etc/passwd",
	}
	for _, path := range cases {
		assert.False(t, f.CheckPermission(id, OpRead, path), "path %q should be rejected", path)
	}

	report := f.SecurityReport()
	assert.Equal(t, len(cases), report.ViolationsByKind[ViolationPathTraversal])
}

func TestAbsolutePathWithinRoot(t *testing.T) {
	f := NewFramework(permissiveProvider())
	f.SetProjectRoot("/srv/project")
	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)

	assert.True(t, f.CheckPermission(id, OpRead, "/srv/project/cv/resume.md"))
	assert.False(t, f.CheckPermission(id, OpRead, "/srv/other/cv/resume.md"))

	report := f.SecurityReport()
	assert.Equal(t, 1, report.ViolationsByKind[ViolationPathTraversal])
}

func TestPermissionDenied(t *testing.T) {
	provider := CapabilityProviderFunc(func(agent string) *types.CapabilityConfig {
		return &types.CapabilityConfig{
			Permissions: types.PermissionPatterns{
				Read:  []string{"cv/*.md"},
				Write: []string{"temp/*"},
			},
			Security: types.SecuritySettings{SandboxMode: true},
		}
	})
	f := NewFramework(provider)
	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)

	assert.True(t, f.CheckPermission(id, OpRead, "cv/resume.md"))
	assert.False(t, f.CheckPermission(id, OpWrite, "cv/resume.md"))
	assert.False(t, f.CheckPermission(id, OpExecute, "cv/resume.md"))

	report := f.SecurityReport()
	assert.Equal(t, 2, report.ViolationsByKind[ViolationPermissionDenied])
}

func TestGlobCrossesDirectories(t *testing.T) {
	provider := CapabilityProviderFunc(func(agent string) *types.CapabilityConfig {
		return &types.CapabilityConfig{
			Permissions: types.PermissionPatterns{Read: []string{"docs/*"}},
			Security:    types.SecuritySettings{SandboxMode: true},
		}
	})
	f := NewFramework(provider)
	id, err := f.CreateSession("reader")
	require.NoError(t, err)

	// A single star spans nested directories, fnmatch style.
	assert.True(t, f.CheckPermission(id, OpRead, "docs/guides/setup.md"))
}

func TestOperationLimit(t *testing.T) {
	provider := CapabilityProviderFunc(func(agent string) *types.CapabilityConfig {
		return &types.CapabilityConfig{
			Permissions: types.PermissionPatterns{Read: []string{"*"}},
			Security:    types.SecuritySettings{SandboxMode: true},
			Behavior:    types.BehaviorSettings{MaxOperations: 2},
		}
	})
	f := NewFramework(provider)
	id, err := f.CreateSession("limited")
	require.NoError(t, err)

	assert.True(t, f.CheckPermission(id, OpRead, "cv/a.md"))
	assert.True(t, f.CheckPermission(id, OpRead, "cv/b.md"))
	assert.False(t, f.CheckPermission(id, OpRead, "cv/c.md"))

	report := f.SecurityReport()
	assert.Equal(t, 1, report.ViolationsByKind[ViolationOperationLimit])
}

func TestFileLockConflict(t *testing.T) {
	f := NewFramework(permissiveProvider())
	first, err := f.CreateSession("writer_a")
	require.NoError(t, err)
	second, err := f.CreateSession("writer_b")
	require.NoError(t, err)

	require.True(t, f.CheckPermission(first, OpWrite, "cv/resume.md"))
	assert.False(t, f.CheckPermission(second, OpWrite, "cv/resume.md"))

	// A re-write by the holder is fine, and reads are never blocked.
	assert.True(t, f.CheckPermission(first, OpWrite, "cv/resume.md"))
	assert.True(t, f.CheckPermission(second, OpRead, "cv/resume.md"))

	report := f.SecurityReport()
	assert.Equal(t, 1, report.ViolationsByKind[ViolationFileLockConflict])
	assert.Equal(t, 1, report.FileLocks)

	var acquisitions int
	for _, event := range f.AuditTrail() {
		if event.Kind == AuditLockAcquired {
			acquisitions++
		}
	}
	assert.Equal(t, 2, acquisitions)
}

func TestReleaseFileLock(t *testing.T) {
	f := NewFramework(permissiveProvider())
	first, err := f.CreateSession("writer_a")
	require.NoError(t, err)
	second, err := f.CreateSession("writer_b")
	require.NoError(t, err)

	require.True(t, f.CheckPermission(first, OpWrite, "cv/resume.md"))

	assert.False(t, f.ReleaseFileLock("writer_b", "cv/resume.md"))
	assert.True(t, f.ReleaseFileLock("writer_a", "cv/resume.md"))
	assert.False(t, f.ReleaseFileLock("writer_a", "cv/resume.md"))

	assert.True(t, f.CheckPermission(second, OpWrite, "cv/resume.md"))
}

func TestSameAgentSessionsShareLocks(t *testing.T) {
	f := NewFramework(permissiveProvider())
	first, err := f.CreateSession("writer_a")
	require.NoError(t, err)
	second, err := f.CreateSession("writer_a")
	require.NoError(t, err)

	require.True(t, f.CheckPermission(first, OpWrite, "cv/resume.md"))
	assert.True(t, f.CheckPermission(second, OpWrite, "cv/resume.md"))

	report := f.SecurityReport()
	assert.Equal(t, 0, report.ViolationsByKind[ViolationFileLockConflict])
	assert.Equal(t, 1, report.FileLocks)

	// Ending either session frees the agent's lock for others.
	f.EndSession(first)
	assert.Equal(t, 0, f.SecurityReport().FileLocks)
}

func TestEndSessionReleasesLocks(t *testing.T) {
	f := NewFramework(permissiveProvider())
	first, err := f.CreateSession("writer_a")
	require.NoError(t, err)
	second, err := f.CreateSession("writer_b")
	require.NoError(t, err)

	require.True(t, f.CheckPermission(first, OpWrite, "cv/resume.md"))
	require.True(t, f.CheckPermission(first, OpWrite, "docs/plan.md"))

	f.EndSession(first)
	f.EndSession(first) // idempotent

	report := f.SecurityReport()
	assert.Equal(t, 1, report.ActiveSessions)
	assert.Equal(t, 0, report.FileLocks)

	assert.True(t, f.CheckPermission(second, OpWrite, "cv/resume.md"))
	assert.False(t, f.CheckPermission(first, OpRead, "cv/resume.md"))
}

func TestSessionExpiry(t *testing.T) {
	f := NewFramework(permissiveProvider())
	current := time.Now()
	f.now = func() time.Time { return current }

	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)
	require.True(t, f.CheckPermission(id, OpWrite, "cv/resume.md"))

	current = current.Add(DefaultSessionTimeout + time.Second)
	assert.False(t, f.CheckPermission(id, OpRead, "cv/resume.md"))

	report := f.SecurityReport()
	assert.Equal(t, 1, report.ViolationsByKind[ViolationSessionExpired])
	assert.Equal(t, 0, report.ActiveSessions)
	assert.Equal(t, 0, report.FileLocks)
}

func TestActivityDefersExpiry(t *testing.T) {
	f := NewFramework(permissiveProvider())
	current := time.Now()
	f.now = func() time.Time { return current }

	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		current = current.Add(DefaultSessionTimeout / 2)
		assert.True(t, f.CheckPermission(id, OpRead, "cv/resume.md"))
	}
}

func TestAuditTrail(t *testing.T) {
	f := NewFramework(permissiveProvider())
	id, err := f.CreateSession("cv_writer")
	require.NoError(t, err)

	require.True(t, f.CheckPermission(id, OpRead, "cv/resume.md"))
	f.CheckPermission(id, OpRead, ".git/config")
	f.EndSession(id)

	events := f.AuditTrail()
	require.Len(t, events, 4)
	assert.Equal(t, AuditSessionStarted, events[0].Kind)
	assert.Equal(t, AuditPermissionGranted, events[1].Kind)
	assert.Equal(t, "read cv/resume.md", events[1].Details)
	assert.Equal(t, AuditViolation, events[2].Kind)
	assert.Equal(t, AuditSessionEnded, events[3].Kind)
	assert.Contains(t, events[3].Details, "operations=2")
}

func TestSandboxPolicyContains(t *testing.T) {
	policy := DefaultSandboxPolicy()

	allowed := []string{
		"cv/resume.md",
		"docs/guide.md",
		"temp/scratch.txt",
		"generated-content/out.html",
		".claude/settings.json",
		"README.md",
		"CLAUDE.md",
		"notes.md",
		"build.py",
	}
	for _, path := range allowed {
		assert.True(t, policy.Contains(path), "expected %q inside sandbox", path)
	}

	denied := []string{
		".git/HEAD",
		".env",
		"__pycache__/mod.pyc",
		"Makefile",
		"src/main.go",
	}
	for _, path := range denied {
		assert.False(t, policy.Contains(path), "expected %q outside sandbox", path)
	}
}
