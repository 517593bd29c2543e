package security

import (
	"path"
	"strings"
)

// SandboxPolicy is the allow-listed subset of the project's path space a
// session may touch when sandbox mode is enabled. Restricted prefixes win
// over allowed ones; bare root-level filenames fall back to an extension
// allow-list.
type SandboxPolicy struct {
	AllowedPrefixes    []string
	RestrictedPrefixes []string
	RootFileExtensions []string
}

// DefaultSandboxPolicy returns the policy shipped with the engine: the
// project areas agents legitimately work in, with the repository plumbing
// kept off limits.
func DefaultSandboxPolicy() *SandboxPolicy {
	return &SandboxPolicy{
		AllowedPrefixes: []string{
			"cv/",
			"docs/",
			"dev_tools/",
			".agent-os/",
			".claude/",
			"temp/",
			"generated-content/",
			"README.md",
			"CLAUDE.md",
		},
		RestrictedPrefixes: []string{
			".git/",
			"node_modules/",
			"__pycache__/",
			".env",
		},
		RootFileExtensions: []string{".md", ".py", ".bat", ".css", ".yaml"},
	}
}

// Contains reports whether the root-relative path is inside the sandbox.
func (p *SandboxPolicy) Contains(relPath string) bool {
	normalized := strings.ReplaceAll(relPath, "\\", "/")

	for _, prefix := range p.RestrictedPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return false
		}
	}

	for _, prefix := range p.AllowedPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}

	// Root-level files are allowed by extension only.
	if !strings.Contains(normalized, "/") {
		ext := path.Ext(normalized)
		for _, allowed := range p.RootFileExtensions {
			if ext == allowed {
				return true
			}
		}
	}

	return false
}
