package types

// PermissionPatterns lists the glob patterns an agent may touch, per
// operation. Patterns are fnmatch-style: `*` also crosses path separators.
type PermissionPatterns struct {
	Read    []string `yaml:"read,omitempty" json:"read,omitempty"`
	Write   []string `yaml:"write,omitempty" json:"write,omitempty"`
	Execute []string `yaml:"execute,omitempty" json:"execute,omitempty"`
}

// SecuritySettings bounds one agent's session. Timeout is the inactivity
// window between permission checks, in seconds; it never bounds a step's own
// wall-clock execution time.
type SecuritySettings struct {
	MaxFileSize  int  `yaml:"max_file_size,omitempty" json:"max_file_size,omitempty"`
	Timeout      int  `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	SandboxMode  bool `yaml:"sandbox_mode" json:"sandbox_mode"`
	AuditLogging bool `yaml:"audit_logging" json:"audit_logging"`
}

// BehaviorSettings caps how much work one session may perform.
type BehaviorSettings struct {
	MaxOperations int    `yaml:"max_operations,omitempty" json:"max_operations,omitempty"`
	Verbosity     string `yaml:"verbosity,omitempty" json:"verbosity,omitempty"`
}

// CapabilityConfig is the per-agent capability configuration consumed by the
// security framework.
type CapabilityConfig struct {
	Permissions PermissionPatterns `yaml:"permissions" json:"permissions"`
	Security    SecuritySettings   `yaml:"security" json:"security"`
	Behavior    BehaviorSettings   `yaml:"behavior" json:"behavior"`
}
