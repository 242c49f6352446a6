package common

// Environment variable names for daemon configuration.
const (
	// ProfileRootEnv overrides the browser profile root directory.
	ProfileRootEnv = "JARVEST_PROFILE_ROOT"

	// PreferredProfileEnv overrides the first profile candidate name.
	PreferredProfileEnv = "JARVEST_PROFILE"

	// HeadlessEnv toggles headless browser launches ("0" disables).
	HeadlessEnv = "JARVEST_HEADLESS"

	// WaitPolicyEnv selects the navigation wait policy
	// (none, domready, networkidle).
	WaitPolicyEnv = "JARVEST_WAIT_POLICY"

	// UserAgentEnv sets the browser user agent; accepts a friendly name
	// ("chrome", "firefox") or a literal UA string.
	UserAgentEnv = "JARVEST_USER_AGENT"

	// NavTimeoutEnv sets the primary navigation timeout (duration string).
	NavTimeoutEnv = "JARVEST_NAV_TIMEOUT"

	// ReverifyTimeoutEnv sets the secondary re-verify timeout.
	ReverifyTimeoutEnv = "JARVEST_REVERIFY_TIMEOUT"

	// CacheTTLEnv sets the harvest result cache time-to-live.
	CacheTTLEnv = "JARVEST_CACHE_TTL"

	// PollBudgetEnv bounds the primary cookie polling phase.
	PollBudgetEnv = "JARVEST_POLL_BUDGET"

	// ReverifyPollBudgetEnv bounds the post-re-verify polling phase.
	ReverifyPollBudgetEnv = "JARVEST_REVERIFY_POLL_BUDGET"

	// AlternateCountEnv sets how many "Profile N" candidates are generated.
	AlternateCountEnv = "JARVEST_PROFILE_ALTERNATES"

	// AccessKeyEnv sets the access key required by the serving layer.
	AccessKeyEnv = "JARVEST_ACCESS_KEY"

	// TCPPortEnv overrides the JSON-RPC HTTP port.
	TCPPortEnv = "JARVEST_TCP_PORT"

	// SocketPathEnv overrides the local control socket path.
	SocketPathEnv = "JARVEST_SOCKET_PATH"

	// PipeNameEnv overrides the Windows named pipe name.
	PipeNameEnv = "JARVEST_PIPE_NAME"

	// TargetURLEnv overrides the default harvest target URL.
	TargetURLEnv = "JARVEST_TARGET_URL"

	// AdapterScriptEnv points at an optional site adapter script.
	AdapterScriptEnv = "JARVEST_ADAPTER_SCRIPT"

	// DebugEnv enables debug logging.
	DebugEnv = "JARVEST_DEBUG"
)
