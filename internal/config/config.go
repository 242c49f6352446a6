// Package config assembles daemon configuration from defaults and
// JARVEST_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/jarvest/jarvest/common"
	"github.com/jarvest/jarvest/internal/browser"
)

// Config is the fully resolved daemon configuration.
type Config struct {
	ProfileRoot      string
	PreferredProfile string
	AlternateCount   int

	TargetURL     string
	AdapterScript string

	Headless        bool
	UserAgent       string
	WaitPolicy      browser.WaitPolicy
	NavTimeout      time.Duration
	ReverifyTimeout time.Duration

	PollBudget         time.Duration
	ReverifyPollBudget time.Duration
	CacheTTL           time.Duration

	AccessKey  string
	TCPPort    int
	SocketPath string

	Debug bool
}

// Default returns the built-in configuration. The profile root points at
// the platform's Chrome user-data directory when one can be derived.
func Default() Config {
	return Config{
		ProfileRoot:        DefaultProfileRoot(),
		AlternateCount:     3,
		TargetURL:          "https://www.youtube.com",
		Headless:           true,
		WaitPolicy:         browser.WaitDOMReady,
		NavTimeout:         30 * time.Second,
		ReverifyTimeout:    15 * time.Second,
		PollBudget:         20 * time.Second,
		ReverifyPollBudget: 5 * time.Second,
		CacheTTL:           5 * time.Minute,
		TCPPort:            common.DefaultTCPPort,
	}
}

// FromEnv layers JARVEST_* environment variables over the defaults.
// Malformed values fail loudly rather than silently running with a
// half-applied configuration.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv(common.ProfileRootEnv); v != "" {
		cfg.ProfileRoot = v
	}
	if v := os.Getenv(common.PreferredProfileEnv); v != "" {
		cfg.PreferredProfile = v
	}
	if v := os.Getenv(common.TargetURLEnv); v != "" {
		cfg.TargetURL = v
	}
	if v := os.Getenv(common.AdapterScriptEnv); v != "" {
		cfg.AdapterScript = v
	}
	if v := os.Getenv(common.HeadlessEnv); v != "" {
		cfg.Headless = v != "0" && v != "false"
	}
	if v := os.Getenv(common.WaitPolicyEnv); v != "" {
		cfg.WaitPolicy = browser.ParseWaitPolicy(v)
	}
	if v := os.Getenv(common.UserAgentEnv); v != "" {
		cfg.UserAgent = browser.ResolveUserAgent(v)
	}
	if v := os.Getenv(common.AccessKeyEnv); v != "" {
		cfg.AccessKey = v
	}
	if v := os.Getenv(common.SocketPathEnv); v != "" {
		cfg.SocketPath = v
	}
	if v := os.Getenv(common.DebugEnv); v != "" {
		cfg.Debug = v != "0" && v != "false"
	}

	if err := envInt(common.AlternateCountEnv, &cfg.AlternateCount); err != nil {
		return cfg, err
	}
	if err := envInt(common.TCPPortEnv, &cfg.TCPPort); err != nil {
		return cfg, err
	}
	for _, d := range []struct {
		env string
		dst *time.Duration
	}{
		{common.NavTimeoutEnv, &cfg.NavTimeout},
		{common.ReverifyTimeoutEnv, &cfg.ReverifyTimeout},
		{common.PollBudgetEnv, &cfg.PollBudget},
		{common.ReverifyPollBudgetEnv, &cfg.ReverifyPollBudget},
		{common.CacheTTLEnv, &cfg.CacheTTL},
	} {
		if err := envDuration(d.env, d.dst); err != nil {
			return cfg, err
		}
	}

	if cfg.AlternateCount < 0 {
		return cfg, fmt.Errorf("%s must not be negative", common.AlternateCountEnv)
	}
	if cfg.TCPPort <= 0 || cfg.TCPPort > 65535 {
		return cfg, fmt.Errorf("%s out of range: %d", common.TCPPortEnv, cfg.TCPPort)
	}
	return cfg, nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	*dst = d
	return nil
}

// DefaultProfileRoot returns the platform's Chrome user-data directory,
// or "" when the home directory cannot be resolved.
func DefaultProfileRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "Google", "Chrome", "User Data")
		}
		return filepath.Join(home, "AppData", "Local", "Google", "Chrome", "User Data")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome")
	default:
		return filepath.Join(home, ".config", "google-chrome")
	}
}
