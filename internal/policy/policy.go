// Package policy holds the tunable security policy: escalation thresholds for
// pattern-based alerting and the rate-limit categories. Values ship with
// compiled-in defaults and may be overridden from a YAML file pointed at by
// POLICY_CONFIG_PATH.
package policy

import (
	"fmt"
	"os"
	"time"

	"github.com/examguard/integrity-backend/util"
	"gopkg.in/yaml.v2"
)

// EscalationRule triggers a synthetic alert when a low-severity event type
// occurs at least Threshold times within Window for one session.
type EscalationRule struct {
	Threshold     int `yaml:"threshold"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Window returns the rule's window as a duration.
func (r EscalationRule) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// RateCategory is one named throttling bucket policy.
type RateCategory struct {
	Limit         int `yaml:"limit"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Window returns the category's window as a duration.
func (c RateCategory) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// Policy is the full tunable surface.
type Policy struct {
	Escalation          map[string]EscalationRule `yaml:"escalation"`
	RateLimits          map[string]RateCategory   `yaml:"rate_limits"`
	AuditCapacity       int                       `yaml:"audit_capacity"`
	SessionGraceSeconds int                       `yaml:"session_grace_seconds"`
	VelocityLimit       int                       `yaml:"velocity_limit"`
	VelocityWindowSecs  int                       `yaml:"velocity_window_seconds"`
}

// SessionGrace is how long a session outlives its exam's end time before
// lazy cleanup ends it.
func (p *Policy) SessionGrace() time.Duration {
	return time.Duration(p.SessionGraceSeconds) * time.Second
}

// VelocityWindow is the lookback for the request-velocity heuristic.
func (p *Policy) VelocityWindow() time.Duration {
	return time.Duration(p.VelocityWindowSecs) * time.Second
}

// Default returns the compiled-in policy. The window_blur threshold mirrors
// the informally observed product behavior and stays tunable pending
// clarification.
func Default() *Policy {
	return &Policy{
		Escalation: map[string]EscalationRule{
			"window_blur":      {Threshold: 3, WindowSeconds: 60},
			"fullscreen_enter": {Threshold: 5, WindowSeconds: 60},
			"heartbeat":        {Threshold: 0, WindowSeconds: 0}, // never escalates
		},
		RateLimits: map[string]RateCategory{
			"examOps": {Limit: 30, WindowSeconds: 60},
			"general": {Limit: 120, WindowSeconds: 60},
		},
		AuditCapacity:       1000,
		SessionGraceSeconds: 300,
		VelocityLimit:       60,
		VelocityWindowSecs:  10,
	}
}

// Load reads a YAML policy file and overlays it on the defaults. Only keys
// present in the file override.
func Load(path string) (*Policy, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	var overlay Policy
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	for k, v := range overlay.Escalation {
		p.Escalation[k] = v
	}
	for k, v := range overlay.RateLimits {
		p.RateLimits[k] = v
	}
	if overlay.AuditCapacity > 0 {
		p.AuditCapacity = overlay.AuditCapacity
	}
	if overlay.SessionGraceSeconds > 0 {
		p.SessionGraceSeconds = overlay.SessionGraceSeconds
	}
	if overlay.VelocityLimit > 0 {
		p.VelocityLimit = overlay.VelocityLimit
	}
	if overlay.VelocityWindowSecs > 0 {
		p.VelocityWindowSecs = overlay.VelocityWindowSecs
	}
	return p, nil
}

// FromEnv loads the policy from POLICY_CONFIG_PATH, falling back to defaults
// when the variable is unset or the file is absent.
func FromEnv() *Policy {
	path := util.GetEnvDefault("POLICY_CONFIG_PATH", "")
	if path == "" {
		return Default()
	}
	if _, err := os.Stat(path); err != nil {
		return Default()
	}
	p, err := Load(path)
	if err != nil {
		return Default()
	}
	return p
}
