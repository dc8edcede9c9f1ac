package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()

	assert.Equal(t, 3, p.Escalation["window_blur"].Threshold)
	assert.Equal(t, 60*time.Second, p.Escalation["window_blur"].Window())
	assert.Equal(t, 30, p.RateLimits["examOps"].Limit)
	assert.Equal(t, 1000, p.AuditCapacity)
}

func TestLoad_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := `
escalation:
  window_blur:
    threshold: 5
    window_seconds: 120
rate_limits:
  examOps:
    limit: 10
    window_seconds: 30
audit_capacity: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, p.Escalation["window_blur"].Threshold)
	assert.Equal(t, 120, p.Escalation["window_blur"].WindowSeconds)
	assert.Equal(t, 10, p.RateLimits["examOps"].Limit)
	assert.Equal(t, 50, p.AuditCapacity)

	// keys absent from the overlay keep defaults
	assert.Equal(t, 120, p.RateLimits["general"].Limit)
	assert.Equal(t, 300, p.SessionGraceSeconds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml:::"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFromEnv_Unset(t *testing.T) {
	t.Setenv("POLICY_CONFIG_PATH", "")
	p := FromEnv()
	assert.Equal(t, Default().AuditCapacity, p.AuditCapacity)
}
