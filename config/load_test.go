package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig(t *testing.T) {
	t.Setenv("AO_GITHUB_TOKEN", "gh")
	t.Setenv("AO_ANTHROPIC_API_KEY", "ak")
	t.Setenv("AO_TASK_TIMEOUT", "5m")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "agents", cfg.Namespace)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, "structured", cfg.LogFormat)
	assert.Equal(t, time.Duration(0), cfg.ReaperPeriod)
	assert.Equal(t, "gh", cfg.Agent.GithubToken)
	assert.Equal(t, "ak", cfg.Agent.AnthropicKey)
	assert.False(t, cfg.Tracing().Enabled)
}

func TestLoadServerConfig_MissingCredentials(t *testing.T) {
	for _, name := range []string{"AO_GITHUB_TOKEN", "AO_ANTHROPIC_API_KEY"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}

	_, err := LoadServerConfig()
	assert.Error(t, err)
}

func TestLoadApplicationConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agentstack.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: git
stack:
  project: my-project
  prefix: XY_
git:
  uri: git@github.com:Org/config.git
  stackFile: Pulumi.prod.yaml
  refreshRate: 1000
k8s:
  namespace: config
  cacheTTLSeconds: 30
topology:
  agentsNamespace: sandboxes
  cleanupPhases: [Succeeded]
tracing:
  enabled: true
  endpoint: localhost:4318
`), 0o600))

	cfg, err := LoadApplicationConfig(path)
	require.NoError(t, err)

	assert.Equal(t, SourceGit, cfg.Source)
	assert.Equal(t, "my-project", cfg.Stack.ProjectOrDefault())
	assert.Equal(t, "XY_", cfg.Stack.PrefixOrDefault())
	assert.Equal(t, "git@github.com:Org/config.git", cfg.Git.Uri)
	assert.Equal(t, "Pulumi.prod.yaml", cfg.Git.StackFile)
	assert.Equal(t, int64(1000), cfg.Git.RefreshRateMillis)
	assert.Equal(t, "config", cfg.K8s.Namespace)
	assert.Equal(t, 30, cfg.K8s.CacheTTLSeconds)
	assert.Equal(t, "sandboxes", cfg.Topology.AgentsNamespace)
	assert.Equal(t, []string{"Succeeded"}, cfg.Topology.CleanupPhases)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadApplicationConfig_FromEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("source: file\nfile:\n  path: stack.yaml\n"), 0o600))
	t.Setenv("APP_CONFIG_FILE_YML_PATH", path)

	cfg, err := LoadApplicationConfig("")
	require.NoError(t, err)
	assert.Equal(t, "stack.yaml", cfg.File.Path)
	assert.Equal(t, DefaultProject, cfg.Stack.ProjectOrDefault())
	assert.Equal(t, DefaultPrefix, cfg.Stack.PrefixOrDefault())
}

func TestLoadApplicationConfig_Errors(t *testing.T) {
	_, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unterminated"), 0o600))
	_, err = LoadApplicationConfig(path)
	assert.Error(t, err)
}
