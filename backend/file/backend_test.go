package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/GlintPay/agentstack/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Pulumi.dev.yaml")
	require.NoError(t, os.WriteFile(path, []byte("config:\n  agent-orchestrator:AO_PORT: \"8080\"\n"), 0o600))

	b := &Backend{}
	require.NoError(t, b.Init(context.Background(), config.ApplicationConfiguration{File: config.FileConfig{Path: path}}))
	defer b.Close()

	doc, err := b.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Name)
	assert.Empty(t, doc.Version)
	assert.Contains(t, string(doc.Data), "AO_PORT")
}

func TestBackend_Errors(t *testing.T) {
	b := &Backend{}
	assert.Error(t, b.Init(context.Background(), config.ApplicationConfiguration{}))

	require.NoError(t, b.Init(context.Background(), config.ApplicationConfiguration{
		File: config.FileConfig{Path: filepath.Join(t.TempDir(), "missing.yaml")},
	}))
	_, err := b.Load(context.Background(), false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
