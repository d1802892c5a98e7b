package stackfile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/GlintPay/agentstack/resolver"
	"github.com/GlintPay/agentstack/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stackYaml = `
secretsprovider: awskms://alias/agents
config:
  agent-orchestrator:AO_PORT: "8080"
  agent-orchestrator:AO_REPLICAS: 2
  agent-orchestrator:AO_DEBUG: true
  agent-orchestrator:AO_GITHUB_TOKEN: ENC[AES256_GCM,data:Z2g=,iv:aXY=,tag:dA==,type:str]
  agent-orchestrator:AO_LOCAL_KEY:
    secure: local-dev-key
  agent-orchestrator:OTHER: ignored
  kubernetes:context: prod
`

// replacingDecrypter stands in for SOPS by swapping ciphertexts for plaintexts.
type replacingDecrypter map[string]string

func (r replacingDecrypter) Decrypt(data []byte) ([]byte, error) {
	out := string(data)
	for from, to := range r {
		out = strings.ReplaceAll(out, from, to)
	}
	return []byte(out), nil
}

type failingDecrypter struct{}

func (failingDecrypter) Decrypt([]byte) ([]byte, error) {
	return nil, errors.New("no kms access")
}

func TestParse_Classification(t *testing.T) {
	ctx := context.Background()

	s, err := Parse("Pulumi.prod.yaml", []byte(stackYaml), nil)
	require.NoError(t, err)
	assert.Equal(t, "Pulumi.prod.yaml", s.Name())

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"agent-orchestrator:AO_DEBUG",
		"agent-orchestrator:AO_GITHUB_TOKEN",
		"agent-orchestrator:AO_LOCAL_KEY",
		"agent-orchestrator:AO_PORT",
		"agent-orchestrator:AO_REPLICAS",
		"agent-orchestrator:OTHER",
		"kubernetes:context",
	}, keys)

	tests := []struct {
		key       string
		wantKind  store.Kind
		wantValue string
	}{
		{key: "agent-orchestrator:AO_PORT", wantKind: store.Plain, wantValue: "8080"},
		{key: "agent-orchestrator:AO_REPLICAS", wantKind: store.Plain, wantValue: "2"},
		{key: "agent-orchestrator:AO_DEBUG", wantKind: store.Plain, wantValue: "true"},
		{key: "agent-orchestrator:AO_GITHUB_TOKEN", wantKind: store.Secret},
		{key: "agent-orchestrator:AO_LOCAL_KEY", wantKind: store.Secret},
		{key: "agent-orchestrator:AO_MISSING", wantKind: store.Absent},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			e, err := s.Lookup(ctx, store.ParseKey(tt.key))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, tt.wantValue, e.Value)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "config: [unterminated"},
		{name: "list value", content: "config:\n  proj:AO_LIST: [a, b]\n"},
		{name: "object without secure", content: "config:\n  proj:AO_OBJ:\n    other: x\n"},
		{name: "secure with extra field", content: "config:\n  proj:AO_OBJ:\n    secure: x\n    other: y\n"},
		{name: "non-string secure", content: "config:\n  proj:AO_OBJ:\n    secure: [1]\n"},
		{name: "provider ciphertext", content: "config:\n  proj:AO_OBJ:\n    secure: v1:Zm9vYmFy\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("stack.yaml", []byte(tt.content), nil)
			assert.Error(t, err)
		})
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	s, err := Parse("stack.yaml", []byte(""), nil)
	require.NoError(t, err)

	keys, err := s.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestReveal(t *testing.T) {
	ctx := context.Background()

	dec := replacingDecrypter{"ENC[AES256_GCM,data:Z2g=,iv:aXY=,tag:dA==,type:str]": "ghp_plaintext"}
	s, err := Parse("stack.yaml", []byte(stackYaml), dec)
	require.NoError(t, err)

	e, err := s.Lookup(ctx, store.ParseKey("agent-orchestrator:AO_GITHUB_TOKEN"))
	require.NoError(t, err)
	v, err := e.Secret.Reveal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ghp_plaintext", v)

	v, err = s.Reveal(ctx, "agent-orchestrator:AO_LOCAL_KEY")
	require.NoError(t, err)
	assert.Equal(t, "local-dev-key", v)

	_, err = s.Reveal(ctx, "agent-orchestrator:AO_PORT")
	assert.Error(t, err, "plain entries cannot be revealed")
}

func TestReveal_TypedScalars(t *testing.T) {
	const typedYaml = `
config:
  agent-orchestrator:AO_REPLICAS: ENC[AES256_GCM,data:Mg==,iv:aXY=,tag:dA==,type:int]
  agent-orchestrator:AO_DEBUG: ENC[AES256_GCM,data:dHJ1ZQ==,iv:aXY=,tag:dA==,type:bool]
`
	dec := replacingDecrypter{
		"ENC[AES256_GCM,data:Mg==,iv:aXY=,tag:dA==,type:int]":      "2",
		"ENC[AES256_GCM,data:dHJ1ZQ==,iv:aXY=,tag:dA==,type:bool]": "true",
	}
	s, err := Parse("stack.yaml", []byte(typedYaml), dec)
	require.NoError(t, err)

	tests := []struct {
		key  string
		want string
	}{
		{key: "agent-orchestrator:AO_REPLICAS", want: "2"},
		{key: "agent-orchestrator:AO_DEBUG", want: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			e, err := s.Lookup(context.Background(), store.ParseKey(tt.key))
			require.NoError(t, err)
			require.Equal(t, store.Secret, e.Kind)

			v, err := e.Secret.Reveal(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestReveal_WithoutSopsMetadataStaysEncrypted(t *testing.T) {
	s, err := Parse("stack.yaml", []byte(stackYaml), nil)
	require.NoError(t, err)

	_, err = s.Reveal(context.Background(), "agent-orchestrator:AO_GITHUB_TOKEN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still encrypted")

	v, err := s.Reveal(context.Background(), "agent-orchestrator:AO_LOCAL_KEY")
	require.NoError(t, err)
	assert.Equal(t, "local-dev-key", v)
}

func TestReveal_DecryptionFailure(t *testing.T) {
	s, err := Parse("stack.yaml", []byte(stackYaml), failingDecrypter{})
	require.NoError(t, err)

	_, err = s.Reveal(context.Background(), "agent-orchestrator:AO_LOCAL_KEY")
	assert.ErrorContains(t, err, "no kms access")
}

func TestResolveFromStackFile(t *testing.T) {
	ctx := context.Background()

	s, err := Parse("stack.yaml", []byte(stackYaml), failingDecrypter{})
	require.NoError(t, err)

	cfg, err := resolver.Resolve(ctx, s, "AO_", "agent-orchestrator")
	require.NoError(t, err, "resolution must not decrypt anything")

	assert.Equal(t, map[string]string{"AO_PORT": "8080", "AO_REPLICAS": "2", "AO_DEBUG": "true"}, cfg.Plain)
	assert.Len(t, cfg.Secrets, 2)
	assert.Contains(t, cfg.Secrets, "AO_GITHUB_TOKEN")
	assert.Contains(t, cfg.Secrets, "AO_LOCAL_KEY")
}
