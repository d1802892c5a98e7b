package otel

import (
	"context"
	"testing"
	"time"

	"github.com/GlintPay/agentstack/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingShutdowner struct {
	called   bool
	ctxErr   error
	deadline bool
}

func (r *recordingShutdowner) Shutdown(ctx context.Context) error {
	r.called = true
	r.ctxErr = ctx.Err()
	_, r.deadline = ctx.Deadline()
	return nil
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), "test", config.Tracing{})
	require.NoError(t, err)
	assert.NotPanics(t, shutdown)
}

func TestSetup_MissingEndpoint(t *testing.T) {
	_, err := Setup(context.Background(), "test", config.Tracing{Enabled: true})
	assert.Error(t, err)
}

func TestShutdownFunc_OutlivesSetupContext(t *testing.T) {
	tp := &recordingShutdowner{}

	ctx, cancel := context.WithCancel(context.Background())
	shutdown := shutdownFunc(tp, time.Second)
	cancel()
	require.Error(t, ctx.Err())

	shutdown()

	assert.True(t, tp.called)
	assert.NoError(t, tp.ctxErr)
	assert.True(t, tp.deadline)
}
