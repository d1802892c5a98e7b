package secret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[string]string

func (m mapSource) Reveal(_ context.Context, key string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return "", errors.New("missing " + key)
}

func TestHandle_Reveal(t *testing.T) {
	src := mapSource{"proj:AO_TOKEN": "xyz"}

	h := NewHandle("proj:AO_TOKEN", src)
	assert.Equal(t, "proj:AO_TOKEN", h.Key())
	assert.False(t, h.IsZero())

	v, err := h.Reveal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "xyz", v)

	_, err = NewHandle("proj:AO_OTHER", src).Reveal(context.Background())
	assert.Error(t, err)
}

func TestHandle_ZeroValue(t *testing.T) {
	var h Handle
	assert.True(t, h.IsZero())

	_, err := h.Reveal(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestHandle_NeverPrintsValue(t *testing.T) {
	h := NewHandle("proj:AO_TOKEN", mapSource{"proj:AO_TOKEN": "xyz"})

	tests := []struct {
		name string
		out  string
	}{
		{name: "String", out: h.String()},
		{name: "%v", out: fmt.Sprintf("%v", h)},
		{name: "%+v", out: fmt.Sprintf("%+v", h)},
		{name: "%#v", out: fmt.Sprintf("%#v", h)},
		{name: "%s", out: fmt.Sprintf("%s", h)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Redacted, tt.out)
		})
	}

	bs, err := json.Marshal(map[string]Handle{"AO_TOKEN": h})
	require.NoError(t, err)
	assert.JSONEq(t, `{"AO_TOKEN":"[secret]"}`, string(bs))
}
