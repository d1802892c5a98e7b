package secret

import (
	"context"
	"errors"
)

// Redacted is what a Handle prints as, wherever it ends up.
const Redacted = "[secret]"

var ErrNoSource = errors.New("secret handle has no source")

// Source materializes the value behind a fully-qualified configuration key.
type Source interface {
	Reveal(ctx context.Context, key string) (string, error)
}

// Handle is a deferred reference to a sensitive configuration value. The value is only
// read from its Source when Reveal is called, normally by the delivery layer.
type Handle struct {
	key    string
	source Source
}

func NewHandle(key string, source Source) Handle {
	return Handle{key: key, source: source}
}

// Key returns the fully-qualified key the handle refers to.
func (h Handle) Key() string {
	return h.key
}

func (h Handle) IsZero() bool {
	return h.key == "" && h.source == nil
}

func (h Handle) Reveal(ctx context.Context) (string, error) {
	if h.source == nil {
		return "", ErrNoSource
	}
	return h.source.Reveal(ctx, h.key)
}

func (h Handle) String() string {
	return Redacted
}

func (h Handle) GoString() string {
	return Redacted
}

func (h Handle) MarshalText() ([]byte, error) {
	return []byte(Redacted), nil
}

func (h Handle) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Redacted + `"`), nil
}
