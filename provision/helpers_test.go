package provision

import (
	"context"
	"errors"

	"github.com/GlintPay/agentstack/store"
)

var errBroken = errors.New("store unavailable")

type brokenStore struct{}

func (brokenStore) Keys(context.Context) ([]string, error) {
	return nil, errBroken
}

func (brokenStore) Lookup(context.Context, store.Key) (store.Entry, error) {
	return store.Entry{}, errBroken
}
