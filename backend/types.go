package backend

import (
	"context"

	"github.com/GlintPay/agentstack/config"
)

// Backend fetches the raw stack document that a configuration store is parsed from.
type Backend interface {
	Init(ctxt context.Context, config config.ApplicationConfiguration) error
	Load(ctxt context.Context, refresh bool) (*Document, error)
	Close()
}

type Document struct {
	Name    string
	Version string
	Data    []byte
}
