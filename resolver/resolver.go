package resolver

import (
	"context"
	"strings"

	gotel "github.com/GlintPay/agentstack/otel"
	"github.com/GlintPay/agentstack/secret"
	"github.com/GlintPay/agentstack/store"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Configuration is the partitioned result of a resolution. Both maps are keyed by the
// unqualified name and never share a key.
type Configuration struct {
	Plain   map[string]string        `json:"plainConfig"`
	Secrets map[string]secret.Handle `json:"secrets"`
}

func (c *Configuration) Len() int {
	return len(c.Plain) + len(c.Secrets)
}

type Resolver struct {
	EnableTrace bool
}

// Resolve extracts every entry under `namespace` whose name starts with `prefix` and
// classifies it as plain or secret. Errors from the store are returned as they are; an
// entry the store cannot classify fails the whole resolution.
func Resolve(ctx context.Context, s store.Store, prefix string, namespace string) (*Configuration, error) {
	return (&Resolver{}).Resolve(ctx, s, prefix, namespace)
}

func (r *Resolver) Resolve(ctx context.Context, s store.Store, prefix string, namespace string) (*Configuration, error) {
	if r.EnableTrace {
		var end func()
		ctx, end = startSpan(ctx, prefix, namespace)
		defer end()
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &Configuration{
		Plain:   make(map[string]string),
		Secrets: make(map[string]secret.Handle),
	}

	nsPrefix := namespace + store.Separator
	for _, qualified := range keys {
		if !strings.HasPrefix(qualified, nsPrefix) {
			continue
		}

		name := qualified[len(nsPrefix):]
		if !strings.HasPrefix(name, prefix) {
			continue
		}

		entry, err := s.Lookup(ctx, store.Key{Namespace: namespace, Name: name})
		if err != nil {
			return nil, err
		}

		switch entry.Kind {
		case store.Plain:
			cfg.Plain[name] = entry.Value
		case store.Secret:
			cfg.Secrets[name] = entry.Secret
		default:
			return nil, &ClassificationError{Key: qualified}
		}
	}

	log.Debug().
		Str("namespace", namespace).
		Str("prefix", prefix).
		Int("plain", len(cfg.Plain)).
		Int("secrets", len(cfg.Secrets)).
		Msg("Resolved configuration")

	return cfg, nil
}

func startSpan(ctx context.Context, prefix string, namespace string) (context.Context, func()) {
	ctx, span := gotel.GetTracer(ctx).Start(ctx, "resolve", gotel.InternalOptions)
	span.SetAttributes(
		attribute.String("config.namespace", namespace),
		attribute.String("config.prefix", prefix),
	)
	return ctx, func() { span.End() }
}
