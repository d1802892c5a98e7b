// Package provision applies a topology stack to a cluster.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/GlintPay/agentstack/config"
	"github.com/GlintPay/agentstack/resolver"
	"github.com/GlintPay/agentstack/store"
	"github.com/GlintPay/agentstack/topology"
	"github.com/rs/zerolog/log"
	"k8s.io/client-go/kubernetes"
)

const DefaultFieldManager = "agentstack"

var ErrUnsupportedObject = errors.New("unsupported object type")

type Options struct {
	FieldManager string
}

type Provisioner struct {
	client       kubernetes.Interface
	fieldManager string
}

func New(client kubernetes.Interface, opts Options) *Provisioner {
	p := &Provisioner{client: client, fieldManager: opts.FieldManager}
	if p.fieldManager == "" {
		p.fieldManager = DefaultFieldManager
	}
	return p
}

// Plan resolves the orchestrator configuration from `s` and builds the stack for it.
func Plan(ctx context.Context, appConfig config.ApplicationConfiguration, s store.Store) (*topology.Stack, error) {
	r := &resolver.Resolver{EnableTrace: appConfig.Tracing.Enabled}

	cfg, err := r.Resolve(ctx, s, appConfig.Stack.PrefixOrDefault(), appConfig.Stack.ProjectOrDefault())
	if err != nil {
		return nil, err
	}

	log.Info().Int("plain", len(cfg.Plain)).Int("secrets", len(cfg.Secrets)).Msg("Planning stack")

	return topology.Build(topology.ParamsFromConfig(appConfig.Topology), cfg)
}

// Apply creates every resource of the stack in dependency order, updating those that
// already exist. Secrets are revealed here and nowhere earlier.
func (p *Provisioner) Apply(ctx context.Context, stack *topology.Stack) error {
	resources, err := stack.Materialize(ctx)
	if err != nil {
		return err
	}

	for _, r := range resources {
		action, err := p.ensure(ctx, r.Object)
		if err != nil {
			return fmt.Errorf("failed to apply %s: %w", r.ID, err)
		}
		log.Info().Str("id", r.ID).Str("name", r.Object.GetName()).Str("namespace", r.Object.GetNamespace()).Msg(action)
	}
	return nil
}

// Destroy deletes the stack in reverse dependency order. Missing resources are skipped.
func (p *Provisioner) Destroy(ctx context.Context, stack *topology.Stack) error {
	resources, err := stack.Ordered()
	if err != nil {
		return err
	}

	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		deleted, err := p.delete(ctx, r.Object)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", r.ID, err)
		}
		if deleted {
			log.Info().Str("id", r.ID).Str("name", r.Object.GetName()).Msg("Deleted")
		} else {
			log.Debug().Str("id", r.ID).Msg("Already absent")
		}
	}
	return nil
}
