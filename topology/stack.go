// Package topology describes the Kubernetes resources of an agent deployment as a table
// of objects with explicit dependencies.
package topology

import (
	"context"
	"errors"
	"fmt"

	"github.com/GlintPay/agentstack/resolver"
	"github.com/GlintPay/agentstack/secret"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

type Object interface {
	metav1.Object
	runtime.Object
}

type Resource struct {
	ID        string
	DependsOn []string
	Object    Object
}

// Stack is a built topology. Its Secret carries redaction markers until Materialize.
type Stack struct {
	Params    Params
	resources []*Resource
	secrets   map[string]secret.Handle
}

var ErrNilConfiguration = errors.New("a resolved configuration is required")

func Build(p Params, cfg *resolver.Configuration) (*Stack, error) {
	if cfg == nil {
		return nil, ErrNilConfiguration
	}

	s := &Stack{Params: p, secrets: make(map[string]secret.Handle, len(cfg.Secrets))}
	for name, h := range cfg.Secrets {
		s.secrets[name] = h
	}
	for _, def := range definitions {
		obj, err := def.build(p, cfg)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", def.id, err)
		}
		s.resources = append(s.resources, &Resource{ID: def.id, DependsOn: def.dependsOn, Object: obj})
	}
	return s, nil
}

// Get returns the resource with the given ID, or nil.
func (s *Stack) Get(id string) *Resource {
	for _, r := range s.resources {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *Stack) Ordered() ([]*Resource, error) {
	return order(s.resources)
}

// Materialize returns the ordered resources with every secret handle revealed into the
// Secret's `stringData`. The stack itself stays redacted.
func (s *Stack) Materialize(ctx context.Context) ([]*Resource, error) {
	ordered, err := s.Ordered()
	if err != nil {
		return nil, err
	}

	out := make([]*Resource, len(ordered))
	for i, r := range ordered {
		out[i] = r
		if r.ID != IDOrchestratorSecrets {
			continue
		}

		revealed := r.Object.(*corev1.Secret).DeepCopy()
		revealed.StringData = make(map[string]string, len(s.secrets))
		for _, name := range sortedNames(s.secrets) {
			v, err := s.secrets[name].Reveal(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to reveal secret [%s]: %w", name, err)
			}
			revealed.StringData[name] = v
		}
		out[i] = &Resource{ID: r.ID, DependsOn: r.DependsOn, Object: revealed}
	}
	return out, nil
}

// InternalURL is the in-cluster address of the orchestrator service.
func (s *Stack) InternalURL() string {
	return fmt.Sprintf("http://%s.%s.svc.cluster.local:%d", s.Params.OrchestratorName, s.Params.ControlPlaneNamespace, s.Params.OrchestratorPort)
}

// SecretNames lists the keys of the orchestrator Secret.
func (s *Stack) SecretNames() []string {
	return sortedNames(s.secrets)
}
