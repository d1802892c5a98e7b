package kube

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/GlintPay/agentstack/secret"
	"github.com/GlintPay/agentstack/store"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

const (
	DefaultConfigMapName = "agentstack-config"
	DefaultSecretName    = "agentstack-secrets"
)

// Store reads configuration from a ConfigMap (plain entries) and a Secret (sensitive
// entries) in one namespace. Data keys are qualified with the project, since
// Kubernetes keys cannot carry the `:` separator.
//
// Keys reads both resources and captures them; Lookup and Reveal answer from that capture,
// so one resolution sees a single state of the cluster.
type Store struct {
	client        *Client
	project       string
	namespace     string
	configMapName string
	secretName    string

	mu   sync.Mutex
	snap *snapshot
}

type snapshot struct {
	plain   map[string]string
	secrets map[string]string
}

type Options struct {
	Project       string
	Namespace     string
	ConfigMapName string
	SecretName    string
}

func NewStore(client *Client, opts Options) *Store {
	s := &Store{
		client:        client,
		project:       opts.Project,
		namespace:     opts.Namespace,
		configMapName: opts.ConfigMapName,
		secretName:    opts.SecretName,
	}
	if s.namespace == "" {
		s.namespace = "default"
	}
	if s.configMapName == "" {
		s.configMapName = DefaultConfigMapName
	}
	if s.secretName == "" {
		s.secretName = DefaultSecretName
	}
	return s
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	plain, secrets := snap.plain, snap.secrets

	keys := make([]string, 0, len(plain)+len(secrets))
	for k := range plain {
		keys = append(keys, s.qualify(k))
	}
	for k := range secrets {
		if _, dup := plain[k]; dup {
			continue
		}
		keys = append(keys, s.qualify(k))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Lookup(ctx context.Context, key store.Key) (store.Entry, error) {
	if key.Namespace != s.project {
		return store.AbsentEntry, nil
	}

	snap, err := s.current(ctx)
	if err != nil {
		return store.Entry{}, err
	}

	v, isPlain := snap.plain[key.Name]
	_, isSecret := snap.secrets[key.Name]

	switch {
	case isPlain && isSecret:
		return store.Entry{}, fmt.Errorf("key [%s] is defined in both configmap %s/%s and secret %s/%s",
			key.Name, s.namespace, s.configMapName, s.namespace, s.secretName)
	case isPlain:
		return store.PlainEntry(v), nil
	case isSecret:
		return store.SecretEntry(secret.NewHandle(key.String(), s)), nil
	default:
		return store.AbsentEntry, nil
	}
}

func (s *Store) Reveal(ctx context.Context, qualified string) (string, error) {
	key := store.ParseKey(qualified)
	if key.Namespace != s.project {
		return "", fmt.Errorf("key [%s] does not belong to project %s", qualified, s.project)
	}

	snap, err := s.current(ctx)
	if err != nil {
		return "", err
	}
	if v, ok := snap.secrets[key.Name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("key [%s] not found in secret %s/%s", key.Name, s.namespace, s.secretName)
}

// load reads both resources and replaces the captured snapshot.
func (s *Store) load(ctx context.Context) (*snapshot, error) {
	plain, _, err := s.client.GetConfigMapData(ctx, s.namespace, s.configMapName)
	if err != nil {
		return nil, err
	}
	secrets, _, err := s.client.GetSecretData(ctx, s.namespace, s.secretName)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{plain: plain, secrets: secrets}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	return snap, nil
}

// current returns the captured snapshot, loading one if Keys has not run yet.
func (s *Store) current(ctx context.Context) (*snapshot, error) {
	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()

	if snap != nil {
		return snap, nil
	}
	return s.load(ctx)
}

func (s *Store) qualify(name string) string {
	return store.Key{Namespace: s.project, Name: name}.String()
}

func isNotFound(err error) bool {
	return apierrors.IsNotFound(err)
}
