package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/GlintPay/agentstack/secret"
	"github.com/GlintPay/agentstack/store"
)

// Store is an in-memory configuration snapshot.
type Store struct {
	mu      sync.RWMutex
	plain   map[string]string
	secrets map[string]string
}

func New() *Store {
	return &Store{
		plain:   make(map[string]string),
		secrets: make(map[string]string),
	}
}

// SetPlain defines a plain entry, replacing any secret entry with the same key.
func (s *Store) SetPlain(qualified, value string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, qualified)
	s.plain[qualified] = value
	return s
}

// SetSecret defines a sensitive entry, replacing any plain entry with the same key.
func (s *Store) SetSecret(qualified, value string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plain, qualified)
	s.secrets[qualified] = value
	return s
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.plain)+len(s.secrets))
	for k := range s.plain {
		keys = append(keys, k)
	}
	for k := range s.secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Lookup(_ context.Context, key store.Key) (store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qualified := key.String()
	if v, ok := s.plain[qualified]; ok {
		return store.PlainEntry(v), nil
	}
	if _, ok := s.secrets[qualified]; ok {
		return store.SecretEntry(secret.NewHandle(qualified, s)), nil
	}
	return store.AbsentEntry, nil
}

func (s *Store) Reveal(_ context.Context, qualified string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.secrets[qualified]; ok {
		return v, nil
	}
	return "", fmt.Errorf("no secret defined for [%s]", qualified)
}
