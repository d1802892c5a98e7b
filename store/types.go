package store

import (
	"context"
	"strings"

	"github.com/GlintPay/agentstack/secret"
)

const Separator = ":"

// Store is the read side of a configuration store. Keys are fully-qualified
// (`<namespace>:<name>`) and the store alone knows which entries are sensitive.
type Store interface {
	Keys(ctx context.Context) ([]string, error)
	Lookup(ctx context.Context, key Key) (Entry, error)
}

type Key struct {
	Namespace string
	Name      string
}

func (k Key) String() string {
	return k.Namespace + Separator + k.Name
}

// ParseKey splits on the first separator. A key without one has an empty namespace.
func ParseKey(qualified string) Key {
	ns, name, found := strings.Cut(qualified, Separator)
	if !found {
		return Key{Name: qualified}
	}
	return Key{Namespace: ns, Name: name}
}

type Kind int

const (
	Absent Kind = iota
	Plain
	Secret
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Secret:
		return "secret"
	default:
		return "absent"
	}
}

// Entry is the tagged result of a lookup: exactly one of Value or Secret is meaningful,
// according to Kind.
type Entry struct {
	Kind   Kind
	Value  string
	Secret secret.Handle
}

func PlainEntry(value string) Entry {
	return Entry{Kind: Plain, Value: value}
}

func SecretEntry(h secret.Handle) Entry {
	return Entry{Kind: Secret, Secret: h}
}

var AbsentEntry = Entry{Kind: Absent}
