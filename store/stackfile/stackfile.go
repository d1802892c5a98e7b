// Package stackfile reads configuration entries from a stack document: a YAML file whose
// `config` map holds fully-qualified keys. Sensitive values are either SOPS-encrypted
// scalars (`ENC[...]`) or `secure:` objects, and are only decrypted when revealed.
//
// A `secure:` value must be plaintext or SOPS ciphertext. Values encrypted by a Pulumi
// secrets provider (`v1:...`) are rejected, since nothing here holds the provider's key.
package stackfile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GlintPay/agentstack/secret"
	"github.com/GlintPay/agentstack/sops"
	"github.com/GlintPay/agentstack/store"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
	"sigs.k8s.io/yaml"
)

const configKey = "config"

const providerCiphertextPrefix = "v1:"

type Decrypter interface {
	Decrypt(data []byte) ([]byte, error)
}

type document struct {
	Config map[string]any `json:"config"`
}

type secureValue struct {
	Secure string `mapstructure:"secure"`
}

// Store is an immutable snapshot of one stack document.
type Store struct {
	name      string
	raw       []byte
	plain     map[string]string
	secrets   map[string]struct{}
	decrypter Decrypter

	once      sync.Once
	revealed  map[string]string
	revealErr error
}

// Parse classifies every entry of the document. Decryption is deferred to Reveal.
func Parse(name string, data []byte, decrypter Decrypter) (*Store, error) {
	if decrypter == nil {
		decrypter = sops.Decrypter{}
	}

	s := &Store{
		name:      name,
		raw:       data,
		plain:     make(map[string]string),
		secrets:   make(map[string]struct{}),
		decrypter: decrypter,
	}

	doc := document{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse stack file %s: %w", name, err)
	}

	for k, v := range doc.Config {
		switch typed := v.(type) {
		case string:
			if sops.IsEncryptedValue(typed) {
				s.secrets[k] = struct{}{}
			} else {
				s.plain[k] = typed
			}
		case bool, float64, int64, int:
			s.plain[k] = fmt.Sprintf("%v", typed)
		case map[string]any:
			sv, err := decodeSecure(typed)
			if err != nil {
				return nil, fmt.Errorf("stack file %s, key [%s]: %w", name, k, err)
			}
			if strings.HasPrefix(sv.Secure, providerCiphertextPrefix) {
				return nil, fmt.Errorf("stack file %s, key [%s]: value is encrypted by a stack secrets provider, re-encrypt it with SOPS", name, k)
			}
			s.secrets[k] = struct{}{}
		case nil:
			s.plain[k] = ""
		default:
			return nil, fmt.Errorf("stack file %s, key [%s]: unsupported value type %T", name, k, v)
		}
	}

	log.Debug().Msgf("Parsed stack file %s: %d plain, %d secret", name, len(s.plain), len(s.secrets))

	return s, nil
}

func (s *Store) Name() string {
	return s.name
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
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
	qualified := key.String()
	if v, ok := s.plain[qualified]; ok {
		return store.PlainEntry(v), nil
	}
	if _, ok := s.secrets[qualified]; ok {
		return store.SecretEntry(secret.NewHandle(qualified, s)), nil
	}
	return store.AbsentEntry, nil
}

// Reveal decrypts the document on first use and returns the plaintext of one secret.
func (s *Store) Reveal(_ context.Context, qualified string) (string, error) {
	if _, ok := s.secrets[qualified]; !ok {
		return "", fmt.Errorf("no secret [%s] in stack file %s", qualified, s.name)
	}

	s.once.Do(s.decryptAll)
	if s.revealErr != nil {
		return "", s.revealErr
	}

	v, ok := s.revealed[qualified]
	if !ok {
		return "", fmt.Errorf("secret [%s] missing from decrypted stack file %s", qualified, s.name)
	}
	if sops.IsEncryptedValue(v) {
		return "", fmt.Errorf("secret [%s] in stack file %s is still encrypted", qualified, s.name)
	}
	return v, nil
}

func (s *Store) decryptAll() {
	decrypted, err := s.decrypter.Decrypt(s.raw)
	if err != nil {
		s.revealErr = fmt.Errorf("failed to decrypt stack file %s: %w", s.name, err)
		return
	}

	doc := document{}
	if err = yaml.Unmarshal(decrypted, &doc); err != nil {
		s.revealErr = fmt.Errorf("failed to parse decrypted stack file %s: %w", s.name, err)
		return
	}

	s.revealed = make(map[string]string, len(s.secrets))
	for k := range s.secrets {
		switch typed := doc.Config[k].(type) {
		case string:
			s.revealed[k] = typed
		case bool, float64, int64, int:
			// SOPS restores the original scalar type of `type:int` and `type:bool` values
			s.revealed[k] = fmt.Sprintf("%v", typed)
		case map[string]any:
			sv, e := decodeSecure(typed)
			if e != nil {
				s.revealErr = fmt.Errorf("stack file %s, key [%s]: %w", s.name, k, e)
				return
			}
			s.revealed[k] = sv.Secure
		}
	}
}

func decodeSecure(m map[string]any) (secureValue, error) {
	sv := secureValue{}
	md := mapstructure.Metadata{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{ErrorUnused: true, Metadata: &md, Result: &sv})
	if err != nil {
		return sv, err
	}
	if err = decoder.Decode(m); err != nil {
		return sv, fmt.Errorf("expected a `secure` value: %w", err)
	}
	if len(md.Keys) == 0 {
		return sv, fmt.Errorf("expected a `secure` value")
	}
	return sv, nil
}
