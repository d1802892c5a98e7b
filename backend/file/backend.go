package file

import (
	"context"
	"errors"
	"os"

	"github.com/GlintPay/agentstack/backend"
	"github.com/GlintPay/agentstack/config"
	"github.com/rs/zerolog/log"
)

type Backend struct {
	Config config.FileConfig
}

func (s *Backend) Init(_ context.Context, appConfig config.ApplicationConfiguration) error {
	s.Config = appConfig.File
	if s.Config.Path == "" {
		return errors.New("file backend requires `file.path`")
	}
	log.Debug().Msgf("Reading from %s", s.Config.Path)
	return nil
}

// Load always reads from disk, so `refresh` has no effect.
func (s *Backend) Load(_ context.Context, _ bool) (*backend.Document, error) {
	data, err := os.ReadFile(s.Config.Path)
	if err != nil {
		return nil, err
	}

	return &backend.Document{
		Name: s.Config.Path,
		Data: data,
	}, nil
}

func (s *Backend) Close() {
	// NOOP
}
