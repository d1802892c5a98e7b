package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	FormatStructured = "structured"
	FormatPlain      = "plain"
)

func Setup(w io.Writer) {
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000"
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	log.Logger = zerolog.New(w).With().Timestamp().Caller().Logger()
}

// SetupWithFormat is Setup with a choice between JSON ("structured") and
// human-readable ("plain") output.
func SetupWithFormat(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case FormatStructured, "":
		Setup(w)
	case FormatPlain:
		Setup(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05.000"})
	default:
		return fmt.Errorf("invalid log format %q: must be %q or %q", format, FormatStructured, FormatPlain)
	}
	return nil
}
