package health

import (
	"github.com/go-chi/chi/v5"
	"github.com/heptiolabs/healthcheck"
)

type opts struct {
	ChiMux    *chi.Mux
	readiness map[string]healthcheck.Check
}

type Opt func(*opts)

func WithChiMux(mux *chi.Mux) Opt {
	return func(o *opts) {
		o.ChiMux = mux
	}
}

// WithReadinessCheck adds an upstream dependency check to `/readiness` only.
func WithReadinessCheck(name string, check healthcheck.Check) Opt {
	return func(o *opts) {
		if o.readiness == nil {
			o.readiness = make(map[string]healthcheck.Check)
		}
		o.readiness[name] = check
	}
}
