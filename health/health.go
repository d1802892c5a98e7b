package health

import "github.com/heptiolabs/healthcheck"

// New builds the orchestrator's probes. Liveness only reports that the process is up.
// Readiness also runs each registered check (e.g. the agents namespace being reachable) and
// returns 503 while any of them fails.
func New(opts ...Opt) *Healthchecks {
	checks := &Healthchecks{handler: healthcheck.NewHandler()}

	for _, optionFunc := range opts {
		optionFunc(&checks.opts)
	}

	for name, check := range checks.readiness {
		checks.handler.AddReadinessCheck(name, check)
	}

	return checks
}

type Healthchecks struct {
	opts
	handler healthcheck.Handler
}

// StartListening mounts `/liveness` and `/readiness` on the router, if one was given.
func (h *Healthchecks) StartListening() {
	if h.ChiMux == nil {
		return
	}
	h.ChiMux.Get("/liveness", h.handler.LiveEndpoint)
	h.ChiMux.Get("/readiness", h.handler.ReadyEndpoint)
}
