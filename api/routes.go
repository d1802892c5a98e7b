package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/riandyrn/otelchi"
	"github.com/rs/zerolog/log"
)

const (
	applicationJSON = "application/json"

	acceptedMessage = "Task has been accepted and is being processed"
)

type Routing struct {
	ServerName   string
	ParentRouter chi.Router

	Submitter   TaskSubmitter
	Metrics     *Metrics
	EnableTrace bool
}

func (rtr *Routing) SetupFunctionalRoutes(r chi.Router) error {
	if e := rtr.enableOTelForRouter(r); e != nil {
		return e
	}

	r.Post("/api/tasks", rtr.taskHandler())
	r.Get("/health", healthHandler)

	return nil
}

func (rtr *Routing) taskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn().Err(err).Msg("Failed to decode request")
			rtr.Metrics.countTask(resultRejected)
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Task) == "" {
			rtr.Metrics.countTask(resultRejected)
			writeError(w, "task field is required and cannot be empty", http.StatusBadRequest)
			return
		}

		podName, err := rtr.Submitter.Submit(r.Context(), req.Task)
		if err != nil {
			log.Error().Err(err).Stack().Msg("Task submission failed")
			rtr.Metrics.countTask(resultFailed)
			writeError(w, "failed to start agent", http.StatusInternalServerError)
			return
		}

		log.Info().Str("pod", podName).Msg("Task accepted")
		rtr.Metrics.countTask(resultAccepted)

		writeJSON(w, http.StatusAccepted, TaskResponse{
			Status:  "accepted",
			Message: acceptedMessage,
			PodName: podName,
		})
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, val any) {
	w.Header().Set("Content-Type", applicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(val)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func (rtr *Routing) enableOTelForRouter(r chi.Router) error {
	if !rtr.EnableTrace {
		return nil
	}

	if rtr.ServerName == "" || rtr.ParentRouter == nil {
		return errors.New("OTel not configured")
	}

	r.Use(otelchi.Middleware(rtr.ServerName, otelchi.WithChiRoutes(rtr.ParentRouter)))

	log.Info().Msgf("OpenTelemetry trace is enabled")
	return nil
}
