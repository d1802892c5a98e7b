package api

import "context"

type TaskRequest struct {
	Task string `json:"task"`
}

type TaskResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	PodName string `json:"pod_name"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// TaskSubmitter starts a task and returns the name of the pod running it.
type TaskSubmitter interface {
	Submit(ctx context.Context, task string) (string, error)
}
