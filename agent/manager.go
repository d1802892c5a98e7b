// Package agent runs submitted tasks as one-shot pods in the agents namespace.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GlintPay/agentstack/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"
)

const (
	ManagedByLabel = "app.kubernetes.io/managed-by"
	ManagedByValue = "agent-orchestrator"
	TaskIDLabel    = "agent-orchestrator/task-id"

	PodNamePrefix = "agent-"
	containerName = "agent"
)

var ErrEmptyTask = errors.New("task cannot be empty")

type Manager struct {
	client      kubernetes.Interface
	namespace   string
	image       string
	taskTimeout time.Duration
	credentials config.AgentConfig

	newID func() string
}

func NewManager(client kubernetes.Interface, cfg config.ServerConfig) *Manager {
	return &Manager{
		client:      client,
		namespace:   cfg.Namespace,
		image:       cfg.AgentImage,
		taskTimeout: cfg.TaskTimeout,
		credentials: cfg.Agent,
		newID:       uuid.NewString,
	}
}

func (m *Manager) Namespace() string {
	return m.namespace
}

// ValidateConfig checks that the agents namespace is reachable with the current credentials.
func (m *Manager) ValidateConfig(ctx context.Context) error {
	if m.image == "" {
		return errors.New("agent image is not configured")
	}
	if _, err := m.client.CoreV1().Namespaces().Get(ctx, m.namespace, metav1.GetOptions{}); err != nil {
		return fmt.Errorf("namespace %s is not accessible: %w", m.namespace, err)
	}
	return nil
}

// Submit starts a pod for the task and returns its name without waiting for it to run.
func (m *Manager) Submit(ctx context.Context, task string) (string, error) {
	if strings.TrimSpace(task) == "" {
		return "", ErrEmptyTask
	}

	id := m.newID()
	pod := m.pod(id, task)

	created, err := m.client.CoreV1().Pods(m.namespace).Create(ctx, pod, metav1.CreateOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to create agent pod: %w", err)
	}

	log.Info().Str("pod", created.Name).Str("namespace", m.namespace).Msg("Agent pod created")
	return created.Name, nil
}

func (m *Manager) pod(id string, task string) *corev1.Pod {
	var deadline *int64
	if m.taskTimeout > 0 {
		deadline = ptr.To(int64(m.taskTimeout / time.Second))
	}

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      PodNamePrefix + id,
			Namespace: m.namespace,
			Labels: map[string]string{
				ManagedByLabel: ManagedByValue,
				TaskIDLabel:    id,
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy:         corev1.RestartPolicyNever,
			ActiveDeadlineSeconds: deadline,
			Containers: []corev1.Container{{
				Name:  containerName,
				Image: m.image,
				Args:  []string{task},
				Env: []corev1.EnvVar{
					{Name: "GITHUB_TOKEN", Value: m.credentials.GithubToken},
					{Name: "ANTHROPIC_API_KEY", Value: m.credentials.AnthropicKey},
				},
			}},
		},
	}
}
