package agent

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/GlintPay/agentstack/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Namespace:   "agents",
		AgentImage:  "ghcr.io/compilercomplied/agent-runner:latest",
		TaskTimeout: 30 * time.Minute,
		Agent:       config.AgentConfig{GithubToken: "ghp_123", AnthropicKey: "sk-ant"},
	}
}

func newTestManager(objects ...runtime.Object) (*Manager, *fake.Clientset) {
	cs := fake.NewClientset(objects...)
	m := NewManager(cs, testConfig())
	m.newID = func() string { return "0001" }
	return m, cs
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	m, cs := newTestManager()

	name, err := m.Submit(ctx, "fix the flaky test")
	require.NoError(t, err)
	assert.Equal(t, "agent-0001", name)

	pod, err := cs.CoreV1().Pods("agents").Get(ctx, name, metav1.GetOptions{})
	require.NoError(t, err)

	assert.Equal(t, ManagedByValue, pod.Labels[ManagedByLabel])
	assert.Equal(t, "0001", pod.Labels[TaskIDLabel])
	assert.Equal(t, corev1.RestartPolicyNever, pod.Spec.RestartPolicy)
	require.NotNil(t, pod.Spec.ActiveDeadlineSeconds)
	assert.Equal(t, int64(1800), *pod.Spec.ActiveDeadlineSeconds)

	container := pod.Spec.Containers[0]
	assert.Equal(t, "ghcr.io/compilercomplied/agent-runner:latest", container.Image)
	assert.Equal(t, []string{"fix the flaky test"}, container.Args)
	assert.Contains(t, container.Env, corev1.EnvVar{Name: "GITHUB_TOKEN", Value: "ghp_123"})
	assert.Contains(t, container.Env, corev1.EnvVar{Name: "ANTHROPIC_API_KEY", Value: "sk-ant"})
}

func TestSubmit_NoTimeout(t *testing.T) {
	m, _ := newTestManager()
	m.taskTimeout = 0

	pod := m.pod("x", "task")
	assert.Nil(t, pod.Spec.ActiveDeadlineSeconds)
}

func TestSubmit_Errors(t *testing.T) {
	m, cs := newTestManager()

	_, err := m.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTask)

	boom := errors.New("quota exceeded")
	cs.PrependReactor("create", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, boom
	})
	_, err = m.Submit(context.Background(), "task")
	assert.ErrorIs(t, err, boom)
}

func TestValidateConfig(t *testing.T) {
	m, _ := newTestManager()
	assert.Error(t, m.ValidateConfig(context.Background()))

	m, _ = newTestManager(&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "agents"}})
	assert.NoError(t, m.ValidateConfig(context.Background()))

	m.image = ""
	assert.Error(t, m.ValidateConfig(context.Background()))
}

func agentPod(name string, phase corev1.PodPhase, managed bool) *corev1.Pod {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "agents", Labels: map[string]string{}},
		Status:     corev1.PodStatus{Phase: phase},
	}
	if managed {
		pod.Labels[ManagedByLabel] = ManagedByValue
	}
	return pod
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	m, cs := newTestManager(
		agentPod("agent-done", corev1.PodSucceeded, true),
		agentPod("agent-failed", corev1.PodFailed, true),
		agentPod("agent-running", corev1.PodRunning, true),
		agentPod("agent-pending", corev1.PodPending, true),
		agentPod("unrelated-done", corev1.PodSucceeded, false),
	)

	n, err := m.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pods, err := cs.CoreV1().Pods("agents").List(ctx, metav1.ListOptions{})
	require.NoError(t, err)

	var remaining []string
	for _, p := range pods.Items {
		remaining = append(remaining, p.Name)
	}
	assert.ElementsMatch(t, []string{"agent-running", "agent-pending", "unrelated-done"}, remaining)

	n, err = m.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStartReaper(t *testing.T) {
	m, cs := newTestManager(agentPod("agent-done", corev1.PodSucceeded, true))

	stop, err := m.StartReaper(10 * time.Millisecond)
	require.NoError(t, err)
	defer stop()

	assert.Eventually(t, func() bool {
		pods, err := cs.CoreV1().Pods("agents").List(context.Background(), metav1.ListOptions{})
		return err == nil && len(pods.Items) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDecodeKubeconfig(t *testing.T) {
	raw := "apiVersion: v1\nkind: Config\n"

	got, err := decodeKubeconfig(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, string(got))

	got, err = decodeKubeconfig(base64.StdEncoding.EncodeToString([]byte(raw)))
	require.NoError(t, err)
	assert.Equal(t, raw, string(got))

	_, err = decodeKubeconfig("!!not-base64!!")
	assert.Error(t, err)
}
