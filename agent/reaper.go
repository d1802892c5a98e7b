package agent

import (
	"context"
	"time"

	"codnect.io/chrono"
	"github.com/rs/zerolog/log"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
)

func finished(pod corev1.Pod) bool {
	return pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed
}

// Sweep deletes the agent pods that have run to completion and returns how many it
// removed. Only pods carrying the managed-by label are considered.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	selector := labels.SelectorFromSet(labels.Set{ManagedByLabel: ManagedByValue}).String()

	pods, err := m.client.CoreV1().Pods(m.namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, pod := range pods.Items {
		if !finished(pod) {
			continue
		}
		err = m.client.CoreV1().Pods(m.namespace).Delete(ctx, pod.Name, metav1.DeleteOptions{})
		if err != nil && !apierrors.IsNotFound(err) {
			return deleted, err
		}
		deleted++
		log.Debug().Str("pod", pod.Name).Str("phase", string(pod.Status.Phase)).Msg("Reaped agent pod")
	}
	return deleted, nil
}

// StartReaper runs Sweep every `period` until the returned stop func is called.
func (m *Manager) StartReaper(period time.Duration) (func(), error) {
	scheduler := chrono.NewDefaultTaskScheduler()

	log.Info().Msgf("Scheduling agent pod sweep every %v", period)

	task, err := scheduler.ScheduleAtFixedRate(func(ctx context.Context) {
		n, e := m.Sweep(ctx)
		if e != nil {
			log.Error().Err(e).Msg("Sweep failed")
			return
		}
		if n > 0 {
			log.Info().Int("deleted", n).Msg("Swept finished agent pods")
		}
	}, period)
	if err != nil {
		return nil, err
	}

	return task.Cancel, nil
}
