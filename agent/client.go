package agent

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClientset builds a clientset from kubeconfig content, either raw YAML or base64
// encoded. Empty content selects in-cluster authentication.
func NewClientset(kubeconfig string) (kubernetes.Interface, error) {
	restConfig, err := restConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	return kubernetes.NewForConfig(restConfig)
}

func restConfig(kubeconfig string) (*rest.Config, error) {
	if strings.TrimSpace(kubeconfig) == "" {
		log.Info().Msg("Using in-cluster K8s authentication")
		return rest.InClusterConfig()
	}

	content, err := decodeKubeconfig(kubeconfig)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Using supplied kubeconfig for K8s authentication")
	return clientcmd.RESTConfigFromKubeConfig(content)
}

func decodeKubeconfig(kubeconfig string) ([]byte, error) {
	trimmed := strings.TrimSpace(kubeconfig)
	if strings.Contains(trimmed, "apiVersion") || strings.Contains(trimmed, "\n") {
		return []byte(kubeconfig), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("kubeconfig is neither YAML nor base64: %w", err)
	}
	return decoded, nil
}
