package kube

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

type Client struct {
	clientset kubernetes.Interface
	cache     *resourceCache
}

type resourceCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	data      map[string]string
	expiresAt time.Time
}

// NewClientset builds a clientset from a kubeconfig path, or from the in-cluster
// service account when the path is empty.
func NewClientset(kubeconfig string) (kubernetes.Interface, error) {
	var restConfig *rest.Config
	var err error

	if kubeconfig != "" {
		restConfig, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfig, err)
		}
		log.Info().Str("kubeconfig", kubeconfig).Msg("Configuration store connecting with kubeconfig")
	} else {
		restConfig, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("no kubeconfig given and not running in a cluster: %w", err)
		}
		log.Info().Msg("Configuration store connecting with the pod service account")
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}
	return clientset, nil
}

func NewClient(clientset kubernetes.Interface, cacheTTLSeconds int) *Client {
	client := &Client{clientset: clientset}

	if cacheTTLSeconds > 0 {
		client.cache = &resourceCache{
			entries: make(map[string]cacheEntry),
			ttl:     time.Duration(cacheTTLSeconds) * time.Second,
		}
		log.Info().Int("ttl_seconds", cacheTTLSeconds).Msg("Caching configuration store secrets")
	}

	return client
}

// GetSecretData returns the decoded data of a Secret; a missing Secret is reported as
// not found rather than an error.
func (c *Client) GetSecretData(ctx context.Context, namespace, name string) (map[string]string, bool, error) {
	cacheKey := fmt.Sprintf("secret:%s/%s", namespace, name)

	if c.cache != nil {
		if val, ok := c.cache.get(cacheKey); ok {
			return val, true, nil
		}
	}

	log.Debug().Str("namespace", namespace).Str("secret", name).Msg("Reading secret")
	secret, err := c.clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get secret %s/%s: %w", namespace, name, err)
	}

	data := secretData(secret)

	if c.cache != nil {
		c.cache.set(cacheKey, data)
	}

	return data, true, nil
}

func secretData(secret *corev1.Secret) map[string]string {
	data := make(map[string]string, len(secret.Data)+len(secret.StringData))
	// only set on objects that never went through an apiserver
	for k, v := range secret.StringData {
		data[k] = v
	}
	for k, v := range secret.Data {
		data[k] = string(v)
	}
	return data
}

// GetConfigMapData is not cached. The store reads it once per Keys call.
func (c *Client) GetConfigMapData(ctx context.Context, namespace, name string) (map[string]string, bool, error) {
	log.Debug().Str("namespace", namespace).Str("configmap", name).Msg("Reading configmap")
	configMap, err := c.clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get configmap %s/%s: %w", namespace, name, err)
	}

	data := make(map[string]string, len(configMap.Data)+len(configMap.BinaryData))
	for k, v := range configMap.BinaryData {
		data[k] = string(v)
	}
	for k, v := range configMap.Data {
		data[k] = v
	}
	return data, true, nil
}

func (rc *resourceCache) get(key string) (map[string]string, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	entry, ok := rc.entries[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.data, true
}

func (rc *resourceCache) set(key string, data map[string]string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.entries[key] = cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(rc.ttl),
	}
}
