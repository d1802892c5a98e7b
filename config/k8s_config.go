package config

type K8sConfig struct {
	Kubeconfig      string // Path to kubeconfig file (empty = in-cluster auth)
	Namespace       string // Namespace holding the configuration ConfigMap and Secret
	ConfigMapName   string `json:"configMapName"`
	SecretName      string `json:"secretName"`
	CacheTTLSeconds int    `json:"cacheTTLSeconds"` // Secret cache TTL (0 = no caching)
	FieldManager    string `json:"fieldManager"`
}
