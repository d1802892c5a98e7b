package config

import "time"

// ServerConfig is the control-plane service configuration. Every variable carries the
// `AO_` prefix, matching the names the provisioner resolves into its ConfigMap and Secret.
type ServerConfig struct {
	Port        int           `env:"AO_PORT" envDefault:"8080"`
	KubeConfig  string        `env:"AO_KUBECONFIG"` // raw or base64 kubeconfig content (empty = in-cluster auth)
	Namespace   string        `env:"AO_NAMESPACE" envDefault:"agents"`
	TaskTimeout time.Duration `env:"AO_TASK_TIMEOUT" envDefault:"30m"`

	AgentImage string `env:"AO_AGENT_IMAGE" envDefault:"ghcr.io/compilercomplied/agent-runner:latest"`

	LogFormat     string        `env:"AO_LOG_FORMAT" envDefault:"structured"`
	ReaperPeriod  time.Duration `env:"AO_REAPER_INTERVAL" envDefault:"0s"`
	MetricsPath   string        `env:"AO_METRICS_PATH" envDefault:"/metrics"`
	ReadTimeout   time.Duration `env:"AO_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout  time.Duration `env:"AO_WRITE_TIMEOUT" envDefault:"10s"`
	TraceEndpoint string        `env:"AO_TRACING_ENDPOINT"`

	Agent AgentConfig
}

type AgentConfig struct {
	GithubToken  string `env:"AO_GITHUB_TOKEN,required"`
	AnthropicKey string `env:"AO_ANTHROPIC_API_KEY,required"`
}

func (c ServerConfig) Tracing() Tracing {
	return Tracing{Enabled: c.TraceEndpoint != "", Endpoint: c.TraceEndpoint, SamplerFraction: 1}
}
