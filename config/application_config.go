package config

type Configuration struct {
	ApplicationConfigFileYmlPath string `env:"APP_CONFIG_FILE_YML_PATH" envDefault:"agentstack.yml"`
}

const (
	SourceFile       = "file"
	SourceGit        = "git"
	SourceKubernetes = "kubernetes"
)

// ApplicationConfiguration Must use full names for `sigs.k8s.io/yaml`
type ApplicationConfiguration struct {
	Source   string
	Stack    StackConfig
	File     FileConfig
	Git      GitConfig
	K8s      K8sConfig
	Topology TopologyConfig
	Tracing  Tracing
}

// StackConfig selects which entries of the configuration store belong to the orchestrator.
type StackConfig struct {
	Project string // configuration namespace, e.g. `agent-orchestrator`
	Prefix  string // e.g. `AO_`
}

type FileConfig struct {
	Path string
}

type Tracing struct {
	Enabled         bool
	Endpoint        string
	SamplerFraction float64 `json:"samplerFraction"`
}

const (
	DefaultProject = "agent-orchestrator"
	DefaultPrefix  = "AO_"
)

func (c StackConfig) ProjectOrDefault() string {
	if c.Project == "" {
		return DefaultProject
	}
	return c.Project
}

func (c StackConfig) PrefixOrDefault() string {
	if c.Prefix == "" {
		return DefaultPrefix
	}
	return c.Prefix
}
