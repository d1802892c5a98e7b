package topology

import "github.com/GlintPay/agentstack/config"

const (
	DefaultControlPlaneNamespace = "agents-control-plane"
	DefaultAgentsNamespace       = "agents"
	DefaultOrchestratorName      = "agent-orchestrator"
	DefaultOrchestratorImage     = "ghcr.io/compilercomplied/agent-orchestrator:latest"
	DefaultOrchestratorPort      = int32(8080)
	DefaultCleanupSchedule       = "0 0 * * *"
	DefaultCleanupImage          = "bitnami/kubectl:latest"
)

var DefaultCleanupPhases = []string{"Succeeded", "Failed"}

// Params names and sizes the provisioned resources.
type Params struct {
	ControlPlaneNamespace string
	AgentsNamespace       string

	OrchestratorName  string
	OrchestratorImage string
	OrchestratorPort  int32
	Replicas          int32

	CleanupSchedule string
	CleanupImage    string
	CleanupPhases   []string
}

func DefaultParams() Params {
	return Params{
		ControlPlaneNamespace: DefaultControlPlaneNamespace,
		AgentsNamespace:       DefaultAgentsNamespace,
		OrchestratorName:      DefaultOrchestratorName,
		OrchestratorImage:     DefaultOrchestratorImage,
		OrchestratorPort:      DefaultOrchestratorPort,
		Replicas:              1,
		CleanupSchedule:       DefaultCleanupSchedule,
		CleanupImage:          DefaultCleanupImage,
		CleanupPhases:         DefaultCleanupPhases,
	}
}

// ParamsFromConfig overlays the non-zero fields of `c` on the defaults.
func ParamsFromConfig(c config.TopologyConfig) Params {
	p := DefaultParams()
	if c.ControlPlaneNamespace != "" {
		p.ControlPlaneNamespace = c.ControlPlaneNamespace
	}
	if c.AgentsNamespace != "" {
		p.AgentsNamespace = c.AgentsNamespace
	}
	if c.OrchestratorImage != "" {
		p.OrchestratorImage = c.OrchestratorImage
	}
	if c.OrchestratorPort > 0 {
		p.OrchestratorPort = c.OrchestratorPort
	}
	if c.Replicas > 0 {
		p.Replicas = c.Replicas
	}
	if c.CleanupSchedule != "" {
		p.CleanupSchedule = c.CleanupSchedule
	}
	if c.CleanupImage != "" {
		p.CleanupImage = c.CleanupImage
	}
	if len(c.CleanupPhases) > 0 {
		p.CleanupPhases = c.CleanupPhases
	}
	return p
}
