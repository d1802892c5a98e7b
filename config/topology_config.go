package config

// TopologyConfig overrides the names and images of the provisioned resources. Zero
// values fall back to the defaults of package topology.
type TopologyConfig struct {
	ControlPlaneNamespace string `json:"controlPlaneNamespace"`
	AgentsNamespace       string `json:"agentsNamespace"`

	OrchestratorImage string `json:"orchestratorImage"`
	OrchestratorPort  int32  `json:"orchestratorPort"`
	Replicas          int32  `json:"replicas"`

	CleanupSchedule string   `json:"cleanupSchedule"`
	CleanupImage    string   `json:"cleanupImage"`
	CleanupPhases   []string `json:"cleanupPhases"`
}
