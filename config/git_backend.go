package config

type GitConfig struct {
	Uri            string
	KnownHostsFile string `json:"knownHostsFile"`
	PrivateKey     string `json:"privateKey"`

	Basedir                string `json:"basedir"`
	DisableBaseDirCleaning bool   `json:"disableBaseDirCleaning"`

	DefaultBranchName string `json:"defaultBranchName"`
	StackFile         string `json:"stackFile"`

	CloneOnStart bool `json:"clone-on-start"`
	ForcePull    bool `json:"force-pull"`
	ShowProgress bool `json:"showProgress"`

	RefreshRateMillis int64 `json:"refreshRate"`
}
