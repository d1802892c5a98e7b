package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"sigs.k8s.io/yaml"
)

// LoadServerConfig reads the control-plane configuration from the environment.
func LoadServerConfig() (ServerConfig, error) {
	cfg := ServerConfig{}
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("configuration loading failed: %w", err)
	}
	return cfg, nil
}

// LoadApplicationConfig reads the provisioner YAML file. An empty path falls back to
// APP_CONFIG_FILE_YML_PATH.
func LoadApplicationConfig(path string) (ApplicationConfiguration, error) {
	if path == "" {
		envConfig := Configuration{}
		if err := env.Parse(&envConfig); err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration loading failed: %w", err)
		}
		path = envConfig.ApplicationConfigFileYmlPath
	}

	appConfig := ApplicationConfiguration{}

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return appConfig, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err = yaml.Unmarshal(yamlFile, &appConfig); err != nil {
		return appConfig, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return appConfig, nil
}
