package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/confcache/internal/domain"
)

// ShowConfigInput contains the input for the ShowConfig use case.
type ShowConfigInput struct {
	IgnoreGlobal   bool
	IgnoreRepo     bool
	IgnoreOverride bool
}

// ShowConfigOutput contains the output of the ShowConfig use case.
type ShowConfigOutput struct {
	Effective      *domain.Config    // Merged configuration
	GlobalConfig   domain.ConfigInfo // Global config file info
	RepoConfig     domain.ConfigInfo // Repository config file info
	OverrideConfig domain.ConfigInfo // Local override file info
}

// ShowConfig displays configuration file information.
type ShowConfig struct {
	configManager domain.ConfigManager
	configLoader  domain.ConfigLoader
}

// NewShowConfig creates a new ShowConfig use case.
func NewShowConfig(configManager domain.ConfigManager, configLoader domain.ConfigLoader) *ShowConfig {
	return &ShowConfig{
		configManager: configManager,
		configLoader:  configLoader,
	}
}

// Execute retrieves configuration file information and the merged result.
func (uc *ShowConfig) Execute(_ context.Context, in ShowConfigInput) (*ShowConfigOutput, error) {
	cfg, err := uc.configLoader.LoadWithOptions(domain.LoadConfigOptions{
		IgnoreGlobal:   in.IgnoreGlobal,
		IgnoreRepo:     in.IgnoreRepo,
		IgnoreOverride: in.IgnoreOverride,
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &ShowConfigOutput{
		Effective:      cfg,
		GlobalConfig:   uc.configManager.GetGlobalConfigInfo(),
		RepoConfig:     uc.configManager.GetRepoConfigInfo(),
		OverrideConfig: uc.configManager.GetOverrideConfigInfo(),
	}, nil
}
