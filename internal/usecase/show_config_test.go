package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowConfig_Execute(t *testing.T) {
	cfg := domain.NewDefaultConfig()
	cfg.Cache.Store = domain.StoreGit
	mgr := &testutil.MockConfigManager{
		Global: domain.ConfigInfo{Path: "/g/config.toml"},
		Repo:   domain.ConfigInfo{Path: "/src/.confcache.toml", Content: "[cache]\nstore = \"git\"\n", Exists: true},
	}

	out, err := NewShowConfig(mgr, &testutil.MockConfigLoader{Config: cfg}).Execute(context.Background(), ShowConfigInput{})

	require.NoError(t, err)
	assert.Equal(t, domain.StoreGit, out.Effective.Cache.Store)
	assert.True(t, out.RepoConfig.Exists)
	assert.False(t, out.GlobalConfig.Exists)
	assert.False(t, out.OverrideConfig.Exists)
}

func TestShowConfig_Execute_LoadError(t *testing.T) {
	loader := &testutil.MockConfigLoader{Err: errors.New("bad toml")}

	_, err := NewShowConfig(&testutil.MockConfigManager{}, loader).Execute(context.Background(), ShowConfigInput{})

	assert.ErrorContains(t, err, "bad toml")
}
