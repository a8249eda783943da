package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "test-project")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, "test-project", cfg.Firestore.ProjectID)
	assert.Equal(t, "servers", cfg.Firestore.ServersCollection)
	assert.Equal(t, "devices", cfg.Firestore.DevicesCollection)
	assert.Equal(t, "", cfg.Auth.Token)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "test-project")
	t.Setenv("FIRESTORE_DEVICES_COLLECTION", "subscribers")
	t.Setenv("SERVER_HTTP_PORT", "9090")
	t.Setenv("AUTH_TOKEN", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "subscribers", cfg.Firestore.DevicesCollection)
	assert.Equal(t, "9090", cfg.Server.HTTPPort)
	assert.Equal(t, "s3cret", cfg.Auth.Token)
}

func TestLoadRequiresProjectID(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firestore.project_id")
}
