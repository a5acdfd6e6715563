/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entity/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AWS_REGION", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AWS_ACCESS_KEY", "AKIA")
	t.Setenv("AWS_SECRET_KEY", "secret")
	t.Setenv("AWS_REGION", "ca-central-1")
	t.Setenv("AWS_DDB_TABLE", "entities")
	t.Setenv("ENTITY_LOG_LEVEL", "debug")
	t.Setenv("ENTITY_OUTPUT_FORMAT", "yaml")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, AWSConfig{AccessKey: "AKIA", SecretKey: "secret", Region: "ca-central-1", Table: "entities"}, cfg.AWS)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.NoError(t, cfg.AWS.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("AWS_DDB_TABLE=from-dotenv\n"), 0o600))
	// godotenv does not override variables that are already set
	t.Setenv("AWS_DDB_TABLE", "")
	require.NoError(t, os.Unsetenv("AWS_DDB_TABLE"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.AWS.Table)
}

func TestLoadFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AWS_REGION", "")

	path := filepath.Join(t.TempDir(), "entity.yml")
	content := "aws:\n  table: from-file\n  endpoint: http://localhost:8000\nlog:\n  json: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AWS.Table)
	assert.Equal(t, "http://localhost:8000", cfg.AWS.Endpoint)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestAWSValidate(t *testing.T) {
	err := AWSConfig{Table: "t"}.Validate()
	assert.True(t, errors.IsValidationError(err))
	err = AWSConfig{Region: "us-east-1"}.Validate()
	assert.True(t, errors.IsValidationError(err))
}
