/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/suparena/entity/errors"
)

// EnvPrefix prefixes every environment variable read through viper, e.g. ENTITY_LOG_LEVEL.
const EnvPrefix = "ENTITY"

// Config is the runtime configuration of the CLI and the DynamoDB adapter.
type Config struct {
	AWS    AWSConfig    `mapstructure:"aws"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
}

// AWSConfig holds the DynamoDB connection settings.
type AWSConfig struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	Table     string `mapstructure:"table"`
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Validate checks the settings needed to reach DynamoDB.
func (c AWSConfig) Validate() error {
	switch {
	case c.Region == "":
		return errors.NewValidationError("aws.region", "required")
	case c.Table == "":
		return errors.NewValidationError("aws.table", "required")
	}
	return nil
}

// SetDefaults installs default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("output.format", "json")
}

// BindEnv binds the unprefixed AWS variables used by existing deployments.
func BindEnv(v *viper.Viper) {
	_ = v.BindEnv("aws.access_key", EnvPrefix+"_AWS_ACCESS_KEY", "AWS_ACCESS_KEY")
	_ = v.BindEnv("aws.secret_key", EnvPrefix+"_AWS_SECRET_KEY", "AWS_SECRET_KEY")
	_ = v.BindEnv("aws.region", EnvPrefix+"_AWS_REGION", "AWS_REGION")
	_ = v.BindEnv("aws.table", EnvPrefix+"_AWS_DDB_TABLE", "AWS_DDB_TABLE")
	_ = v.BindEnv("aws.endpoint", EnvPrefix+"_AWS_ENDPOINT")
}

// New returns a viper instance with defaults and environment bindings applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindEnv(v)
	SetDefaults(v)
	return v
}

// Load reads a .env file from the working directory if there is one, then
// the optional config file at path (YAML, TOML or JSON by extension), then
// the environment. Later sources win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}
