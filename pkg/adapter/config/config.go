// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the dpweb to instantiate different
// components, from the adapter or use cases layers, using those loaded
// configuration settings.
// The parsed and validated configurations are passed to their ultimate
// components as a series of individual params (for the mandatory
// items) and a series of functional options (for the optional items).
// Secrets may be kept out of the config file and given by environment
// variables, possibly loaded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables which override the config file settings.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvTokenSecret = "DRIVER_TOKEN_SECRET"
	EnvRedisAddr   = "REDIS_ADDR"
)

// Config contains all settings which are required by different parts
// of the project, such as adapters or use cases. It is implemented with
// primitive fields or locally defined structs, so the configuration
// file format is kept intact while other layers can change freely.
type Config struct {
	Database Database // PostgreSQL database connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Redis    Redis    // Admin sessions store settings
	Auth     Auth     // Driver tokens and PIN hashing settings
	Logging  Logging  // slog handler settings
	Usecases Usecases // Supported use cases configuration settings
}

// Load loads the .env file of the working directory (if any), reads
// the path configuration file, overrides its secrets from the
// environment variables, and returns it after validation and
// normalization.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals the data byte slice as a Config instance. Extra
// items in the data will be ignored and missing items will take their
// default values. The environment variables take precedence over the
// data contents. Thereafter, the Config will be validated and
// normalized in order to ensure that provided settings are acceptable.
func Parse(data []byte) (*Config, error) {
	n := &yaml.Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	c := &Config{}
	switch l := len(n.Content); l {
	case 0:
	case 1:
		if err := n.Decode(c); err != nil {
			return nil, fmt.Errorf("decoding yaml node: %w", err)
		}
	default:
		return nil, fmt.Errorf(
			"found %d children nodes, instead of 1 mapping child", l,
		)
	}
	c.overrideFromEnv()
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

func (c *Config) overrideFromEnv() {
	if v, ok := os.LookupEnv(EnvDatabaseURL); ok {
		c.Database.URL = v
	}
	if v, ok := os.LookupEnv(EnvTokenSecret); ok {
		c.Auth.TokenSecret = v
	}
	if v, ok := os.LookupEnv(EnvRedisAddr); ok {
		c.Redis.Addr = v
	}
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values with
// their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	c.Gin.normalize()
	c.Redis.normalize()
	if err := c.Auth.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating auth settings: %w", err)
	}
	if err := c.Logging.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating logging settings: %w", err)
	}
	if err := c.Usecases.Jobs.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating jobs settings: %w", err)
	}
	return nil
}
