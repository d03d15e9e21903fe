// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package config loads client-level configuration: the seed host list,
// timeouts, TLS settings, the default write concern, the log level, and
// compression preference, from a YAML file and/or the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/basinlabs/mongocore/writeconcern"
)

// Config is the full set of client-level settings this module consults
// before opening a Connection or resolving write/read defaults.
type Config struct {
	Hosts               []string      `mapstructure:"hosts"`
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout         time.Duration `mapstructure:"read_timeout"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout"`
	TLSEnabled          bool          `mapstructure:"tls_enabled"`
	TLSInsecure         bool          `mapstructure:"tls_insecure"`
	Compressors         []string      `mapstructure:"compressors"`
	DefaultWriteW       interface{}   `mapstructure:"default_write_w"`
	DefaultWriteJournal bool          `mapstructure:"default_write_journal"`
	LogLevel            string        `mapstructure:"log_level"`
}

// DefaultWriteConcern builds a *writeconcern.WriteConcern from
// DefaultWriteW/DefaultWriteJournal for use as the client's default level
// in writeconcern.Resolve's override chain.
func (c Config) DefaultWriteConcern() *writeconcern.WriteConcern {
	if c.DefaultWriteW == nil {
		return nil
	}
	return writeconcern.New(c.DefaultWriteW).WithJournal(c.DefaultWriteJournal)
}

// Load reads configPath (a YAML file) if non-empty, then overlays any
// MONGOCORE_-prefixed environment variables, mirroring the precedence used
// throughout the retrieved pack's viper-based services.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("connect_timeout", 10*time.Second)
	v.SetDefault("read_timeout", 30*time.Second)
	v.SetDefault("write_timeout", 30*time.Second)
	v.SetDefault("compressors", []string{})

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %q: %w", configPath, err)
		}
	}

	v.SetEnvPrefix("MONGOCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	if len(cfg.Hosts) == 0 {
		cfg.Hosts = []string{"localhost:27017"}
	}

	return &cfg, nil
}
