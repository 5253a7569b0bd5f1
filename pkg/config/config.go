// Copyright 2024 Quiver Data
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the TOML runtime configuration. The library is
// usable with zero configuration; Default() supplies every value.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/quiverdata/quiver/pkg/common/qerr"
	"github.com/quiverdata/quiver/pkg/logutil"
)

type MemoryConfig struct {
	// PoolCapacityMB caps each named memory pool; 0 means unlimited.
	PoolCapacityMB int64 `toml:"pool-capacity-mb"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Filename   string `toml:"filename"`
	MaxSizeMB  int    `toml:"max-size-mb"`
	MaxBackups int    `toml:"max-backups"`
}

type Config struct {
	Memory MemoryConfig `toml:"memory"`
	Log    LogConfig    `toml:"log"`
}

func Default() Config {
	return Config{
		Memory: MemoryConfig{PoolCapacityMB: 0},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  512,
			MaxBackups: 10,
		},
	}
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, qerr.NewInvalidInput("bad config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a TOML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, qerr.NewInvalidInput("read config %s: %v", path, err)
	}
	return Parse(data)
}

func (c *Config) Validate() error {
	if c.Memory.PoolCapacityMB < 0 {
		return qerr.NewInvalidArg("memory.pool-capacity-mb", c.Memory.PoolCapacityMB)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return qerr.NewInvalidArg("log.format", c.Log.Format)
	}
	return nil
}

// PoolCapacity returns the pool cap in bytes, 0 for unlimited.
func (c *Config) PoolCapacity() int64 {
	return c.Memory.PoolCapacityMB << 20
}

// SetupLogging wires the log section into logutil.
func (c *Config) SetupLogging() {
	logutil.Setup(logutil.LogConfig{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		Filename:   c.Log.Filename,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	})
}
