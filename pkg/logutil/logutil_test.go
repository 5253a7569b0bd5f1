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

package logutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetLoggerBeforeSetup(t *testing.T) {
	logger := GetLogger()
	require.NotNil(t, logger)
	// The nop logger must swallow logs without panicking.
	logger.Info("ignored")
	Debug("ignored")
	Warn("ignored")
}

func TestAdjust(t *testing.T) {
	require.Same(t, GetLogger(), Adjust(nil))
	own := zap.NewNop()
	require.Same(t, own, Adjust(own))
}

func TestSetupOnce(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "quiver.log")
	Setup(LogConfig{Level: "debug", Format: "json", Filename: file})
	first := GetLogger()
	require.NotNil(t, first)

	// Later calls must not replace the sink.
	Setup(LogConfig{Level: "error", Format: "console"})
	require.Same(t, first, GetLogger())

	GetLogger().Info("hello", zap.String("k", "v"))
	require.NoError(t, GetLogger().Sync())
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), `"hello"`)
	require.Contains(t, string(data), `"k":"v"`)
}

func TestNewLoggerConsole(t *testing.T) {
	logger := newLogger(LogConfig{Level: "warn", Format: "console"})
	require.NotNil(t, logger)
	require.False(t, logger.Core().Enabled(zap.InfoLevel))
	require.True(t, logger.Core().Enabled(zap.WarnLevel))

	// Unknown levels fall back to info.
	logger = newLogger(LogConfig{Level: "nonsense"})
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
}
