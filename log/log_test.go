// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRoot(t *testing.T, lvl slog.Level) *bytes.Buffer {
	old := ethlog.Root()
	t.Cleanup(func() { ethlog.SetDefault(old) })

	buf := &bytes.Buffer{}
	SetDefault(NewJSONHandler(buf, lvl))
	return buf
}

func TestWithContextResolvesRootLazily(t *testing.T) {
	logger := WithContext("pkg", "pool")

	buf := captureRoot(t, LevelDebug)
	logger.Info("staked", "amount", 500)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "staked", rec["msg"])
	assert.Equal(t, "pool", rec["pkg"])
	assert.Equal(t, float64(500), rec["amount"])
}

func TestWithAppendsContext(t *testing.T) {
	buf := captureRoot(t, LevelDebug)

	base := WithContext("pkg", "api")
	child := base.With("id", "abc")
	child.Debug("request")
	base.Debug("plain")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "abc", first["id"])
	assert.NotContains(t, second, "id")
}

func TestLevelFiltering(t *testing.T) {
	buf := captureRoot(t, LevelWarn)
	logger := WithContext("pkg", "test")

	logger.Info("hidden")
	assert.Zero(t, buf.Len())
	assert.False(t, logger.Enabled(context.Background(), LevelInfo))

	logger.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelInfo, FromVerbosity(3))
	assert.Equal(t, LevelTrace, FromVerbosity(5))
	assert.Equal(t, LevelCrit, FromVerbosity(0))
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("nothing")
	assert.False(t, l.Enabled(context.Background(), LevelCrit))
}

func TestLevelVarChangesAfterSetup(t *testing.T) {
	old := ethlog.Root()
	t.Cleanup(func() { ethlog.SetDefault(old) })

	lvl := new(slog.LevelVar)
	lvl.Set(LevelWarn)
	buf := &bytes.Buffer{}
	SetDefault(NewJSONHandler(buf, lvl))
	logger := WithContext("pkg", "test")

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	lvl.Set(LevelDebug)
	assert.True(t, logger.Enabled(context.Background(), LevelDebug))
	logger.Debug("shown")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
}

func TestTerminalHandlerHonoursLevel(t *testing.T) {
	lvl := new(slog.LevelVar)
	lvl.Set(LevelInfo)
	buf := &bytes.Buffer{}
	logger := ethlog.NewLogger(NewTerminalHandler(buf, lvl, false)).With("pkg", "api")

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
	logger.Info("served")
	assert.Contains(t, buf.String(), "served")
	assert.Contains(t, buf.String(), "pkg=api")
}
