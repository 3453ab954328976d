// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pausable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

func TestPausable(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	st, err := state.New(db, 16)
	require.NoError(t, err)

	p := New(thor.PoolAddress, st)
	err = p.Unpause()
	assert.True(t, reverts.Is(err, reverts.NotPaused))
	assert.EqualError(t, err, "Pausable: not paused")

	require.NoError(t, p.Pause())
	paused, err := p.IsPaused()
	assert.NoError(t, err)
	assert.True(t, paused)

	err = p.Pause()
	assert.True(t, reverts.Is(err, reverts.Paused))
	assert.EqualError(t, err, "Pausable: paused")

	require.NoError(t, p.Unpause())
	paused, err = p.IsPaused()
	assert.NoError(t, err)
	assert.False(t, paused)
}
