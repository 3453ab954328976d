// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

func TestBindings(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	st, err := state.New(db, 16)
	require.NoError(t, err)

	owner := thor.BytesToAddress([]byte("owner"))
	require.NoError(t, Pool.Ownable(st).Initialize(owner))
	require.NoError(t, Token.WithState(st).Mint(owner, uint256.NewInt(10)))

	p := Pool.WithState(st, pool.Options{})
	assert.Equal(t, thor.PoolAddress, p.Address())

	info, err := p.Info()
	require.NoError(t, err)
	assert.Equal(t, owner, info.Owner)
	assert.Equal(t, thor.DefaultMaxFeeBps, info.MaxFeeBps)

	// a second binding sees the same state
	balance, err := Token.WithState(st).BalanceOf(owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance.Uint64())
}
