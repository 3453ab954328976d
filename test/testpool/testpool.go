// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testpool builds a devnet pool backed by in-memory databases for
// tests of the outer layers.
package testpool

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin"
	"github.com/vechain/stakepool/builtin/ownable"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

// Pool is a built devnet pool with its collaborators.
type Pool struct {
	*pool.Pool
	Genesis *genesis.Genesis
	State   *state.State
	Events  *eventdb.EventDB
	Token   *token.Token
	Auth    *ownable.Ownable
}

// New builds the devnet genesis into fresh in-memory databases, which are
// closed on test cleanup.
func New(t testing.TB) *Pool {
	return NewWithGenesis(t, genesis.NewDevnet())
}

// NewWithGenesis is like New with a custom genesis.
func NewWithGenesis(t testing.TB, gene *genesis.Genesis) *Pool {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	events, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	st, err := state.New(db, 256)
	require.NoError(t, err)
	require.NoError(t, gene.Build(st))

	opts := gene.PoolOptions()
	opts.Events = events
	return &Pool{
		Pool:    builtin.Pool.WithState(st, opts),
		Genesis: gene,
		State:   st,
		Events:  events,
		Token:   builtin.Token.WithState(st),
		Auth:    builtin.Pool.Ownable(st),
	}
}

// Owner returns the devnet pool owner.
func Owner() thor.Address {
	return genesis.DevAccounts()[0].Address
}

// Staker returns the i-th devnet account that does not own the pool.
func Staker(i int) thor.Address {
	return genesis.DevAccounts()[i+1].Address
}

// Amount is a shortcut of uint256.NewInt.
func Amount(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}
