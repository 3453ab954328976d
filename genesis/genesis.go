// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis seeds the initial pool state: owner, fee rates, token
// balances and allowances.
package genesis

import (
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var logger = log.WithContext("pkg", "genesis")

var slotGenesisID = thor.BytesToBytes32([]byte("genesis-id"))

var (
	ErrNotInitialized = errors.New("state not initialized")
	ErrMismatch       = errors.New("state initialized with another genesis")
)

// Genesis to build genesis state.
type Genesis struct {
	builder *Builder
	id      thor.Bytes32
	name    string
	opts    pool.Options
}

// NewGenesis creates a genesis identified by id.
func NewGenesis(name string, id thor.Bytes32, opts pool.Options, builder *Builder) *Genesis {
	return &Genesis{
		builder: builder.PoolOptions(opts),
		id:      id,
		name:    name,
		opts:    opts,
	}
}

// ID returns the genesis id.
func (g *Genesis) ID() thor.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// PoolOptions returns the pool policies the genesis was made with. Event
// sink and clock are left for the caller.
func (g *Genesis) PoolOptions() pool.Options {
	return g.opts
}

// Build writes the genesis state. It fails if state is already initialized.
func (g *Genesis) Build(state *state.State) error {
	id, err := storedID(state)
	if err != nil {
		return err
	}
	if !id.IsZero() {
		if id == g.id {
			return errors.Errorf("state already initialized with %v", id)
		}
		return ErrMismatch
	}

	builder := &Builder{opts: g.opts, stateProcs: slices.Clone(g.builder.stateProcs)}
	if err := builder.State(g.markProc).Build(state); err != nil {
		return err
	}
	logger.Info("genesis state built", "name", g.name, "id", g.id)
	return nil
}

func (g *Genesis) markProc(state *state.State) error {
	return state.EncodeStorage(builtin.Pool.Address, slotGenesisID, func() ([]byte, error) {
		return rlp.EncodeToBytes(g.id)
	})
}

// Check verifies state was built by this genesis.
func (g *Genesis) Check(state *state.State) error {
	id, err := storedID(state)
	if err != nil {
		return err
	}
	switch {
	case id.IsZero():
		return ErrNotInitialized
	case id != g.id:
		return errors.WithMessagef(ErrMismatch, "want %v, found %v", g.id, id)
	}
	return nil
}

func storedID(state *state.State) (id thor.Bytes32, err error) {
	err = state.DecodeStorage(builtin.Pool.Address, slotGenesisID, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &id)
	})
	return
}
