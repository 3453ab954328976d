// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

// Builder helper to build genesis state.
type Builder struct {
	opts       pool.Options
	stateProcs []func(state *state.State) error
}

// PoolOptions sets the options the pool is built with.
func (b *Builder) PoolOptions(opts pool.Options) *Builder {
	b.opts = opts
	return b
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Owner sets the pool owner.
func (b *Builder) Owner(owner thor.Address) *Builder {
	return b.State(func(state *state.State) error {
		return builtin.Pool.Ownable(state).Initialize(owner)
	})
}

// Fees sets the initial fee rates.
func (b *Builder) Fees(stakingFeeBps, unstakingFeeBps uint64) *Builder {
	return b.State(func(state *state.State) error {
		return builtin.Pool.WithState(state, b.opts).InitFees(stakingFeeBps, unstakingFeeBps)
	})
}

// Alloc mints balance to addr and lets the pool spend allowance of it.
func (b *Builder) Alloc(addr thor.Address, balance, allowance *uint256.Int) *Builder {
	return b.State(func(state *state.State) error {
		tok := builtin.Token.WithState(state)
		if balance != nil && !balance.IsZero() {
			if err := tok.Mint(addr, balance); err != nil {
				return errors.WithMessagef(err, "mint to %v", addr)
			}
		}
		if allowance != nil && !allowance.IsZero() {
			if err := tok.Approve(addr, builtin.Pool.Address, allowance); err != nil {
				return errors.WithMessagef(err, "approve for %v", addr)
			}
		}
		return nil
	})
}

// Build applies all processes and commits them at once.
func (b *Builder) Build(state *state.State) error {
	return builtin.Pool.WithState(state, b.opts).Exec(func() error {
		for _, proc := range b.stateProcs {
			if err := proc(state); err != nil {
				return errors.Wrap(err, "state process")
			}
		}
		return nil
	})
}
