// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/stakepool/builtin/ownable"
	"github.com/vechain/stakepool/builtin/pausable"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

// Builtin accounts binding.
var (
	Token = &tokenContract{thor.TokenAddress}
	Pool  = &poolContract{thor.PoolAddress}
)

type (
	tokenContract struct{ Address thor.Address }
	poolContract  struct{ Address thor.Address }
)

func (t *tokenContract) WithState(state *state.State) *token.Token {
	return token.New(t.Address, state)
}

// Ownable is the pool's owner role.
func (p *poolContract) Ownable(state *state.State) *ownable.Ownable {
	return ownable.New(p.Address, state)
}

// Pausable is the pool's circuit breaker.
func (p *poolContract) Pausable(state *state.State) *pausable.Pausable {
	return pausable.New(p.Address, state)
}

// WithState binds the pool to its token, owner and pause flag in state.
func (p *poolContract) WithState(state *state.State, opts pool.Options) *pool.Pool {
	return pool.New(p.Address, state, Token.WithState(state), p.Ownable(state), p.Pausable(state), opts)
}
