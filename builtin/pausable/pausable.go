// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pausable

import (
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var slotPaused = solidity.Slot("pausable.paused")

var (
	ErrPaused    = reverts.New(reverts.Paused, "Pausable: paused")
	ErrNotPaused = reverts.New(reverts.NotPaused, "Pausable: not paused")
)

// Pausable is a circuit breaker flag. Access control is up to the caller.
type Pausable struct {
	paused *solidity.Bool
}

func New(addr thor.Address, st *state.State) *Pausable {
	return &Pausable{paused: solidity.NewBool(solidity.NewContext(addr, st), slotPaused)}
}

func (p *Pausable) IsPaused() (bool, error) {
	return p.paused.Get()
}

func (p *Pausable) Pause() error {
	paused, err := p.paused.Get()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return p.paused.Set(true)
}

func (p *Pausable) Unpause() error {
	paused, err := p.paused.Get()
	if err != nil {
		return err
	}
	if !paused {
		return ErrNotPaused
	}
	return p.paused.Set(false)
}
