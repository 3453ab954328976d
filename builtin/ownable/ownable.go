// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ownable

import (
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var slotOwner = solidity.Slot("ownable.owner")

// Ownable keeps the single privileged account of a built-in account.
type Ownable struct {
	owner *solidity.Address
}

func New(addr thor.Address, st *state.State) *Ownable {
	return &Ownable{owner: solidity.NewAddress(solidity.NewContext(addr, st), slotOwner)}
}

func (o *Ownable) Owner() (thor.Address, error) {
	return o.owner.Get()
}

func (o *Ownable) IsOwner(addr thor.Address) (bool, error) {
	owner, err := o.owner.Get()
	if err != nil {
		return false, err
	}
	return !owner.IsZero() && owner == addr, nil
}

// Initialize sets the first owner. It has no effect once an owner exists.
func (o *Ownable) Initialize(owner thor.Address) error {
	current, err := o.owner.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return nil
	}
	return o.owner.Set(owner)
}

// TransferOwnership hands the role over to newOwner. Only the owner may call it.
func (o *Ownable) TransferOwnership(caller, newOwner thor.Address) error {
	ok, err := o.IsOwner(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.Unauthorized, "Ownable: caller is not the owner")
	}
	if newOwner.IsZero() {
		return reverts.New(reverts.Unauthorized, "Ownable: new owner is the zero address")
	}
	return o.owner.Set(newOwner)
}
