// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/thor"
)

// Address is a wrapper for storage and retrieval of an address.
type Address struct {
	context *Context
	pos     thor.Bytes32
}

func NewAddress(context *Context, pos thor.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (addr thor.Address, err error) {
	err = a.context.state.DecodeStorage(a.context.address, a.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (a *Address) Set(addr thor.Address) error {
	return a.context.state.EncodeStorage(a.context.address, a.pos, func() ([]byte, error) {
		if addr.IsZero() {
			return nil, nil
		}
		return rlp.EncodeToBytes(addr)
	})
}
