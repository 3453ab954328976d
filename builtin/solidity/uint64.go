// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/thor"
)

// Uint64 stores a small configuration value, such as a fee rate.
type Uint64 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint64(context *Context, pos thor.Bytes32) *Uint64 {
	return &Uint64{context: context, pos: pos}
}

func (u *Uint64) Get() (value uint64, err error) {
	err = u.context.state.DecodeStorage(u.context.address, u.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (u *Uint64) Set(value uint64) error {
	return u.context.state.EncodeStorage(u.context.address, u.pos, func() ([]byte, error) {
		if value == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(value)
	})
}

// Bool stores a flag. Unset reads as false.
type Bool struct {
	u Uint64
}

func NewBool(context *Context, pos thor.Bytes32) *Bool {
	return &Bool{Uint64{context: context, pos: pos}}
}

func (b *Bool) Get() (bool, error) {
	v, err := b.u.Get()
	return v != 0, err
}

func (b *Bool) Set(flag bool) error {
	if flag {
		return b.u.Set(1)
	}
	return b.u.Set(0)
}
