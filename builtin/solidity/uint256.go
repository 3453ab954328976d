// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/thor"
)

// ErrOverflow is returned when an arithmetic update would exceed 256 bits.
var ErrOverflow = errors.New("uint256 overflow")

// ErrUnderflow is returned when a subtraction would go below zero.
var ErrUnderflow = errors.New("uint256 underflow")

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
// Get always returns a fresh copy, callers may mutate it.
type Uint256 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint256(context *Context, pos thor.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	value := new(uint256.Int)
	err := u.context.state.DecodeStorage(u.context.address, u.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, value)
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (u *Uint256) Set(value *uint256.Int) error {
	return u.context.state.EncodeStorage(u.context.address, u.pos, func() ([]byte, error) {
		if value == nil || value.IsZero() {
			return nil, nil
		}
		return rlp.EncodeToBytes(value)
	})
}

func (u *Uint256) Add(value *uint256.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if _, overflow := storage.AddOverflow(storage, value); overflow {
		return ErrOverflow
	}
	return u.Set(storage)
}

func (u *Uint256) Sub(value *uint256.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Lt(value) {
		return ErrUnderflow
	}
	return u.Set(storage.Sub(storage, value))
}
