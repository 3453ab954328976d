// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/thor"
)

var (
	slotStakers     = thor.BytesToBytes32([]byte("stakers"))
	slotIndexed     = thor.BytesToBytes32([]byte("stakers-indexed"))
	slotIndex       = thor.BytesToBytes32([]byte("stakers-index"))
	slotIndexLength = thor.BytesToBytes32([]byte("stakers-index-length"))
)

// Staker is the per-account record. Round is the accumulator value at the
// last settlement.
type Staker struct {
	StakedTokens *uint256.Int
	Round        *uint256.Int
}

func (s *Staker) IsEmpty() bool {
	return s.StakedTokens.IsZero() && s.Round.IsZero()
}

// PendingReward is StakedTokens * (acc - Round) / Precision.
func PendingReward(s *Staker, acc *uint256.Int) (*uint256.Int, error) {
	if acc.Lt(s.Round) {
		return nil, errors.Errorf("accumulator %v behind checkpoint %v", acc, s.Round)
	}
	diff := new(uint256.Int).Sub(acc, s.Round)
	pending, overflow := new(uint256.Int).MulDivOverflow(s.StakedTokens, diff, thor.PrecisionU256())
	if overflow {
		return nil, solidity.ErrOverflow
	}
	return pending, nil
}

// Service stores staker records. Records are created lazily and never
// removed, a zeroed record is indistinguishable from a missing one.
// Every account that ever held a record is kept in an append-only index.
type Service struct {
	stakers     *solidity.Mapping[thor.Address, *Staker]
	indexed     *solidity.Mapping[thor.Address, bool]
	index       *solidity.Mapping[thor.Bytes32, thor.Address]
	indexLength *solidity.Uint64
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		stakers:     solidity.NewMapping[thor.Address, *Staker](sctx, slotStakers),
		indexed:     solidity.NewMapping[thor.Address, bool](sctx, slotIndexed),
		index:       solidity.NewMapping[thor.Bytes32, thor.Address](sctx, slotIndex),
		indexLength: solidity.NewUint64(sctx, slotIndexLength),
	}
}

func indexKey(i uint64) thor.Bytes32 {
	return thor.BytesToBytes32(new(uint256.Int).SetUint64(i).Bytes())
}

func (s *Service) track(addr thor.Address) error {
	known, err := s.indexed.Get(addr)
	if err != nil || known {
		return err
	}
	n, err := s.indexLength.Get()
	if err != nil {
		return err
	}
	if err := s.index.Set(indexKey(n), addr); err != nil {
		return err
	}
	if err := s.indexed.Set(addr, true); err != nil {
		return err
	}
	return s.indexLength.Set(n + 1)
}

// Accounts lists every account that ever held a record, in order of first
// appearance.
func (s *Service) Accounts() ([]thor.Address, error) {
	n, err := s.indexLength.Get()
	if err != nil {
		return nil, err
	}
	accounts := make([]thor.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		addr, err := s.index.Get(indexKey(i))
		if err != nil {
			return nil, errors.WithMessagef(err, "index entry %d", i)
		}
		accounts = append(accounts, addr)
	}
	return accounts, nil
}

// Get returns the record of addr, zeroed if it never staked.
func (s *Service) Get(addr thor.Address) (*Staker, error) {
	staker, err := s.stakers.Get(addr)
	if err != nil {
		return nil, err
	}
	if staker.StakedTokens == nil {
		staker.StakedTokens = new(uint256.Int)
	}
	if staker.Round == nil {
		staker.Round = new(uint256.Int)
	}
	return staker, nil
}

func (s *Service) Set(addr thor.Address, staker *Staker) error {
	if staker.IsEmpty() {
		s.stakers.Delete(addr)
		return nil
	}
	if err := s.track(addr); err != nil {
		return err
	}
	return s.stakers.Set(addr, staker)
}

// Settle computes what addr is owed at acc and advances its checkpoint.
// Paying the amount out is up to the caller.
func (s *Service) Settle(addr thor.Address, acc *uint256.Int) (*uint256.Int, *Staker, error) {
	staker, err := s.Get(addr)
	if err != nil {
		return nil, nil, err
	}
	owed, err := PendingReward(staker, acc)
	if err != nil {
		return nil, nil, err
	}
	staker.Round = new(uint256.Int).Set(acc)
	if err := s.Set(addr, staker); err != nil {
		return nil, nil, err
	}
	return owed, staker, nil
}
