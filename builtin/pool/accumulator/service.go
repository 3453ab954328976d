// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/thor"
)

var (
	slotTotalStaked       = thor.BytesToBytes32([]byte("total-staked"))
	slotAccRewardPerShare = thor.BytesToBytes32([]byte("acc-reward-per-share"))
	slotRetainedFees      = thor.BytesToBytes32([]byte("retained-fees"))
)

// Service manages the pool-wide reward index.
// accRewardPerShare is scaled by thor.Precision and never decreases.
type Service struct {
	totalStaked       *solidity.Uint256
	accRewardPerShare *solidity.Uint256
	retainedFees      *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		totalStaked:       solidity.NewUint256(sctx, slotTotalStaked),
		accRewardPerShare: solidity.NewUint256(sctx, slotAccRewardPerShare),
		retainedFees:      solidity.NewUint256(sctx, slotRetainedFees),
	}
}

func (s *Service) TotalStaked() (*uint256.Int, error) {
	return s.totalStaked.Get()
}

func (s *Service) AccRewardPerShare() (*uint256.Int, error) {
	return s.accRewardPerShare.Get()
}

func (s *Service) RetainedFees() (*uint256.Int, error) {
	return s.retainedFees.Get()
}

func (s *Service) AddStake(amount *uint256.Int) error {
	return s.totalStaked.Add(amount)
}

func (s *Service) SubStake(amount *uint256.Int) error {
	return s.totalStaked.Sub(amount)
}

// Donate spreads amount over the whole staked principal.
func (s *Service) Donate(amount *uint256.Int) (*uint256.Int, error) {
	total, err := s.totalStaked.Get()
	if err != nil {
		return nil, err
	}
	return s.Distribute(amount, total)
}

// Distribute spreads amount over shares units of principal and returns the
// accumulator increase. The division remainder stays in the pool unattributed.
func (s *Service) Distribute(amount, shares *uint256.Int) (*uint256.Int, error) {
	if shares.IsZero() {
		return nil, reverts.New(reverts.InvalidInject, "invalid inject: no stake to distribute to")
	}
	delta, overflow := new(uint256.Int).MulDivOverflow(amount, thor.PrecisionU256(), shares)
	if overflow {
		return nil, solidity.ErrOverflow
	}
	if err := s.accRewardPerShare.Add(delta); err != nil {
		return nil, err
	}
	return delta, nil
}

// RetainFee books a fee kept by the pool outside the accumulator.
func (s *Service) RetainFee(amount *uint256.Int) error {
	return s.retainedFees.Add(amount)
}

// SweepFees zeroes the retained fees and returns what was there.
func (s *Service) SweepFees() (*uint256.Int, error) {
	retained, err := s.retainedFees.Get()
	if err != nil {
		return nil, err
	}
	if err := s.retainedFees.Set(nil); err != nil {
		return nil, err
	}
	return retained, nil
}
