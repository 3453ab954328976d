// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/thor"
)

type Info struct {
	Address             thor.Address `json:"address"`
	Owner               thor.Address `json:"owner"`
	TotalStaked         *uint256.Int `json:"totalStaked"`
	AccRewardPerShare   *uint256.Int `json:"accRewardPerShare"`
	RetainedFees        *uint256.Int `json:"retainedFees"`
	Balance             *uint256.Int `json:"balance"`
	StakingFeeBps       uint64       `json:"stakingFeeBps"`
	UnstakingFeeBps     uint64       `json:"unstakingFeeBps"`
	MaxFeeBps           uint64       `json:"maxFeeBps"`
	FeePolicy           string       `json:"feePolicy"`
	Paused              bool         `json:"paused"`
	AllowExitWhenPaused bool         `json:"allowExitWhenPaused"`
}

func convertInfo(addr thor.Address, info *pool.Info) *Info {
	return &Info{
		Address:             addr,
		Owner:               info.Owner,
		TotalStaked:         info.TotalStaked,
		AccRewardPerShare:   info.AccRewardPerShare,
		RetainedFees:        info.RetainedFees,
		Balance:             info.Balance,
		StakingFeeBps:       info.StakingFeeBps,
		UnstakingFeeBps:     info.UnstakingFeeBps,
		MaxFeeBps:           info.MaxFeeBps,
		FeePolicy:           info.FeePolicy.String(),
		Paused:              info.Paused,
		AllowExitWhenPaused: info.AllowExitWhenPaused,
	}
}

type Caller struct {
	Caller *thor.Address `json:"caller"`
}

type Donation struct {
	Caller *thor.Address `json:"caller"`
	Amount *uint256.Int  `json:"amount"`
}

type Fees struct {
	Caller          *thor.Address `json:"caller"`
	StakingFeeBps   *uint64       `json:"stakingFeeBps"`
	UnstakingFeeBps *uint64       `json:"unstakingFeeBps"`
}

type Sweep struct {
	Caller *thor.Address `json:"caller"`
	To     *thor.Address `json:"to"`
}

type SweepResult struct {
	Amount *uint256.Int `json:"amount"`
}
