// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/thor"
)

type Event struct {
	Seq               uint64       `json:"seq"`
	Kind              string       `json:"kind"`
	Account           thor.Address `json:"account"`
	Amount            *uint256.Int `json:"amount,omitempty"`
	Net               *uint256.Int `json:"net,omitempty"`
	Fee               *uint256.Int `json:"fee,omitempty"`
	Reward            *uint256.Int `json:"reward,omitempty"`
	AccRewardPerShare *uint256.Int `json:"accRewardPerShare"`
	TotalStaked       *uint256.Int `json:"totalStaked"`
	StakingFeeBps     uint64       `json:"stakingFeeBps,omitempty"`
	UnstakingFeeBps   uint64       `json:"unstakingFeeBps,omitempty"`
	Timestamp         int64        `json:"timestamp"`
}

func ConvertEntry(e *eventdb.Entry) *Event {
	return &Event{
		Seq:               e.Seq,
		Kind:              string(e.Kind),
		Account:           e.Account,
		Amount:            e.Amount,
		Net:               e.Net,
		Fee:               e.Fee,
		Reward:            e.Reward,
		AccRewardPerShare: e.AccRewardPerShare,
		TotalStaked:       e.TotalStaked,
		StakingFeeBps:     e.StakingFeeBps,
		UnstakingFeeBps:   e.UnstakingFeeBps,
		Timestamp:         e.Time.Unix(),
	}
}
