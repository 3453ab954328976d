// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/builtin/pool/fees"
	"github.com/vechain/stakepool/thor"
)

// Token is the fungible token the pool holds.
type Token interface {
	BalanceOf(addr thor.Address) (*uint256.Int, error)
	Transfer(from, to thor.Address, amount *uint256.Int) error
	TransferFrom(spender, from, to thor.Address, amount *uint256.Int) error
}

// Authority gates owner-only operations.
type Authority interface {
	Owner() (thor.Address, error)
	IsOwner(addr thor.Address) (bool, error)
}

// Pauser is the circuit breaker of mutating operations.
type Pauser interface {
	IsPaused() (bool, error)
	Pause() error
	Unpause() error
}

// EventSink receives the event of every committed operation.
type EventSink interface {
	Record(ev *Event) error
}

// Options tunes pool policy.
type Options struct {
	// MaxFeeBps caps each fee rate. Zero means thor.DefaultMaxFeeBps.
	MaxFeeBps uint64
	// FeePolicy decides what happens to collected fees.
	FeePolicy fees.Disposition
	// AllowExitWhenPaused keeps Unstake and ClaimReward callable while paused.
	AllowExitWhenPaused bool
	// Events, if set, gets every committed event.
	Events EventSink
	// Clock stamps events. Defaults to time.Now.
	Clock func() time.Time
}

// EventKind names an operation.
type EventKind string

const (
	EventStake   EventKind = "stake"
	EventUnstake EventKind = "unstake"
	EventClaim   EventKind = "claim"
	EventDonate  EventKind = "donate"
	EventFees    EventKind = "fees"
	EventPause   EventKind = "pause"
	EventUnpause EventKind = "unpause"
	EventSweep   EventKind = "sweep"
)

// Event describes a committed operation. Amount is the gross amount moved
// by the caller, Reward the pending reward paid out by settlement.
// AccRewardPerShare and TotalStaked are the values after the operation.
type Event struct {
	Kind              EventKind
	Account           thor.Address
	Amount            *uint256.Int
	Net               *uint256.Int
	Fee               *uint256.Int
	Reward            *uint256.Int
	AccRewardPerShare *uint256.Int
	TotalStaked       *uint256.Int
	StakingFeeBps     uint64
	UnstakingFeeBps   uint64
	Time              time.Time
}

// Position is a staker's record together with what it is owed.
type Position struct {
	StakedTokens  *uint256.Int
	Round         *uint256.Int
	PendingReward *uint256.Int
}

// Info is a snapshot of pool-wide values.
type Info struct {
	Owner               thor.Address
	TotalStaked         *uint256.Int
	AccRewardPerShare   *uint256.Int
	RetainedFees        *uint256.Int
	Balance             *uint256.Int
	StakingFeeBps       uint64
	UnstakingFeeBps     uint64
	MaxFeeBps           uint64
	FeePolicy           fees.Disposition
	Paused              bool
	AllowExitWhenPaused bool
}

// AuditReport is the result of Audit.
type AuditReport struct {
	Stakers      int
	SumStaked    *uint256.Int
	TotalStaked  *uint256.Int
	SumPending   *uint256.Int
	RetainedFees *uint256.Int
	Balance      *uint256.Int
	// Conserved is whether the audited principals add up to TotalStaked.
	Conserved bool
	// Solvent is whether Balance covers principal, retained fees and pending rewards.
	Solvent bool
}
