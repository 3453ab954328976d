// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/thor"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds event time, in unix seconds, inclusive. A To lower than From
// leaves the range open ended.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Nil fields match everything.
type Filter struct {
	Account *thor.Address    `json:"account"`
	Kinds   []pool.EventKind `json:"kinds"`
	Range   *Range           `json:"range"`
	Options *Options         `json:"options"`
	Order   Order            `json:"order"` // default asc
}

// Entry is a recorded pool event with its position in the log.
type Entry struct {
	Seq uint64
	*pool.Event
}
