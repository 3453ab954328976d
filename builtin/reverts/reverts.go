// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert.
type Kind string

const (
	InvalidAmount       Kind = "invalid-amount"
	InvalidInject       Kind = "invalid-inject"
	InvalidRewardClaim  Kind = "invalid-reward-claim"
	InvalidFees         Kind = "invalid-fees"
	Paused              Kind = "paused"
	NotPaused           Kind = "not-paused"
	Unauthorized        Kind = "unauthorized"
	InsufficientAllow   Kind = "insufficient-allowance"
	InsufficientBalance Kind = "insufficient-balance"
)

// ErrRevert is a business rule violation. Operations failing with it leave
// state unchanged.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

// Newf formats the message according to a format specifier.
func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert wrapped in err, or "" if there is none.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return ""
}

// Is reports whether err is a revert of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
