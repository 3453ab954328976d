// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fees

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/thor"
)

// Apply splits amount into the part kept by the sender and the fee.
// fee = amount * bps / 10000, rounded down. bps must not exceed 10000.
func Apply(amount *uint256.Int, bps uint64) (net, fee *uint256.Int) {
	fee, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(bps))
	if overflow {
		// amount * bps does not fit, divide first; exact since bps <= denominator
		q, r := new(uint256.Int), new(uint256.Int)
		q.DivMod(amount, uint256.NewInt(thor.FeeDenominator), r)
		fee = q.Mul(q, uint256.NewInt(bps))
		fee.Add(fee, r.Div(r.Mul(r, uint256.NewInt(bps)), uint256.NewInt(thor.FeeDenominator)))
	} else {
		fee.Div(fee, uint256.NewInt(thor.FeeDenominator))
	}
	net = new(uint256.Int).Sub(amount, fee)
	return net, fee
}

// Validate checks both rates against the ceiling.
func Validate(stakingBps, unstakingBps, maxBps uint64) error {
	if maxBps > thor.FeeDenominator {
		maxBps = thor.FeeDenominator
	}
	if stakingBps > maxBps || unstakingBps > maxBps {
		return reverts.Newf(reverts.InvalidFees,
			"invalid fees: staking %d bps, unstaking %d bps, max %d bps", stakingBps, unstakingBps, maxBps)
	}
	return nil
}

// Disposition decides where collected fees go.
type Disposition uint8

const (
	// Retain keeps fees in the pool, outside the reward accumulator.
	Retain Disposition = iota
	// Distribute folds fees into the reward accumulator, benefiting the stake
	// that existed before the operation.
	Distribute
)

func (d Disposition) String() string {
	switch d {
	case Retain:
		return "retain"
	case Distribute:
		return "distribute"
	default:
		return fmt.Sprintf("disposition(%d)", uint8(d))
	}
}

// ParseDisposition parses the textual form used in configuration.
func ParseDisposition(s string) (Disposition, error) {
	switch s {
	case "", "retain":
		return Retain, nil
	case "distribute":
		return Distribute, nil
	}
	return 0, fmt.Errorf("unknown fee disposition %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Disposition) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Disposition) UnmarshalText(text []byte) error {
	parsed, err := ParseDisposition(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
