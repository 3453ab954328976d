// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "github.com/holiman/uint256"

// Constants of the staking pool.
const (
	// Precision scales the reward-per-share accumulator.
	Precision uint64 = 1e12
	// FeeDenominator is the basis of fee rates, 10000 bps = 100%.
	FeeDenominator uint64 = 10000
	// DefaultMaxFeeBps caps each fee rate unless configured otherwise.
	DefaultMaxFeeBps uint64 = 1000
)

// Addresses of the built-in accounts.
var (
	PoolAddress  = BytesToAddress([]byte("StakingPool"))
	TokenAddress = BytesToAddress([]byte("StakeToken"))
)

// PrecisionU256 returns Precision as a fresh uint256.
func PrecisionU256() *uint256.Int {
	return uint256.NewInt(Precision)
}
