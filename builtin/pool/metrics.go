// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/metrics"
)

var (
	metricOpsCount    = metrics.LazyLoadCounterVec("pool_ops_count", []string{"op", "result"})
	metricOpDuration  = metrics.LazyLoadHistogramVec("pool_op_duration_ms", []string{"op"}, metrics.BucketHTTPReqs)
	metricTotalStaked = metrics.LazyLoadGauge("pool_total_staked")
)

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := reverts.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}

// gaugeValue clamps v into the int64 range of gauges.
func gaugeValue(v *uint256.Int) int64 {
	if v.IsUint64() && v.Uint64() <= math.MaxInt64 {
		return int64(v.Uint64())
	}
	return math.MaxInt64
}
