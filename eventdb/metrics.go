// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import "github.com/vechain/stakepool/metrics"

var (
	metricRecordCount     = metrics.LazyLoadCounterVec("eventdb_record_count", []string{"kind"})
	metricQueryOrderCount = metrics.LazyLoadCounterVec("eventdb_query_order", []string{"order"})
	metricLimitBucket     = metrics.LazyLoadHistogramVec("eventdb_query_limit_bucket", []string{"type"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func metricsHandleFilter(filter *Filter) {
	metricQueryOrderCount().AddWithLabel(1, map[string]string{"order": string(filter.Order)})
	if filter.Options != nil {
		metricLimitBucket().ObserveWithLabels(int64(filter.Options.Limit), map[string]string{"type": "event"})
	}
}
