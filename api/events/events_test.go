// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/test/testpool"
)

const limit = 5

var (
	owner = testpool.Owner()
	alice = testpool.Staker(0)
	bob   = testpool.Staker(1)
)

func initServer(t *testing.T) *httptest.Server {
	tp := testpool.New(t)
	require.NoError(t, tp.Stake(alice, uint256.NewInt(500)))
	require.NoError(t, tp.Stake(bob, uint256.NewInt(750)))
	require.NoError(t, tp.DonateToPool(owner, uint256.NewInt(1000)))
	require.NoError(t, tp.Unstake(alice, uint256.NewInt(500)))

	router := mux.NewRouter()
	events.New(tp.Events, limit).Mount(router, "/events")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func filter(t *testing.T, ts *httptest.Server, query string) []*events.Event {
	data, status := httpGet(t, ts.URL+"/events"+query)
	require.Equal(t, http.StatusOK, status, string(data))
	var out []*events.Event
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func kinds(evs []*events.Event) (out []string) {
	for _, ev := range evs {
		out = append(out, ev.Kind)
	}
	return
}

func TestFilter(t *testing.T) {
	ts := initServer(t)

	all := filter(t, ts, "")
	assert.Equal(t, []string{"stake", "stake", "donate", "unstake"}, kinds(all))
	for i, ev := range all {
		assert.Equal(t, uint64(i+1), ev.Seq)
	}
	assert.Equal(t, uint256.NewInt(1250), all[1].TotalStaked)
	// 1000 over 1250 staked
	assert.Equal(t, uint256.NewInt(800_000_000_000), all[2].AccRewardPerShare)
	assert.Equal(t, uint256.NewInt(400), all[3].Reward)

	byAccount := filter(t, ts, "?account="+alice.String())
	assert.Equal(t, []string{"stake", "unstake"}, kinds(byAccount))

	byKind := filter(t, ts, "?kind=donate,unstake&order=desc")
	assert.Equal(t, []string{"unstake", "donate"}, kinds(byKind))

	paged := filter(t, ts, "?offset=1&limit=2")
	assert.Equal(t, []string{"stake", "donate"}, kinds(paged))

	now := time.Now().Unix()
	assert.Len(t, filter(t, ts, "?from=0&to="+strconv.FormatInt(now+60, 10)), 4)
	assert.Empty(t, filter(t, ts, "?from="+strconv.FormatInt(now+60, 10)))
}

func TestFilterRejects(t *testing.T) {
	ts := initServer(t)

	tests := []struct {
		query  string
		status int
	}{
		{"?account=0x01", http.StatusBadRequest},
		{"?kind=mint", http.StatusBadRequest},
		{"?order=sideways", http.StatusBadRequest},
		{"?from=10&to=5", http.StatusBadRequest},
		{"?limit=x", http.StatusBadRequest},
		{"?limit=" + strconv.Itoa(limit+1), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			data, status := httpGet(t, ts.URL+"/events"+tt.query)
			assert.Equal(t, tt.status, status, string(data))
		})
	}
}
