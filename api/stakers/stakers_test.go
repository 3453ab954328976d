// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/stakers"
	"github.com/vechain/stakepool/test/testpool"
)

var (
	owner = testpool.Owner()
	alice = testpool.Staker(0)
	bob   = testpool.Staker(1)
)

func initServer(t *testing.T, writes bool) (*testpool.Pool, *httptest.Server) {
	tp := testpool.New(t)
	router := mux.NewRouter()
	stakers.New(tp.Pool, writes).Mount(router, "/stakers")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return tp, ts
}

func httpPost(t *testing.T, url string, body any) ([]byte, int) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func getStaker(t *testing.T, ts *httptest.Server, who string) *stakers.Staker {
	data, status := httpGet(t, ts.URL+"/stakers/"+who)
	require.Equal(t, http.StatusOK, status, string(data))
	var s stakers.Staker
	require.NoError(t, json.Unmarshal(data, &s))
	return &s
}

func TestGetUnknownStaker(t *testing.T) {
	_, ts := initServer(t, false)

	s := getStaker(t, ts, alice.String())
	assert.Equal(t, alice, s.Address)
	assert.True(t, s.StakedTokens.IsZero())
	assert.True(t, s.Round.IsZero())
	assert.True(t, s.PendingReward.IsZero())

	_, status := httpGet(t, ts.URL+"/stakers/0xbad")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStakeUnstakeClaim(t *testing.T) {
	tp, ts := initServer(t, true)

	data, status := httpPost(t, ts.URL+"/stakers/"+alice.String()+"/stake", &stakers.Amount{Amount: uint256.NewInt(500)})
	require.Equal(t, http.StatusOK, status, string(data))
	var s stakers.Staker
	require.NoError(t, json.Unmarshal(data, &s))
	// 2 bps of 500 rounds down to zero
	assert.Equal(t, uint256.NewInt(500), s.StakedTokens)

	require.NoError(t, tp.Stake(bob, uint256.NewInt(500)))
	require.NoError(t, tp.DonateToPool(owner, uint256.NewInt(1000)))

	data, status = httpGet(t, ts.URL+"/stakers/"+alice.String()+"/pending-reward")
	require.Equal(t, http.StatusOK, status, string(data))
	var pending stakers.PendingReward
	require.NoError(t, json.Unmarshal(data, &pending))
	assert.Equal(t, uint256.NewInt(500), pending.PendingReward)

	data, status = httpPost(t, ts.URL+"/stakers/"+alice.String()+"/claim", struct{}{})
	require.Equal(t, http.StatusOK, status, string(data))
	var claimed stakers.Claimed
	require.NoError(t, json.Unmarshal(data, &claimed))
	assert.Equal(t, uint256.NewInt(500), claimed.Reward)

	// nothing left to claim
	_, status = httpPost(t, ts.URL+"/stakers/"+alice.String()+"/claim", struct{}{})
	assert.Equal(t, http.StatusBadRequest, status)

	data, status = httpPost(t, ts.URL+"/stakers/"+alice.String()+"/unstake", &stakers.Amount{Amount: uint256.NewInt(501)})
	assert.Equal(t, http.StatusBadRequest, status, string(data))

	data, status = httpPost(t, ts.URL+"/stakers/"+alice.String()+"/unstake", &stakers.Amount{Amount: uint256.NewInt(500)})
	require.Equal(t, http.StatusOK, status, string(data))
	assert.True(t, getStaker(t, ts, alice.String()).StakedTokens.IsZero())
}

func TestAmountValidation(t *testing.T) {
	_, ts := initServer(t, true)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"missing amount", &stakers.Amount{}, http.StatusBadRequest},
		{"zero amount", &stakers.Amount{Amount: uint256.NewInt(0)}, http.StatusBadRequest},
		{"unknown field", map[string]any{"amount": "1", "extra": true}, http.StatusBadRequest},
		{"negative", map[string]any{"amount": "-1"}, http.StatusBadRequest},
		{"above balance", &stakers.Amount{Amount: new(uint256.Int).Lsh(uint256.NewInt(1), 200)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, status := httpPost(t, ts.URL+"/stakers/"+alice.String()+"/stake", tt.body)
			assert.Equal(t, tt.status, status, string(data))
		})
	}
}

func TestWritesDisabled(t *testing.T) {
	_, ts := initServer(t, false)

	_, status := httpPost(t, ts.URL+"/stakers/"+alice.String()+"/stake", &stakers.Amount{Amount: uint256.NewInt(1)})
	assert.Equal(t, http.StatusNotFound, status)
}
