// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/thor"
)

// AddressVar parses the address path variable.
func AddressVar(req *http.Request) (thor.Address, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return thor.Address{}, BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

// RequireAmount rejects a missing amount. Zero is left to the pool to judge.
func RequireAmount(amount *uint256.Int) error {
	if amount == nil {
		return BadRequest(errors.New("amount: required"))
	}
	return nil
}

// RequireAddress rejects a missing or zero address field.
func RequireAddress(name string, addr *thor.Address) error {
	if addr == nil || addr.IsZero() {
		return BadRequest(errors.Errorf("%s: required", name))
	}
	return nil
}

// Uint64Query parses an optional unsigned query parameter, def is used when absent.
func Uint64Query(req *http.Request, name string, def uint64) (uint64, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}
