// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/thor"
)

type Supply struct {
	Address     thor.Address `json:"address"`
	TotalSupply *uint256.Int `json:"totalSupply"`
}

type Balance struct {
	Address thor.Address `json:"address"`
	Balance *uint256.Int `json:"balance"`
	// Allowance is what the pool may still pull from the account.
	Allowance *uint256.Int `json:"allowance"`
}

type Approval struct {
	Caller  *thor.Address `json:"caller"`
	Spender *thor.Address `json:"spender"` // defaults to the pool
	Amount  *uint256.Int  `json:"amount"`
}

type Mint struct {
	Caller *thor.Address `json:"caller"`
	To     *thor.Address `json:"to"`
	Amount *uint256.Int  `json:"amount"`
}

// Token serves the staking token. Writes run through the pool so they are
// serialized and committed like pool operations.
type Token struct {
	token  *token.Token
	pool   *pool.Pool
	auth   pool.Authority
	writes bool
}

func New(tok *token.Token, p *pool.Pool, auth pool.Authority, writes bool) *Token {
	return &Token{token: tok, pool: p, auth: auth, writes: writes}
}

func (t *Token) handleGetSupply(w http.ResponseWriter, _ *http.Request) error {
	var supply *uint256.Int
	err := t.pool.Exec(func() (err error) {
		supply, err = t.token.TotalSupply()
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Supply{Address: t.token.Address(), TotalSupply: supply})
}

func (t *Token) balance(addr thor.Address) (*Balance, error) {
	b := &Balance{Address: addr}
	err := t.pool.Exec(func() (err error) {
		if b.Balance, err = t.token.BalanceOf(addr); err != nil {
			return
		}
		b.Allowance, err = t.token.Allowance(addr, t.pool.Address())
		return
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (t *Token) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req)
	if err != nil {
		return err
	}
	b, err := t.balance(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, b)
}

func (t *Token) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body Approval
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := utils.RequireAddress("caller", body.Caller); err != nil {
		return err
	}
	if err := utils.RequireAmount(body.Amount); err != nil {
		return err
	}
	spender := t.pool.Address()
	if body.Spender != nil {
		spender = *body.Spender
	}
	if err := t.pool.Exec(func() error {
		return t.token.Approve(*body.Caller, spender, body.Amount)
	}); err != nil {
		return err
	}
	b, err := t.balance(*body.Caller)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, b)
}

func (t *Token) handleMint(w http.ResponseWriter, req *http.Request) error {
	var body Mint
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := utils.RequireAddress("caller", body.Caller); err != nil {
		return err
	}
	if err := utils.RequireAddress("to", body.To); err != nil {
		return err
	}
	if err := utils.RequireAmount(body.Amount); err != nil {
		return err
	}
	if err := t.pool.Exec(func() error {
		ok, err := t.auth.IsOwner(*body.Caller)
		if err != nil {
			return err
		}
		if !ok {
			return reverts.New(reverts.Unauthorized, "unauthorized: only the pool owner mints")
		}
		return t.token.Mint(*body.To, body.Amount)
	}); err != nil {
		return err
	}
	b, err := t.balance(*body.To)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, b)
}

func (t *Token) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /token").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetSupply))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("GET /token/balances/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))

	if !t.writes {
		return
	}
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /token/approve").
		HandlerFunc(utils.WrapHandlerFunc(t.handleApprove))
	sub.Path("/mint").
		Methods(http.MethodPost).
		Name("POST /token/mint").
		HandlerFunc(utils.WrapHandlerFunc(t.handleMint))
}
