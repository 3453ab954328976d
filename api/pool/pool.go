// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/thor"
)

type Pool struct {
	pool   *pool.Pool
	writes bool
}

// New creates the pool resource. Mutating routes are mounted only if writes is set.
func New(p *pool.Pool, writes bool) *Pool {
	return &Pool{pool: p, writes: writes}
}

func (p *Pool) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	info, err := p.pool.Info()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertInfo(p.pool.Address(), info))
}

func (p *Pool) handleDonate(w http.ResponseWriter, req *http.Request) error {
	var body Donation
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := utils.RequireAddress("caller", body.Caller); err != nil {
		return err
	}
	if err := utils.RequireAmount(body.Amount); err != nil {
		return err
	}
	if err := p.pool.DonateToPool(*body.Caller, body.Amount); err != nil {
		return err
	}
	return p.handleGetInfo(w, req)
}

func (p *Pool) handleSetFees(w http.ResponseWriter, req *http.Request) error {
	var body Fees
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := utils.RequireAddress("caller", body.Caller); err != nil {
		return err
	}
	if body.StakingFeeBps == nil || body.UnstakingFeeBps == nil {
		return utils.BadRequest(errors.New("stakingFeeBps and unstakingFeeBps: required"))
	}
	if err := p.pool.SetFees(*body.Caller, *body.StakingFeeBps, *body.UnstakingFeeBps); err != nil {
		return err
	}
	return p.handleGetInfo(w, req)
}

func (p *Pool) handlePause(w http.ResponseWriter, req *http.Request) error {
	return p.toggle(w, req, p.pool.Pause)
}

func (p *Pool) handleUnpause(w http.ResponseWriter, req *http.Request) error {
	return p.toggle(w, req, p.pool.Unpause)
}

func (p *Pool) toggle(w http.ResponseWriter, req *http.Request, fn func(caller thor.Address) error) error {
	var body Caller
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := utils.RequireAddress("caller", body.Caller); err != nil {
		return err
	}
	if err := fn(*body.Caller); err != nil {
		return err
	}
	return p.handleGetInfo(w, req)
}

func (p *Pool) handleSweep(w http.ResponseWriter, req *http.Request) error {
	var body Sweep
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := utils.RequireAddress("caller", body.Caller); err != nil {
		return err
	}
	if err := utils.RequireAddress("to", body.To); err != nil {
		return err
	}
	amount, err := p.pool.SweepFees(*body.Caller, *body.To)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &SweepResult{Amount: amount})
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetInfo))

	if !p.writes {
		return
	}
	sub.Path("/donate").
		Methods(http.MethodPost).
		Name("POST /pool/donate").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDonate))
	sub.Path("/fees").
		Methods(http.MethodPost).
		Name("POST /pool/fees").
		HandlerFunc(utils.WrapHandlerFunc(p.handleSetFees))
	sub.Path("/pause").
		Methods(http.MethodPost).
		Name("POST /pool/pause").
		HandlerFunc(utils.WrapHandlerFunc(p.handlePause))
	sub.Path("/unpause").
		Methods(http.MethodPost).
		Name("POST /pool/unpause").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUnpause))
	sub.Path("/sweep").
		Methods(http.MethodPost).
		Name("POST /pool/sweep").
		HandlerFunc(utils.WrapHandlerFunc(p.handleSweep))
}
