// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/thor"
)

type Staker struct {
	Address       thor.Address `json:"address"`
	StakedTokens  *uint256.Int `json:"stakedTokens"`
	Round         *uint256.Int `json:"round"`
	PendingReward *uint256.Int `json:"pendingReward"`
}

type PendingReward struct {
	PendingReward *uint256.Int `json:"pendingReward"`
}

type Amount struct {
	Amount *uint256.Int `json:"amount"`
}

type Claimed struct {
	Reward *uint256.Int `json:"reward"`
}

type Stakers struct {
	pool   *pool.Pool
	writes bool
}

func New(p *pool.Pool, writes bool) *Stakers {
	return &Stakers{pool: p, writes: writes}
}

func (s *Stakers) getStaker(addr thor.Address) (*Staker, error) {
	pos, err := s.pool.Position(addr)
	if err != nil {
		return nil, err
	}
	return &Staker{
		Address:       addr,
		StakedTokens:  pos.StakedTokens,
		Round:         pos.Round,
		PendingReward: pos.PendingReward,
	}, nil
}

func (s *Stakers) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req)
	if err != nil {
		return err
	}
	staker, err := s.getStaker(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, staker)
}

func (s *Stakers) handleGetPendingReward(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req)
	if err != nil {
		return err
	}
	pending, err := s.pool.GetPendingReward(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &PendingReward{PendingReward: pending})
}

func (s *Stakers) handleAmount(op func(thor.Address, *uint256.Int) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		addr, err := utils.AddressVar(req)
		if err != nil {
			return err
		}
		var body Amount
		if err := utils.ParseJSON(req.Body, &body); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		if err := utils.RequireAmount(body.Amount); err != nil {
			return err
		}
		if err := op(addr, body.Amount); err != nil {
			return err
		}
		staker, err := s.getStaker(addr)
		if err != nil {
			return err
		}
		return utils.WriteJSON(w, staker)
	}
}

func (s *Stakers) handleClaim(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req)
	if err != nil {
		return err
	}
	reward, err := s.pool.ClaimReward(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Claimed{Reward: reward})
}

func (s *Stakers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStaker))
	sub.Path("/{address}/pending-reward").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/pending-reward").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPendingReward))

	if !s.writes {
		return
	}
	sub.Path("/{address}/stake").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAmount(s.pool.Stake)))
	sub.Path("/{address}/unstake").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/unstake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAmount(s.pool.Unstake)))
	sub.Path("/{address}/claim").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/claim").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaim))
}
