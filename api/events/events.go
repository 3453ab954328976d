// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/thor"
)

var kinds = map[pool.EventKind]bool{
	pool.EventStake:   true,
	pool.EventUnstake: true,
	pool.EventClaim:   true,
	pool.EventDonate:  true,
	pool.EventFees:    true,
	pool.EventPause:   true,
	pool.EventUnpause: true,
	pool.EventSweep:   true,
}

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{db: db, limit: limit}
}

// ParseFilter reads an event filter from the query string.
func ParseFilter(req *http.Request) (*eventdb.Filter, error) {
	query := req.URL.Query()
	filter := &eventdb.Filter{Order: eventdb.ASC}

	if s := query.Get("account"); s != "" {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "account"))
		}
		filter.Account = &addr
	}
	if s := query.Get("kind"); s != "" {
		for _, k := range strings.Split(s, ",") {
			kind := pool.EventKind(strings.TrimSpace(k))
			if !kinds[kind] {
				return nil, utils.BadRequest(fmt.Errorf("kind: unknown %q", kind))
			}
			filter.Kinds = append(filter.Kinds, kind)
		}
	}
	if query.Has("from") || query.Has("to") {
		from, err := utils.Uint64Query(req, "from", 0)
		if err != nil {
			return nil, err
		}
		to, err := utils.Uint64Query(req, "to", 0)
		if err != nil {
			return nil, err
		}
		if query.Has("to") && to < from {
			return nil, utils.BadRequest(errors.New("to must be greater than or equal to from"))
		}
		filter.Range = &eventdb.Range{From: from, To: to}
	}
	switch order := eventdb.Order(strings.ToLower(query.Get("order"))); order {
	case "", eventdb.ASC:
	case eventdb.DESC:
		filter.Order = eventdb.DESC
	default:
		return nil, utils.BadRequest(fmt.Errorf("order: unknown %q", order))
	}
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := ParseFilter(req)
	if err != nil {
		return err
	}
	offset, err := utils.Uint64Query(req, "offset", 0)
	if err != nil {
		return err
	}
	limit, err := utils.Uint64Query(req, "limit", e.limit)
	if err != nil {
		return err
	}
	if limit > e.limit {
		return utils.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit))
	}
	filter.Options = &eventdb.Options{Offset: offset, Limit: limit}

	entries, err := e.db.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	out := make([]*Event, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ConvertEntry(entry))
	}
	return utils.WriteJSON(w, out)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
