// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/log"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	backlog       = 256
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 7 / 10
	writeDeadline = 10 * time.Second
)

type Subscriptions struct {
	db       *eventdb.EventDB
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(db *eventdb.EventDB, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		db: db,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		done: make(chan struct{}),
	}
}

func matches(filter *eventdb.Filter, entry *eventdb.Entry) bool {
	if filter.Account != nil && *filter.Account != entry.Account {
		return false
	}
	if len(filter.Kinds) > 0 && !slices.Contains(filter.Kinds, entry.Kind) {
		return false
	}
	return true
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	filter, err := events.ParseFilter(req)
	if err != nil {
		return err
	}

	// subscribed before the handshake completes, so the peer sees every
	// event recorded after it connected
	ch := make(chan *eventdb.Entry, backlog)
	sub := s.db.Subscribe(ch)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned
	if err != nil {
		logger.Debug("upgrade failed", "error", err)
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	if err := s.pipe(conn, filter, ch, sub.Err()); err != nil {
		logger.Debug("subscription closed", "remote", req.RemoteAddr, "error", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, filter *eventdb.Filter, ch <-chan *eventdb.Entry, subErr <-chan error) error {
	closed := make(chan struct{})
	// the reader only serves control frames and detects the peer leaving
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case entry := <-ch:
			if !matches(filter, entry) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(events.ConvertEntry(entry)); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return err
			}
		case err := <-subErr:
			// event db closed
			return err
		case <-closed:
			return nil
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeDeadline))
		}
	}
}

// Close ends all open subscriptions and waits for them.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
