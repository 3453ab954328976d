// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/middleware"
	poolapi "github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/api/stakers"
	"github.com/vechain/stakepool/api/subscriptions"
	tokenapi "github.com/vechain/stakepool/api/token"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	// EnableWrites mounts the mutating routes, which trust the caller field.
	EnableWrites         bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EventsLimit          uint64
}

// New return api router
func New(
	p *pool.Pool,
	tok *token.Token,
	auth pool.Authority,
	eventDB *eventdb.EventDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.EnableReqLogger == nil {
		opts.EnableReqLogger = &atomic.Bool{}
	}
	if opts.EventsLimit == 0 {
		opts.EventsLimit = 1000
	}

	router := mux.NewRouter()

	poolapi.New(p, opts.EnableWrites).
		Mount(router, "/pool")
	stakers.New(p, opts.EnableWrites).
		Mount(router, "/stakers")
	tokenapi.New(tok, p, auth, opts.EnableWrites).
		Mount(router, "/token")
	events.New(eventDB, opts.EventsLimit).
		Mount(router, "/events")
	subs := subscriptions.New(eventDB, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
