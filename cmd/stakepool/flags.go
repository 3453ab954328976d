// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

func envVar(name string) string {
	return "STAKEPOOL_" + name
}

var (
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for pool databases",
		EnvVar: envVar("DATA_DIR"),
	}
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "path to a yaml genesis file, the dev genesis is used if not set",
		EnvVar: envVar("CONFIG"),
	}
	persistFlag = cli.BoolFlag{
		Name:   "persist",
		Usage:  "save pool state into the data dir, in-memory otherwise",
		EnvVar: envVar("PERSIST"),
	}
	cacheFlag = cli.IntFlag{
		Name:   "cache",
		Value:  256,
		Usage:  "megabytes of ram allocated to the state database",
		EnvVar: envVar("CACHE"),
	}
	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8669",
		Usage:  "API service listening address",
		EnvVar: envVar("API_ADDR"),
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		Usage:  "comma separated list of domains from which to accept cross origin requests to API",
		EnvVar: envVar("API_CORS"),
	}
	apiWritesFlag = cli.BoolFlag{
		Name:   "api-enable-writes",
		Usage:  "mount the state changing routes, which trust the caller named in the request",
		EnvVar: envVar("API_ENABLE_WRITES"),
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:   "api-events-limit",
		Value:  1000,
		Usage:  "limit the number of events returned by /events API",
		EnvVar: envVar("API_EVENTS_LIMIT"),
	}
	apiSlowQueriesFlag = cli.Uint64Flag{
		Name:   "api-slow-queries-threshold",
		Value:  0,
		Usage:  "all queries with duration (ms) above the threshold will be logged",
		EnvVar: envVar("API_SLOW_QUERIES_THRESHOLD"),
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:   "enable-api-logs",
		Usage:  "enables API requests logging",
		EnvVar: envVar("ENABLE_API_LOGS"),
	}
	verbosityFlag = cli.Uint64Flag{
		Name:   "verbosity",
		Value:  3,
		Usage:  "log verbosity (0-5)",
		EnvVar: envVar("VERBOSITY"),
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		Usage:  "output logs in JSON format",
		EnvVar: envVar("JSON_LOGS"),
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables metrics collection",
		EnvVar: envVar("ENABLE_METRICS"),
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		Usage:  "metrics service listening address",
		EnvVar: envVar("METRICS_ADDR"),
	}
)
