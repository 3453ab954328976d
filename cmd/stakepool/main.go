// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/builtin"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/thor"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string

	logger = log.WithContext("pkg", "stakepool")

	commonFlags = []cli.Flag{
		dataDirFlag,
		configFlag,
		cacheFlag,
		verbosityFlag,
		jsonLogsFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Stakepool",
		Usage:     "Token staking pool with pro-rata reward distribution",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Flags: append([]cli.Flag{
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiWritesFlag,
			apiEventsLimitFlag,
			apiSlowQueriesFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		}, commonFlags...),
		Action: serveAction,
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "write the genesis state into the data dir",
				Flags:  commonFlags,
				Action: initAction,
			},
			{
				Name:   "info",
				Usage:  "print pool-wide values of the persisted state",
				Flags:  commonFlags,
				Action: infoAction,
			},
			{
				Name:   "audit",
				Usage:  "verify conservation and solvency over every known staker",
				Flags:  commonFlags,
				Action: auditAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	if _, err := initLogger(ctx); err != nil {
		return err
	}
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	inst, err := openInstance(ctx, gene, ctx.Bool(persistFlag.Name))
	if err != nil {
		return err
	}
	defer inst.Close()

	if err := ensureGenesis(gene, inst.state); err != nil {
		return err
	}

	exitSignal := handleExitSignal()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		logger.Info("metrics server started", "url", url)
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(
		inst.Pool(gene),
		builtin.Token.WithState(inst.state),
		builtin.Pool.Ownable(inst.state),
		inst.eventDB,
		api.Options{
			AllowedOrigins:       ctx.String(apiCorsFlag.Name),
			EnableWrites:         ctx.Bool(apiWritesFlag.Name),
			EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
			EnableReqLogger:      apiLogs,
			SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesFlag.Name)) * time.Millisecond,
			EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		},
	)
	defer closeSubs()

	apiURL, srvCloser, err := startAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(os.Stdout, gene, inst.dir, apiURL, ctx.Bool(apiWritesFlag.Name))

	<-exitSignal.Done()
	return nil
}

func initAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	inst, err := openInstance(ctx, gene, true)
	if err != nil {
		return err
	}
	defer inst.Close()

	if err := gene.Build(inst.state); err != nil {
		return err
	}
	fmt.Printf("genesis %v %v written to %v\n", gene.Name(), gene.ID(), inst.dir)
	return nil
}

// openChecked opens the persisted instance, which must have been built by the
// selected genesis.
func openChecked(ctx *cli.Context) (*instance, *pool.Pool, error) {
	if _, err := initLogger(ctx); err != nil {
		return nil, nil, err
	}
	gene, err := selectGenesis(ctx)
	if err != nil {
		return nil, nil, err
	}
	inst, err := openInstance(ctx, gene, true)
	if err != nil {
		return nil, nil, err
	}
	if err := gene.Check(inst.state); err != nil {
		inst.Close()
		if errors.Is(err, genesis.ErrNotInitialized) {
			return nil, nil, errors.New("state not initialized, run init first")
		}
		return nil, nil, err
	}
	return inst, inst.Pool(gene), nil
}

func infoAction(ctx *cli.Context) error {
	inst, p, err := openChecked(ctx)
	if err != nil {
		return err
	}
	defer inst.Close()

	info, err := p.Info()
	if err != nil {
		return err
	}
	printInfo(os.Stdout, info)
	return nil
}

func auditAction(ctx *cli.Context) error {
	inst, p, err := openChecked(ctx)
	if err != nil {
		return err
	}
	defer inst.Close()

	stakers, err := p.Accounts()
	if err != nil {
		return err
	}
	logged, err := inst.eventDB.Stakers(context.Background())
	if err != nil {
		return err
	}
	if missing := unlogged(stakers, logged); len(missing) > 0 {
		logger.Warn("stakers missing from the event log", "count", len(missing), "first", missing[0])
	}

	bar := pb.New(len(stakers)).SetMaxWidth(90).Start()
	report, err := p.Audit(stakers, func(done int) { bar.Set(done) })
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Printf(`Audit
    Stakers       [ %v ]
    Total staked  [ %v ]
    Sum of stakes [ %v ]
    Sum pending   [ %v ]
    Retained fees [ %v ]
    Balance       [ %v ]
    Conserved     [ %v ]
    Solvent       [ %v ]
`,
		report.Stakers, report.TotalStaked, report.SumStaked, report.SumPending,
		report.RetainedFees, report.Balance, report.Conserved, report.Solvent)

	if !report.Conserved || !report.Solvent {
		return errors.New("audit failed")
	}
	return nil
}

// unlogged returns the accounts of the ledger index that no event mentions.
func unlogged(indexed, logged []thor.Address) []thor.Address {
	seen := make(map[thor.Address]struct{}, len(logged))
	for _, addr := range logged {
		seen[addr] = struct{}{}
	}
	var missing []thor.Address
	for _, addr := range indexed {
		if _, ok := seen[addr]; !ok {
			missing = append(missing, addr)
		}
	}
	return missing
}

func printInfo(w io.Writer, info *pool.Info) {
	fmt.Fprintf(w, `Pool
    Owner           [ %v ]
    Total staked    [ %v ]
    Acc per share   [ %v ]
    Retained fees   [ %v ]
    Balance         [ %v ]
    Fees (bps)      [ staking %v, unstaking %v, max %v ]
    Fee policy      [ %v ]
    Paused          [ %v, exit when paused %v ]
`,
		info.Owner, info.TotalStaked, info.AccRewardPerShare, info.RetainedFees, info.Balance,
		info.StakingFeeBps, info.UnstakingFeeBps, info.MaxFeeBps,
		info.FeePolicy,
		info.Paused, info.AllowExitWhenPaused)
}

func printStartupMessage(w io.Writer, gene *genesis.Genesis, dataDir, apiURL string, writes bool) {
	fmt.Fprintf(w, `Starting %v
    Network     [ %v %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    API writes  [ %v ]
`,
		"Stakepool/"+fullVersion(),
		gene.ID(), gene.Name(),
		dataDir,
		apiURL,
		writes)

	if gene.ID() != genesis.NewDevnet().ID() {
		return
	}

	var b strings.Builder
	b.WriteString(`┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │
`)
	for _, a := range genesis.DevAccounts() {
		b.WriteString("├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤\n")
		fmt.Fprintf(&b, "│ %v │ %v │\n", a.Address, thor.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)))
	}
	b.WriteString("└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘\n")
	fmt.Fprint(w, b.String())
}
