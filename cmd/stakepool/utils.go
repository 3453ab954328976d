// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/builtin"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
)

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("invalid value %d, exceeds max int", val)
	}
	return int(val), nil
}

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := new(slog.LevelVar)
	logLevel.Set(log.FromVerbosity(lvl))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.NewJSONHandler(os.Stdout, logLevel)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandler(os.Stdout, logLevel, useColor)
	}
	log.SetDefault(handler)
	return logLevel, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	cfg, err := genesis.LoadCustomGenesis(path)
	if err != nil {
		return nil, err
	}
	gene, err := genesis.NewCustomNet(cfg)
	if err != nil {
		return nil, errors.WithMessagef(err, "genesis file [%v]", path)
	}
	return gene, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

// instance bundles the databases and state of one genesis.
type instance struct {
	dir     string
	mainDB  *lvldb.LevelDB
	eventDB *eventdb.EventDB
	state   *state.State
}

func openInstance(ctx *cli.Context, gene *genesis.Genesis, persist bool) (*instance, error) {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	inst := &instance{dir: "Memory"}
	var err error
	if persist {
		if inst.dir, err = makeInstanceDir(ctx, gene); err != nil {
			return nil, err
		}
		dir := filepath.Join(inst.dir, "main.db")
		if inst.mainDB, err = lvldb.New(dir, lvldb.Options{
			CacheSize:              cacheMB / 2,
			OpenFilesCacheCapacity: suggestFDCache(),
		}); err != nil {
			return nil, errors.Wrapf(err, "open main database [%v]", dir)
		}
		dir = filepath.Join(inst.dir, "events.db")
		if inst.eventDB, err = eventdb.New(dir); err != nil {
			inst.Close()
			return nil, errors.Wrapf(err, "open event database [%v]", dir)
		}
	} else {
		if inst.mainDB, err = lvldb.NewMem(); err != nil {
			return nil, errors.Wrap(err, "open main database")
		}
		if inst.eventDB, err = eventdb.NewMem(); err != nil {
			inst.Close()
			return nil, errors.Wrap(err, "open event database")
		}
	}

	// roughly 1KiB per cached slot, the other half of the budget goes to leveldb
	if inst.state, err = state.New(inst.mainDB, cacheMB/2*1024); err != nil {
		inst.Close()
		return nil, err
	}
	return inst, nil
}

// Pool returns the pool bound to the instance state, recording events into
// the event database.
func (i *instance) Pool(gene *genesis.Genesis) *pool.Pool {
	opts := gene.PoolOptions()
	opts.Events = i.eventDB
	return builtin.Pool.WithState(i.state, opts)
}

func (i *instance) Close() {
	if i.eventDB != nil {
		logger.Info("closing event database...")
		if err := i.eventDB.Close(); err != nil {
			logger.Warn("failed to close event database", "err", err)
		}
	}
	if i.mainDB != nil {
		logger.Info("closing main database...")
		if err := i.mainDB.Close(); err != nil {
			logger.Warn("failed to close main database", "err", err)
		}
	}
}

// ensureGenesis builds the genesis into a fresh state, or checks a used one
// was built by the same genesis.
func ensureGenesis(gene *genesis.Genesis, st *state.State) error {
	err := gene.Check(st)
	if errors.Is(err, genesis.ErrNotInitialized) {
		return gene.Build(st)
	}
	return err
}

func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.stakepool")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.stakepool")
		default:
			return filepath.Join(home, ".org.vechain.stakepool")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
