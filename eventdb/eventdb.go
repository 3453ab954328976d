// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb keeps the history of committed pool events in sqlite and
// fans new ones out to subscribers.
package eventdb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/thor"
)

var logger = log.WithContext("pkg", "eventdb")

type EventDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string

	feed  event.Feed
	scope event.SubscriptionScope
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if path == ":memory:" {
		// every connection would get its own database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("opened event db", "path", path, "sqlite", driverVer)
	return &EventDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

func (db *EventDB) Path() string {
	return db.path
}

func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// Close closes the db and ends all subscriptions.
func (db *EventDB) Close() error {
	db.scope.Close()
	db.stmtCache.Clear()
	return db.db.Close()
}

// Record stores ev and sends it to subscribers. Subscribers are served
// synchronously, so they must keep their channels drained.
func (db *EventDB) Record(ev *pool.Event) error {
	stmt, err := db.stmtCache.Prepare("INSERT INTO event(" + strings.TrimPrefix(eventColumns, "seq, ") + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	res, err := stmt.Exec(
		string(ev.Kind),
		ev.Account.Bytes(),
		amountValue(ev.Amount),
		amountValue(ev.Net),
		amountValue(ev.Fee),
		amountValue(ev.Reward),
		amountValue(ev.AccRewardPerShare),
		amountValue(ev.TotalStaked),
		ev.StakingFeeBps,
		ev.UnstakingFeeBps,
		ev.Time.Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "insert event")
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	metricRecordCount().AddWithLabel(1, map[string]string{"kind": string(ev.Kind)})

	db.feed.Send(&Entry{Seq: uint64(seq), Event: ev})
	return nil
}

// Subscribe delivers every entry recorded from now on to ch.
func (db *EventDB) Subscribe(ch chan<- *Entry) event.Subscription {
	return db.scope.Track(db.feed.Subscribe(ch))
}

// Filter returns the recorded events matching filter.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Entry, error) {
	if filter == nil {
		return db.query(ctx, "SELECT "+eventColumns+" FROM event ORDER BY seq ASC")
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := "SELECT " + eventColumns + " FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND time >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND time <= ?"
		}
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ?"
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN (?" + strings.Repeat(", ?", len(filter.Kinds)-1) + ")"
		for _, k := range filter.Kinds {
			args = append(args, string(k))
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

// Stakers returns every account that has ever staked, in order of first stake.
func (db *EventDB) Stakers(ctx context.Context) ([]thor.Address, error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT account FROM event WHERE kind = ? GROUP BY account ORDER BY MIN(seq)", string(pool.EventStake))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []thor.Address
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		accounts = append(accounts, thor.BytesToAddress(b))
	}
	return accounts, rows.Err()
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...any) ([]*Entry, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var (
			seq                                       uint64
			kind                                      string
			account                                   []byte
			amount, net, fee, reward, acc, total      []byte
			stakingFeeBps, unstakingFeeBps, timestamp int64
		)
		if err := rows.Scan(
			&seq,
			&kind,
			&account,
			&amount,
			&net,
			&fee,
			&reward,
			&acc,
			&total,
			&stakingFeeBps,
			&unstakingFeeBps,
			&timestamp,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &Entry{
			Seq: seq,
			Event: &pool.Event{
				Kind:              pool.EventKind(kind),
				Account:           thor.BytesToAddress(account),
				Amount:            amountFrom(amount),
				Net:               amountFrom(net),
				Fee:               amountFrom(fee),
				Reward:            amountFrom(reward),
				AccRewardPerShare: amountFrom(acc),
				TotalStaked:       amountFrom(total),
				StakingFeeBps:     uint64(stakingFeeBps),
				UnstakingFeeBps:   uint64(unstakingFeeBps),
				Time:              time.Unix(timestamp, 0),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func amountValue(v *uint256.Int) []byte {
	if v == nil {
		return nil
	}
	b := v.Bytes32()
	return b[:]
}

func amountFrom(b []byte) *uint256.Int {
	if len(b) == 0 {
		return nil
	}
	return new(uint256.Int).SetBytes(b)
}
