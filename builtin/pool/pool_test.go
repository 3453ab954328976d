// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/stakepool/builtin/ownable"
	"github.com/vechain/stakepool/builtin/pausable"
	"github.com/vechain/stakepool/builtin/pool/fees"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/token"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var (
	owner = thor.BytesToAddress([]byte("owner"))
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
	carol = thor.BytesToAddress([]byte("carol"))
	dave  = thor.BytesToAddress([]byte("dave"))

	accounts = []thor.Address{owner, alice, bob, carol, dave}
)

const funds = 1_000_000

type recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *recorder) Record(ev *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

type testPool struct {
	*Pool
	t   *testing.T
	tok *token.Token
}

func newTestPool(t *testing.T, stakingBps, unstakingBps uint64, opts Options) *testPool {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 256)
	require.NoError(t, err)

	tok := token.New(thor.TokenAddress, st)
	auth := ownable.New(thor.PoolAddress, st)
	pauser := pausable.New(thor.PoolAddress, st)
	require.NoError(t, auth.Initialize(owner))

	p, err := Deploy(thor.PoolAddress, st, tok, auth, pauser, stakingBps, unstakingBps, opts)
	require.NoError(t, err)

	require.NoError(t, p.Exec(func() error {
		for _, acc := range accounts {
			if err := tok.Mint(acc, uint256.NewInt(funds)); err != nil {
				return err
			}
			if err := tok.Approve(acc, thor.PoolAddress, uint256.NewInt(funds)); err != nil {
				return err
			}
		}
		return nil
	}))
	return &testPool{Pool: p, t: t, tok: tok}
}

func (tp *testPool) pending(addr thor.Address) uint64 {
	v, err := tp.GetPendingReward(addr)
	require.NoError(tp.t, err)
	return v.Uint64()
}

func (tp *testPool) staked(addr thor.Address) (uint64, uint64) {
	staked, round, err := tp.Staker(addr)
	require.NoError(tp.t, err)
	return staked.Uint64(), round.Uint64()
}

func (tp *testPool) balance(addr thor.Address) uint64 {
	v, err := tp.tok.BalanceOf(addr)
	require.NoError(tp.t, err)
	return v.Uint64()
}

func (tp *testPool) info() *Info {
	info, err := tp.Info()
	require.NoError(tp.t, err)
	return info
}

func (tp *testPool) audit() *AuditReport {
	report, err := tp.Audit(accounts, nil)
	require.NoError(tp.t, err)
	return report
}

func amount(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func TestScenario(t *testing.T) {
	tp := newTestPool(t, 2, 2, Options{})

	require.NoError(t, tp.Stake(alice, amount(500)))
	assert.Equal(t, uint64(0), tp.pending(alice))

	require.NoError(t, tp.Stake(bob, amount(750)))
	assert.Equal(t, uint64(0), tp.pending(alice))
	assert.Equal(t, uint64(0), tp.pending(bob))

	require.NoError(t, tp.Stake(carol, amount(500)))
	for _, acc := range []thor.Address{alice, bob, carol} {
		assert.Equal(t, uint64(0), tp.pending(acc))
	}
	// 2 bps of these amounts rounds down to nothing
	assert.Equal(t, uint64(1750), tp.info().TotalStaked.Uint64())

	require.NoError(t, tp.DonateToPool(owner, amount(1000)))
	// acc = 1000 * 1e12 / 1750
	assert.Equal(t, uint64(571428571428), tp.info().AccRewardPerShare.Uint64())
	assert.Equal(t, uint64(285), tp.pending(alice))
	assert.Equal(t, uint64(428), tp.pending(bob))
	assert.Equal(t, uint64(285), tp.pending(carol))

	staked, round := tp.staked(owner)
	assert.Equal(t, uint64(0), staked)
	assert.Equal(t, uint64(0), round)

	expected := map[thor.Address]uint64{
		alice: funds + 285,
		bob:   funds + 428,
		carol: funds + 285,
	}
	for _, acc := range []thor.Address{alice, bob, carol} {
		staked, _ := tp.staked(acc)
		require.NoError(t, tp.Unstake(acc, amount(staked)))

		staked, _ = tp.staked(acc)
		assert.Equal(t, uint64(0), staked)
		assert.Equal(t, uint64(0), tp.pending(acc))
		assert.Equal(t, expected[acc], tp.balance(acc))
	}

	info := tp.info()
	assert.True(t, info.TotalStaked.IsZero())
	// rounding dust stays in the pool
	assert.Equal(t, uint64(2), info.Balance.Uint64())

	report := tp.audit()
	assert.True(t, report.Conserved)
	assert.True(t, report.Solvent)
}

func TestStakeFee(t *testing.T) {
	tp := newTestPool(t, 100, 200, Options{})

	require.NoError(t, tp.Stake(alice, amount(1000)))
	staked, _ := tp.staked(alice)
	assert.Equal(t, uint64(990), staked)
	assert.Equal(t, uint64(10), tp.info().RetainedFees.Uint64())
	assert.Equal(t, uint64(funds-1000), tp.balance(alice))

	require.NoError(t, tp.Unstake(alice, amount(500)))
	staked, _ = tp.staked(alice)
	assert.Equal(t, uint64(490), staked)
	assert.Equal(t, uint64(20), tp.info().RetainedFees.Uint64())
	assert.Equal(t, uint64(funds-1000+490), tp.balance(alice))
	assert.Equal(t, uint64(490), tp.info().TotalStaked.Uint64())
}

func TestBoundaries(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})

	t.Run("stake zero", func(t *testing.T) {
		err := tp.Stake(alice, amount(0))
		assert.True(t, reverts.Is(err, reverts.InvalidAmount))
	})

	t.Run("donate without stakers", func(t *testing.T) {
		err := tp.DonateToPool(owner, amount(100))
		assert.True(t, reverts.Is(err, reverts.InvalidInject))
		assert.Equal(t, uint64(funds), tp.balance(owner))
	})

	require.NoError(t, tp.Stake(alice, amount(100)))

	t.Run("unstake more than staked", func(t *testing.T) {
		before := tp.info()
		err := tp.Unstake(alice, amount(101))
		assert.True(t, reverts.Is(err, reverts.InvalidAmount))

		staked, _ := tp.staked(alice)
		assert.Equal(t, uint64(100), staked)
		assert.Equal(t, before, tp.info())
	})

	t.Run("unstake zero", func(t *testing.T) {
		err := tp.Unstake(alice, amount(0))
		assert.True(t, reverts.Is(err, reverts.InvalidAmount))
	})

	t.Run("unstake without stake", func(t *testing.T) {
		err := tp.Unstake(bob, amount(1))
		assert.True(t, reverts.Is(err, reverts.InvalidAmount))
	})

	t.Run("claim nothing", func(t *testing.T) {
		_, err := tp.ClaimReward(alice)
		assert.True(t, reverts.Is(err, reverts.InvalidRewardClaim))
		_, err = tp.ClaimReward(bob)
		assert.True(t, reverts.Is(err, reverts.InvalidRewardClaim))
	})

	t.Run("fees above ceiling", func(t *testing.T) {
		require.NoError(t, tp.SetFees(owner, 5, 7))
		err := tp.SetFees(owner, 2000, 2000)
		assert.True(t, reverts.Is(err, reverts.InvalidFees))
		err = tp.SetFees(owner, 0, 1001)
		assert.True(t, reverts.Is(err, reverts.InvalidFees))

		s, u, err := tp.Fees()
		require.NoError(t, err)
		assert.Equal(t, uint64(5), s)
		assert.Equal(t, uint64(7), u)

		require.NoError(t, tp.SetFees(owner, 1000, 1000))
	})

	t.Run("donate zero", func(t *testing.T) {
		err := tp.DonateToPool(owner, amount(0))
		assert.True(t, reverts.Is(err, reverts.InvalidAmount))
	})

	t.Run("donate more than balance", func(t *testing.T) {
		err := tp.DonateToPool(owner, amount(funds+1))
		assert.True(t, reverts.Is(err, reverts.InsufficientAllow))
	})
}

func TestOnlyOwner(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})
	require.NoError(t, tp.Stake(alice, amount(100)))

	assert.True(t, reverts.Is(tp.DonateToPool(alice, amount(10)), reverts.Unauthorized))
	assert.True(t, reverts.Is(tp.SetFees(alice, 1, 1), reverts.Unauthorized))
	assert.True(t, reverts.Is(tp.Pause(alice), reverts.Unauthorized))
	assert.True(t, reverts.Is(tp.Unpause(alice), reverts.Unauthorized))
	_, err := tp.SweepFees(alice, alice)
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	assert.Equal(t, owner, tp.info().Owner)
	assert.Equal(t, uint64(0), tp.pending(alice))
}

func TestPause(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})
	require.NoError(t, tp.Stake(alice, amount(100)))
	require.NoError(t, tp.DonateToPool(owner, amount(50)))

	require.NoError(t, tp.Pause(owner))
	assert.True(t, tp.info().Paused)
	assert.True(t, reverts.Is(tp.Pause(owner), reverts.Paused))

	assert.True(t, reverts.Is(tp.Stake(alice, amount(1)), reverts.Paused))
	assert.True(t, reverts.Is(tp.DonateToPool(owner, amount(1)), reverts.Paused))
	assert.True(t, reverts.Is(tp.Unstake(alice, amount(1)), reverts.Paused))
	_, err := tp.ClaimReward(alice)
	assert.True(t, reverts.Is(err, reverts.Paused))

	// views and owner controls stay available
	assert.Equal(t, uint64(50), tp.pending(alice))
	require.NoError(t, tp.SetFees(owner, 10, 10))

	require.NoError(t, tp.Unpause(owner))
	assert.True(t, reverts.Is(tp.Unpause(owner), reverts.NotPaused))

	reward, err := tp.ClaimReward(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), reward.Uint64())
}

func TestExitWhenPaused(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{AllowExitWhenPaused: true})
	require.NoError(t, tp.Stake(alice, amount(100)))
	require.NoError(t, tp.DonateToPool(owner, amount(50)))
	require.NoError(t, tp.Pause(owner))

	assert.True(t, reverts.Is(tp.Stake(alice, amount(1)), reverts.Paused))
	assert.True(t, reverts.Is(tp.DonateToPool(owner, amount(1)), reverts.Paused))

	reward, err := tp.ClaimReward(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), reward.Uint64())

	require.NoError(t, tp.Unstake(alice, amount(100)))
	assert.Equal(t, uint64(funds+50), tp.balance(alice))
}

func TestClaimIsIdempotent(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})
	require.NoError(t, tp.Stake(alice, amount(300)))
	require.NoError(t, tp.Stake(bob, amount(100)))
	require.NoError(t, tp.DonateToPool(owner, amount(400)))

	reward, err := tp.ClaimReward(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), reward.Uint64())
	assert.Equal(t, uint64(funds), tp.balance(alice))

	_, err = tp.ClaimReward(alice)
	assert.True(t, reverts.Is(err, reverts.InvalidRewardClaim))
	assert.Equal(t, uint64(funds), tp.balance(alice))

	staked, round := tp.staked(alice)
	assert.Equal(t, uint64(300), staked)
	assert.Equal(t, tp.info().AccRewardPerShare.Uint64(), round)
	assert.Equal(t, uint64(100), tp.pending(bob))
}

func TestPosition(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})
	require.NoError(t, tp.Stake(alice, amount(300)))
	require.NoError(t, tp.Stake(bob, amount(100)))
	require.NoError(t, tp.DonateToPool(owner, amount(400)))

	pos, err := tp.Position(alice)
	require.NoError(t, err)
	staked, round := tp.staked(alice)
	assert.Equal(t, staked, pos.StakedTokens.Uint64())
	assert.Equal(t, round, pos.Round.Uint64())
	assert.Equal(t, tp.pending(alice), pos.PendingReward.Uint64())
	assert.Equal(t, uint64(300), pos.PendingReward.Uint64())

	empty, err := tp.Position(carol)
	require.NoError(t, err)
	assert.True(t, empty.StakedTokens.IsZero())
	assert.True(t, empty.Round.IsZero())
	assert.True(t, empty.PendingReward.IsZero())
}

func TestStakeSettlesFirst(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})
	require.NoError(t, tp.Stake(alice, amount(100)))
	require.NoError(t, tp.DonateToPool(owner, amount(100)))

	require.NoError(t, tp.Stake(alice, amount(100)))
	assert.Equal(t, uint64(0), tp.pending(alice))
	// paid 100 reward, deposited 200 in total
	assert.Equal(t, uint64(funds-200+100), tp.balance(alice))

	// the new principal does not earn from the earlier donation
	require.NoError(t, tp.Stake(bob, amount(200)))
	require.NoError(t, tp.DonateToPool(owner, amount(100)))
	assert.Equal(t, uint64(50), tp.pending(alice))
	assert.Equal(t, uint64(50), tp.pending(bob))
}

func TestFailedOperationIsAtomic(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})
	require.NoError(t, tp.Stake(alice, amount(100)))
	require.NoError(t, tp.Stake(bob, amount(100)))
	require.NoError(t, tp.DonateToPool(owner, amount(100)))
	require.NoError(t, tp.Exec(func() error {
		return tp.tok.Approve(alice, thor.PoolAddress, amount(0))
	}))

	before := tp.info()
	// settlement pays out before the deposit fails
	err := tp.Stake(alice, amount(10))
	assert.True(t, reverts.Is(err, reverts.InsufficientAllow))

	assert.Equal(t, uint64(50), tp.pending(alice))
	assert.Equal(t, uint64(funds-100), tp.balance(alice))
	staked, round := tp.staked(alice)
	assert.Equal(t, uint64(100), staked)
	assert.Equal(t, uint64(0), round)
	assert.Equal(t, before, tp.info())
}

func TestDonorWithStake(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})

	require.NoError(t, tp.Stake(owner, amount(500)))
	err := tp.DonateToPool(owner, amount(100))
	assert.True(t, reverts.Is(err, reverts.InvalidInject))

	require.NoError(t, tp.Stake(alice, amount(500)))
	require.NoError(t, tp.DonateToPool(owner, amount(100)))

	assert.Equal(t, uint64(100), tp.pending(alice))
	assert.Equal(t, uint64(0), tp.pending(owner))
	staked, round := tp.staked(owner)
	assert.Equal(t, uint64(500), staked)
	assert.Equal(t, tp.info().AccRewardPerShare.Uint64(), round)

	// the owner never earns from its own donations
	require.NoError(t, tp.DonateToPool(owner, amount(100)))
	assert.Equal(t, uint64(200), tp.pending(alice))
	assert.Equal(t, uint64(0), tp.pending(owner))
	assert.True(t, tp.audit().Solvent)
}

func TestDonorRecordReset(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})
	require.NoError(t, tp.Stake(alice, amount(100)))
	require.NoError(t, tp.DonateToPool(owner, amount(100)))
	require.NoError(t, tp.DonateToPool(owner, amount(100)))

	staked, round := tp.staked(owner)
	assert.Equal(t, uint64(0), staked)
	assert.Equal(t, uint64(0), round)
	assert.Equal(t, uint64(200), tp.pending(alice))
}

func TestDistributeFees(t *testing.T) {
	tp := newTestPool(t, 100, 100, Options{FeePolicy: fees.Distribute})

	// no one else to receive it, so the fee is retained
	require.NoError(t, tp.Stake(alice, amount(1000)))
	assert.Equal(t, uint64(10), tp.info().RetainedFees.Uint64())

	require.NoError(t, tp.Stake(bob, amount(1000)))
	assert.Equal(t, uint64(10), tp.info().RetainedFees.Uint64())
	// 10 over alice's 990, floored
	assert.Equal(t, uint64(9), tp.pending(alice))
	assert.Equal(t, uint64(0), tp.pending(bob))

	// bob's unstaking fee goes to alice only
	require.NoError(t, tp.Unstake(bob, amount(990)))
	assert.Equal(t, uint64(0), tp.pending(bob))
	assert.Equal(t, uint64(18), tp.pending(alice))

	report := tp.audit()
	assert.True(t, report.Conserved)
	assert.True(t, report.Solvent)
}

func TestSweepFees(t *testing.T) {
	tp := newTestPool(t, 100, 100, Options{})

	_, err := tp.SweepFees(owner, owner)
	assert.True(t, reverts.Is(err, reverts.InvalidAmount))

	require.NoError(t, tp.Stake(alice, amount(1000)))
	require.NoError(t, tp.Unstake(alice, amount(990)))

	swept, err := tp.SweepFees(owner, dave)
	require.NoError(t, err)
	assert.Equal(t, uint64(19), swept.Uint64())
	assert.Equal(t, uint64(funds+19), tp.balance(dave))

	info := tp.info()
	assert.True(t, info.RetainedFees.IsZero())
	assert.True(t, info.Balance.IsZero())

	_, err = tp.SweepFees(owner, dave)
	assert.True(t, reverts.Is(err, reverts.InvalidAmount))
}

func TestEvents(t *testing.T) {
	rec := &recorder{}
	now := time.Unix(1700000000, 0)
	tp := newTestPool(t, 0, 0, Options{Events: rec, Clock: func() time.Time { return now }})

	require.NoError(t, tp.Stake(alice, amount(100)))
	require.NoError(t, tp.DonateToPool(owner, amount(10)))
	_, err := tp.ClaimReward(alice)
	require.NoError(t, err)
	require.NoError(t, tp.SetFees(owner, 1, 2))
	require.NoError(t, tp.Pause(owner))
	require.NoError(t, tp.Unpause(owner))
	require.NoError(t, tp.Unstake(alice, amount(100)))
	// failures emit nothing
	assert.Error(t, tp.Unstake(alice, amount(100)))

	assert.Equal(t, []EventKind{
		EventStake, EventDonate, EventClaim, EventFees, EventPause, EventUnpause, EventUnstake,
	}, rec.kinds())

	donate := rec.events[1]
	assert.Equal(t, owner, donate.Account)
	assert.Equal(t, uint64(10), donate.Amount.Uint64())
	assert.Equal(t, uint64(100), donate.TotalStaked.Uint64())
	assert.Equal(t, uint64(1e11), donate.AccRewardPerShare.Uint64())
	assert.Equal(t, now, donate.Time)

	claim := rec.events[2]
	assert.Equal(t, uint64(10), claim.Reward.Uint64())

	setFees := rec.events[3]
	assert.Equal(t, uint64(1), setFees.StakingFeeBps)
	assert.Equal(t, uint64(2), setFees.UnstakingFeeBps)
}

func TestInfo(t *testing.T) {
	tp := newTestPool(t, 3, 4, Options{MaxFeeBps: 500, FeePolicy: fees.Distribute})
	info := tp.info()

	assert.Equal(t, owner, info.Owner)
	assert.Equal(t, uint64(3), info.StakingFeeBps)
	assert.Equal(t, uint64(4), info.UnstakingFeeBps)
	assert.Equal(t, uint64(500), info.MaxFeeBps)
	assert.Equal(t, fees.Distribute, info.FeePolicy)
	assert.False(t, info.Paused)
	assert.True(t, info.TotalStaked.IsZero())

	assert.True(t, reverts.Is(tp.SetFees(owner, 501, 0), reverts.InvalidFees))
}

func TestDeployRejectsFees(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	st, err := state.New(db, 16)
	require.NoError(t, err)

	_, err = Deploy(thor.PoolAddress, st,
		token.New(thor.TokenAddress, st),
		ownable.New(thor.PoolAddress, st),
		pausable.New(thor.PoolAddress, st),
		2000, 2000, Options{})
	assert.True(t, reverts.Is(err, reverts.InvalidFees))
}

func TestConcurrentStakes(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})
	stakers := []thor.Address{alice, bob, carol, dave}

	var g errgroup.Group
	for _, acc := range stakers {
		g.Go(func() error {
			for range 50 {
				if err := tp.Stake(acc, amount(10)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for range 20 {
			if _, err := tp.GetPendingReward(alice); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	assert.Equal(t, uint64(2000), tp.info().TotalStaked.Uint64())
	for _, acc := range stakers {
		staked, _ := tp.staked(acc)
		assert.Equal(t, uint64(500), staked)
	}
	assert.True(t, tp.audit().Conserved)
}

func TestAuditProgress(t *testing.T) {
	tp := newTestPool(t, 0, 0, Options{})
	require.NoError(t, tp.Stake(alice, amount(10)))
	require.NoError(t, tp.Stake(bob, amount(20)))

	var calls []int
	report, err := tp.Audit([]thor.Address{alice, bob, carol}, func(done int) { calls = append(calls, done) })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, calls)
	assert.Equal(t, 2, report.Stakers)
	assert.Equal(t, uint64(30), report.SumStaked.Uint64())
	assert.True(t, report.Conserved)

	partial, err := tp.Audit([]thor.Address{alice}, nil)
	require.NoError(t, err)
	assert.False(t, partial.Conserved)
}

// blockingSink holds every Record until released.
type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	recorder
}

func (b *blockingSink) Record(ev *Event) error {
	b.entered <- struct{}{}
	<-b.release
	return b.recorder.Record(ev)
}

func TestStalledSinkDoesNotBlockPool(t *testing.T) {
	sink := &blockingSink{entered: make(chan struct{}, 8), release: make(chan struct{})}
	tp := newTestPool(t, 0, 0, Options{Events: sink})

	staked := make(chan error, 1)
	go func() { staked <- tp.Stake(alice, amount(100)) }()
	<-sink.entered

	// the stake is committed and the pool is free while its event is stuck
	read := make(chan *uint256.Int, 1)
	go func() {
		staked, _, _ := tp.Staker(alice)
		read <- staked
	}()
	select {
	case v := <-read:
		assert.Equal(t, amount(100), v)
	case <-time.After(time.Second):
		t.Fatal("staker read blocked by event sink")
	}
	_, err := tp.GetPendingReward(bob)
	require.NoError(t, err)

	// a second writer commits too and its event queues behind the first
	bobDone := make(chan error, 1)
	go func() { bobDone <- tp.Stake(bob, amount(50)) }()
	require.Eventually(t, func() bool {
		info, err := tp.Info()
		return err == nil && info.TotalStaked.Uint64() == 150
	}, time.Second, 10*time.Millisecond)

	close(sink.release)
	require.NoError(t, <-staked)
	require.NoError(t, <-bobDone)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.events, 2)
	assert.Equal(t, alice, sink.events[0].Account)
	assert.Equal(t, bob, sink.events[1].Account)
	assert.Equal(t, uint64(150), sink.events[1].TotalStaked.Uint64())
}

type failingSink struct{}

func (failingSink) Record(*Event) error { return errors.New("disk full") }

func TestAuditLedgerAccountsWithoutEvents(t *testing.T) {
	tp := newTestPool(t, 2, 2, Options{Events: failingSink{}})
	require.NoError(t, tp.Stake(alice, amount(500)))
	require.NoError(t, tp.Stake(bob, amount(750)))
	require.NoError(t, tp.DonateToPool(owner, amount(1000)))
	require.NoError(t, tp.Unstake(alice, amount(490)))

	accounts, err := tp.Accounts()
	require.NoError(t, err)
	// the donor holds no stake and never gets a record
	assert.Equal(t, []thor.Address{alice, bob}, accounts)

	report, err := tp.Audit(accounts, nil)
	require.NoError(t, err)
	assert.True(t, report.Conserved)
	assert.True(t, report.Solvent)
	assert.Equal(t, 2, report.Stakers)
}
