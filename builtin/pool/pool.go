// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements a token staking pool that distributes donations
// to stakers pro rata, in constant time per operation.
//
// Every staker keeps a checkpoint (round) of the pool-wide reward index taken
// at its last settlement. Donations only raise the index, and a staker's
// pending reward is its principal times the index growth since its round.
// Each mutating operation settles the caller first, then changes principal.
package pool

import (
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/pool/accumulator"
	"github.com/vechain/stakepool/builtin/pool/fees"
	"github.com/vechain/stakepool/builtin/pool/ledger"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var logger = log.WithContext("pkg", "pool")

var (
	slotStakingFee   = thor.BytesToBytes32([]byte("staking-fee-bps"))
	slotUnstakingFee = thor.BytesToBytes32([]byte("unstaking-fee-bps"))
)

// Pool implements the staking pool. All methods are safe for concurrent use,
// operations are serialized and each one commits entirely or not at all.
type Pool struct {
	mu     sync.Mutex
	addr   thor.Address
	state  *state.State
	token  Token
	auth   Authority
	pauser Pauser
	opts   Options

	accumulator  *accumulator.Service
	ledger       *ledger.Service
	stakingFee   *solidity.Uint64
	unstakingFee *solidity.Uint64

	emitMu   sync.Mutex
	outboxMu sync.Mutex
	outbox   []*Event // committed, not yet recorded
}

// New binds a pool to the state at addr. Token, authority and pauser must
// live in the same state so their changes commit together with the pool's.
func New(addr thor.Address, st *state.State, token Token, auth Authority, pauser Pauser, opts Options) *Pool {
	if opts.MaxFeeBps == 0 {
		opts.MaxFeeBps = thor.DefaultMaxFeeBps
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	sctx := solidity.NewContext(addr, st)
	return &Pool{
		addr:         addr,
		state:        st,
		token:        token,
		auth:         auth,
		pauser:       pauser,
		opts:         opts,
		accumulator:  accumulator.New(sctx),
		ledger:       ledger.New(sctx),
		stakingFee:   solidity.NewUint64(sctx, slotStakingFee),
		unstakingFee: solidity.NewUint64(sctx, slotUnstakingFee),
	}
}

// Deploy creates a pool with its initial fee rates.
func Deploy(
	addr thor.Address,
	st *state.State,
	token Token,
	auth Authority,
	pauser Pauser,
	stakingFeeBps uint64,
	unstakingFeeBps uint64,
	opts Options,
) (*Pool, error) {
	p := New(addr, st, token, auth, pauser, opts)
	if err := p.Exec(func() error { return p.InitFees(stakingFeeBps, unstakingFeeBps) }); err != nil {
		return nil, err
	}
	logger.Info("deployed pool", "address", addr, "stakingFeeBps", stakingFeeBps, "unstakingFeeBps", unstakingFeeBps)
	return p, nil
}

// InitFees validates and stores the initial fee rates without access
// control. It neither locks nor commits, run it inside Exec.
func (p *Pool) InitFees(stakingFeeBps, unstakingFeeBps uint64) error {
	if err := fees.Validate(stakingFeeBps, unstakingFeeBps, p.opts.MaxFeeBps); err != nil {
		return err
	}
	if err := p.stakingFee.Set(stakingFeeBps); err != nil {
		return err
	}
	return p.unstakingFee.Set(unstakingFeeBps)
}

// Address returns the account holding the pool's tokens.
func (p *Pool) Address() thor.Address {
	return p.addr
}

// Exec runs fn serialized with pool operations, committing its state
// changes only if it succeeds.
func (p *Pool) Exec(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exec(fn)
}

func (p *Pool) exec(fn func() error) error {
	cp := p.state.NewCheckpoint()
	if err := fn(); err != nil {
		p.state.RevertTo(cp)
		return err
	}
	if _, err := p.state.Commit(); err != nil {
		p.state.RevertTo(cp)
		return errors.Wrap(err, "commit")
	}
	return nil
}

// run executes one operation and publishes its event once committed, after
// the pool lock is released.
func (p *Pool) run(kind EventKind, fn func() (*Event, error)) error {
	if err := p.commit(kind, fn); err != nil {
		return err
	}
	p.flush()
	return nil
}

func (p *Pool) commit(kind EventKind, fn func() (*Event, error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	var ev *Event
	err := p.exec(func() (err error) {
		ev, err = fn()
		return
	})
	metricOpsCount().AddWithLabel(1, map[string]string{"op": string(kind), "result": resultLabel(err)})
	metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": string(kind)})
	if err != nil {
		return err
	}
	p.stamp(ev)

	p.outboxMu.Lock()
	p.outbox = append(p.outbox, ev)
	p.outboxMu.Unlock()
	return nil
}

// stamp fills in the pool-wide figures. Called with the pool lock held.
func (p *Pool) stamp(ev *Event) {
	ev.Time = p.opts.Clock()
	acc, err := p.accumulator.AccRewardPerShare()
	if err != nil {
		logger.Warn("failed to read accumulator", "error", err)
		return
	}
	total, err := p.accumulator.TotalStaked()
	if err != nil {
		logger.Warn("failed to read total staked", "error", err)
		return
	}
	ev.AccRewardPerShare = acc
	ev.TotalStaked = total
	metricTotalStaked().Set(gaugeValue(total))
}

// flush records queued events in commit order. Whoever holds emitMu drains
// the events queued by others too, so every event queued before a flush call
// is recorded when it returns.
func (p *Pool) flush() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	for {
		p.outboxMu.Lock()
		pending := p.outbox
		p.outbox = nil
		p.outboxMu.Unlock()
		if len(pending) == 0 {
			return
		}
		if p.opts.Events == nil {
			continue
		}
		for _, ev := range pending {
			if err := p.opts.Events.Record(ev); err != nil {
				logger.Warn("failed to record event", "kind", ev.Kind, "account", ev.Account, "error", err)
			}
		}
	}
}

func (p *Pool) onlyOwner(caller thor.Address) error {
	ok, err := p.auth.IsOwner(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.Unauthorized, "unauthorized: caller is not the owner")
	}
	return nil
}

// whenNotPaused guards mutations. Exits may pass if the policy allows it.
func (p *Pool) whenNotPaused(exit bool) error {
	if exit && p.opts.AllowExitWhenPaused {
		return nil
	}
	paused, err := p.pauser.IsPaused()
	if err != nil {
		return err
	}
	if paused {
		return reverts.New(reverts.Paused, "Pausable: paused")
	}
	return nil
}

func positive(amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return reverts.New(reverts.InvalidAmount, "invalid amount: must be positive")
	}
	return nil
}

// settle pays out what addr is owed and checkpoints it at the current index.
func (p *Pool) settle(addr thor.Address) (*uint256.Int, *ledger.Staker, error) {
	acc, err := p.accumulator.AccRewardPerShare()
	if err != nil {
		return nil, nil, err
	}
	owed, staker, err := p.ledger.Settle(addr, acc)
	if err != nil {
		return nil, nil, err
	}
	if !owed.IsZero() {
		if err := p.token.Transfer(p.addr, addr, owed); err != nil {
			return nil, nil, errors.WithMessage(err, "pay reward")
		}
	}
	return owed, staker, nil
}

// disposeFee applies the fee policy. excluded is the principal of the payer,
// which never earns from its own fee.
func (p *Pool) disposeFee(fee, excluded *uint256.Int) error {
	if fee.IsZero() {
		return nil
	}
	if p.opts.FeePolicy == fees.Distribute {
		total, err := p.accumulator.TotalStaked()
		if err != nil {
			return err
		}
		shares := new(uint256.Int).Sub(total, excluded)
		if !shares.IsZero() {
			_, err := p.accumulator.Distribute(fee, shares)
			return err
		}
	}
	return p.accumulator.RetainFee(fee)
}

// checkpoint stores staker at the current index.
func (p *Pool) checkpoint(addr thor.Address, staker *ledger.Staker) error {
	acc, err := p.accumulator.AccRewardPerShare()
	if err != nil {
		return err
	}
	staker.Round = acc
	return p.ledger.Set(addr, staker)
}

//
// Getters - no state change
//

// GetPendingReward returns the reward addr would receive if it settled now.
// It is never blocked by pause.
func (p *Pool) GetPendingReward(addr thor.Address) (*uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, err := p.accumulator.AccRewardPerShare()
	if err != nil {
		return nil, err
	}
	staker, err := p.ledger.Get(addr)
	if err != nil {
		return nil, err
	}
	return ledger.PendingReward(staker, acc)
}

// Staker returns the principal and checkpoint of addr.
func (p *Pool) Staker(addr thor.Address) (stakedTokens *uint256.Int, round *uint256.Int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	staker, err := p.ledger.Get(addr)
	if err != nil {
		return nil, nil, err
	}
	return staker.StakedTokens, staker.Round, nil
}

// Position reads the principal, checkpoint and pending reward of addr in
// one consistent snapshot.
func (p *Pool) Position(addr thor.Address) (*Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, err := p.accumulator.AccRewardPerShare()
	if err != nil {
		return nil, err
	}
	staker, err := p.ledger.Get(addr)
	if err != nil {
		return nil, err
	}
	pending, err := ledger.PendingReward(staker, acc)
	if err != nil {
		return nil, err
	}
	return &Position{
		StakedTokens:  staker.StakedTokens,
		Round:         staker.Round,
		PendingReward: pending,
	}, nil
}

// Fees returns the current fee rates in bps.
func (p *Pool) Fees() (stakingFeeBps, unstakingFeeBps uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fees()
}

func (p *Pool) fees() (uint64, uint64, error) {
	s, err := p.stakingFee.Get()
	if err != nil {
		return 0, 0, err
	}
	u, err := p.unstakingFee.Get()
	if err != nil {
		return 0, 0, err
	}
	return s, u, nil
}

// Info returns a snapshot of pool-wide values.
func (p *Pool) Info() (*Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	info := &Info{
		MaxFeeBps:           p.opts.MaxFeeBps,
		FeePolicy:           p.opts.FeePolicy,
		AllowExitWhenPaused: p.opts.AllowExitWhenPaused,
	}
	var err error
	if info.Owner, err = p.auth.Owner(); err != nil {
		return nil, err
	}
	if info.TotalStaked, err = p.accumulator.TotalStaked(); err != nil {
		return nil, err
	}
	if info.AccRewardPerShare, err = p.accumulator.AccRewardPerShare(); err != nil {
		return nil, err
	}
	if info.RetainedFees, err = p.accumulator.RetainedFees(); err != nil {
		return nil, err
	}
	if info.Balance, err = p.token.BalanceOf(p.addr); err != nil {
		return nil, err
	}
	if info.StakingFeeBps, info.UnstakingFeeBps, err = p.fees(); err != nil {
		return nil, err
	}
	if info.Paused, err = p.pauser.IsPaused(); err != nil {
		return nil, err
	}
	return info, nil
}

// Audit cross-checks the given accounts against the pool totals. When
// accounts lists every staker, Conserved must hold. progress, if set, is
// called after each account.
func (p *Pool) Audit(accounts []thor.Address, progress func(done int)) (*AuditReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audit(accounts, progress)
}

// Accounts returns every account the ledger has ever recorded.
func (p *Pool) Accounts() ([]thor.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Accounts()
}

func (p *Pool) audit(accounts []thor.Address, progress func(done int)) (*AuditReport, error) {
	acc, err := p.accumulator.AccRewardPerShare()
	if err != nil {
		return nil, err
	}
	report := &AuditReport{
		SumStaked:  new(uint256.Int),
		SumPending: new(uint256.Int),
	}
	for i, addr := range accounts {
		staker, err := p.ledger.Get(addr)
		if err != nil {
			return nil, errors.WithMessagef(err, "load staker %v", addr)
		}
		if !staker.StakedTokens.IsZero() {
			report.Stakers++
			pending, err := ledger.PendingReward(staker, acc)
			if err != nil {
				return nil, errors.WithMessagef(err, "pending reward of %v", addr)
			}
			report.SumStaked.Add(report.SumStaked, staker.StakedTokens)
			report.SumPending.Add(report.SumPending, pending)
		}
		if progress != nil {
			progress(i + 1)
		}
	}

	if report.TotalStaked, err = p.accumulator.TotalStaked(); err != nil {
		return nil, err
	}
	if report.RetainedFees, err = p.accumulator.RetainedFees(); err != nil {
		return nil, err
	}
	if report.Balance, err = p.token.BalanceOf(p.addr); err != nil {
		return nil, err
	}
	report.Conserved = report.SumStaked.Eq(report.TotalStaked)

	owed := new(uint256.Int).Add(report.TotalStaked, report.RetainedFees)
	owed.Add(owed, report.SumPending)
	report.Solvent = !report.Balance.Lt(owed)
	return report, nil
}

//
// Setters - state change
//

// Stake deposits amount on behalf of caller, who must have approved the pool
// to spend it. Pending reward is paid out first, then the staking fee is
// taken and the rest added to caller's principal.
func (p *Pool) Stake(caller thor.Address, amount *uint256.Int) error {
	logger.Debug("staking", "caller", caller, "amount", amount)

	err := p.run(EventStake, func() (*Event, error) {
		if err := p.whenNotPaused(false); err != nil {
			return nil, err
		}
		if err := positive(amount); err != nil {
			return nil, err
		}
		reward, staker, err := p.settle(caller)
		if err != nil {
			return nil, err
		}
		if err := p.token.TransferFrom(p.addr, caller, p.addr, amount); err != nil {
			return nil, err
		}
		feeBps, err := p.stakingFee.Get()
		if err != nil {
			return nil, err
		}
		net, fee := fees.Apply(amount, feeBps)
		if err := p.disposeFee(fee, staker.StakedTokens); err != nil {
			return nil, err
		}
		if err := p.accumulator.AddStake(net); err != nil {
			return nil, err
		}
		staker.StakedTokens = new(uint256.Int).Add(staker.StakedTokens, net)
		if err := p.checkpoint(caller, staker); err != nil {
			return nil, err
		}
		return &Event{
			Kind:    EventStake,
			Account: caller,
			Amount:  new(uint256.Int).Set(amount),
			Net:     net,
			Fee:     fee,
			Reward:  reward,
		}, nil
	})
	if err != nil {
		logger.Info("stake failed", "caller", caller, "error", err)
		return err
	}

	logger.Info("staked", "caller", caller, "amount", amount)
	return nil
}

// Unstake withdraws amount of caller's principal. Pending reward is paid out
// first, principal drops by the full amount and the amount net of the
// unstaking fee is transferred back.
func (p *Pool) Unstake(caller thor.Address, amount *uint256.Int) error {
	logger.Debug("unstaking", "caller", caller, "amount", amount)

	err := p.run(EventUnstake, func() (*Event, error) {
		if err := p.whenNotPaused(true); err != nil {
			return nil, err
		}
		if err := positive(amount); err != nil {
			return nil, err
		}
		current, err := p.ledger.Get(caller)
		if err != nil {
			return nil, err
		}
		if amount.Gt(current.StakedTokens) {
			return nil, reverts.Newf(reverts.InvalidAmount,
				"invalid amount: %v exceeds staked tokens %v", amount, current.StakedTokens)
		}

		reward, staker, err := p.settle(caller)
		if err != nil {
			return nil, err
		}
		feeBps, err := p.unstakingFee.Get()
		if err != nil {
			return nil, err
		}
		net, fee := fees.Apply(amount, feeBps)
		if err := p.accumulator.SubStake(amount); err != nil {
			return nil, err
		}
		staker.StakedTokens = new(uint256.Int).Sub(staker.StakedTokens, amount)
		if err := p.disposeFee(fee, staker.StakedTokens); err != nil {
			return nil, err
		}
		if err := p.checkpoint(caller, staker); err != nil {
			return nil, err
		}
		if err := p.token.Transfer(p.addr, caller, net); err != nil {
			return nil, err
		}
		return &Event{
			Kind:    EventUnstake,
			Account: caller,
			Amount:  new(uint256.Int).Set(amount),
			Net:     net,
			Fee:     fee,
			Reward:  reward,
		}, nil
	})
	if err != nil {
		logger.Info("unstake failed", "caller", caller, "error", err)
		return err
	}

	logger.Info("unstaked", "caller", caller, "amount", amount)
	return nil
}

// ClaimReward pays out caller's pending reward without touching principal.
func (p *Pool) ClaimReward(caller thor.Address) (*uint256.Int, error) {
	logger.Debug("claiming reward", "caller", caller)

	var claimed *uint256.Int
	err := p.run(EventClaim, func() (*Event, error) {
		if err := p.whenNotPaused(true); err != nil {
			return nil, err
		}
		acc, err := p.accumulator.AccRewardPerShare()
		if err != nil {
			return nil, err
		}
		current, err := p.ledger.Get(caller)
		if err != nil {
			return nil, err
		}
		pending, err := ledger.PendingReward(current, acc)
		if err != nil {
			return nil, err
		}
		if pending.IsZero() {
			return nil, reverts.New(reverts.InvalidRewardClaim, "invalid reward claim: nothing pending")
		}

		reward, _, err := p.settle(caller)
		if err != nil {
			return nil, err
		}
		claimed = reward
		return &Event{Kind: EventClaim, Account: caller, Reward: reward}, nil
	})
	if err != nil {
		logger.Info("claim failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("claimed reward", "caller", caller, "reward", claimed)
	return claimed, nil
}

// DonateToPool distributes amount over the current stakers pro rata. Only the
// owner may donate. The donor never earns from its own donation: a donor
// without stake ends with a zeroed record, a donor with stake is settled and
// excluded from the distribution.
func (p *Pool) DonateToPool(caller thor.Address, amount *uint256.Int) error {
	logger.Debug("donating", "caller", caller, "amount", amount)

	err := p.run(EventDonate, func() (*Event, error) {
		if err := p.onlyOwner(caller); err != nil {
			return nil, err
		}
		if err := p.whenNotPaused(false); err != nil {
			return nil, err
		}
		if err := positive(amount); err != nil {
			return nil, err
		}
		current, err := p.ledger.Get(caller)
		if err != nil {
			return nil, err
		}
		total, err := p.accumulator.TotalStaked()
		if err != nil {
			return nil, err
		}
		shares := new(uint256.Int).Sub(total, current.StakedTokens)
		if shares.IsZero() {
			return nil, reverts.New(reverts.InvalidInject, "invalid inject: no stakers to receive it")
		}

		reward, staker, err := p.settle(caller)
		if err != nil {
			return nil, err
		}
		if err := p.token.TransferFrom(p.addr, caller, p.addr, amount); err != nil {
			return nil, err
		}
		if _, err := p.accumulator.Distribute(amount, shares); err != nil {
			return nil, err
		}
		if staker.StakedTokens.IsZero() {
			err = p.ledger.Set(caller, &ledger.Staker{StakedTokens: new(uint256.Int), Round: new(uint256.Int)})
		} else {
			err = p.checkpoint(caller, staker)
		}
		if err != nil {
			return nil, err
		}
		return &Event{
			Kind:    EventDonate,
			Account: caller,
			Amount:  new(uint256.Int).Set(amount),
			Reward:  reward,
		}, nil
	})
	if err != nil {
		logger.Info("donation failed", "caller", caller, "error", err)
		return err
	}

	logger.Info("donated", "caller", caller, "amount", amount)
	return nil
}

// SetFees replaces both fee rates. Only the owner may call it.
func (p *Pool) SetFees(caller thor.Address, stakingFeeBps, unstakingFeeBps uint64) error {
	logger.Debug("setting fees", "caller", caller, "staking", stakingFeeBps, "unstaking", unstakingFeeBps)

	err := p.run(EventFees, func() (*Event, error) {
		if err := p.onlyOwner(caller); err != nil {
			return nil, err
		}
		if err := fees.Validate(stakingFeeBps, unstakingFeeBps, p.opts.MaxFeeBps); err != nil {
			return nil, err
		}
		if err := p.stakingFee.Set(stakingFeeBps); err != nil {
			return nil, err
		}
		if err := p.unstakingFee.Set(unstakingFeeBps); err != nil {
			return nil, err
		}
		return &Event{
			Kind:            EventFees,
			Account:         caller,
			StakingFeeBps:   stakingFeeBps,
			UnstakingFeeBps: unstakingFeeBps,
		}, nil
	})
	if err != nil {
		logger.Info("set fees failed", "caller", caller, "error", err)
		return err
	}

	logger.Info("set fees", "staking", stakingFeeBps, "unstaking", unstakingFeeBps)
	return nil
}

// Pause blocks mutating operations. Only the owner may call it.
func (p *Pool) Pause(caller thor.Address) error {
	return p.toggle(caller, EventPause, p.pauser.Pause)
}

// Unpause lifts Pause. Only the owner may call it.
func (p *Pool) Unpause(caller thor.Address) error {
	return p.toggle(caller, EventUnpause, p.pauser.Unpause)
}

func (p *Pool) toggle(caller thor.Address, kind EventKind, fn func() error) error {
	err := p.run(kind, func() (*Event, error) {
		if err := p.onlyOwner(caller); err != nil {
			return nil, err
		}
		if err := fn(); err != nil {
			return nil, err
		}
		return &Event{Kind: kind, Account: caller}, nil
	})
	if err != nil {
		logger.Info(string(kind)+" failed", "caller", caller, "error", err)
		return err
	}
	logger.Info(string(kind), "caller", caller)
	return nil
}

// SweepFees transfers the retained fees to to. Only the owner may call it.
func (p *Pool) SweepFees(caller, to thor.Address) (*uint256.Int, error) {
	logger.Debug("sweeping fees", "caller", caller, "to", to)

	var swept *uint256.Int
	err := p.run(EventSweep, func() (*Event, error) {
		if err := p.onlyOwner(caller); err != nil {
			return nil, err
		}
		amount, err := p.accumulator.SweepFees()
		if err != nil {
			return nil, err
		}
		if amount.IsZero() {
			return nil, reverts.New(reverts.InvalidAmount, "invalid amount: no retained fees")
		}
		if err := p.token.Transfer(p.addr, to, amount); err != nil {
			return nil, err
		}
		swept = amount
		return &Event{Kind: EventSweep, Account: to, Amount: amount}, nil
	})
	if err != nil {
		logger.Info("sweep failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("swept fees", "to", to, "amount", swept)
	return swept, nil
}
