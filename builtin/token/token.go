// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible token the pool stakes and pays
// rewards in. It follows ERC20 semantics: balances, allowances, transfer,
// transferFrom and approve, plus an unrestricted mint used by genesis
// and development setups.
package token

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var logger = log.WithContext("pkg", "token")

var (
	slotBalances    = solidity.Slot("token.balances")
	slotAllowances  = solidity.Slot("token.allowances")
	slotTotalSupply = solidity.Slot("token.total-supply")
)

type allowanceKey [2 * thor.AddressLength]byte

func (k allowanceKey) Bytes() []byte { return k[:] }

func newAllowanceKey(owner, spender thor.Address) (k allowanceKey) {
	copy(k[:], owner[:])
	copy(k[thor.AddressLength:], spender[:])
	return
}

// Token implements the token ledger over state.
type Token struct {
	addr        thor.Address
	balances    *solidity.Mapping[thor.Address, *uint256.Int]
	allowances  *solidity.Mapping[allowanceKey, *uint256.Int]
	totalSupply *solidity.Uint256
}

// New create a new instance.
func New(addr thor.Address, st *state.State) *Token {
	sctx := solidity.NewContext(addr, st)
	return &Token{
		addr:        addr,
		balances:    solidity.NewMapping[thor.Address, *uint256.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *uint256.Int](sctx, slotAllowances),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
	}
}

// Address returns the account holding the token state.
func (t *Token) Address() thor.Address {
	return t.addr
}

//
// Getters - no state change
//

func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) BalanceOf(addr thor.Address) (*uint256.Int, error) {
	return t.balances.Get(addr)
}

func (t *Token) Allowance(owner, spender thor.Address) (*uint256.Int, error) {
	return t.allowances.Get(newAllowanceKey(owner, spender))
}

//
// Setters - state change
//

// Approve sets the amount spender may move out of owner's balance.
func (t *Token) Approve(owner, spender thor.Address, amount *uint256.Int) error {
	logger.Debug("approve", "owner", owner, "spender", spender, "amount", amount)
	return setUint(t.allowances, newAllowanceKey(owner, spender), amount)
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to thor.Address, amount *uint256.Int) error {
	if err := t.transfer(from, to, amount); err != nil {
		logger.Debug("transfer failed", "from", from, "to", to, "amount", amount, "error", err)
		return err
	}
	return nil
}

// TransferFrom moves amount from an account on behalf of spender, consuming
// spender's allowance.
func (t *Token) TransferFrom(spender, from, to thor.Address, amount *uint256.Int) error {
	key := newAllowanceKey(from, spender)
	allowance, err := t.allowances.Get(key)
	if err != nil {
		return err
	}
	if allowance.Lt(amount) {
		logger.Debug("transferFrom failed", "spender", spender, "from", from, "allowance", allowance, "amount", amount)
		return reverts.New(reverts.InsufficientAllow, "ERC20: insufficient allowance")
	}
	balance, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return reverts.New(reverts.InsufficientBalance, "ERC20: transfer amount exceeds balance")
	}

	if err := setUint(t.allowances, key, allowance.Sub(allowance, amount)); err != nil {
		return err
	}
	return t.transfer(from, to, amount)
}

// Mint creates amount new tokens owned by to.
func (t *Token) Mint(to thor.Address, amount *uint256.Int) error {
	logger.Debug("mint", "to", to, "amount", amount)

	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	balance, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	if _, overflow := balance.AddOverflow(balance, amount); overflow {
		return solidity.ErrOverflow
	}
	return setUint(t.balances, to, balance)
}

func (t *Token) transfer(from, to thor.Address, amount *uint256.Int) error {
	fromBalance, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if fromBalance.Lt(amount) {
		return reverts.New(reverts.InsufficientBalance, "ERC20: transfer amount exceeds balance")
	}
	if from == to || amount.IsZero() {
		return nil
	}
	toBalance, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	if _, overflow := toBalance.AddOverflow(toBalance, amount); overflow {
		return solidity.ErrOverflow
	}

	if err := setUint(t.balances, from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	return setUint(t.balances, to, toBalance)
}

func setUint[K solidity.Key](m *solidity.Mapping[K, *uint256.Int], key K, value *uint256.Int) error {
	if value.IsZero() {
		m.Delete(key)
		return nil
	}
	return m.Set(key, value)
}
