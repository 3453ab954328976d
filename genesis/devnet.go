// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/thor"
)

// DevAccount account for development.
type DevAccount struct {
	Address    thor.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for dev mode. The first one owns
// the pool.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{thor.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevBalance is the balance and pool allowance of every dev account, 1M tokens of 18 decimals.
var DevBalance = uint256.MustFromDecimal("1000000000000000000000000")

// NewDevnet create genesis for dev mode.
func NewDevnet() *Genesis {
	gen := &CustomGenesis{
		Name:            "devnet",
		Owner:           DevAccounts()[0].Address,
		StakingFeeBps:   2,
		UnstakingFeeBps: 2,
	}
	for _, a := range DevAccounts() {
		gen.Accounts = append(gen.Accounts, Account{
			Address:   a.Address,
			Balance:   new(uint256.Int).Set(DevBalance),
			Allowance: new(uint256.Int).Set(DevBalance),
		})
	}
	g, err := NewCustomNet(gen)
	if err != nil {
		panic(err)
	}
	return g
}
