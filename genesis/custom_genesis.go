// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"os"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/builtin/pool/fees"
	"github.com/vechain/stakepool/thor"
)

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	Name                string           `yaml:"name"`
	Owner               thor.Address     `yaml:"owner"`
	StakingFeeBps       uint64           `yaml:"stakingFeeBps"`
	UnstakingFeeBps     uint64           `yaml:"unstakingFeeBps"`
	MaxFeeBps           uint64           `yaml:"maxFeeBps"`
	FeePolicy           fees.Disposition `yaml:"feePolicy"`
	AllowExitWhenPaused bool             `yaml:"allowExitWhenPaused"`
	Accounts            []Account        `yaml:"accounts"`
}

// Account is the account will set to the genesis state
type Account struct {
	Address   thor.Address `yaml:"address"`
	Balance   *uint256.Int `yaml:"balance"`
	Allowance *uint256.Int `yaml:"allowance"`
}

// LoadCustomGenesis reads a yaml genesis file.
func LoadCustomGenesis(path string) (*CustomGenesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return ParseCustomGenesis(data)
}

// ParseCustomGenesis decodes a yaml genesis, rejecting unknown fields.
func ParseCustomGenesis(data []byte) (*CustomGenesis, error) {
	var gen CustomGenesis
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &gen, nil
}

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if gen.Owner.IsZero() {
		return nil, errors.New("owner must be set")
	}
	maxFeeBps := gen.MaxFeeBps
	if maxFeeBps == 0 {
		maxFeeBps = thor.DefaultMaxFeeBps
	}
	if err := fees.Validate(gen.StakingFeeBps, gen.UnstakingFeeBps, maxFeeBps); err != nil {
		return nil, err
	}
	if maxFeeBps > thor.FeeDenominator {
		return nil, errors.Errorf("maxFeeBps must not exceed %d", thor.FeeDenominator)
	}

	seen := make(map[thor.Address]bool, len(gen.Accounts))
	for _, a := range gen.Accounts {
		if a.Address.IsZero() {
			return nil, errors.New("account address must be set")
		}
		if seen[a.Address] {
			return nil, errors.Errorf("%v: duplicated account", a.Address)
		}
		seen[a.Address] = true
		if a.Balance == nil || a.Balance.IsZero() {
			return nil, errors.Errorf("%v: balance must be a non-zero integer", a.Address)
		}
	}

	// canonical encoding identifies the genesis
	data, err := yaml.Marshal(gen)
	if err != nil {
		return nil, err
	}
	id := thor.Blake2b(data)

	builder := new(Builder).
		Owner(gen.Owner).
		Fees(gen.StakingFeeBps, gen.UnstakingFeeBps)
	for _, a := range gen.Accounts {
		builder.Alloc(a.Address, a.Balance, a.Allowance)
	}

	name := gen.Name
	if name == "" {
		name = "custom"
	}
	return NewGenesis(name, id, pool.Options{
		MaxFeeBps:           maxFeeBps,
		FeePolicy:           gen.FeePolicy,
		AllowExitWhenPaused: gen.AllowExitWhenPaused,
	}, builder), nil
}
