// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.NoError(t, err)
	assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())

	noPrefix, err := ParseAddress("7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.NoError(t, err)
	assert.Equal(t, addr, noPrefix)

	_, err = ParseAddress("0x1234")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseAddress("1x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.EqualError(t, err, "invalid prefix")

	_, err = ParseAddress("0xzz67d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.Error(t, err)

	assert.Panics(t, func() { MustParseAddress("bad") })
}

func TestAddressTextEncoding(t *testing.T) {
	addr := BytesToAddress([]byte("alice"))

	data, err := json.Marshal(map[string]Address{"a": addr})
	assert.NoError(t, err)
	assert.Equal(t, `{"a":"`+addr.String()+`"}`, string(data))

	var decoded map[string]Address
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded["a"])

	var fromYAML struct {
		Owner Address `yaml:"owner"`
	}
	assert.NoError(t, yaml.Unmarshal([]byte("owner: \""+addr.String()+"\""), &fromYAML))
	assert.Equal(t, addr, fromYAML.Owner)
}

func TestBuiltinAddresses(t *testing.T) {
	assert.NotEqual(t, PoolAddress, TokenAddress)
	assert.False(t, PoolAddress.IsZero())
	assert.True(t, Address{}.IsZero())
}

func TestBlake2b(t *testing.T) {
	one := Blake2b([]byte("ab"))
	two := Blake2b([]byte("a"), []byte("b"))
	assert.Equal(t, one, two)
	assert.False(t, one.IsZero())
	assert.Equal(t, one, BytesToBytes32(one.Bytes()))
}
