// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/stackedmap"
	"github.com/vechain/stakepool/thor"
)

const storageBucket = kv.Bucket("s")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, thor.AddressLength+32)
	return append(append(b, k.addr[:]...), k.key[:]...)
}

// State holds revertable changes of storage slots on top of a kv store.
// It's not safe for concurrent use.
type State struct {
	store kv.Store
	cache *cache.LRU
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object. cacheSize is the number of slots kept in the read cache.
func New(db kv.Store, cacheSize int) (*State, error) {
	c, err := cache.NewLRU(cacheSize)
	if err != nil {
		return nil, &Error{err}
	}
	s := &State{
		store: storageBucket.NewStore(db),
		cache: c,
	}
	s.reset()
	return s, nil
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.cacheGetter)
	s.sm.Push()
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key storageKey) (rlp.RawValue, bool, error) {
	v, err := s.cache.GetOrLoad(key, func(any) (any, error) {
		metricStorageCounter().AddWithLabel(1, map[string]string{"op": "load"})
		raw, err := s.store.Get(key.bytes())
		if err != nil {
			if s.store.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(raw), nil
	})
	if err != nil {
		return nil, false, err
	}
	raw := v.(rlp.RawValue)
	return raw, len(raw) > 0, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw. An empty value clears the slot.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Commit writes all pending changes into the underlying store atomically,
// and returns the number of slots written.
func (s *State) Commit() (int, error) {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(key storageKey, value rlp.RawValue) bool {
		changes[key] = value
		return true
	})
	if len(changes) == 0 {
		return 0, nil
	}

	bulk := s.store.Bulk()
	for k, v := range changes {
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.bytes())
		} else {
			err = bulk.Put(k.bytes(), v)
		}
		if err != nil {
			return 0, &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return 0, &Error{err}
	}

	for k, v := range changes {
		s.cache.Add(k, v)
	}
	s.reset()
	metricStorageCounter().AddWithLabel(int64(len(changes)), map[string]string{"op": "commit"})
	return len(changes), nil
}

// CacheStats returns the hit/miss counters of the read cache.
func (s *State) CacheStats() *cache.Stats {
	return s.cache.Stats()
}
