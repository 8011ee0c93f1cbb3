// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/meshstake/kv"
)

type Key interface {
	Bytes() []byte
}

// StringKey keys a mapping by a string, e.g. a validator operator address.
type StringKey string

func (k StringKey) Bytes() []byte { return []byte(k) }

// Uint64Key keys a mapping by a big endian uint64, so keys sort numerically.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

// Mapping is a typed key/value abstraction over a Context. Values are RLP
// encoded and keyed by prefix ‖ key.
type Mapping[K Key, V any] struct {
	context *Context
	prefix  []byte
}

func NewMapping[K Key, V any](context *Context, prefix string) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, prefix: []byte(prefix)}
}

func (m *Mapping[K, V]) key(key K) []byte {
	return append(append([]byte(nil), m.prefix...), key.Bytes()...)
}

// Get returns the value stored under key. Absent keys yield the zero value,
// or a freshly allocated value when V is a pointer type.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	raw, err := m.context.Get(m.key(key))
	if err != nil {
		return value, err
	}
	return decode[V](raw)
}

// Exists reports whether key holds a value.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	return m.context.Has(m.key(key))
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.context.Put(m.key(key), raw)
	return nil
}

func (m *Mapping[K, V]) Delete(key K) {
	m.context.Delete(m.key(key))
}

// Scan visits entries whose key, relative to the mapping, lies in r. The key
// passed to fn has the mapping prefix stripped.
func (m *Mapping[K, V]) Scan(r kv.Range, fn func(key []byte, value V) (bool, error)) error {
	abs := kv.Range{Start: append(append([]byte(nil), m.prefix...), r.Start...)}
	if len(r.Limit) == 0 {
		abs.Limit = kv.PrefixRange(m.prefix).Limit
	} else {
		abs.Limit = append(append([]byte(nil), m.prefix...), r.Limit...)
	}
	return m.context.Iterate(abs, func(key, raw []byte) (bool, error) {
		value, err := decode[V](raw)
		if err != nil {
			return false, err
		}
		return fn(key[len(m.prefix):], value)
	})
}

// Raw is a single typed value stored under a fixed key.
type Raw[V any] struct {
	context *Context
	key     []byte
}

func NewRaw[V any](context *Context, key string) *Raw[V] {
	return &Raw[V]{context: context, key: []byte(key)}
}

func (r *Raw[V]) Get() (value V, err error) {
	raw, err := r.context.Get(r.key)
	if err != nil {
		return value, err
	}
	return decode[V](raw)
}

func (r *Raw[V]) Set(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	r.context.Put(r.key, raw)
	return nil
}

func decode[V any](raw []byte) (value V, err error) {
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	if len(raw) == 0 {
		return value, nil
	}
	err = rlp.DecodeBytes(raw, &value)
	return value, err
}
