// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/meshstake/kv"
	"github.com/vechain/meshstake/lvldb"
)

type record struct {
	Name   string
	Amount uint256.Int
}

func newStore(t *testing.T) kv.Store {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return kv.Bucket("t/").NewStore(db)
}

func collect(t *testing.T, ctx *Context, r kv.Range) []string {
	var keys []string
	require.NoError(t, ctx.Iterate(r, func(key, _ []byte) (bool, error) {
		keys = append(keys, string(key))
		return true, nil
	}))
	return keys
}

func TestContextCommit(t *testing.T) {
	store := newStore(t)
	ctx := NewContext(store)

	ctx.Put([]byte("a"), []byte("1"))
	val, err := ctx.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)

	has, err := store.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has, "nothing reaches the store before commit")

	require.NoError(t, ctx.Commit())
	got, err := store.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
	assert.Equal(t, 0, ctx.Len())

	ctx = NewContext(store)
	ctx.Delete([]byte("a"))
	has, err = ctx.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
	require.NoError(t, ctx.Commit())

	has, err = store.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestContextDiscard(t *testing.T) {
	store := newStore(t)
	ctx := NewContext(store)
	ctx.Put([]byte("a"), []byte("1"))
	// dropping an uncommitted context leaves the store untouched
	ctx = NewContext(store)
	val, err := ctx.Get([]byte("a"))
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestContextSnapshot(t *testing.T) {
	ctx := NewContext(newStore(t))
	ctx.Put([]byte("a"), []byte("1"))
	snap := ctx.Snapshot()
	ctx.Put([]byte("a"), []byte("2"))
	ctx.Put([]byte("b"), []byte("3"))
	ctx.RevertTo(snap)

	val, err := ctx.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
	val, err = ctx.Get([]byte("b"))
	require.NoError(t, err)
	assert.Nil(t, val)

	ctx.RevertTo(0)
	assert.Equal(t, 0, ctx.Len())
	ctx.Put([]byte("c"), []byte("4"))
	assert.Equal(t, 1, ctx.Len())
}

func TestContextIterateMerges(t *testing.T) {
	store := newStore(t)
	for _, k := range []string{"k1", "k3", "k5", "z"} {
		require.NoError(t, store.Put([]byte(k), []byte(k)))
	}

	ctx := NewContext(store)
	ctx.Put([]byte("k2"), []byte("new"))
	ctx.Put([]byte("k3"), []byte("over"))
	ctx.Delete([]byte("k5"))
	ctx.Put([]byte("k6"), []byte("new"))

	assert.Equal(t, []string{"k1", "k2", "k3", "k6"}, collect(t, ctx, kv.PrefixRange([]byte("k"))))
	assert.Equal(t, []string{"k3", "k6"}, collect(t, ctx, kv.Range{Start: []byte("k3"), Limit: []byte("k7")}))

	var vals []string
	require.NoError(t, ctx.Iterate(kv.PrefixRange([]byte("k")), func(_, val []byte) (bool, error) {
		vals = append(vals, string(val))
		return len(vals) < 3, nil
	}))
	assert.Equal(t, []string{"k1", "new", "over"}, vals)
}

func TestContextIterateCommitted(t *testing.T) {
	store := newStore(t)
	ctx := NewContext(store)
	ctx.Put([]byte("a"), []byte("1"))
	ctx.Put([]byte("c"), []byte("3"))
	require.NoError(t, ctx.Commit())

	// a fresh context has no pending writes
	ctx = NewContext(store)
	assert.Equal(t, []string{"a", "c"}, collect(t, ctx, kv.Range{}))

	// pending writes end before the stored tail
	ctx.Put([]byte("b"), []byte("2"))
	assert.Equal(t, []string{"a", "b", "c"}, collect(t, ctx, kv.Range{}))
}

func TestMapping(t *testing.T) {
	ctx := NewContext(newStore(t))
	m := NewMapping[StringKey, *record](ctx, "r/")

	empty, err := m.Get("missing")
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.True(t, empty.Amount.IsZero())

	exists, err := m.Exists("alice")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.Set("alice", &record{Name: "alice", Amount: *uint256.NewInt(10)}))
	require.NoError(t, m.Set("bob", &record{Name: "bob", Amount: *uint256.NewInt(20)}))
	require.NoError(t, m.Set("carol", &record{Name: "carol", Amount: *uint256.NewInt(30)}))

	got, err := m.Get("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(20), got.Amount.Uint64())

	m.Delete("carol")

	var names []string
	require.NoError(t, m.Scan(kv.Range{}, func(key []byte, value *record) (bool, error) {
		assert.Equal(t, value.Name, string(key))
		names = append(names, value.Name)
		return true, nil
	}))
	assert.Equal(t, []string{"alice", "bob"}, names)

	names = nil
	require.NoError(t, m.Scan(kv.Range{Start: []byte("b")}, func(key []byte, value *record) (bool, error) {
		names = append(names, value.Name)
		return true, nil
	}))
	assert.Equal(t, []string{"bob"}, names)
}

func TestRawAndUint64Key(t *testing.T) {
	ctx := NewContext(newStore(t))
	counter := NewRaw[uint64](ctx, "counter")

	v, err := counter.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
	require.NoError(t, counter.Set(42))
	v, err = counter.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	m := NewMapping[Uint64Key, string](ctx, "n/")
	for _, n := range []uint64{256, 2, 17} {
		require.NoError(t, m.Set(Uint64Key(n), "x"))
	}
	var order []byte
	require.NoError(t, m.Scan(kv.Range{}, func(key []byte, _ string) (bool, error) {
		order = append(order, key[7])
		return true, nil
	}))
	assert.Equal(t, []byte{2, 17, 0}, order)
}
