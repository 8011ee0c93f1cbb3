// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"

	"github.com/vechain/meshstake/kv"
	"github.com/vechain/meshstake/stackedmap"
)

// Context is a unit of work over a kv store. Reads see the context's own
// writes; nothing reaches the store until Commit, which writes every change in
// one bulk. A context is not safe for concurrent use.
type Context struct {
	store   kv.Store
	overlay *stackedmap.StackedMap[string, []byte]
}

func NewContext(store kv.Store) *Context {
	c := &Context{store: store}
	c.overlay = stackedmap.New(func(key string) ([]byte, bool, error) {
		val, err := store.Get([]byte(key))
		if err != nil {
			if store.IsNotFound(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return val, true, nil
	})
	return c
}

// Get returns the value of key, or nil when absent.
func (c *Context) Get(key []byte) ([]byte, error) {
	val, _, err := c.overlay.Get(string(key))
	return val, err
}

// Has reports whether key holds a value.
func (c *Context) Has(key []byte) (bool, error) {
	val, err := c.Get(key)
	return val != nil, err
}

// Put sets key to val.
func (c *Context) Put(key, val []byte) {
	if val == nil {
		val = []byte{}
	}
	c.overlay.Put(string(key), val)
}

// Delete removes key.
func (c *Context) Delete(key []byte) {
	c.overlay.Put(string(key), nil)
}

// Snapshot marks the current state. Revert to it with RevertTo.
func (c *Context) Snapshot() int {
	return c.overlay.Push()
}

// RevertTo drops every write made since the snapshot was taken.
func (c *Context) RevertTo(snapshot int) {
	c.overlay.PopTo(snapshot)
	if c.overlay.Depth() == 0 {
		c.overlay.Push()
	}
}

// Iterate visits the entries of r in ascending key order, merging pending
// writes with the store. Iteration stops when fn returns false or an error.
func (c *Context) Iterate(r kv.Range, fn func(key, val []byte) (bool, error)) error {
	pending := make(map[string][]byte)
	c.overlay.Journal(func(k string, v []byte) bool {
		if inRange(r, []byte(k)) {
			pending[k] = v
		}
		return true
	})
	keys := make([]string, 0, len(pending))
	for k := range pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	it := c.store.Iterate(r)
	defer it.Release()

	hasStored := it.Next()
	i := 0
	for hasStored || i < len(keys) {
		var key, val []byte
		if i < len(keys) && (!hasStored || keys[i] <= string(it.Key())) {
			key, val = []byte(keys[i]), pending[keys[i]]
			if hasStored && keys[i] == string(it.Key()) {
				hasStored = it.Next()
			}
			i++
		} else {
			key = append([]byte(nil), it.Key()...)
			val = append([]byte(nil), it.Value()...)
			hasStored = it.Next()
		}
		if val == nil {
			continue
		}
		more, err := fn(key, val)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return it.Error()
}

// Len returns the number of pending writes.
func (c *Context) Len() int {
	n := 0
	c.overlay.Journal(func(string, []byte) bool {
		n++
		return true
	})
	return n
}

// Commit writes all pending changes atomically and resets the context.
func (c *Context) Commit() error {
	bulk := c.store.Bulk()
	var err error
	c.overlay.Journal(func(k string, v []byte) bool {
		if v == nil {
			err = bulk.Delete([]byte(k))
		} else {
			err = bulk.Put([]byte(k), v)
		}
		return err == nil
	})
	if err != nil {
		return errors.Wrap(err, "stage write")
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "write bulk")
	}
	c.RevertTo(0)
	return nil
}

func inRange(r kv.Range, key []byte) bool {
	if bytes.Compare(key, r.Start) < 0 {
		return false
	}
	return len(r.Limit) == 0 || bytes.Compare(key, r.Limit) < 0
}
