// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txs

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/meshstake/lvldb"
	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/staker/reverts"
	"github.com/vechain/meshstake/staker/storage"
)

var (
	alice = mesh.BytesToAddress([]byte("alice"))
	bob   = mesh.BytesToAddress([]byte("bob"))
)

func newService(t *testing.T) (*Service, *storage.Context) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sctx := storage.NewContext(db)
	return New(sctx), sctx
}

func ids(list []*Tx) []uint64 {
	out := make([]uint64, 0, len(list))
	for _, tx := range list {
		out = append(out, tx.ID)
	}
	return out
}

func TestBeginAndGet(t *testing.T) {
	svc, _ := newService(t)

	id, err := svc.Begin(KindStake, uint256.NewInt(1000), alice, "valA")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	tx, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, KindStake, tx.Kind)
	assert.Equal(t, uint64(1000), tx.Amount.Uint64())
	assert.Equal(t, alice, tx.User)
	assert.Equal(t, "valA", tx.Validator)

	id2, err := svc.Begin(KindUnstake, uint256.NewInt(5), alice, "valA")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id2)

	_, err = svc.Get(99)
	assert.ErrorIs(t, err, reverts.ErrUnknownTransaction)
}

func TestCommitRemoves(t *testing.T) {
	svc, _ := newService(t)
	id, err := svc.Begin(KindStake, uint256.NewInt(1), alice, "valA")
	require.NoError(t, err)

	tx, err := svc.Commit(id)
	require.NoError(t, err)
	assert.Equal(t, id, tx.ID)

	_, err = svc.Commit(id)
	assert.ErrorIs(t, err, reverts.ErrUnknownTransaction, "second ack must be an error")
	_, err = svc.Rollback(id)
	assert.ErrorIs(t, err, reverts.ErrUnknownTransaction)

	list, err := svc.ByUser(alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIdsSurviveCommit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	sctx := storage.NewContext(db)
	_, err = New(sctx).Begin(KindStake, uint256.NewInt(1), alice, "valA")
	require.NoError(t, err)
	require.NoError(t, sctx.Commit())

	id, err := New(storage.NewContext(db)).Begin(KindStake, uint256.NewInt(1), bob, "valA")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
}

func TestByUser(t *testing.T) {
	svc, _ := newService(t)
	for _, user := range []mesh.Address{alice, bob, alice, bob, alice} {
		_, err := svc.Begin(KindStake, uint256.NewInt(1), user, "valA")
		require.NoError(t, err)
	}
	_, err := svc.Rollback(3)
	require.NoError(t, err)

	list, err := svc.ByUser(alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 5}, ids(list))

	list, err = svc.ByUser(bob)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 4}, ids(list))
}

func TestAll(t *testing.T) {
	svc, _ := newService(t)
	for range 7 {
		_, err := svc.Begin(KindStake, uint256.NewInt(1), alice, "valA")
		require.NoError(t, err)
	}
	_, err := svc.Commit(4)
	require.NoError(t, err)

	tests := []struct {
		name       string
		startAfter uint64
		limit      int
		desc       bool
		want       []uint64
	}{
		{"first page", 0, 3, false, []uint64{1, 2, 3}},
		{"skips removed", 3, 3, false, []uint64{5, 6, 7}},
		{"past end", 7, 3, false, nil},
		{"newest first", 0, 3, true, []uint64{7, 6, 5}},
		{"older page", 5, 3, true, []uint64{3, 2, 1}},
		{"zero limit", 0, 0, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.All(tt.startAfter, tt.limit, tt.desc)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, list)
				return
			}
			assert.Equal(t, tt.want, ids(list))
		})
	}
}

func TestAllDescSparse(t *testing.T) {
	svc, _ := newService(t)
	for id := uint64(1); id <= 40; id++ {
		_, err := svc.Begin(KindStake, uint256.NewInt(1), alice, "valA")
		require.NoError(t, err)
		if id != 2 && id != 37 {
			_, err = svc.Rollback(id)
			require.NoError(t, err)
		}
	}

	list, err := svc.All(0, 3, true)
	require.NoError(t, err)
	assert.Equal(t, []uint64{37, 2}, ids(list))

	list, err = svc.All(37, 3, true)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, ids(list))

	list, err = svc.All(2, 3, true)
	require.NoError(t, err)
	assert.Empty(t, list)
}
