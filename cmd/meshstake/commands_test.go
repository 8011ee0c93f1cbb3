// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/meshstake/mesh"
)

var alice = mesh.BytesToAddress([]byte("alice")).String()

type cliRunner struct {
	t       *testing.T
	dataDir string
}

func newCLIRunner(t *testing.T) *cliRunner {
	return &cliRunner{t, t.TempDir()}
}

func (r *cliRunner) exec(args ...string) (string, error) {
	app := newApp()
	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = &buf
	base := []string{"meshstake", "--data-dir", r.dataDir, "--verbosity", "0", "--unbonding-period", "100"}
	err := app.Run(append(base, args...))
	return buf.String(), err
}

func (r *cliRunner) run(args ...string) string {
	r.t.Helper()
	out, err := r.exec(args...)
	require.NoError(r.t, err, "%v: %s", args, out)
	return out
}

func (r *cliRunner) runJSON(v any, args ...string) {
	r.t.Helper()
	require.NoError(r.t, json.Unmarshal([]byte(r.run(args...)), v), args)
}

func TestStakingLifecycle(t *testing.T) {
	r := newCLIRunner(t)

	r.run("validator", "add", "valA", "pk1", "1", "10")

	var vals []M
	r.runJSON(&vals, "validator", "list")
	require.Len(t, vals, 1)
	assert.Equal(t, "valA", vals[0]["valoper"])
	assert.Equal(t, "pk1", vals[0]["pubKey"])

	var res M
	r.runJSON(&res, "stake", "begin", alice, "valA", "100")
	assert.Equal(t, float64(1), res["id"])
	r.run("stake", "commit", "1")

	r.run("distribute", "valA", "50")
	r.runJSON(&res, "rewards", alice, "valA")
	assert.Equal(t, "50", res["amount"])

	r.runJSON(&res, "unstake", "begin", alice, "valA", "40")
	assert.Equal(t, float64(2), res["id"])

	var pending []M
	r.runJSON(&pending, "txs")
	require.Len(t, pending, 1)
	assert.Equal(t, "unstake", pending[0]["kind"])
	assert.Equal(t, "40", pending[0]["amount"])

	r.runJSON(&pending, "txs", "--user", alice)
	require.Len(t, pending, 1)

	r.run("unstake", "commit", "--now", "1000", "2")

	var positions []M
	r.runJSON(&positions, "stakes", alice)
	require.Len(t, positions, 1)
	assert.Equal(t, "60", positions[0]["low"])
	assert.Equal(t, "60", positions[0]["high"])
	require.Len(t, positions[0]["pendingUnbonds"], 1)

	r.runJSON(&res, "release", "--now", "1099", alice)
	assert.Equal(t, "0", res["released"])
	r.runJSON(&res, "release", "--now", "1100", alice)
	assert.Equal(t, "40", res["released"])

	r.runJSON(&res, "slash", "valA", "0.5")
	assert.Equal(t, "30", res["bonded"])
	assert.Equal(t, "0", res["unbonding"])

	r.runJSON(&res, "rewards", "--withdraw", alice, "valA")
	assert.Equal(t, "50", res["amount"])
	r.runJSON(&res, "rewards", alice, "valA")
	assert.Equal(t, "0", res["amount"])

	r.run("validator", "remove", "valA")
	r.runJSON(&res, "validator", "show", "valA")
	assert.Equal(t, false, res["active"])
	assert.Equal(t, true, res["tombstoned"])

	r.runJSON(&vals, "validator", "list")
	assert.Empty(t, vals)
}

func TestRollbackCommands(t *testing.T) {
	r := newCLIRunner(t)
	r.run("validator", "add", "valA", "pk1", "1", "10")

	r.run("stake", "begin", alice, "valA", "10")
	r.run("stake", "rollback", "1")

	r.run("stake", "begin", alice, "valA", "10")
	r.run("stake", "commit", "2")
	r.run("unstake", "begin", alice, "valA", "4")
	r.run("unstake", "rollback", "3")

	var positions []M
	r.runJSON(&positions, "stakes", alice)
	require.Len(t, positions, 1)
	assert.Equal(t, "10", positions[0]["low"])
	assert.Equal(t, "10", positions[0]["high"])

	var pending []M
	r.runJSON(&pending, "txs")
	assert.Empty(t, pending)
}

func TestCommandErrors(t *testing.T) {
	r := newCLIRunner(t)
	r.run("validator", "add", "valA", "pk1", "1", "10")

	for _, args := range [][]string{
		{"validator", "add", "valA"},
		{"validator", "add", "valA", "pk", "x", "1"},
		{"validator", "show", "valB"},
		{"stake", "begin", "nope", "valA", "1"},
		{"stake", "begin", alice, "valA", "-1"},
		{"stake", "begin", alice, "valB", "1"},
		{"stake", "commit", "9"},
		{"unstake", "begin", alice, "valA", "1"},
		{"slash", "valA", "2"},
		{"slash", "valA", "abc"},
		{"txs", "--start-after", "x"},
	} {
		_, err := r.exec(args...)
		assert.Error(t, err, "%v", args)
	}
}
