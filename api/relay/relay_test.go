// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/meshstake/lvldb"
	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/relay"
	"github.com/vechain/meshstake/staker"
)

var alice = mesh.BytesToAddress([]byte("alice"))

type memChannel struct {
	mu      sync.Mutex
	packets []*relay.ProviderPacket
}

func (c *memChannel) Send(_ context.Context, p *relay.ProviderPacket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packets = append(c.packets, p)
	return nil
}

type testServer struct {
	*httptest.Server
	staker  *staker.Staker
	channel *memChannel
}

func newTestServer(t *testing.T) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := staker.New(db, staker.DefaultConfig())
	require.NoError(t, err)
	ch := &memChannel{}
	r, err := relay.New(s, ch, relay.DefaultOptions())
	require.NoError(t, err)

	router := mux.NewRouter()
	New(r).Mount(router, "/relay")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return &testServer{ts, s, ch}
}

func (ts *testServer) post(t *testing.T, path string, body string) ([]byte, int) {
	t.Helper()
	res, err := http.Post(ts.URL+path, "application/json", bytes.NewBufferString(body)) // #nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return out, res.StatusCode
}

func (ts *testServer) addValidator(t *testing.T) {
	body, status := ts.post(t, "/relay/receive", `{"add_validators":[{"valoper":"valA","pub_key":"pk","start_height":1,"start_time":2}]}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"result":{}}`, string(body))
}

func TestReceive(t *testing.T) {
	ts := newTestServer(t)
	ts.addValidator(t)

	active, err := ts.staker.RegistryIsActive("valA")
	require.NoError(t, err)
	assert.True(t, active)

	body, status := ts.post(t, "/relay/receive", `{"remove_validators":["valA"]}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"result":{}}`, string(body))

	_, status = ts.post(t, "/relay/receive", `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStakeAndAck(t *testing.T) {
	ts := newTestServer(t)
	ts.addValidator(t)

	body, status := ts.post(t, "/relay/stake", `{"user":"`+alice.String()+`","validator":"valA","amount":"100"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var res ChangeResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, uint64(1), res.ID)
	require.Len(t, ts.channel.packets, 1)

	packet, err := json.Marshal(ts.channel.packets[0])
	require.NoError(t, err)
	ack := `{"packet":` + string(packet) + `,"ack":{"result":{}}}`

	_, status = ts.post(t, "/relay/ack", `{"packet":{"stake":{"validator":"valA","amount":"101","tx_id":1}},"ack":{"result":{}}}`)
	assert.Equal(t, http.StatusBadRequest, status, "packet differs from the pending tx")

	_, status = ts.post(t, "/relay/ack", ack)
	require.Equal(t, http.StatusOK, status)

	st, err := ts.staker.Stake(alice, "valA")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), st.Stake.Low().Uint64())

	_, status = ts.post(t, "/relay/ack", ack)
	assert.Equal(t, http.StatusConflict, status)

	_, status = ts.post(t, "/relay/ack", `{"packet":{"stake":{"validator":"valA","amount":"1","tx_id":99}},"ack":{"result":{}}}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUnstakeAndTimeout(t *testing.T) {
	ts := newTestServer(t)
	ts.addValidator(t)

	_, status := ts.post(t, "/relay/unstake", `{"user":"`+alice.String()+`","validator":"valA","amount":"5"}`)
	assert.Equal(t, http.StatusBadRequest, status, "nothing staked yet")

	body, status := ts.post(t, "/relay/stake", `{"user":"`+alice.String()+`","validator":"valA","amount":"10"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	packet, err := json.Marshal(ts.channel.packets[0])
	require.NoError(t, err)
	_, status = ts.post(t, "/relay/timeout", `{"packet":`+string(packet)+`}`)
	require.Equal(t, http.StatusOK, status)

	st, err := ts.staker.Stake(alice, "valA")
	require.NoError(t, err)
	assert.True(t, st.Stake.High().IsZero())
}

func TestBadChangeRequests(t *testing.T) {
	ts := newTestServer(t)
	ts.addValidator(t)

	for _, body := range []string{
		`{"validator":"valA","amount":"1"}`,
		`{"user":"` + alice.String() + `","amount":"1"}`,
		`{"user":"` + alice.String() + `","validator":"valA"}`,
		`{"user":"nope","validator":"valA","amount":"1"}`,
		`{"user":"` + alice.String() + `","validator":"valA","amount":"0"}`,
		`{"user":"` + alice.String() + `","validator":"valB","amount":"1"}`,
	} {
		_, status := ts.post(t, "/relay/stake", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
	}

	_, status := ts.post(t, "/relay/ack", `{"ack":{"result":{}}}`)
	assert.Equal(t, http.StatusBadRequest, status)
}
