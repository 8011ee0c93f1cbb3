// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txs

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/meshstake/api/utils"
	"github.com/vechain/meshstake/staker"
	"github.com/vechain/meshstake/staker/reverts"
)

type Txs struct {
	staker *staker.Staker
}

func New(s *staker.Staker) *Txs {
	return &Txs{s}
}

func parseID(s string, name string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, name))
	}
	return id, nil
}

func (t *Txs) handleList(w http.ResponseWriter, req *http.Request) error {
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	var startAfter uint64
	if s := req.URL.Query().Get("start_after"); s != "" {
		if startAfter, err = parseID(s, "start_after"); err != nil {
			return err
		}
	}
	list, err := t.staker.PendingTxs(startAfter, limit, true)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertTxs(list))
}

func (t *Txs) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"], "id")
	if err != nil {
		return err
	}
	tx, err := t.staker.PendingTx(id)
	if err != nil {
		if errors.Is(err, reverts.ErrUnknownTransaction) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertTx(tx))
}

func (t *Txs) handleByUser(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.ParseAddress(mux.Vars(req)["user"], "user")
	if err != nil {
		return err
	}
	list, err := t.staker.PendingTxsByUser(user)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertTxs(list))
}

func (t *Txs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /txs").
		HandlerFunc(utils.WrapHandlerFunc(t.handleList))
	sub.Path("/user/{user}").
		Methods(http.MethodGet).
		Name("GET /txs/user/{user}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleByUser))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /txs/{id}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGet))
}
