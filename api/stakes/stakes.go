// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/meshstake/api/utils"
	"github.com/vechain/meshstake/staker"
)

type Stakes struct {
	staker *staker.Staker
}

func New(s *staker.Staker) *Stakes {
	return &Stakes{s}
}

func (s *Stakes) handleList(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.ParseAddress(mux.Vars(req)["user"], "user")
	if err != nil {
		return err
	}
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	list, err := s.staker.Stakes(user, req.URL.Query().Get("start_after"), limit)
	if err != nil {
		return err
	}
	out := make([]*Stake, 0, len(list))
	for _, e := range list {
		out = append(out, convertStake(e.Validator, e.Stake))
	}
	return utils.WriteJSON(w, out)
}

func (s *Stakes) handleGet(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.ParseAddress(mux.Vars(req)["user"], "user")
	if err != nil {
		return err
	}
	validator := mux.Vars(req)["validator"]
	st, err := s.staker.Stake(user, validator)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStake(validator, st))
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{user}").
		Methods(http.MethodGet).
		Name("GET /stakes/{user}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleList))
	sub.Path("/{user}/{validator}").
		Methods(http.MethodGet).
		Name("GET /stakes/{user}/{validator}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGet))
}
