// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/meshstake/api/utils"
	"github.com/vechain/meshstake/staker"
)

type Validators struct {
	staker *staker.Staker
}

func New(s *staker.Staker) *Validators {
	return &Validators{s}
}

func (v *Validators) handleList(w http.ResponseWriter, req *http.Request) error {
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	list, err := v.staker.ListValidators(req.URL.Query().Get("start_after"), limit)
	if err != nil {
		return err
	}
	out := make([]Validator, 0, len(list))
	for _, val := range list {
		out = append(out, Validator{Valoper: val.Valoper, Update: convertUpdate(val.Latest)})
	}
	return utils.WriteJSON(w, out)
}

func (v *Validators) handleGet(w http.ResponseWriter, req *http.Request) error {
	valoper := mux.Vars(req)["valoper"]
	st, err := v.staker.ValidatorHistory(valoper)
	if err != nil {
		return err
	}
	if !st.Exists() {
		return utils.NotFound(errors.New("validator not found"))
	}
	return utils.WriteJSON(w, convertDetail(valoper, st))
}

func (v *Validators) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /validators").
		HandlerFunc(utils.WrapHandlerFunc(v.handleList))
	sub.Path("/{valoper}").
		Methods(http.MethodGet).
		Name("GET /validators/{valoper}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGet))
}
