// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/meshstake/api/utils"
	"github.com/vechain/meshstake/staker"
)

// Rewards is the amount a user may withdraw from a validator right now.
type Rewards struct {
	User      string `json:"user"`
	Validator string `json:"validator"`
	Claimable string `json:"claimable"`
}

type API struct {
	staker *staker.Staker
}

func New(s *staker.Staker) *API {
	return &API{s}
}

func (a *API) handleGet(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.ParseAddress(mux.Vars(req)["user"], "user")
	if err != nil {
		return err
	}
	validator := mux.Vars(req)["validator"]
	owed, err := a.staker.Claimable(user, validator)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Rewards{
		User:      user.String(),
		Validator: validator,
		Claimable: owed.Dec(),
	})
}

func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{user}/{validator}").
		Methods(http.MethodGet).
		Name("GET /rewards/{user}/{validator}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGet))
}
