// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package relay

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/meshstake/api/utils"
	"github.com/vechain/meshstake/mesh"
	"github.com/vechain/meshstake/relay"
	"github.com/vechain/meshstake/staker/reverts"
)

type Relay struct {
	relayer *relay.Relayer
}

func New(r *relay.Relayer) *Relay {
	return &Relay{r}
}

func convertError(err error) error {
	switch {
	case errors.Is(err, relay.ErrDuplicateAck):
		return utils.HTTPError(err, http.StatusConflict)
	case errors.Is(err, reverts.ErrUnknownTransaction):
		return utils.NotFound(err)
	case errors.Is(err, reverts.ErrInvariantViolation):
		return err
	case reverts.IsRevertErr(err):
		return utils.BadRequest(err)
	}
	return err
}

func parseChange(req *http.Request) (*ChangeRequest, error) {
	var body ChangeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.User == nil {
		return nil, utils.BadRequest(errors.New("body: missing user"))
	}
	if body.Validator == "" {
		return nil, utils.BadRequest(errors.New("body: missing validator"))
	}
	if body.Amount == nil {
		return nil, utils.BadRequest(errors.New("body: missing amount"))
	}
	return &body, nil
}

type changeFunc func(ctx context.Context, user mesh.Address, validator string, amount *uint256.Int) (uint64, error)

func (r *Relay) handleChange(change changeFunc) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		body, err := parseChange(req)
		if err != nil {
			return err
		}
		id, err := change(req.Context(), *body.User, body.Validator, body.Amount)
		if err != nil {
			return convertError(err)
		}
		return utils.WriteJSON(w, &ChangeResponse{ID: id})
	}
}

func (r *Relay) handleAck(w http.ResponseWriter, req *http.Request) error {
	var body AckRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Packet == nil {
		return utils.BadRequest(errors.New("body: missing packet"))
	}
	if err := r.relayer.OnAck(body.Packet, body.Ack); err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{})
}

func (r *Relay) handleTimeout(w http.ResponseWriter, req *http.Request) error {
	var body TimeoutRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Packet == nil {
		return utils.BadRequest(errors.New("body: missing packet"))
	}
	if err := r.relayer.OnTimeout(body.Packet); err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{})
}

// handleReceive always answers 200 with an ack; a rejected update is an
// error ack, not an HTTP error.
func (r *Relay) handleReceive(w http.ResponseWriter, req *http.Request) error {
	var packet relay.ConsumerPacket
	if err := utils.ParseJSON(req.Body, &packet); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return utils.WriteJSON(w, r.relayer.OnReceive(&packet))
}

func (r *Relay) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("POST /relay/stake").
		HandlerFunc(utils.WrapHandlerFunc(r.handleChange(r.relayer.Stake)))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("POST /relay/unstake").
		HandlerFunc(utils.WrapHandlerFunc(r.handleChange(r.relayer.Unstake)))
	sub.Path("/ack").
		Methods(http.MethodPost).
		Name("POST /relay/ack").
		HandlerFunc(utils.WrapHandlerFunc(r.handleAck))
	sub.Path("/timeout").
		Methods(http.MethodPost).
		Name("POST /relay/timeout").
		HandlerFunc(utils.WrapHandlerFunc(r.handleTimeout))
	sub.Path("/receive").
		Methods(http.MethodPost).
		Name("POST /relay/receive").
		HandlerFunc(utils.WrapHandlerFunc(r.handleReceive))
}
