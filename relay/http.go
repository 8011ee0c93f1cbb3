// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPChannel posts packets as JSON to a counterparty endpoint. A 2xx answer
// only means the packet was accepted for delivery; the ack arrives later.
type HTTPChannel struct {
	url    string
	client *http.Client
}

func NewHTTPChannel(url string, timeout time.Duration) *HTTPChannel {
	return &HTTPChannel{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPChannel) Send(ctx context.Context, packet *ProviderPacket) error {
	body, err := json.Marshal(packet)
	if err != nil {
		return errors.Wrap(err, "encode packet")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post packet")
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return errors.Errorf("post packet: %s: %s", res.Status, bytes.TrimSpace(msg))
	}
	return nil
}
