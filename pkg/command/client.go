/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package command

import (
	"errors"
	"fmt"

	"github.com/imroc/req"

	"github.com/pdlab/go-pdcap/pkg/capture"
	"github.com/pdlab/go-pdcap/pkg/config"
	"github.com/pdlab/go-pdcap/pkg/layers"
	"github.com/pdlab/go-pdcap/pkg/srv"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d/api", cfg.Host, cfg.Port),
	}
}

func (c *ApiClient) decodeUrl(raw bool) string {
	url := fmt.Sprintf("%s/decode", c.ApiPrefix)
	if raw {
		url += "?raw=true"
	}
	return url
}

func (c *ApiClient) reconstructUrl(session string) string {
	url := fmt.Sprintf("%s/reconstruct", c.ApiPrefix)
	if session != "" {
		url += "?session=" + session
	}
	return url
}

// DecodePacket sends hex-encoded packet bytes for decoding
func (c *ApiClient) DecodePacket(hexData string) (*layers.Packet, error) {
	r, err := req.Post(c.decodeUrl(false), req.BodyJSON(&srv.HexData{Data: hexData}))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	packet := &layers.Packet{}
	err = r.ToJSON(packet)
	if err != nil {
		return nil, err
	}
	return packet, nil
}

// DecodeRawPacket sends hex-encoded packet bytes for header-only decoding
func (c *ApiClient) DecodeRawPacket(hexData string) (*layers.RawPacket, error) {
	r, err := req.Post(c.decodeUrl(true), req.BodyJSON(&srv.HexData{Data: hexData}))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	raw := &layers.RawPacket{}
	err = r.ToJSON(raw)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// ExtractEvents sends a hex-encoded telemetry blob for event extraction.
// The response is returned as the raw JSON document because the event list
// is heterogeneous.
func (c *ApiClient) ExtractEvents(hexData string) (string, error) {
	r, err := req.Post(fmt.Sprintf("%s/events", c.ApiPrefix), req.BodyJSON(&srv.HexData{Data: hexData}))
	if err != nil {
		return "", err
	}
	if r.Response().StatusCode != 200 {
		return "", errors.New(r.Response().Status)
	}
	return r.String(), nil
}

// Reconstruct uploads a JSONL frame export and returns the reconstructed
// transactions. A non-empty session name persists them server-side.
func (c *ApiClient) Reconstruct(framesJSONL []byte, session string) ([]*capture.Transaction, error) {
	r, err := req.Post(c.reconstructUrl(session), framesJSONL)
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	var transactions []*capture.Transaction
	err = r.ToJSON(&transactions)
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// Sessions lists the sessions persisted server-side
func (c *ApiClient) Sessions() ([]string, error) {
	r, err := req.Get(fmt.Sprintf("%s/sessions", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	var sessions []string
	err = r.ToJSON(&sessions)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionTransactions fetches the stored transactions of a session
func (c *ApiClient) SessionTransactions(session string) ([]*capture.Transaction, error) {
	r, err := req.Get(fmt.Sprintf("%s/sessions/%s", c.ApiPrefix, session))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	var transactions []*capture.Transaction
	err = r.ToJSON(&transactions)
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
