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

package srv

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/pdlab/go-pdcap/pkg/capture"
	"github.com/pdlab/go-pdcap/pkg/config"
	"github.com/pdlab/go-pdcap/pkg/layers"
	"github.com/pdlab/go-pdcap/pkg/log"
)

// HexData is the request body of the decode and events endpoints. Data is
// the packet or telemetry blob bytes in hexadecimal.
type HexData struct {
	Data string `json:"data"`
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	Store *capture.Store
}

func NewApiServer(ctx context.Context, cfg *config.Config, store *capture.Store) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.Host, cfg.Port)

	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		Store:   store,
	}
	return s, nil
}

// Start
func (s *ApiServer) Run() error {
	log.Debug("Starting API server: address: %s port: %d", s.Config.Host, s.Config.Port)
	s.configureRouter()
	httpServer := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, s.Router),
		Addr:    fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port),
	}
	return httpServer.ListenAndServe()
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/decode", s.handleDecode()).Methods("POST")
	subRouter.HandleFunc("/events", s.handleEvents()).Methods("POST")
	subRouter.HandleFunc("/reconstruct", s.handleReconstruct()).Methods("POST")
	subRouter.HandleFunc("/sessions", s.handleSessions()).Methods("GET")
	subRouter.HandleFunc("/sessions/{session}", s.handleSession()).Methods("GET")
}

func decodeHexBody(r *http.Request) ([]byte, error) {
	hexData := &HexData{}
	if err := json.NewDecoder(r.Body).Decode(hexData); err != nil {
		return nil, err
	}
	return hex.DecodeString(hexData.Data)
}

func (s *ApiServer) handleDecode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeHexBody(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if r.URL.Query().Get("raw") == "true" {
			raw, err := layers.DecodeRawPacket(data)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, raw)
			return
		}

		packet, err := layers.DecodePacket(data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, packet)
	}
}

func (s *ApiServer) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blob, err := decodeHexBody(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, layers.ExtractEvents(blob))
	}
}

// handleReconstruct takes a JSONL frame export as the request body and
// responds with the reconstructed transactions. With ?session=<name> the
// result is also persisted and can be fetched later via the sessions
// endpoints.
func (s *ApiServer) handleReconstruct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frames, err := capture.ReadFrames(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		capture.SortFrames(frames)
		transactions := capture.Reconstruct(frames)

		if session := r.URL.Query().Get("session"); session != "" {
			log.Debug("Persisting reconstructed session: %s", session)
			if err := s.Store.SaveSession(session, transactions); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		writeJSON(w, transactions)
	}
}

func (s *ApiServer) handleSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Store.ListSessions()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sessions == nil {
			sessions = []string{}
		}
		writeJSON(w, sessions)
	}
}

func (s *ApiServer) handleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		transactions, err := s.Store.Session(vars["session"])
		if err != nil {
			if _, ok := err.(capture.ErrSessionNotFound); ok {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, transactions)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode API response: %s", err)
	}
}
