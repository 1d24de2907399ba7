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

package capture

import (
	"encoding/binary"
	"strings"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"github.com/pdlab/go-pdcap/pkg/log"
)

const (
	SessionBucketPrefix = "session_"
)

// Store persists reconstructed transactions between runs. One bucket per
// capture session, keyed by transaction id.
type Store struct {
	DB *bbolt.DB
}

func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close ...
func (s *Store) Close() {
	s.DB.Close()
}

func bucketName(session string) []byte {
	return []byte(SessionBucketPrefix + session)
}

func transactionKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

// SaveSession replaces the stored transactions of a session
func (s *Store) SaveSession(session string, transactions []*Transaction) error {
	log.Debug("Saving session: %s transactions: %d", session, len(transactions))
	return s.DB.Update(func(tx *bbolt.Tx) error {
		name := bucketName(session)
		if tx.Bucket(name) != nil {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(name)
		if err != nil {
			return err
		}
		for _, t := range transactions {
			data, err := yaml.Marshal(t)
			if err != nil {
				return err
			}
			if err := b.Put(transactionKey(t.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Session returns the stored transactions of a session in id order
func (s *Store) Session(session string) ([]*Transaction, error) {
	var transactions []*Transaction
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(session))
		if b == nil {
			return ErrSessionNotFound{Session: session}
		}
		return b.ForEach(func(_, v []byte) error {
			t := &Transaction{}
			if err := yaml.Unmarshal(v, t); err != nil {
				return err
			}
			transactions = append(transactions, t)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return transactions, nil
}

// ListSessions returns the names of all stored sessions
func (s *Store) ListSessions() ([]string, error) {
	var sessions []string
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			sessions = append(sessions, strings.TrimPrefix(string(name), SessionBucketPrefix))
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return sessions, nil
}
