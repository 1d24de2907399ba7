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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestStoreSaveAndLoadSession(t *testing.T) {
	store := newTestStore(t)

	nextFrameNumber = 0
	transactions := Reconstruct(bulkExchange("0xb1", "0xd1", "0xd2"))
	require.NoError(t, store.SaveSession("cap1", transactions))

	loaded, err := store.Session("cap1")
	require.NoError(t, err)
	require.Len(t, loaded, len(transactions))
	for i := range transactions {
		assert.Equal(t, transactions[i].ID, loaded[i].ID)
		assert.Equal(t, transactions[i].Kind, loaded[i].Kind)
		require.Len(t, loaded[i].Frames, len(transactions[i].Frames))
		for j := range transactions[i].Frames {
			assert.Equal(t, *transactions[i].Frames[j], *loaded[i].Frames[j])
		}
	}
}

func TestStoreSessionNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Session("missing")
	require.Error(t, err)
	assert.IsType(t, ErrSessionNotFound{}, err)
}

func TestStoreSaveSessionReplaces(t *testing.T) {
	store := newTestStore(t)

	nextFrameNumber = 0
	first := Reconstruct([]*CaptureFrame{controlS("0xa1"), controlC("0xa1"), controlS("0xa2")})
	require.NoError(t, store.SaveSession("cap1", first))

	second := first[:1]
	require.NoError(t, store.SaveSession("cap1", second))

	loaded, err := store.Session("cap1")
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestStoreListSessions(t *testing.T) {
	store := newTestStore(t)

	sessions, err := store.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)

	nextFrameNumber = 0
	transactions := Reconstruct([]*CaptureFrame{controlS("0xa1")})
	require.NoError(t, store.SaveSession("cap1", transactions))
	require.NoError(t, store.SaveSession("cap2", transactions))

	sessions, err = store.ListSessions()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cap1", "cap2"}, sessions)
}
