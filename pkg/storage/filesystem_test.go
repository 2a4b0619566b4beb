package storage

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveReadDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("timetable.json", []byte(`{"entries":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "timetable.json", name)

	data, err := store.Read(name)
	require.NoError(t, err)
	assert.Equal(t, `{"entries":[]}`, string(data))

	_, err = os.Stat(store.Path(name) + ".tmp")
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Delete(name))
	_, err = store.Read(name)
	assert.True(t, errors.Is(err, ErrNotExist))
	require.NoError(t, store.Delete(name))
}

func TestLocalStorageSaveStream(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveStream("nested/notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	data, err := store.Read("nested/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.txt", []byte("x"))
	assert.Error(t, err)
	_, err = store.Save("/etc/passwd", []byte("x"))
	assert.Error(t, err)
}
