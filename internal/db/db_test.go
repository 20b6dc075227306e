// MIT License
//
// Copyright 2018 Canonical Ledgers, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package db_test

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"crawshaw.io/sqlite"
	"github.com/Steem-Tools/steemgo/internal/db"
	"github.com/Steem-Tools/steemgo/internal/db/config"
	"github.com/Steem-Tools/steemgo/internal/db/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempPath(t *testing.T) string {
	dir, err := ioutil.TempDir("", "steemwallet-db")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "wallet.sqlite3")
}

func TestOpen(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	path := tempPath(t)

	d, err := db.Open(ctx, path)
	require.NoError(err)

	require.NoError(d.Tx(ctx, func(conn *sqlite.Conn) error {
		if err := config.Set(conn, config.DefaultAccount, "alice"); err != nil {
			return err
		}
		return keystore.Insert(conn, []byte{0x02, 0x01}, []byte("sealed"))
	}))
	require.NoError(d.Close())
	require.NoError(d.Close())

	d, err = db.Open(ctx, path)
	require.NoError(err)
	defer d.Close()

	require.NoError(d.Do(ctx, func(conn *sqlite.Conn) error {
		value, ok, err := config.Select(conn, config.DefaultAccount)
		require.NoError(err)
		assert.True(ok)
		assert.Equal("alice", value)

		_, ok, err = config.Select(conn, config.Node)
		require.NoError(err)
		assert.False(ok)

		sealed, err := keystore.Select(conn, []byte{0x02, 0x01})
		require.NoError(err)
		assert.Equal([]byte("sealed"), sealed)
		return nil
	}))
}

func TestOpenLocked(t *testing.T) {
	path := tempPath(t)
	// The lockfile belongs to a live process other than this one.
	require.NoError(t, ioutil.WriteFile(path+".lock",
		[]byte(fmt.Sprintf("%d\n", os.Getppid())), 0600))
	_, err := db.Open(context.Background(), path)
	assert.True(t, errors.Is(err, db.ErrLocked), "err: %v", err)
}

func TestTxRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	d, err := db.Open(ctx, tempPath(t))
	require.NoError(err)
	defer d.Close()

	errRollback := errors.New("rollback")
	err = d.Tx(ctx, func(conn *sqlite.Conn) error {
		require.NoError(config.Set(conn, config.Node, "wss://example.com"))
		return errRollback
	})
	require.Equal(errRollback, err)

	require.NoError(d.Do(ctx, func(conn *sqlite.Conn) error {
		all, err := config.SelectAll(conn)
		require.NoError(err)
		require.Empty(all)
		return nil
	}))
}

func TestKeystore(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	d, err := db.Open(ctx, tempPath(t))
	require.NoError(err)
	defer d.Close()

	require.NoError(d.Tx(ctx, func(conn *sqlite.Conn) error {
		_, _, ok, err := keystore.SelectMasterKey(conn)
		require.NoError(err)
		assert.False(ok)

		require.NoError(keystore.SetMasterKey(conn, []byte("salt"), []byte("master")))
		salt, sealed, ok, err := keystore.SelectMasterKey(conn)
		require.NoError(err)
		assert.True(ok)
		assert.Equal([]byte("salt"), salt)
		assert.Equal([]byte("master"), sealed)

		require.NoError(keystore.Insert(conn, []byte{1}, []byte("one")))
		require.NoError(keystore.Insert(conn, []byte{2}, []byte("two")))
		require.NoError(keystore.Insert(conn, []byte{1}, []byte("uno")))

		entries, err := keystore.SelectAll(conn)
		require.NoError(err)
		require.Len(entries, 2)

		deleted, err := keystore.Delete(conn, []byte{2})
		require.NoError(err)
		assert.True(deleted)
		deleted, err = keystore.Delete(conn, []byte{2})
		require.NoError(err)
		assert.False(deleted)

		sealed, err = keystore.Select(conn, []byte{1})
		require.NoError(err)
		assert.Equal([]byte("uno"), sealed)
		sealed, err = keystore.Select(conn, []byte{2})
		require.NoError(err)
		assert.Nil(sealed)
		return nil
	}))
}
