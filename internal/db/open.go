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

// Package db opens and migrates the sqlite database that backs the wallet
// key store. A DB holds a single read-write connection and an exclusive
// lockfile, so only one process may use a wallet file at a time.
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/nightlyone/lockfile"
)

// ErrLocked is returned by Open when another process holds the lockfile of
// the database.
var ErrLocked = errors.New("database is in use by another process")

const baseFlags = sqlite.SQLITE_OPEN_WAL |
	sqlite.SQLITE_OPEN_URI |
	sqlite.SQLITE_OPEN_NOMUTEX

// DB is an open wallet database. The underlying Conn is not safe for
// concurrent use, so all access goes through Do or Tx.
type DB struct {
	Path string

	mu       sync.Mutex
	conn     *sqlite.Conn
	lockFile lockfile.Lockfile
}

// Open the sqlite3 database at path, creating it if it does not exist. The
// lockfile path+".lock" is acquired first and released by Close.
//
// The application_id is checked or set, and the schema is created or
// migrated. The Interrupt on the Conn is set to ctx.Done() for the duration
// of Open.
func Open(ctx context.Context, path string) (_ *DB, err error) {
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("filepath.Abs(): %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%q): %w", filepath.Dir(path), err)
	}

	lockFilePath := path + ".lock"
	lockFile, err := lockfile.New(lockFilePath)
	if err != nil {
		return nil, fmt.Errorf("lockfile.New(%q): %w", lockFilePath, err)
	}
	if err := lockFile.TryLock(); err != nil {
		if errors.Is(err, lockfile.ErrBusy) {
			return nil, fmt.Errorf("%w: %v", ErrLocked, lockFilePath)
		}
		return nil, fmt.Errorf("lockFile.TryLock(): %w", err)
	}
	defer func() {
		if err != nil {
			lockFile.Unlock()
		}
	}()

	conn, err := OpenConn(ctx, path)
	if err != nil {
		return nil, err
	}
	return &DB{Path: path, conn: conn, lockFile: lockFile}, nil
}

// OpenConn opens a Conn to the sqlite3 database at dbURI and performs a
// number of checks and operations to ensure that the Conn is ready for use.
//
// The caller is responsible for closing conn if err is nil.
func OpenConn(ctx context.Context, dbURI string) (conn *sqlite.Conn, err error) {
	flags := baseFlags | sqlite.SQLITE_OPEN_READWRITE | sqlite.SQLITE_OPEN_CREATE

	if conn, err = sqlite.OpenConn(dbURI, flags); err != nil {
		return nil, fmt.Errorf("sqlite.OpenConn(%q, %x): %w", dbURI, flags, err)
	}
	defer func() {
		if err != nil {
			conn.Close()
			conn = nil
		}
	}()

	conn.SetInterrupt(ctx.Done())
	defer conn.SetInterrupt(nil)

	if err = checkOrSetApplicationID(conn, "main"); err != nil {
		return
	}
	if err = applyMigrations(conn, schema, migrations); err != nil {
		return
	}
	if err = enableForeignKeyChecks(conn); err != nil {
		return
	}
	return conn, nil
}

// Do runs fn with exclusive use of the Conn. The Interrupt on the Conn is set
// to ctx.Done() while fn runs.
func (db *DB) Do(ctx context.Context, fn func(*sqlite.Conn) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.conn == nil {
		return fmt.Errorf("database closed")
	}
	db.conn.SetInterrupt(ctx.Done())
	defer db.conn.SetInterrupt(nil)
	return fn(db.conn)
}

// Tx is like Do but runs fn within a savepoint which is rolled back if fn
// returns an error.
func (db *DB) Tx(ctx context.Context, fn func(*sqlite.Conn) error) error {
	return db.Do(ctx, func(conn *sqlite.Conn) (err error) {
		defer sqlitex.Save(conn)(&err)
		return fn(conn)
	})
}

// Close the database connection and release the lockfile.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.conn == nil {
		return nil
	}
	defer func() {
		db.conn = nil
		db.lockFile.Unlock()
	}()
	if err := sqlitex.ExecScript(db.conn, `PRAGMA wal_checkpoint;`); err != nil {
		db.conn.Close()
		return err
	}
	// Close this last so that the wal and shm files are removed.
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("conn.Close(): %w", err)
	}
	return nil
}

func checkOrSetApplicationID(conn *sqlite.Conn, db string) error {
	var appID int32
	if err := sqlitex.ExecTransient(conn,
		fmt.Sprintf(`PRAGMA %q."application_id";`, db),
		func(stmt *sqlite.Stmt) error {
			appID = stmt.ColumnInt32(0)
			return nil
		}); err != nil {
		return err
	}
	switch appID {
	case 0: // ApplicationID not set
		return sqlitex.ExecTransient(conn,
			fmt.Sprintf(`PRAGMA %q."application_id" = %v;`,
				db, ApplicationID),
			nil)
	case ApplicationID:
		return nil
	}
	return fmt.Errorf("invalid database: application_id")
}

func enableForeignKeyChecks(conn *sqlite.Conn) error {
	return sqlitex.ExecScript(conn, `PRAGMA foreign_keys = ON;`)
}
