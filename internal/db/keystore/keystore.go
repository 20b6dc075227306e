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

// Package keystore provides functions and SQL fragments for working with the
// "master_key" and "key" tables.
//
// The "master_key" table holds a single row with the scrypt salt and the
// sealed master key. The "key" table holds each private key sealed under the
// master key, indexed by its compressed public key.
package keystore

import (
	"crawshaw.io/sqlite"
)

// CreateTableMasterKey is a SQL string that creates the "master_key" table.
const CreateTableMasterKey = `
CREATE TABLE IF NOT EXISTS "master_key" (
        "id"            INTEGER PRIMARY KEY CHECK ("id" = 0),
        "salt"          BLOB NOT NULL,
        "sealed"        BLOB NOT NULL
);
`

// CreateTableKey is a SQL string that creates the "key" table.
const CreateTableKey = `
CREATE TABLE IF NOT EXISTS "key" (
        "id"            INTEGER PRIMARY KEY,
        "pub"           BLOB NOT NULL UNIQUE,
        "sealed"        BLOB NOT NULL
);
`

// SetMasterKey inserts or replaces the sealed master key.
func SetMasterKey(conn *sqlite.Conn, salt, sealed []byte) error {
	stmt := conn.Prep(`INSERT OR REPLACE INTO "master_key"
                ("id", "salt", "sealed") VALUES (0, ?, ?);`)
	stmt.BindBytes(1, salt)
	stmt.BindBytes(2, sealed)
	_, err := stmt.Step()
	return err
}

// SelectMasterKey returns the salt and sealed master key. If no master key
// has been set, ok is false.
func SelectMasterKey(conn *sqlite.Conn) (salt, sealed []byte, ok bool, err error) {
	stmt := conn.Prep(`SELECT "salt", "sealed" FROM "master_key";`)
	defer stmt.Reset()
	hasRow, err := stmt.Step()
	if err != nil || !hasRow {
		return nil, nil, false, err
	}
	salt = make([]byte, stmt.ColumnLen(0))
	stmt.ColumnBytes(0, salt)
	sealed = make([]byte, stmt.ColumnLen(1))
	stmt.ColumnBytes(1, sealed)
	return salt, sealed, true, nil
}

// Insert the sealed private key for pub. An existing key for pub is
// replaced.
func Insert(conn *sqlite.Conn, pub, sealed []byte) error {
	stmt := conn.Prep(`INSERT OR REPLACE INTO "key" ("pub", "sealed")
                VALUES (?, ?);`)
	stmt.BindBytes(1, pub)
	stmt.BindBytes(2, sealed)
	_, err := stmt.Step()
	return err
}

// Select the sealed private key for pub. If there is none, sealed is nil.
func Select(conn *sqlite.Conn, pub []byte) (sealed []byte, err error) {
	stmt := conn.Prep(`SELECT "sealed" FROM "key" WHERE "pub" = ?;`)
	defer stmt.Reset()
	stmt.BindBytes(1, pub)
	hasRow, err := stmt.Step()
	if err != nil || !hasRow {
		return nil, err
	}
	sealed = make([]byte, stmt.ColumnLen(0))
	stmt.ColumnBytes(0, sealed)
	return sealed, nil
}

// Delete the key for pub. It returns false if no such key existed.
func Delete(conn *sqlite.Conn, pub []byte) (bool, error) {
	stmt := conn.Prep(`DELETE FROM "key" WHERE "pub" = ?;`)
	stmt.BindBytes(1, pub)
	if _, err := stmt.Step(); err != nil {
		return false, err
	}
	return conn.Changes() == 1, nil
}

// Entry is a row of the "key" table.
type Entry struct {
	Pub    []byte
	Sealed []byte
}

// SelectAll returns all keys ordered by insertion.
func SelectAll(conn *sqlite.Conn) ([]Entry, error) {
	stmt := conn.Prep(`SELECT "pub", "sealed" FROM "key" ORDER BY "id";`)
	defer stmt.Reset()
	var entries []Entry
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			return entries, nil
		}
		var e Entry
		e.Pub = make([]byte, stmt.ColumnLen(0))
		stmt.ColumnBytes(0, e.Pub)
		e.Sealed = make([]byte, stmt.ColumnLen(1))
		stmt.ColumnBytes(1, e.Sealed)
		entries = append(entries, e)
	}
}
