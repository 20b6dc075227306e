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

// Package config provides functions and SQL fragments for working with the
// "config" table, which stores wallet settings such as the default account
// and node.
package config

import (
	"crawshaw.io/sqlite"
)

// CreateTable is a SQL string that creates the "config" table.
const CreateTable = `
CREATE TABLE IF NOT EXISTS "config" (
        "key"   TEXT PRIMARY KEY,
        "value" TEXT NOT NULL
);
`

// Known keys.
const (
	DefaultAccount = "default_account"
	DefaultAuthor  = "default_author"
	DefaultVoter   = "default_voter"
	Node           = "node"
)

// Keys lists the known config keys.
var Keys = []string{DefaultAccount, DefaultAuthor, DefaultVoter, Node}

// Set key to value, replacing any existing value.
func Set(conn *sqlite.Conn, key, value string) error {
	stmt := conn.Prep(`INSERT OR REPLACE INTO "config" ("key", "value")
                VALUES (?, ?);`)
	stmt.BindText(1, key)
	stmt.BindText(2, value)
	_, err := stmt.Step()
	return err
}

// Select the value of key. If key is not set, ok is false.
func Select(conn *sqlite.Conn, key string) (value string, ok bool, err error) {
	stmt := conn.Prep(`SELECT "value" FROM "config" WHERE "key" = ?;`)
	defer stmt.Reset()
	stmt.BindText(1, key)
	hasRow, err := stmt.Step()
	if err != nil || !hasRow {
		return "", false, err
	}
	return stmt.ColumnText(0), true, nil
}

// Delete key.
func Delete(conn *sqlite.Conn, key string) error {
	stmt := conn.Prep(`DELETE FROM "config" WHERE "key" = ?;`)
	stmt.BindText(1, key)
	_, err := stmt.Step()
	return err
}

// SelectAll returns every key and value.
func SelectAll(conn *sqlite.Conn) (map[string]string, error) {
	stmt := conn.Prep(`SELECT "key", "value" FROM "config";`)
	defer stmt.Reset()
	all := make(map[string]string)
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			return all, nil
		}
		all[stmt.ColumnText(0)] = stmt.ColumnText(1)
	}
}
