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

package db

import (
	"fmt"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
)

func applyMigrations(conn *sqlite.Conn, initSchema string,
	migrations []func(*sqlite.Conn) error) (err error) {

	empty, err := isEmpty(conn)
	if err != nil {
		return
	}
	if empty {
		if err = sqlitex.ExecScript(conn, initSchema); err != nil {
			return
		}
		return updateDBVersion(conn, len(migrations))
	}

	version, err := getDBVersion(conn)
	if err != nil {
		return
	}
	if int(version) == len(migrations) {
		return nil
	}
	if int(version) > len(migrations) {
		return fmt.Errorf("no migration exists for DB version: %v", version)
	}

	defer sqlitex.Save(conn)(&err)

	for _, migration := range migrations[version:] {
		if err = migration(conn); err != nil {
			return
		}
	}
	return updateDBVersion(conn, len(migrations))
}

func isEmpty(conn *sqlite.Conn) (bool, error) {
	var count int
	err := sqlitex.ExecTransient(conn, `SELECT count(*) from "sqlite_master";`,
		func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		})
	return count == 0, err
}

func getDBVersion(conn *sqlite.Conn) (int64, error) {
	var version int64
	err := sqlitex.ExecTransient(conn, `PRAGMA user_version;`,
		func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt64(0)
			return nil
		})
	return version, err
}

func updateDBVersion(conn *sqlite.Conn, version int) error {
	return sqlitex.ExecScript(conn, fmt.Sprintf(`PRAGMA user_version = %v;`,
		version))
}
