package sqladdr

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rexlang/rex/pkg/eval"
	. "github.com/rexlang/rex/pkg/eval/evaltest"
)

// A minimal driver so the tests exercise the database/sql plumbing
// without a server. SELECT statements return a fixed result set, BOOM
// fails, and everything else reports one affected row.
type fakeDriver struct{}

func init() { sql.Register("rexfake", fakeDriver{}) }

func (fakeDriver) Open(name string) (driver.Conn, error) { return fakeConn{}, nil }

type fakeConn struct{}

func (fakeConn) Prepare(query string) (driver.Stmt, error) { return fakeStmt{query}, nil }
func (fakeConn) Close() error                              { return nil }
func (fakeConn) Begin() (driver.Tx, error)                 { return nil, errors.New("no transactions") }

type fakeStmt struct{ query string }

func (fakeStmt) Close() error  { return nil }
func (fakeStmt) NumInput() int { return -1 }

func (s fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	if strings.Contains(s.query, "BOOM") {
		return nil, errors.New("table exploded")
	}
	return driver.RowsAffected(1), nil
}

func (s fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	if strings.Contains(s.query, "BOOM") {
		return nil, errors.New("table exploded")
	}
	return &fakeRows{rows: [][]driver.Value{
		{int64(1), "ada"},
		{int64(2), nil},
	}}, nil
}

type fakeRows struct {
	rows [][]driver.Value
	next int
}

func (r *fakeRows) Columns() []string { return []string{"id", "name"} }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.next >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.next])
	r.next++
	return nil
}

func TestSQLTarget(t *testing.T) {
	setup := func(ev *eval.Evaler) { ev.AddModule("sql", New("rexfake", "unit")) }
	TestWithSetup(t, setup,
		That(`require 'registry:sql'`,
			`address sql`,
			`'CREATE TABLE runs (id INTEGER)'`,
			`say rc';'result`).Prints("0;1\n"),
		// NULL reads as the empty string.
		That(`require 'registry:sql'`,
			`address sql`,
			`rows = query('SELECT id, name FROM runs')`,
			`say rows`).Prints("1|ada\n2|\n"),
		That(`require 'registry:sql'`,
			`address sql`,
			`say execute('INSERT INTO runs VALUES (?)', 3)`).Prints("1\n"),
		That(`require 'registry:sql'`,
			`address sql`,
			`call close`,
			`say rc`).Prints("0\n"),
		That(`require 'registry:sql'`,
			`address sql`,
			`'BOOM'`,
			`say rc';'errortext`).Prints("1;table exploded\n"),
		That(`require 'registry:sql'`,
			`address sql`,
			`say query('SELECT BOOM')`).
			Throws(ErrorWithMessage("method QUERY failed: table exploded"),
				`query('SELECT BOOM')`),
		That(`require 'registry:sql'`,
			`address sql`,
			`say vacuum()`).
			Throws(ErrorWithMessage("method VACUUM failed: unknown method VACUUM")),
	)
}

func TestSQLTarget_UnknownDriver(t *testing.T) {
	setup := func(ev *eval.Evaler) { ev.AddModule("sql", New("nosuchdriver", "unit")) }
	TestWithSetup(t, setup,
		That(`require 'registry:sql'`,
			`address sql`,
			`'SELECT 1'`,
			`say rc`).Prints("1\n"),
	)
}
