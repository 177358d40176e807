// Package sqladdr provides the sql module: an ADDRESS SQL target over
// database/sql. A command string is executed as one SQL statement;
// methods QUERY, EXECUTE and CLOSE give finer control and placeholder
// arguments.
package sqladdr

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"sync"

	// MySQL is the bundled driver; others work when linked in by the
	// embedding program.
	_ "github.com/go-sql-driver/mysql"

	"github.com/rexlang/rex/pkg/eval"
)

// New returns the sql module for the given driver and data source,
// loadable with REQUIRE "registry:sql". The database handle opens
// lazily on first use.
func New(driver, dsn string) eval.ModuleDef {
	return eval.ModuleDef{
		ID:     "rex/sql",
		Target: &target{driver: driver, dsn: dsn},
	}
}

type target struct {
	driver, dsn string

	mu sync.Mutex
	db *sql.DB
}

func (t *target) Name() string { return "SQL" }

func (t *target) Capabilities() eval.Capabilities {
	return eval.Capabilities{CommandString: true, MethodCall: true}
}

func (t *target) conn() (*sql.DB, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.db == nil {
		db, err := sql.Open(t.driver, t.dsn)
		if err != nil {
			return nil, err
		}
		t.db = db
	}
	return t.db, nil
}

func (t *target) Handle(ctx context.Context, call eval.Call) (eval.Reply, error) {
	if call.Method == "" {
		return done(t.execute(ctx, call.Command, nil))
	}
	switch call.Method {
	case "QUERY":
		if len(call.Args) == 0 {
			return fail("QUERY needs a statement")
		}
		return done(t.query(ctx, call.Args[0], call.Args[1:]))
	case "EXECUTE":
		if len(call.Args) == 0 {
			return fail("EXECUTE needs a statement")
		}
		return done(t.execute(ctx, call.Args[0], call.Args[1:]))
	case "CLOSE":
		return done(t.close())
	default:
		return fail("unknown method " + call.Method)
	}
}

func done(out string, err error) (eval.Reply, error) {
	if err != nil {
		return eval.DoneReply(eval.Result{Err: err.Error(), Status: 1}), nil
	}
	return eval.DoneReply(eval.Result{Success: true, Output: out}), nil
}

func fail(msg string) (eval.Reply, error) {
	return eval.DoneReply(eval.Result{Err: msg, Status: 1}), nil
}

// execute runs one statement and returns the number of affected rows.
func (t *target) execute(ctx context.Context, stmt string, args []string) (string, error) {
	db, err := t.conn()
	if err != nil {
		return "", err
	}
	res, err := db.ExecContext(ctx, stmt, anyArgs(args)...)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Not every driver can count affected rows.
		return "", nil
	}
	return strconv.FormatInt(n, 10), nil
}

// query runs a statement and renders the result set one row per line,
// fields separated by "|". NULL reads as the empty string.
func (t *target) query(ctx context.Context, stmt string, args []string) (string, error) {
	db, err := t.conn()
	if err != nil {
		return "", err
	}
	rows, err := db.QueryContext(ctx, stmt, anyArgs(args)...)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}
	var lines []string
	for rows.Next() {
		vals := make([]any, len(cols))
		for i := range vals {
			vals[i] = new(sql.RawBytes)
		}
		if err := rows.Scan(vals...); err != nil {
			return "", err
		}
		fields := make([]string, len(vals))
		for i, v := range vals {
			fields[i] = string(*v.(*sql.RawBytes))
		}
		lines = append(lines, strings.Join(fields, "|"))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func (t *target) close() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.db == nil {
		return "", nil
	}
	err := t.db.Close()
	t.db = nil
	return "", err
}

func anyArgs(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
