package egress

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/egress-db/egress/driver"
	"github.com/egress-db/egress/internal/pqtest"
)

func TestConnect(t *testing.T) {
	d := &pqtest.Driver{}
	cn, err := Connect(d, map[string]string{"dbname": "app", "port": "6432"})
	if err != nil {
		t.Fatal(err)
	}
	defer cn.Close()

	// Explicit parameters win over defaults; defaults fill the gaps.
	if d.Params["dbname"] != "app" || d.Params["port"] != "6432" {
		t.Errorf("params = %v", d.Params)
	}
	if _, ok := d.Params["host"]; !ok {
		t.Errorf("params = %v", d.Params)
	}

	pid, err := cn.ServerPID()
	if err != nil {
		t.Fatal(err)
	}
	if pid != 4711 {
		t.Errorf("pid = %d", pid)
	}
}

func TestConnectBadConnection(t *testing.T) {
	fc := &pqtest.Conn{Bad: true}
	_, err := Connect(&pqtest.Driver{Conn: fc}, nil)
	var e *Error
	if !errors.As(err, &e) || e.Kind != Operational {
		t.Fatalf("have %v, want OperationalError", err)
	}
	if !fc.Closed {
		t.Error("bad connection not released")
	}
}

func TestImplicitBegin(t *testing.T) {
	cur, fc := testCursor(t, pqtest.Command("1"), pqtest.Command("1"))
	if err := cur.Execute("INSERT INTO t VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	if err := cur.Execute("INSERT INTO t VALUES (2)"); err != nil {
		t.Fatal(err)
	}

	// One BEGIN opens the block; the second statement joins it.
	if len(fc.Log) != 3 || fc.Log[0] != "BEGIN" {
		t.Errorf("log = %q", fc.Log)
	}
	if fc.Txn != driver.TxnInTransaction {
		t.Errorf("txn = %s", fc.Txn)
	}
}

func TestAutocommit(t *testing.T) {
	cn, fc := testConn(t, pqtest.Command("1"))
	cn.SetAutocommit(true)
	if !cn.Autocommit() {
		t.Fatal("autocommit not set")
	}
	cur, err := cn.Cursor()
	if err != nil {
		t.Fatal(err)
	}
	if err := cur.Execute("INSERT INTO t VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fc.Log, []string{"INSERT INTO t VALUES (1)"}) {
		t.Errorf("log = %q", fc.Log)
	}
}

func TestCommitRollbackWhenIdle(t *testing.T) {
	cn, fc := testConn(t)
	if err := cn.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := cn.Rollback(); err != nil {
		t.Fatal(err)
	}
	// Nothing to end, nothing sent.
	if len(fc.Log) != 0 {
		t.Errorf("log = %q", fc.Log)
	}
}

func TestCommit(t *testing.T) {
	cur, fc := testCursor(t, pqtest.Command("1"), pqtest.Command("1"))
	cn := cur.conn
	if err := cur.Execute("INSERT INTO t VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	if err := cn.Commit(); err != nil {
		t.Fatal(err)
	}
	if fc.Txn != driver.TxnIdle {
		t.Errorf("txn = %s", fc.Txn)
	}

	// The next statement opens a fresh block.
	if err := cur.Execute("INSERT INTO t VALUES (2)"); err != nil {
		t.Fatal(err)
	}
	wantLog := []string{"BEGIN", "INSERT INTO t VALUES (1)", "COMMIT", "BEGIN", "INSERT INTO t VALUES (2)"}
	if !reflect.DeepEqual(fc.Log, wantLog) {
		t.Errorf("log = %q", fc.Log)
	}
}

func TestRollback(t *testing.T) {
	cur, fc := testCursor(t, pqtest.Command("1"))
	if err := cur.Execute("INSERT INTO t VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	if err := cur.conn.Rollback(); err != nil {
		t.Fatal(err)
	}
	if fc.Log[len(fc.Log)-1] != "ROLLBACK" {
		t.Errorf("log = %q", fc.Log)
	}
	if fc.Txn != driver.TxnIdle {
		t.Errorf("txn = %s", fc.Txn)
	}
}

func TestCloseRollsBackOpenTransaction(t *testing.T) {
	cur, fc := testCursor(t, pqtest.Command("1"))
	cn := cur.conn
	if err := cur.Execute("INSERT INTO t VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	if err := cn.Close(); err != nil {
		t.Fatal(err)
	}

	if fc.Log[len(fc.Log)-1] != "ROLLBACK" {
		t.Errorf("log = %q", fc.Log)
	}
	if !fc.Closed {
		t.Error("handle not released")
	}

	// The cursor was detached by the close.
	err := cur.Execute("SELECT 1")
	var e *Error
	if !errors.As(err, &e) || e.Kind != Interface {
		t.Errorf("have %v, want InterfaceError", err)
	}

	// Closing again is a no-op.
	if err := cn.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNotConnected(t *testing.T) {
	cn, _ := testConn(t)
	if err := cn.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := cn.Cursor(); !pqtest.ErrorContains(err, "not connected") {
		t.Errorf("have %v", err)
	}
	if err := cn.Commit(); !pqtest.ErrorContains(err, "not connected") {
		t.Errorf("have %v", err)
	}
	if _, err := cn.ServerPID(); !pqtest.ErrorContains(err, "not connected") {
		t.Errorf("have %v", err)
	}
	if _, err := cn.TransactionStatus(); !pqtest.ErrorContains(err, "not connected") {
		t.Errorf("have %v", err)
	}
}

func TestNoticeIsLoggedNotRaised(t *testing.T) {
	cur, _ := testCursor(t, pqtest.Notice("01000", "this is only a warning"))

	var buf bytes.Buffer
	cur.conn.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := cur.Execute("SET client_min_messages = debug"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "server diagnostic") || !strings.Contains(out, "01000") {
		t.Errorf("log output = %q", out)
	}
	if cur.RowCount() != -1 {
		t.Errorf("rowcount = %d", cur.RowCount())
	}
}

func TestFailedTransactionState(t *testing.T) {
	cur, fc := testCursor(t,
		pqtest.Command("1"),
		pqtest.Err("42601", "syntax error at or near"),
	)
	if err := cur.Execute("INSERT INTO t VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	if err := cur.Execute("SELEC 1"); err == nil {
		t.Fatal("bad statement succeeded")
	}

	st, err := cur.conn.TransactionStatus()
	if err != nil {
		t.Fatal(err)
	}
	if st != driver.TxnInFailedTransaction {
		t.Errorf("txn = %s", st)
	}

	// Rollback clears the failed block.
	if err := cur.conn.Rollback(); err != nil {
		t.Fatal(err)
	}
	if fc.Txn != driver.TxnIdle {
		t.Errorf("txn = %s", fc.Txn)
	}
}

func TestConcurrentCursors(t *testing.T) {
	cn, fc := testConn(t)
	cn.SetAutocommit(true)

	const workers = 8
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			cur, err := cn.Cursor()
			if err != nil {
				return err
			}
			defer cur.Close()
			if err := cur.Execute("SELECT 1"); err != nil {
				return err
			}
			_, err = cur.FetchAll()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if len(fc.Log) != workers {
		t.Errorf("log length = %d", len(fc.Log))
	}
}
