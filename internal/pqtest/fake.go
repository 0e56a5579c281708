// Package pqtest provides an in-memory driver implementation for
// exercising connection and cursor behavior without a server. Results
// are scripted per statement and every SQL text sent over the fake is
// recorded, including the implicit BEGIN/COMMIT/ROLLBACK traffic.
package pqtest

import (
	"encoding/binary"

	"github.com/egress-db/egress/driver"
	"github.com/egress-db/egress/oid"
)

// Col describes one output column of a scripted result.
type Col struct {
	Name string
	Type oid.Oid
	Size int
	Mod  int
}

// Result is a scripted driver result.
type Result struct {
	status    driver.ResultStatus
	cols      []Col
	rows      [][][]byte // nil cell means SQL NULL
	cmdTuples string
	errMsg    string
	fields    map[byte]string

	// Cleared counts Clear calls, for ownership checks.
	Cleared int
}

// Rows scripts a TuplesOK result. A nil cell is a SQL NULL; a non-nil
// empty cell is a zero-length value.
func Rows(cols []Col, rows ...[][]byte) *Result {
	return &Result{status: driver.ResultTuplesOK, cols: cols, rows: rows}
}

// Command scripts a CommandOK result with the given affected-row tag
// ("" when indeterminate).
func Command(tuples string) *Result {
	return &Result{status: driver.ResultCommandOK, cmdTuples: tuples}
}

// Empty scripts an EmptyQuery result.
func Empty() *Result {
	return &Result{status: driver.ResultEmptyQuery}
}

// Err scripts a FatalError result carrying a SQLSTATE.
func Err(sqlstate, msg string) *Result {
	return &Result{
		status: driver.ResultFatalError,
		errMsg: msg,
		fields: map[byte]string{
			driver.DiagSeverity: "ERROR",
			driver.DiagSQLState: sqlstate,
		},
	}
}

// Notice scripts a NonFatalError result, as produced by warning-level
// server diagnostics.
func Notice(sqlstate, msg string) *Result {
	return &Result{
		status: driver.ResultNonFatalError,
		errMsg: msg,
		fields: map[byte]string{
			driver.DiagSeverity: "WARNING",
			driver.DiagSQLState: sqlstate,
		},
	}
}

func (r *Result) Status() driver.ResultStatus { return r.status }
func (r *Result) FieldCount() int             { return len(r.cols) }
func (r *Result) RowCount() int               { return len(r.rows) }
func (r *Result) CmdTuples() string           { return r.cmdTuples }

func (r *Result) FieldName(col int) string  { return r.cols[col].Name }
func (r *Result) FieldType(col int) oid.Oid { return r.cols[col].Type }
func (r *Result) FieldMod(col int) int      { return r.cols[col].Mod }
func (r *Result) FieldSize(col int) int     { return r.cols[col].Size }

func (r *Result) Value(row, col int) []byte {
	if r.rows[row][col] == nil {
		return []byte{}
	}
	return r.rows[row][col]
}
func (r *Result) Length(row, col int) int  { return len(r.rows[row][col]) }
func (r *Result) IsNull(row, col int) bool { return r.rows[row][col] == nil }

func (r *Result) ErrorMessage() string        { return r.errMsg }
func (r *Result) ErrorField(field byte) string { return r.fields[field] }
func (r *Result) Clear()                      { r.Cleared++ }

// Conn is a scripted driver connection. BEGIN, COMMIT and ROLLBACK are
// handled internally and drive the transaction status; every other
// statement consumes the next queued result (a bare CommandOK when the
// queue is empty). A fatal result inside a transaction block moves the
// status to in-failed-transaction.
type Conn struct {
	// Log records every SQL text in execution order.
	Log []string
	// Queue holds scripted results for non-transaction statements.
	Queue []*Result

	Txn    driver.TransactionStatus
	PID    int
	Bad    bool
	Closed bool

	// Last* capture the parameters of the most recent ExecParams call.
	LastTypes   []oid.Oid
	LastValues  [][]byte
	LastLengths []int32
	LastFormats []int16
}

func (c *Conn) Status() driver.ConnStatus {
	if c.Bad || c.Closed {
		return driver.ConnBad
	}
	return driver.ConnOK
}

func (c *Conn) TransactionStatus() driver.TransactionStatus { return c.Txn }

func (c *Conn) Exec(sql string) driver.Result {
	c.Log = append(c.Log, sql)
	return c.dispatch(sql)
}

func (c *Conn) ExecParams(sql string, paramTypes []oid.Oid, paramValues [][]byte, paramLengths []int32, paramFormats []int16, binaryResult bool) driver.Result {
	c.Log = append(c.Log, sql)
	c.LastTypes = paramTypes
	c.LastValues = paramValues
	c.LastLengths = paramLengths
	c.LastFormats = paramFormats
	return c.dispatch(sql)
}

func (c *Conn) dispatch(sql string) driver.Result {
	switch sql {
	case "BEGIN":
		c.Txn = driver.TxnInTransaction
		return Command("")
	case "COMMIT", "ROLLBACK":
		c.Txn = driver.TxnIdle
		return Command("")
	}
	res := Command("")
	if len(c.Queue) > 0 {
		res = c.Queue[0]
		c.Queue = c.Queue[1:]
	}
	if res.status == driver.ResultFatalError && c.Txn == driver.TxnInTransaction {
		c.Txn = driver.TxnInFailedTransaction
	}
	return res
}

func (c *Conn) ErrorMessage() string {
	if c.Bad {
		return "connection is bad"
	}
	return ""
}

func (c *Conn) ServerPID() int { return c.PID }

func (c *Conn) Close() {
	c.Closed = true
	c.Txn = driver.TxnUnknown
}

// Driver hands out a prepared Conn and records the merged connection
// parameters it was called with.
type Driver struct {
	Conn   *Conn
	Params map[string]string
	Err    error
}

func (d *Driver) Connect(params map[string]string) (driver.Conn, error) {
	d.Params = params
	if d.Err != nil {
		return nil, d.Err
	}
	if d.Conn == nil {
		d.Conn = &Conn{PID: 4711}
	}
	return d.Conn, nil
}

// Wire-format helpers for scripting binary cells.

func Int2(v int16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(v))
	return b
}

func Int4(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func Int8(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func Bool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func Text(s string) []byte { return []byte(s) }

// TextCol is a shorthand for a variable-width text column.
func TextCol(name string) Col {
	return Col{Name: name, Type: oid.T_text, Size: -1, Mod: -1}
}

// Int4Col is a shorthand for a four-byte integer column.
func Int4Col(name string) Col {
	return Col{Name: name, Type: oid.T_int4, Size: 4, Mod: -1}
}
