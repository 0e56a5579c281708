package egress

import (
	"strconv"
	"strings"

	"github.com/egress-db/egress/driver"
	"github.com/egress-db/egress/oid"
)

// Cursor executes statements on its connection and walks their results.
// A cursor is forward-only: rows are decoded lazily, one at a time, and
// a fully consumed result is freed immediately.
//
// Cursors sharing a connection are serialized by the connection's mutex;
// a closed (detached) cursor fails every operation with InterfaceError.
type Cursor struct {
	// conn is set at creation and never changes, so methods can reach the
	// connection's mutex without holding it. closed marks detachment and
	// is guarded by that mutex.
	conn   *Connection
	closed bool

	// Arraysize is the default number of rows FetchMany returns.
	Arraysize int

	res      driver.Result
	desc     []FieldDescription
	rowcount int64
	rows     int
	row      int
	executed bool
}

// Execute runs a statement. Placeholders are written %s-style with %%
// escaping a literal percent; they are translated to the backend's $1,
// $2, ... markers in left-to-right order, and the argument count must
// match the placeholder count. Arguments are converted through the
// connection's codec.
func (c *Cursor) Execute(query string, args ...interface{}) error {
	c.conn.mu.Lock()
	defer c.conn.mu.Unlock()
	return c.executeLocked(query, args)
}

// ExecuteMany runs the statement once per argument tuple, sequentially.
// A failure aborts without executing the remaining tuples; only the last
// result's metadata and rowcount are retained.
func (c *Cursor) ExecuteMany(query string, argSets [][]interface{}) error {
	c.conn.mu.Lock()
	defer c.conn.mu.Unlock()
	for _, args := range argSets {
		if err := c.executeLocked(query, args); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cursor) executeLocked(query string, args []interface{}) error {
	if c.closed {
		return errCursorClosed()
	}
	cn := c.conn
	if cn.conn == nil {
		return errNotConnected()
	}

	translated, nparams := translateParams(query)
	if nparams != len(args) {
		return errorf(ParameterCount, "statement has %d placeholders but %d parameters were supplied", nparams, len(args))
	}

	var (
		types   = make([]oid.Oid, len(args))
		values  = make([][]byte, len(args))
		lengths = make([]int32, len(args))
		formats = make([]int16, len(args))
	)
	for i, a := range args {
		p, err := cn.codec.Encode(a)
		if err != nil {
			return err
		}
		types[i] = p.OID
		values[i] = p.Value
		lengths[i] = int32(len(p.Value))
		if p.Binary {
			formats[i] = 1
		}
	}

	if err := cn.beginIfNeeded(); err != nil {
		return err
	}

	res := cn.conn.ExecParams(translated, types, values, lengths, formats, true)
	if err := cn.checkResult(res); err != nil {
		return err
	}
	c.setResult(res)
	return nil
}

// setResult installs a new result, superseding (and freeing) the
// previous one.
func (c *Cursor) setResult(res driver.Result) {
	c.freeResult()
	c.res = res
	c.desc = describeResult(res)
	c.row = 0
	c.rows = 0
	c.executed = true

	switch res.Status() {
	case driver.ResultTuplesOK:
		c.rows = res.RowCount()
		c.rowcount = int64(c.rows)
	case driver.ResultCommandOK:
		if n, err := strconv.ParseInt(res.CmdTuples(), 10, 64); err == nil {
			c.rowcount = n
		} else {
			c.rowcount = -1
		}
	default:
		c.rowcount = -1
	}
}

func (c *Cursor) freeResult() {
	if c.res != nil {
		c.res.Clear()
		c.res = nil
	}
}

// FetchOne returns the next row, or a nil row once the result is
// exhausted. The backing result is freed at the moment of exhaustion,
// not at cursor close.
func (c *Cursor) FetchOne() (Row, error) {
	c.conn.mu.Lock()
	defer c.conn.mu.Unlock()
	return c.fetchLocked()
}

func (c *Cursor) fetchLocked() (Row, error) {
	if c.closed {
		return nil, errCursorClosed()
	}
	if !c.executed {
		return nil, errorf(Interface, "no result to fetch from; execute a statement first")
	}
	if c.res == nil || c.row >= c.rows {
		c.freeResult()
		return nil, nil
	}

	rec := make(Row, len(c.desc))
	for i, fd := range c.desc {
		if c.res.IsNull(c.row, i) {
			continue
		}
		v, err := c.conn.codec.Decode(fd.OID, fd.Mod, c.res.Value(c.row, i))
		if err != nil {
			return nil, err
		}
		rec[i] = v
	}
	c.row++
	return rec, nil
}

// FetchMany returns up to n rows; n <= 0 means the cursor's Arraysize.
// Fewer rows than requested are returned only at exhaustion.
func (c *Cursor) FetchMany(n int) ([]Row, error) {
	c.conn.mu.Lock()
	defer c.conn.mu.Unlock()

	if n <= 0 {
		n = c.Arraysize
	}
	out := make([]Row, 0, n)
	for len(out) < n {
		row, err := c.fetchLocked()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		out = append(out, row)
	}
	return out, nil
}

// FetchAll returns all remaining rows. A result with no rows yields an
// empty slice, never nil.
func (c *Cursor) FetchAll() ([]Row, error) {
	c.conn.mu.Lock()
	defer c.conn.mu.Unlock()

	out := make([]Row, 0)
	for {
		row, err := c.fetchLocked()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return out, nil
		}
		out = append(out, row)
	}
}

// Description returns the column descriptors of the last executed
// statement, or nil for statements that return no rows.
func (c *Cursor) Description() []FieldDescription {
	c.conn.mu.Lock()
	defer c.conn.mu.Unlock()
	return c.desc
}

// RowCount returns the number of rows the last statement produced (for
// row-returning statements) or affected (for commands); -1 when nothing
// has been executed or the count is indeterminate.
func (c *Cursor) RowCount() int64 {
	c.conn.mu.Lock()
	defer c.conn.mu.Unlock()
	if c.closed || !c.executed {
		return -1
	}
	return c.rowcount
}

// Close releases any held result and detaches the cursor from its
// connection. The cursor is permanently unusable afterwards; closing an
// already-closed cursor is a no-op.
func (c *Cursor) Close() error {
	cn := c.conn
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closeLocked()
	cn.removeCursor(c)
	return nil
}

// closeLocked detaches the cursor. Callers hold the connection's mutex.
func (c *Cursor) closeLocked() {
	c.freeResult()
	c.desc = nil
	c.executed = false
	c.closed = true
}

func errCursorClosed() *Error {
	return errorf(Interface, "cursor is closed")
}

// translateParams rewrites %s placeholders as $1, $2, ... and unescapes
// %% to a literal percent, returning the rewritten text and the
// placeholder count. Any other percent sequence passes through
// unchanged.
func translateParams(q string) (string, int) {
	if !strings.ContainsRune(q, '%') {
		return q, 0
	}
	var b strings.Builder
	b.Grow(len(q))
	n := 0
	for i := 0; i < len(q); i++ {
		ch := q[i]
		if ch != '%' || i+1 >= len(q) {
			b.WriteByte(ch)
			continue
		}
		switch q[i+1] {
		case 's':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			i++
		case '%':
			b.WriteByte('%')
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), n
}
