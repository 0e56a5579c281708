package egress

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/egress-db/egress/driver"
)

// Connection owns a driver connection handle and the cursors opened on
// it. The handle supports one in-flight command, so every operation on
// the connection or its cursors runs under the connection's mutex;
// distinct connections are fully independent.
type Connection struct {
	mu      sync.Mutex
	conn    driver.Conn
	codec   *Codec
	logger  *slog.Logger
	cursors []*Cursor

	// autocommit makes each statement commit immediately instead of
	// opening an implicit transaction block.
	autocommit bool
}

// Connect opens a connection through the given driver. Connection
// parameters are libpq-style key/value pairs; missing keys are filled
// from the usual PG* environment variables and built-in defaults.
func Connect(d driver.Driver, params map[string]string) (*Connection, error) {
	h, err := d.Connect(defaultParams(params))
	if err != nil {
		return nil, errorf(Operational, "connect: %s", err)
	}
	if h.Status() == driver.ConnBad {
		msg := strings.TrimSpace(h.ErrorMessage())
		h.Close()
		return nil, errorf(Operational, "connect: %s", msg)
	}
	return NewConnection(h), nil
}

// NewConnection wraps an already-established driver handle.
func NewConnection(h driver.Conn) *Connection {
	return &Connection{
		conn:   h,
		codec:  defaultCodec,
		logger: slog.Default(),
	}
}

// SetCodec replaces the codec used to convert values on this connection.
func (cn *Connection) SetCodec(c *Codec) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	cn.codec = c
}

// SetLogger replaces the logger used for server diagnostics.
func (cn *Connection) SetLogger(l *slog.Logger) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	cn.logger = l
}

// SetAutocommit switches autocommit mode. With autocommit off (the
// default), the first statement on an idle connection opens an implicit
// transaction block.
func (cn *Connection) SetAutocommit(on bool) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	cn.autocommit = on
}

// Autocommit reports the autocommit mode.
func (cn *Connection) Autocommit() bool {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	return cn.autocommit
}

// Cursor opens a new cursor on this connection.
func (cn *Connection) Cursor() (*Cursor, error) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.conn == nil {
		return nil, errNotConnected()
	}
	c := &Cursor{conn: cn, Arraysize: 1}
	cn.cursors = append(cn.cursors, c)
	return c, nil
}

// ServerPID returns the backend process ID.
func (cn *Connection) ServerPID() (int, error) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.conn == nil {
		return 0, errNotConnected()
	}
	return cn.conn.ServerPID(), nil
}

// TransactionStatus reports the server-side transaction state.
func (cn *Connection) TransactionStatus() (driver.TransactionStatus, error) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.conn == nil {
		return driver.TxnUnknown, errNotConnected()
	}
	return cn.conn.TransactionStatus(), nil
}

// Commit commits the pending transaction. It is a no-op when no
// transaction block is open.
func (cn *Connection) Commit() error {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.conn == nil {
		return errNotConnected()
	}
	if cn.conn.TransactionStatus() == driver.TxnIdle {
		return nil
	}
	return cn.execChecked("COMMIT")
}

// Rollback rolls back the pending transaction. It is a no-op when no
// transaction block is open.
func (cn *Connection) Rollback() error {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.conn == nil {
		return errNotConnected()
	}
	if cn.conn.TransactionStatus() == driver.TxnIdle {
		return nil
	}
	return cn.execChecked("ROLLBACK")
}

// Close closes every open cursor, rolls back any pending transaction,
// and releases the driver handle. The connection is unusable afterwards;
// closing an already-closed connection is a no-op.
func (cn *Connection) Close() error {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.conn == nil {
		return nil
	}
	for _, c := range cn.cursors {
		c.closeLocked()
	}
	cn.cursors = nil

	var err error
	if cn.conn.TransactionStatus() != driver.TxnIdle {
		err = cn.execChecked("ROLLBACK")
	}
	cn.conn.Close()
	cn.conn = nil
	return err
}

// removeCursor drops a closed cursor from the tracking list.
func (cn *Connection) removeCursor(c *Cursor) {
	for i, o := range cn.cursors {
		if o == c {
			cn.cursors = append(cn.cursors[:i], cn.cursors[i+1:]...)
			return
		}
	}
}

// beginIfNeeded opens the implicit transaction block: with autocommit
// off, any statement executed while idle is preceded by a BEGIN.
// Callers hold cn.mu.
func (cn *Connection) beginIfNeeded() error {
	if cn.autocommit || cn.conn.TransactionStatus() != driver.TxnIdle {
		return nil
	}
	return cn.execChecked("BEGIN")
}

// execChecked runs a bare command and classifies its outcome, freeing
// the result. Callers hold cn.mu.
func (cn *Connection) execChecked(sql string) error {
	res := cn.conn.Exec(sql)
	if err := cn.checkResult(res); err != nil {
		return err
	}
	res.Clear()
	return nil
}

// checkResult classifies a command outcome. Successful and warning-level
// results leave the result handle to the caller; a failed result is
// freed here and returned as a classified error.
func (cn *Connection) checkResult(res driver.Result) error {
	switch res.Status() {
	case driver.ResultCommandOK, driver.ResultTuplesOK, driver.ResultEmptyQuery:
		return cn.checkConnStatus()
	case driver.ResultNonFatalError:
		// Warning-level diagnostics don't fail the statement; log and
		// fall through to the connection-level check.
		cn.logger.Warn("server diagnostic",
			"severity", res.ErrorField(driver.DiagSeverity),
			"sqlstate", res.ErrorField(driver.DiagSQLState),
			"message", strings.TrimSpace(res.ErrorMessage()))
		return cn.checkConnStatus()
	}

	code := res.ErrorField(driver.DiagSQLState)
	msg := strings.TrimSpace(res.ErrorMessage())
	res.Clear()
	return &Error{Kind: classifyState(code), Code: code, Message: msg}
}

// checkConnStatus surfaces connection-level failure underneath an
// otherwise acceptable result. Callers hold cn.mu.
func (cn *Connection) checkConnStatus() error {
	if cn.conn.Status() == driver.ConnOK {
		return nil
	}
	return errorf(Operational, "%s", strings.TrimSpace(cn.conn.ErrorMessage()))
}

func errNotConnected() *Error {
	return errorf(Interface, "not connected")
}
