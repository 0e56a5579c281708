// Package driver defines the contract egress consumes from the
// underlying transport, mirroring the libpq surface (PQconnectdb,
// PQexecParams, PQresultStatus and friends). The transport — socket
// handling, TLS, authentication — lives behind these interfaces and is
// not part of the core.
package driver

import "github.com/egress-db/egress/oid"

// Driver opens connections. It is the equivalent of PQconnectdb.
type Driver interface {
	Connect(params map[string]string) (Conn, error)
}

// Conn is a single backend connection. It supports exactly one in-flight
// command; callers must serialize access (egress.Connection does).
type Conn interface {
	// Status reports whether the connection is usable (PQstatus).
	Status() ConnStatus

	// TransactionStatus reports the server-side transaction state
	// (PQtransactionStatus).
	TransactionStatus() TransactionStatus

	// Exec runs a bare SQL text (PQexec).
	Exec(sql string) Result

	// ExecParams runs a SQL text with positional $n parameters
	// (PQexecParams). A nil value in paramValues is sent as SQL NULL.
	// binaryResult requests binary representation for all result columns.
	ExecParams(sql string, paramTypes []oid.Oid, paramValues [][]byte, paramLengths []int32, paramFormats []int16, binaryResult bool) Result

	// ErrorMessage returns the connection-level error text
	// (PQerrorMessage).
	ErrorMessage() string

	// ServerPID returns the backend process ID (PQbackendPID).
	ServerPID() int

	// Close releases the connection (PQfinish). The handle is unusable
	// afterwards.
	Close()
}

// Result is a command result handle. It is exclusively owned by the
// cursor that produced it until Clear is called.
type Result interface {
	Status() ResultStatus

	// FieldCount is the number of output columns (PQnfields).
	FieldCount() int
	// RowCount is the number of tuples in a TuplesOK result (PQntuples).
	RowCount() int
	// CmdTuples is the affected-row count of a CommandOK result as a
	// decimal string, or "" when indeterminate (PQcmdTuples).
	CmdTuples() string

	FieldName(col int) string
	FieldType(col int) oid.Oid
	// FieldMod is the type modifier (PQfmod); -1 when none applies.
	FieldMod(col int) int
	// FieldSize is the fixed byte width of the type, or -1 for
	// variable-width types (PQfsize).
	FieldSize(col int) int

	// Value returns the raw bytes of a cell. For a SQL NULL it returns
	// an empty slice; NULL-ness must be checked with IsNull, never
	// inferred from a zero length.
	Value(row, col int) []byte
	Length(row, col int) int
	IsNull(row, col int) bool

	// ErrorMessage is the primary error text (PQresultErrorMessage).
	ErrorMessage() string
	// ErrorField returns a single diagnostic field
	// (PQresultErrorField), keyed by the protocol field codes below.
	ErrorField(field byte) string

	// Clear frees the result (PQclear). Safe to call more than once.
	Clear()
}

// ConnStatus reports connection health (ConnStatusType).
type ConnStatus int

const (
	ConnOK ConnStatus = iota
	ConnBad
)

// ResultStatus is the execution status of a result (ExecStatusType).
type ResultStatus int

const (
	ResultEmptyQuery ResultStatus = iota
	ResultCommandOK
	ResultTuplesOK
	ResultCopyOut
	ResultCopyIn
	ResultBadResponse
	ResultNonFatalError
	ResultFatalError
)

// TransactionStatus is the server-reported transaction state
// (PGTransactionStatusType).
type TransactionStatus int

const (
	// TxnIdle: no transaction in progress.
	TxnIdle TransactionStatus = iota
	// TxnActive: a command is in flight.
	TxnActive
	// TxnInTransaction: idle, inside a transaction block.
	TxnInTransaction
	// TxnInFailedTransaction: idle, inside a failed transaction block;
	// the block is inert until rolled back.
	TxnInFailedTransaction
	// TxnUnknown: the status cannot be determined (bad connection).
	TxnUnknown
)

func (s TransactionStatus) String() string {
	switch s {
	case TxnIdle:
		return "idle"
	case TxnActive:
		return "active"
	case TxnInTransaction:
		return "in transaction"
	case TxnInFailedTransaction:
		return "in failed transaction"
	default:
		return "unknown"
	}
}

// Error-message diagnostic field codes, from the protocol's error and
// notice message formats.
const (
	DiagSeverity       = 'S'
	DiagSQLState       = 'C'
	DiagMessagePrimary = 'M'
	DiagMessageDetail  = 'D'
	DiagMessageHint    = 'H'
	DiagSourceFile     = 'F'
	DiagSourceLine     = 'L'
	DiagSourceFunction = 'R'
)
