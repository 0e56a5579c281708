package egress

import "fmt"

// ErrorKind partitions driver errors the way the DB-API taxonomy does.
type ErrorKind int

const (
	// Database is the fallback kind for server errors whose SQLSTATE class
	// is unrecognized or absent.
	Database ErrorKind = iota
	// Interface marks misuse of the driver API itself: operating on a
	// closed cursor or connection, fetching before any execute.
	Interface
	NotSupported
	Programming
	Data
	Integrity
	Internal
	Operational
	// UnsupportedType: decode hit a type OID with no registered decoder.
	UnsupportedType
	// UnsupportedArrayDimension: the array codec only handles one
	// dimension.
	UnsupportedArrayDimension
	// ParameterCount: the supplied parameters do not match the statement's
	// placeholders.
	ParameterCount
)

func (k ErrorKind) String() string {
	switch k {
	case Interface:
		return "InterfaceError"
	case NotSupported:
		return "NotSupportedError"
	case Programming:
		return "ProgrammingError"
	case Data:
		return "DataError"
	case Integrity:
		return "IntegrityError"
	case Internal:
		return "InternalError"
	case Operational:
		return "OperationalError"
	case UnsupportedType:
		return "UnsupportedTypeError"
	case UnsupportedArrayDimension:
		return "UnsupportedArrayDimensionError"
	case ParameterCount:
		return "ParameterCountError"
	default:
		return "DatabaseError"
	}
}

// Error is the single error type returned by all egress operations.
type Error struct {
	Kind ErrorKind
	// Code is the 5-character SQLSTATE, when the server supplied one.
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("egress: %s: %s (%s)", e.Kind, e.Message, e.Code)
	}
	return fmt.Sprintf("egress: %s: %s", e.Kind, e.Message)
}

// SQLState returns the SQLSTATE code, if any.
func (e *Error) SQLState() string { return e.Code }

func errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// sqlstateKind maps a SQLSTATE class (the first two characters) to an
// error kind. Classes not listed fall back to Database.
var sqlstateKind = map[string]ErrorKind{
	"0A": NotSupported, // feature not supported

	"21": Programming, // cardinality violation
	"22": Data,        // data exception
	"23": Integrity,   // integrity constraint violation
	"24": Internal,    // invalid cursor state
	"25": Internal,    // invalid transaction state
	"26": Operational, // invalid SQL statement name
	"27": Operational, // triggered data change violation
	"28": Operational, // invalid authorization specification
	"2B": Internal,    // dependent privilege descriptors still exist
	"2D": Internal,    // invalid transaction termination
	"2F": Internal,    // SQL routine exception

	"34": Operational, // invalid cursor name
	"38": Internal,    // external routine exception
	"39": Internal,    // external routine invocation exception
	"3B": Internal,    // savepoint exception
	"3D": Programming, // invalid catalog name
	"3F": Programming, // invalid schema name

	"40": Programming, // transaction rollback
	"42": Programming, // syntax error or access rule violation
	"44": Programming, // WITH CHECK OPTION violation

	"53": Operational, // insufficient resources
	"54": Operational, // program limit exceeded
	"55": Operational, // object not in prerequisite state
	"57": Operational, // operator intervention
	"58": Operational, // system error external to PostgreSQL

	"F0": Internal, // configuration file error
	"P0": Internal, // PL/pgSQL error
	"XX": Internal, // internal error
}

// classifyState maps a SQLSTATE to an error kind by its class.
func classifyState(code string) ErrorKind {
	if len(code) < 2 {
		return Database
	}
	if k, ok := sqlstateKind[code[:2]]; ok {
		return k
	}
	return Database
}
