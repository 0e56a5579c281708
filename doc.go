// Package egress is a cursor-style PostgreSQL client core.
//
// It converts PostgreSQL's binary wire representations to and from
// native Go values, sequences statement execution through connections
// and cursors, tracks transaction state, and classifies server errors
// by SQLSTATE class.
//
// The network transport is not part of the package: egress drives any
// implementation of the Driver, Conn and Result interfaces in the
// driver subpackage, which mirror the libpq surface (PQconnectdb,
// PQexecParams, PQresultStatus and friends).
//
// A typical session:
//
//	conn, err := egress.Connect(transport, map[string]string{"dbname": "app"})
//	if err != nil { ... }
//	defer conn.Close()
//
//	cur, err := conn.Cursor()
//	if err != nil { ... }
//	if err := cur.Execute("SELECT name, balance FROM accounts WHERE id = %s", 7); err != nil { ... }
//	rows, err := cur.FetchAll()
//
// With autocommit off (the default) the first statement opens an
// implicit transaction block; Commit and Rollback end it. Closing a
// connection with an open transaction rolls it back first.
package egress
