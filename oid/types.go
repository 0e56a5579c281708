// Package oid contains OID constants for the PostgreSQL types the egress
// codec knows about, as defined in pg_type.
package oid

// Oid is a PostgreSQL object identifier, used here to tag the base type of
// a column or parameter value.
type Oid uint32

const (
	T_unknown Oid = 705

	T_bool        Oid = 16
	T_bytea       Oid = 17
	T_char        Oid = 18
	T_name        Oid = 19
	T_int8        Oid = 20
	T_int2        Oid = 21
	T_int2vector  Oid = 22
	T_int4        Oid = 23
	T_text        Oid = 25
	T_oid         Oid = 26
	T_cidr        Oid = 650
	T_float4      Oid = 700
	T_float8      Oid = 701
	T_inet        Oid = 869
	T_bpchar      Oid = 1042
	T_varchar     Oid = 1043
	T_date        Oid = 1082
	T_time        Oid = 1083
	T_timestamp   Oid = 1114
	T_timestamptz Oid = 1184
	T_interval    Oid = 1186
	T_timetz      Oid = 1266
	T_numeric     Oid = 1700
	T_uuid        Oid = 2950
	T_jsonb       Oid = 3802

	T__bool        Oid = 1000
	T__bytea       Oid = 1001
	T__name        Oid = 1003
	T__int2        Oid = 1005
	T__int4        Oid = 1007
	T__text        Oid = 1009
	T__varchar     Oid = 1015
	T__int8        Oid = 1016
	T__float4      Oid = 1021
	T__float8      Oid = 1022
	T__inet        Oid = 1041
	T__timestamp   Oid = 1115
	T__date        Oid = 1182
	T__time        Oid = 1183
	T__timestamptz Oid = 1185
	T__numeric     Oid = 1231
	T__uuid        Oid = 2951
	T__jsonb       Oid = 3807
)

// TypeName maps the OIDs above to the type names used in pg_type.
var TypeName = map[Oid]string{
	T_unknown:      "UNKNOWN",
	T_bool:         "BOOL",
	T_bytea:        "BYTEA",
	T_char:         "CHAR",
	T_name:         "NAME",
	T_int8:         "INT8",
	T_int2:         "INT2",
	T_int2vector:   "INT2VECTOR",
	T_int4:         "INT4",
	T_text:         "TEXT",
	T_oid:          "OID",
	T_cidr:         "CIDR",
	T_float4:       "FLOAT4",
	T_float8:       "FLOAT8",
	T_inet:         "INET",
	T_bpchar:       "BPCHAR",
	T_varchar:      "VARCHAR",
	T_date:         "DATE",
	T_time:         "TIME",
	T_timestamp:    "TIMESTAMP",
	T_timestamptz:  "TIMESTAMPTZ",
	T_interval:     "INTERVAL",
	T_timetz:       "TIMETZ",
	T_numeric:      "NUMERIC",
	T_uuid:         "UUID",
	T_jsonb:        "JSONB",
	T__bool:        "_BOOL",
	T__bytea:       "_BYTEA",
	T__name:        "_NAME",
	T__int2:        "_INT2",
	T__int4:        "_INT4",
	T__text:        "_TEXT",
	T__varchar:     "_VARCHAR",
	T__int8:        "_INT8",
	T__float4:      "_FLOAT4",
	T__float8:      "_FLOAT8",
	T__inet:        "_INET",
	T__timestamp:   "_TIMESTAMP",
	T__date:        "_DATE",
	T__time:        "_TIME",
	T__timestamptz: "_TIMESTAMPTZ",
	T__numeric:     "_NUMERIC",
	T__uuid:        "_UUID",
	T__jsonb:       "_JSONB",
}
