package foreign

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"sentra/internal/value"
)

// sqlLibrary backs require("sql") (SPEC_FULL.md §6.6): connect(dsn) opens a
// *sql.DB keyed by scheme, query(conn, text, args) runs it and shapes the
// result the way spec.md's Array-of-Struct rows already read everywhere
// else in the language.
func sqlLibrary() *value.NativeLibrary {
	conns := &connTable{byHandle: map[int64]*sql.DB{}}
	return &value.NativeLibrary{
		Name: "sql",
		Fields: map[string]value.Value{
			"connect": &value.NativeFunction{Name: "connect", Fn: conns.connect},
			"query":   &value.NativeFunction{Name: "query", Fn: conns.query},
			"close":   &value.NativeFunction{Name: "close", Fn: conns.close},
		},
	}
}

// connTable hands scripts an opaque integer handle rather than the *sql.DB
// itself, since value.Value has no escape hatch for arbitrary Go pointers.
type connTable struct {
	byHandle map[int64]*sql.DB
	next     int64
}

func driverFor(dsn string) (driver, dataSource string, err error) {
	switch {
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", strings.TrimPrefix(dsn, "sqlserver://"), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), nil
	default:
		return "", "", fmt.Errorf("unrecognized dsn scheme: %s", dsn)
	}
}

func (c *connTable) connect(args []value.Value, _ Callback) (value.Value, error) {
	if len(args) != 1 {
		return value.NewError(3, "connect expects exactly one argument"), nil
	}
	dsn, ok := value.Deref(args[0]).(string)
	if !ok {
		return value.NewError(1, "connect expects a dsn string"), nil
	}
	driverName, source, err := driverFor(dsn)
	if err != nil {
		return value.NewError(5, err.Error()), nil
	}
	db, err := sql.Open(driverName, source)
	if err != nil {
		return value.NewError(5, err.Error()), nil
	}
	if err := db.Ping(); err != nil {
		return value.NewError(5, err.Error()), nil
	}
	c.next++
	handle := c.next
	c.byHandle[handle] = db
	return value.BoxInt64(handle), nil
}

func (c *connTable) close(args []value.Value, _ Callback) (value.Value, error) {
	if len(args) != 1 {
		return value.NewError(3, "close expects exactly one argument"), nil
	}
	handle, ok := value.AsBig(value.Deref(args[0]))
	if !ok {
		return value.NewError(1, "close expects a connection handle"), nil
	}
	db, ok := c.byHandle[handle.Int64()]
	if !ok {
		return value.NewError(2, "unknown connection handle"), nil
	}
	delete(c.byHandle, handle.Int64())
	if err := db.Close(); err != nil {
		return value.NewError(5, err.Error()), nil
	}
	return nil, nil
}

func (c *connTable) query(args []value.Value, _ Callback) (value.Value, error) {
	if len(args) < 2 {
		return value.NewError(3, "query expects (conn, text, ...args)"), nil
	}
	handle, ok := value.AsBig(value.Deref(args[0]))
	if !ok {
		return value.NewError(1, "query expects a connection handle"), nil
	}
	db, ok := c.byHandle[handle.Int64()]
	if !ok {
		return value.NewError(2, "unknown connection handle"), nil
	}
	text, ok := value.Deref(args[1]).(string)
	if !ok {
		return value.NewError(1, "query expects a string statement"), nil
	}
	params := make([]interface{}, 0, len(args)-2)
	for _, a := range args[2:] {
		params = append(params, value.Deref(a))
	}
	rows, err := db.Query(text, params...)
	if err != nil {
		return value.NewError(5, err.Error()), nil
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return value.NewError(5, err.Error()), nil
	}
	result := &value.Array{}
	for rows.Next() {
		scanDst := make([]interface{}, len(cols))
		scanPtrs := make([]interface{}, len(cols))
		for i := range scanDst {
			scanPtrs[i] = &scanDst[i]
		}
		if err := rows.Scan(scanPtrs...); err != nil {
			return value.NewError(5, err.Error()), nil
		}
		row := value.NewStruct()
		for i, col := range cols {
			row.Fields[col] = sqlToValue(scanDst[i])
		}
		result.Elements = append(result.Elements, row)
	}
	return result, nil
}

func sqlToValue(v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case int64:
		return value.BoxInt64(t)
	case float64:
		return value.Double(t)
	case bool:
		return t
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
