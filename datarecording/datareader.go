package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
)

// QueryParams selects and pages the rows of a Query. The zero value returns
// every row in storage order.
type QueryParams struct {
	// Where is a condition such as "TLBHit = ? AND Kind = ?".
	Where string
	Args  []any

	// OrderBy is a sort expression such as "ID DESC".
	OrderBy string

	// Limit caps the rows returned, 0 for no cap. Offset only applies with
	// a Limit.
	Limit  int
	Offset int
}

// DataReader reads back what a DataRecorder stored.
type DataReader interface {
	// MapTable tells which struct the rows of a table are read into. A table
	// must be mapped before it is queried.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables, sorted.
	ListTables() []string

	// Query returns pointers to the mapped struct, one per selected row, and
	// how many rows match params.Where regardless of paging.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	Close() error
}

type reader struct {
	db    *sql.DB
	types map[string]reflect.Type
}

// NewReader opens a database written by a DataRecorder.
func NewReader(dbFilename string) DataReader {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		panic(err)
	}

	return NewReaderWithDB(db)
}

// NewReaderWithDB creates a new DataReader with a given database
func NewReaderWithDB(db *sql.DB) DataReader {
	return &reader{
		db:    db,
		types: make(map[string]reflect.Type),
	}
}

func (r *reader) MapTable(tableName string, sampleEntry any) {
	r.types[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *reader) ListTables() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// clauses renders everything after the FROM clause. The count query only
// uses the WHERE part.
func (p QueryParams) clauses() (where, rest string) {
	if p.Where != "" {
		where = " WHERE " + p.Where
	}

	if p.OrderBy != "" {
		rest += " ORDER BY " + p.OrderBy
	}

	if p.Limit > 0 {
		rest += fmt.Sprintf(" LIMIT %d", p.Limit)

		if p.Offset > 0 {
			rest += fmt.Sprintf(" OFFSET %d", p.Offset)
		}
	}

	return where, rest
}

func (r *reader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	entryType, ok := r.types[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("table %s is not mapped", tableName)
	}

	from := " FROM " + quoteIdent(tableName)
	where, rest := params.clauses()

	var total int

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*)"+from+where, params.Args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", tableName, err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT *"+from+where+rest, params.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	results, err := scanEntries(rows, entryType)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// scanEntries turns every row into a pointer to a new entryType. Columns
// without a matching field are dropped.
func scanEntries(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndex := make([]int, len(columns))
	for i, column := range columns {
		fieldIndex[i] = -1

		if f, ok := entryType.FieldByName(column); ok && len(f.Index) == 1 {
			fieldIndex[i] = f.Index[0]
		}
	}

	var (
		results []any
		discard any
	)

	for rows.Next() {
		entry := reflect.New(entryType)
		targets := make([]any, len(columns))

		for i, idx := range fieldIndex {
			if idx < 0 {
				targets[i] = &discard
				continue
			}

			targets[i] = entry.Elem().Field(idx).Addr().Interface()
		}

		err = rows.Scan(targets...)
		if err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}

func (r *reader) Close() error {
	return r.db.Close()
}
