// Package datarecording stores flat records in an SQLite database.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/structs"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all tables, sorted.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()

	// Close flushes and closes the database.
	Close() error
}

const defaultBatchSize = 100000

// New creates a new DataRecorder that writes to path.sqlite3. An empty path
// picks a unique name. The buffered entries are flushed when the program
// exits through atexit.
func New(path string) DataRecorder {
	if path == "" {
		path = "mmusim_recording_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	r := NewWithDB(db).(*recorder)
	atexit.Register(r.Flush)

	return r
}

// NewWithDB creates a new DataRecorder with a given database.
func NewWithDB(db *sql.DB) DataRecorder {
	return &recorder{
		db:        db,
		batchSize: defaultBatchSize,
		tables:    make(map[string]*pendingTable),
	}
}

// pendingTable holds the rows of a table that are not in the database yet.
type pendingTable struct {
	entryType reflect.Type
	insertSQL string
	rows      [][]any
}

type recorder struct {
	db         *sql.DB
	tables     map[string]*pendingTable
	batchSize  int
	numPending int
	closed     bool
}

func columnType(kind reflect.Kind) (string, bool) {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return "INTEGER", true
	case reflect.Float32, reflect.Float64:
		return "REAL", true
	case reflect.String:
		return "TEXT", true
	default:
		return "", false
	}
}

func columnDefs(sampleEntry any) ([]string, error) {
	t := reflect.TypeOf(sampleEntry)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.New("entry is not a struct")
	}

	defs := make([]string, 0, t.NumField())

	for _, f := range structs.Fields(sampleEntry) {
		field, _ := t.FieldByName(f.Name())

		sqlType, ok := columnType(field.Type.Kind())
		if !ok {
			return nil, fmt.Errorf("field %s of type %s cannot be recorded",
				field.Name, field.Type)
		}

		defs = append(defs, quoteIdent(f.Name())+" "+sqlType)
	}

	return defs, nil
}

// quoteIdent makes a table or column name safe to use in a statement, even
// when it is an SQL keyword such as Table or Index.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (r *recorder) CreateTable(tableName string, sampleEntry any) {
	defs, err := columnDefs(sampleEntry)
	if err != nil {
		panic(err)
	}

	r.mustExec(fmt.Sprintf("CREATE TABLE %s (\n\t%s\n);",
		quoteIdent(tableName), strings.Join(defs, ",\n\t")))

	placeholders := strings.Repeat("?, ", len(defs))
	placeholders = strings.TrimSuffix(placeholders, ", ")

	r.tables[tableName] = &pendingTable{
		entryType: reflect.TypeOf(sampleEntry),
		insertSQL: fmt.Sprintf("INSERT INTO %s VALUES (%s)",
			quoteIdent(tableName), placeholders),
	}
}

func (r *recorder) InsertData(tableName string, entry any) {
	table, ok := r.tables[tableName]
	if !ok {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != table.entryType {
		panic(fmt.Sprintf("entry of type %T does not fit table %s",
			entry, tableName))
	}

	table.rows = append(table.rows, structs.Values(entry))

	r.numPending++
	if r.numPending >= r.batchSize {
		r.Flush()
	}
}

func (r *recorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Flush writes every pending row in one transaction. Tables without pending
// rows are skipped.
func (r *recorder) Flush() {
	if r.numPending == 0 || r.closed {
		return
	}

	tx, err := r.db.Begin()
	if err != nil {
		panic(err)
	}

	for _, name := range r.ListTables() {
		table := r.tables[name]
		if len(table.rows) == 0 {
			continue
		}

		err = insertRows(tx, table)
		if err != nil {
			_ = tx.Rollback()
			panic(fmt.Errorf("failed to write table %s: %w", name, err))
		}

		table.rows = nil
	}

	err = tx.Commit()
	if err != nil {
		panic(err)
	}

	r.numPending = 0
}

func insertRows(tx *sql.Tx, table *pendingTable) error {
	stmt, err := tx.Prepare(table.insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range table.rows {
		_, err = stmt.Exec(row...)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *recorder) Close() error {
	if r.closed {
		return nil
	}

	r.Flush()
	r.closed = true

	return r.db.Close()
}

func (r *recorder) mustExec(query string) {
	_, err := r.db.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}
}
