/*
Package sqlite3adapter provides a sqldataset.Adapter over a SQLite3
database file.
*/
package sqlite3adapter

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/XRotoX/sdlc-models/dataset/sqldataset"
	"github.com/XRotoX/sdlc-models/feature"

	// SQLite3 driver registration
	_ "github.com/mattn/go-sqlite3"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a filepath to a SQLite3 database file and a limit to the
number of open connections (0 for no limit) and returns a
sqldataset.Adapter over the file or an error if it cannot be
opened.
*/
func New(filepath string, maxConns int) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", filepath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite3 file %s: %v", filepath, err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) Placeholder(n int) string {
	return "?"
}

func (a *adapter) IDColumnSQL() string {
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (a *adapter) ColumnSQL(f *feature.Feature) string {
	if f.Kind() == feature.Number {
		return fmt.Sprintf("%s REAL", strconv.Quote(f.Name()))
	}
	return fmt.Sprintf("%s TEXT", strconv.Quote(f.Name()))
}
