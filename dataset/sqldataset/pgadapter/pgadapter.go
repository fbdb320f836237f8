/*
Package pgadapter provides a sqldataset.Adapter over a PostgreSQL
database.
*/
package pgadapter

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/XRotoX/sdlc-models/dataset/sqldataset"
	"github.com/XRotoX/sdlc-models/feature"

	// PostgreSQL driver registration
	_ "github.com/lib/pq"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL connection URL and returns a
sqldataset.Adapter over the database it points to or an error if it
cannot be opened.
*/
func New(dbURL string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("opening PostgreSQL connection to %s: %v", dbURL, err)
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (a *adapter) IDColumnSQL() string {
	return "id SERIAL PRIMARY KEY"
}

func (a *adapter) ColumnSQL(f *feature.Feature) string {
	if f.Kind() == feature.Number {
		return fmt.Sprintf("%s DOUBLE PRECISION", strconv.Quote(f.Name()))
	}
	return fmt.Sprintf("%s TEXT", strconv.Quote(f.Name()))
}
