/*
Package sqldataset provides an implementation of dataset.Dataset
backed by a table on a SQL database. Samples live on a samples
table with one column per feature plus an auto-incrementing id that
preserves their order; partitioning appends equality conditions to
the WHERE clause instead of copying rows, so counting and grouping
run on the database.
*/
package sqldataset

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/feature"
)

const samplesTableName = "samples"

/*
Adapter hides the differences between SQL backends: the handle to
the database, the parameter placeholder style and the column
declarations for the samples table.
*/
type Adapter interface {
	// DB returns the handle to the database.
	DB() *sql.DB
	// Placeholder returns the parameter placeholder for the nth
	// (1-based) argument of a query.
	Placeholder(n int) string
	// IDColumnSQL returns the declaration of the
	// auto-incrementing id column of the samples table.
	IDColumnSQL() string
	// ColumnSQL returns the declaration of the column storing
	// the given feature's values.
	ColumnSQL(f *feature.Feature) string
}

/*
Dataset is a dataset.Dataset to which samples can be added and from
which samples can be sequentially read.
*/
type Dataset interface {
	dataset.Dataset
	Write(context.Context, []dataset.Sample) (int, error)
	Read(context.Context) (<-chan dataset.Sample, <-chan error)
}

type pathBranch struct {
	question feature.Question
	wanted   bool
}

type sqlDataset struct {
	db       Adapter
	features []*feature.Feature
	path     []pathBranch
	count    *int
	gini     *float64
}

/*
Open takes an Adapter to a SQL backend and a slice of features and
returns a Dataset backed by the adapter's samples table, or an
error if the table cannot be queried. The table is expected to
already exist with one column per feature.
*/
func Open(ctx context.Context, db Adapter, features []*feature.Feature) (Dataset, error) {
	ds := &sqlDataset{db: db, features: features}
	_, err := ds.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening SQL dataset: %v", err)
	}
	return ds, nil
}

/*
Create takes an Adapter to a SQL backend and a slice of features,
ensures the samples table exists with one column per feature and
returns a Dataset backed by it or an error.
*/
func Create(ctx context.Context, db Adapter, features []*feature.Feature) (Dataset, error) {
	columns := []string{db.IDColumnSQL()}
	for _, f := range features {
		columns = append(columns, db.ColumnSQL(f))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", samplesTableName, strings.Join(columns, ", "))
	_, err := db.DB().ExecContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("creating samples table: %v", err)
	}
	return &sqlDataset{db: db, features: features}, nil
}

func (ds *sqlDataset) Count(ctx context.Context) (int, error) {
	if ds.count != nil {
		return *ds.count, nil
	}
	where, args := ds.whereClause(nil)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", samplesTableName, where)
	var count int
	err := ds.db.DB().QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting samples: %v", err)
	}
	ds.count = &count
	return count, nil
}

func (ds *sqlDataset) Gini(ctx context.Context, label *feature.Feature) (float64, error) {
	if ds.gini != nil {
		return *ds.gini, nil
	}
	counts, err := ds.CountFeatureValues(ctx, label)
	if err != nil {
		return 0, err
	}
	result, err := dataset.GiniFromCounts(counts)
	if err != nil {
		return 0, err
	}
	ds.gini = &result
	return result, nil
}

func (ds *sqlDataset) FeatureValues(ctx context.Context, f *feature.Feature) ([]feature.Value, error) {
	column := quoteName(f)
	where, args := ds.whereClause([]string{fmt.Sprintf("%s IS NOT NULL", column)})
	query := fmt.Sprintf("SELECT %s FROM %s%s GROUP BY %s ORDER BY MIN(id)", column, samplesTableName, where, column)
	rows, err := ds.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing values of %s: %v", f.Name(), err)
	}
	defer rows.Close()
	var result []feature.Value
	for rows.Next() {
		v, err := scanValue(rows, f)
		if err != nil {
			return nil, fmt.Errorf("listing values of %s: %v", f.Name(), err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (ds *sqlDataset) CountFeatureValues(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	column := quoteName(f)
	where, args := ds.whereClause([]string{fmt.Sprintf("%s IS NOT NULL", column)})
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s%s GROUP BY %s", column, samplesTableName, where, column)
	rows, err := ds.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting values of %s: %v", f.Name(), err)
	}
	defer rows.Close()
	result := make(map[string]int)
	for rows.Next() {
		var count int
		v, err := scanValueAndCount(rows, f, &count)
		if err != nil {
			return nil, fmt.Errorf("counting values of %s: %v", f.Name(), err)
		}
		result[v.String()] = count
	}
	return result, rows.Err()
}

func (ds *sqlDataset) Samples(ctx context.Context) ([]dataset.Sample, error) {
	var samples []dataset.Sample
	sampleStream, errStream := ds.Read(ctx)
	for s := range sampleStream {
		samples = append(samples, s)
	}
	return samples, <-errStream
}

func (ds *sqlDataset) Partition(ctx context.Context, q feature.Question) (dataset.Dataset, dataset.Dataset, error) {
	truePath := append(append([]pathBranch{}, ds.path...), pathBranch{q, true})
	falsePath := append(append([]pathBranch{}, ds.path...), pathBranch{q, false})
	return &sqlDataset{db: ds.db, features: ds.features, path: truePath},
		&sqlDataset{db: ds.db, features: ds.features, path: falsePath},
		nil
}

/*
Read returns a channel on which the dataset's samples are sent in
id order and a channel on which at most one error is sent once the
sample channel is closed.
*/
func (ds *sqlDataset) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	sampleStream := make(chan dataset.Sample)
	errStream := make(chan error, 1)
	go func() {
		defer close(sampleStream)
		defer close(errStream)
		columns := make([]string, len(ds.features))
		for i, f := range ds.features {
			columns[i] = quoteName(f)
		}
		where, args := ds.whereClause(nil)
		query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id", strings.Join(columns, ", "), samplesTableName, where)
		rows, err := ds.db.DB().QueryContext(ctx, query, args...)
		if err != nil {
			errStream <- fmt.Errorf("reading samples: %v", err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			s, err := ds.scanSample(rows)
			if err != nil {
				errStream <- fmt.Errorf("reading samples: %v", err)
				return
			}
			select {
			case <-ctx.Done():
				errStream <- ctx.Err()
				return
			case sampleStream <- s:
			}
		}
		if err := rows.Err(); err != nil {
			errStream <- fmt.Errorf("reading samples: %v", err)
		}
	}()
	return sampleStream, errStream
}

/*
Write takes a slice of samples and inserts them at the end of the
samples table, returning the number of samples inserted and an
error if not all of them could be.
*/
func (ds *sqlDataset) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	columns := make([]string, len(ds.features))
	placeholders := make([]string, len(ds.features))
	for i, f := range ds.features {
		columns[i] = quoteName(f)
		placeholders[i] = ds.db.Placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", samplesTableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	for n, s := range samples {
		args := make([]interface{}, len(ds.features))
		for i, f := range ds.features {
			v, err := s.ValueFor(ctx, f)
			if err != nil {
				return n, err
			}
			args[i] = valueArg(v)
		}
		_, err := ds.db.DB().ExecContext(ctx, stmt, args...)
		if err != nil {
			return n, fmt.Errorf("inserting sample %d: %v", n, err)
		}
	}
	return len(samples), nil
}

/*
whereClause builds the WHERE clause selecting the samples of this
view: one equality condition per branch of the partition path. The
false side of a question includes samples with no value for its
feature, so its condition admits NULL explicitly.
*/
func (ds *sqlDataset) whereClause(extra []string) (string, []interface{}) {
	conditions := append([]string{}, extra...)
	var args []interface{}
	for _, b := range ds.path {
		column := quoteName(b.question.Feature())
		args = append(args, valueArg(b.question.Value()))
		ph := ds.db.Placeholder(len(args))
		if b.wanted {
			conditions = append(conditions, fmt.Sprintf("%s = %s", column, ph))
		} else {
			conditions = append(conditions, fmt.Sprintf("(%s <> %s OR %s IS NULL)", column, ph, column))
		}
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (ds *sqlDataset) scanSample(rows *sql.Rows) (dataset.Sample, error) {
	holders := make([]interface{}, len(ds.features))
	for i, f := range ds.features {
		if f.Kind() == feature.Number {
			holders[i] = &sql.NullFloat64{}
		} else {
			holders[i] = &sql.NullString{}
		}
	}
	if err := rows.Scan(holders...); err != nil {
		return nil, err
	}
	featureValues := make(map[string]feature.Value)
	for i, f := range ds.features {
		switch h := holders[i].(type) {
		case *sql.NullFloat64:
			if h.Valid {
				featureValues[f.Name()] = feature.NewNumber(h.Float64)
			}
		case *sql.NullString:
			if h.Valid {
				featureValues[f.Name()] = feature.NewCategory(h.String)
			}
		}
	}
	return dataset.NewSample(featureValues), nil
}

func scanValue(rows *sql.Rows, f *feature.Feature) (feature.Value, error) {
	if f.Kind() == feature.Number {
		var n float64
		err := rows.Scan(&n)
		return feature.NewNumber(n), err
	}
	var c string
	err := rows.Scan(&c)
	return feature.NewCategory(c), err
}

func scanValueAndCount(rows *sql.Rows, f *feature.Feature, count *int) (feature.Value, error) {
	if f.Kind() == feature.Number {
		var n float64
		err := rows.Scan(&n, count)
		return feature.NewNumber(n), err
	}
	var c string
	err := rows.Scan(&c, count)
	return feature.NewCategory(c), err
}

func valueArg(v feature.Value) interface{} {
	if !v.Defined() {
		return nil
	}
	if v.Kind() == feature.Number {
		return v.Number()
	}
	return v.Category()
}

func quoteName(f *feature.Feature) string {
	return strconv.Quote(f.Name())
}
