/*
Package csv reads and writes datasets as CSV streams.

The header or first row of a CSV stream is expected to consist of
the names of the dataset's features; the remaining rows hold a
valid value for each feature, or the '?' string for an undefined
value.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/feature"
)

/*
Writer is an interface for a destination to which samples can be
written.
*/
type Writer interface {
	// Write will attempt to write the given samples and will
	// return the number of samples actually written and an error
	// if not all of them could be.
	Write(context.Context, []dataset.Sample) (int, error)
	// Count returns the total number of samples written to the
	// writer.
	Count() int
	// Flush ensures any pending write operations finish before
	// returning. It returns an error if that cannot be ensured.
	Flush() error
}

/*
DatasetGenerator is a function that takes a slice of samples and
builds a dataset with them.
*/
type DatasetGenerator func([]dataset.Sample) dataset.Dataset

type csvWriter struct {
	count    int
	features []*feature.Feature
	w        *csv.Writer
}

/*
ReadDataset takes an io.Reader for a CSV stream, a slice of
features and a DatasetGenerator and returns the dataset built with
the generator and the samples parsed from the reader, or an error.
Rows with undefined or invalid values fail the read: use
ReadDatasetBySample with a lenient lambda when bad rows are to be
skipped instead.
*/
func ReadDataset(reader io.Reader, features []*feature.Feature, dg DatasetGenerator) (dataset.Dataset, error) {
	samples := []dataset.Sample{}
	err := ReadDatasetBySample(reader, features, func(_ int, s dataset.Sample, parseErr error) (bool, error) {
		if parseErr != nil {
			return false, parseErr
		}
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dg(samples), nil
}

/*
ReadDatasetBySample takes an io.Reader for a CSV stream, a slice of
features and a lambda function on a row index, a dataset.Sample and
a parse error. It parses the samples from the reader and for each
row calls the lambda with the row's index and either the parsed
sample or the error parsing it; exactly one of the two is non-nil.
If the lambda returns true processing continues with the next row,
otherwise it stops; an error returned by the lambda, or an error
reading the stream itself, aborts the read and is returned.
*/
func ReadDatasetBySample(reader io.Reader, features []*feature.Feature, lambda func(int, dataset.Sample, error) (bool, error)) error {
	featuresByName := make(map[string]*feature.Feature)
	for _, f := range features {
		featuresByName[f.Name()] = f
	}
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	featureOrder, err := parseFeaturesFromCSVHeader(header, featuresByName)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		sample, parseErr := parseSampleFromCSVRow(row, featureOrder)
		if parseErr != nil {
			parseErr = fmt.Errorf("parsing line %d: %v", l, parseErr)
		}
		ok, err := lambda(l-2, sample, parseErr)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadDatasetFromFilePath takes a filepath string, a slice of
features and a DatasetGenerator, opens the file the filepath points
to (os.Stdin when the filepath is "") and uses ReadDataset to
return a dataset read from it or an error.
*/
func ReadDatasetFromFilePath(filepath string, features []*feature.Feature, dg DatasetGenerator) (dataset.Dataset, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("reading dataset: %v", err)
		}
	}
	defer f.Close()
	ds, err := ReadDataset(f, features, dg)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return ds, err
}

/*
NewWriter takes an io.Writer and a slice of features and returns a
Writer that will write samples on the io.Writer as CSV rows, after
a header row with the feature names.
*/
func NewWriter(writer io.Writer, features []*feature.Feature) (Writer, error) {
	w := csv.NewWriter(writer)
	record := make([]string, len(features))
	for i, f := range features {
		record[i] = f.Name()
	}
	err := w.Write(record)
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %v", err)
	}
	return &csvWriter{features: features, w: w}, nil
}

func parseFeaturesFromCSVHeader(header []string, features map[string]*feature.Feature) ([]*feature.Feature, error) {
	featureOrder := []*feature.Feature{}
	for _, name := range header {
		f, ok := features[name]
		if !ok {
			return nil, fmt.Errorf("parsing header: reference to unknown feature %s", name)
		}
		featureOrder = append(featureOrder, f)
	}
	return featureOrder, nil
}

func parseSampleFromCSVRow(row []string, featureOrder []*feature.Feature) (dataset.Sample, error) {
	if len(row) != len(featureOrder) {
		return nil, fmt.Errorf("row has %d fields, expected %d", len(row), len(featureOrder))
	}
	featureValues := make(map[string]feature.Value)
	for i, f := range featureOrder {
		field := row[i]
		if field == "?" {
			return nil, fmt.Errorf("undefined value for feature %s", f.Name())
		}
		var value feature.Value
		if f.Kind() == feature.Number {
			n, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("converting %s to number: %v", field, err)
			}
			value = feature.NewNumber(n)
		} else {
			value = feature.NewCategory(field)
		}
		if ok, err := f.Valid(value); !ok {
			return nil, fmt.Errorf("invalid value %v for feature %s: %v", value, f.Name(), err)
		}
		featureValues[f.Name()] = value
	}
	return dataset.NewSample(featureValues), nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	for n, s := range samples {
		err := cw.writeSample(ctx, s)
		if err != nil {
			return n, err
		}
	}
	return len(samples), nil
}

func (cw *csvWriter) writeSample(ctx context.Context, s dataset.Sample) error {
	record := make([]string, len(cw.features))
	for j, f := range cw.features {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return err
		}
		if !v.Defined() {
			record[j] = "?"
		} else {
			record[j] = v.String()
		}
	}
	err := cw.w.Write(record)
	if err != nil {
		return fmt.Errorf("writing CSV row for sample %d: %v", cw.count+1, err)
	}
	cw.count++
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
