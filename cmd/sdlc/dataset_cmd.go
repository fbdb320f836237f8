package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/dataset/csv"
	"github.com/XRotoX/sdlc-models/dataset/mongodataset"
	"github.com/XRotoX/sdlc-models/dataset/redisdataset"
	"github.com/XRotoX/sdlc-models/dataset/sqldataset"
	"github.com/XRotoX/sdlc-models/dataset/sqldataset/pgadapter"
	"github.com/XRotoX/sdlc-models/dataset/sqldataset/sqlite3adapter"
	"github.com/XRotoX/sdlc-models/feature"
	"github.com/XRotoX/sdlc-models/feature/yaml"
	"github.com/spf13/cobra"
	mgo "gopkg.in/mgo.v2"
	redis "gopkg.in/redis.v5"
)

type datasetCmdConfig struct {
	*rootCmdConfig
	datasetInput  string
	metadataInput string
	datasetOutput string
	skipBadRows   bool
	maxDBConns    int
	ctx           context.Context
	cancelFunc    context.CancelFunc
}

type sampleWriter interface {
	Write(context.Context, []dataset.Sample) (int, error)
}

type writableDataset interface {
	sampleWriter
	Flush() error
}

type flushableSampleWriter struct {
	sampleWriter
}

func datasetCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &datasetCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage datasets",
		Long:  `Dump a dataset from one backend into another`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			config.Logf("Features from metadata read")

			output, err := config.OutputWriter(features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}

			inputStream, errStream, err := config.InputStream(features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}

			for s := range inputStream {
				_, err = output.Write(config.Context(), []dataset.Sample{s})
				if err != nil {
					config.ContextCancelFunc()()
					break
				}
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			err = <-errStream
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			config.Logf("Flushing output dataset...")
			err = output.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.datasetInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis URL with the dataset to dump (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input dataset (required)")
	cmd.PersistentFlags().StringVarP(&(config.datasetOutput), "output", "o", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis URL to dump the dataset into (defaults to STDOUT in CSV)")
	cmd.PersistentFlags().BoolVar(&(config.skipBadRows), "skip-bad-rows", false, "skip CSV rows with missing or invalid values instead of failing the read")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	cmd.AddCommand(splitCmd(config))
	return cmd
}

func (dcc *datasetCmdConfig) Validate() error {
	if dcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

func (dcc *datasetCmdConfig) OutputWriter(features []*feature.Feature) (writableDataset, error) {
	var outputFile *os.File
	var err error
	if dcc.datasetOutput != "" {
		if strings.HasPrefix(dcc.datasetOutput, "postgresql://") {
			return dcc.postgreSQLOutputWriter(features)
		}
		if strings.HasPrefix(dcc.datasetOutput, "mongodb://") {
			return dcc.mongoDBOutputWriter(features)
		}
		if strings.HasPrefix(dcc.datasetOutput, "redis://") {
			return dcc.redisOutputWriter(features)
		}
		if strings.HasSuffix(dcc.datasetOutput, ".db") {
			return dcc.sqlite3OutputWriter(features)
		}
		dcc.Logf("Creating %s to dump output dataset...", dcc.datasetOutput)
		outputFile, err = os.Create(dcc.datasetOutput)
		if err != nil {
			return nil, err
		}
	} else {
		dcc.Logf("Using STDOUT to dump output dataset...")
		outputFile = os.Stdout
	}
	dcc.Logf("Preparing to write output dataset...")
	output, err := csv.NewWriter(outputFile, features)
	if err != nil {
		return nil, err
	}
	return output, nil
}

func (dcc *datasetCmdConfig) InputStream(features []*feature.Feature) (<-chan dataset.Sample, <-chan error, error) {
	var f *os.File
	if dcc.datasetInput == "" {
		dcc.Logf("Reading input dataset from STDIN and dumping it into output dataset...")
		f = os.Stdin
	} else {
		if strings.HasPrefix(dcc.datasetInput, "postgresql://") {
			return dcc.postgreSQLInputStream(features)
		}
		if strings.HasPrefix(dcc.datasetInput, "mongodb://") {
			return dcc.mongoDBInputStream(features)
		}
		if strings.HasPrefix(dcc.datasetInput, "redis://") {
			return dcc.redisInputStream(features)
		}
		if strings.HasSuffix(dcc.datasetInput, ".db") {
			return dcc.sqlite3InputStream(features)
		}
		dcc.Logf("Opening %s to read input dataset...", dcc.datasetInput)
		var err error
		f, err = os.Open(dcc.datasetInput)
		if err != nil {
			err = fmt.Errorf("reading input dataset from %s: %v", dcc.datasetInput, err)
			return nil, nil, err
		}
		dcc.Logf("Dumping input dataset into output dataset...")
	}
	sampleStream := make(chan dataset.Sample)
	errStream := make(chan error)
	go func() {
		err := csv.ReadDatasetBySample(f, features, func(i int, s dataset.Sample, parseErr error) (bool, error) {
			if parseErr != nil {
				if dcc.skipBadRows {
					dcc.Logf("Skipping row: %v", parseErr)
					return true, nil
				}
				return false, parseErr
			}
			select {
			case <-dcc.Context().Done():
				return false, nil
			case sampleStream <- s:
			}
			return true, nil
		})
		f.Close()
		if err != nil {
			go func() {
				errStream <- err
				close(errStream)
			}()
		} else {
			close(errStream)
		}
		close(sampleStream)
	}()
	return sampleStream, errStream, nil
}

func (dcc *datasetCmdConfig) sqlite3InputStream(features []*feature.Feature) (<-chan dataset.Sample, <-chan error, error) {
	dcc.Logf("Creating SQLite3 adapter for file %s to read input dataset...", dcc.datasetInput)
	adapter, err := sqlite3adapter.New(dcc.datasetInput, dcc.maxDBConns)
	if err != nil {
		return nil, nil, err
	}
	dcc.Logf("Opening dataset over SQLite3 adapter for file %s to read input dataset...", dcc.datasetInput)
	ds, err := sqldataset.Open(dcc.Context(), adapter, features)
	if err != nil {
		return nil, nil, err
	}
	sampleStream, errStream := ds.Read(dcc.Context())
	return sampleStream, errStream, nil
}

func (dcc *datasetCmdConfig) postgreSQLInputStream(features []*feature.Feature) (<-chan dataset.Sample, <-chan error, error) {
	dcc.Logf("Creating PostgreSQL adapter for url %s to read input dataset...", dcc.datasetInput)
	adapter, err := pgadapter.New(dcc.datasetInput)
	if err != nil {
		return nil, nil, err
	}
	dcc.Logf("Opening dataset over PostgreSQL adapter for url %s to read input dataset...", dcc.datasetInput)
	ds, err := sqldataset.Open(dcc.Context(), adapter, features)
	if err != nil {
		return nil, nil, err
	}
	sampleStream, errStream := ds.Read(dcc.Context())
	return sampleStream, errStream, nil
}

func (dcc *datasetCmdConfig) mongoDBInputStream(features []*feature.Feature) (<-chan dataset.Sample, <-chan error, error) {
	dcc.Logf("Dialing MongoDB at %s to read input dataset...", dcc.datasetInput)
	session, err := mgo.Dial(dcc.datasetInput)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing MongoDB at %s: %v", dcc.datasetInput, err)
	}
	ds, err := mongodataset.Open(dcc.Context(), session, features)
	if err != nil {
		return nil, nil, err
	}
	sampleStream, errStream := ds.Read(dcc.Context())
	return sampleStream, errStream, nil
}

func (dcc *datasetCmdConfig) redisInputStream(features []*feature.Feature) (<-chan dataset.Sample, <-chan error, error) {
	dcc.Logf("Connecting to redis at %s to read input dataset...", dcc.datasetInput)
	opts, err := redis.ParseURL(dcc.datasetInput)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url %s: %v", dcc.datasetInput, err)
	}
	ds, err := redisdataset.Open(dcc.Context(), redis.NewClient(opts), redisKeyPrefix, features)
	if err != nil {
		return nil, nil, err
	}
	sampleStream, errStream := ds.Read(dcc.Context())
	return sampleStream, errStream, nil
}

func (dcc *datasetCmdConfig) sqlite3OutputWriter(features []*feature.Feature) (writableDataset, error) {
	dcc.Logf("Creating SQLite3 adapter for file %s to dump output dataset...", dcc.datasetOutput)
	adapter, err := sqlite3adapter.New(dcc.datasetOutput, dcc.maxDBConns)
	if err != nil {
		return nil, err
	}
	dcc.Logf("Opening dataset over SQLite3 adapter for file %s to dump output dataset...", dcc.datasetOutput)
	ds, err := sqldataset.Create(dcc.Context(), adapter, features)
	if err != nil {
		return nil, err
	}
	return &flushableSampleWriter{ds}, nil
}

func (dcc *datasetCmdConfig) postgreSQLOutputWriter(features []*feature.Feature) (writableDataset, error) {
	dcc.Logf("Creating PostgreSQL adapter for url %s to dump output dataset...", dcc.datasetOutput)
	adapter, err := pgadapter.New(dcc.datasetOutput)
	if err != nil {
		return nil, err
	}
	dcc.Logf("Opening dataset over PostgreSQL adapter for url %s to dump output dataset...", dcc.datasetOutput)
	ds, err := sqldataset.Create(dcc.Context(), adapter, features)
	if err != nil {
		return nil, err
	}
	return &flushableSampleWriter{ds}, nil
}

func (dcc *datasetCmdConfig) mongoDBOutputWriter(features []*feature.Feature) (writableDataset, error) {
	dcc.Logf("Dialing MongoDB at %s to dump output dataset...", dcc.datasetOutput)
	session, err := mgo.Dial(dcc.datasetOutput)
	if err != nil {
		return nil, fmt.Errorf("dialing MongoDB at %s: %v", dcc.datasetOutput, err)
	}
	ds, err := mongodataset.Open(dcc.Context(), session, features)
	if err != nil {
		return nil, err
	}
	return &flushableSampleWriter{ds}, nil
}

func (dcc *datasetCmdConfig) redisOutputWriter(features []*feature.Feature) (writableDataset, error) {
	dcc.Logf("Connecting to redis at %s to dump output dataset...", dcc.datasetOutput)
	opts, err := redis.ParseURL(dcc.datasetOutput)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url %s: %v", dcc.datasetOutput, err)
	}
	ds, err := redisdataset.Open(dcc.Context(), redis.NewClient(opts), redisKeyPrefix, features)
	if err != nil {
		return nil, err
	}
	return &flushableSampleWriter{ds}, nil
}

func (dcc *datasetCmdConfig) Context() context.Context {
	dcc.setContextAndCancelFunc()
	return dcc.ctx
}

func (dcc *datasetCmdConfig) ContextCancelFunc() context.CancelFunc {
	dcc.setContextAndCancelFunc()
	return dcc.cancelFunc
}

func (dcc *datasetCmdConfig) setContextAndCancelFunc() {
	if dcc.ctx == nil {
		dcc.ctx, dcc.cancelFunc = context.WithCancel(context.Background())
	}
}

func (fsw *flushableSampleWriter) Flush() error {
	return nil
}
