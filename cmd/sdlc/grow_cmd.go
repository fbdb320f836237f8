package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	sdlc "github.com/XRotoX/sdlc-models"
	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/dataset/csv"
	"github.com/XRotoX/sdlc-models/dataset/mongodataset"
	"github.com/XRotoX/sdlc-models/dataset/redisdataset"
	"github.com/XRotoX/sdlc-models/dataset/sqldataset"
	"github.com/XRotoX/sdlc-models/dataset/sqldataset/pgadapter"
	"github.com/XRotoX/sdlc-models/dataset/sqldataset/sqlite3adapter"
	"github.com/XRotoX/sdlc-models/feature"
	"github.com/XRotoX/sdlc-models/feature/yaml"
	"github.com/XRotoX/sdlc-models/tree"
	"github.com/spf13/cobra"
	mgo "gopkg.in/mgo.v2"
	redis "gopkg.in/redis.v5"
)

const redisKeyPrefix = "sdlc"

type growCmdConfig struct {
	*rootCmdConfig
	dataInput              string
	metadataInput          string
	output                 string
	labelFeature           string
	cpuIntensiveDataset    bool
	memoryIntensiveDataset bool
	skipBadRows            bool
	maxDBConns             int
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a dataset",
		Long:  `Grow a decision tree from a dataset to classify samples by a certain feature.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			var labelFeature *feature.Feature
			for _, f := range features {
				if f.Name() == config.labelFeature {
					labelFeature = f
					break
				}
			}
			if labelFeature == nil {
				fmt.Fprintf(os.Stderr, "label feature '%s' is not defined\n", config.labelFeature)
				os.Exit(3)
			}
			trainingDataset, err := config.trainingDataset(ctx, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			count, err := trainingDataset.Count(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "counting training dataset samples: %v\n", err)
				os.Exit(5)
			}
			config.Logf("Growing tree from a dataset with %d samples and %d features to classify %s ...", count, len(features)-1, labelFeature.Name())
			t, err := sdlc.Grow(ctx, trainingDataset, labelFeature, features)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the tree: %v\n", err)
				os.Exit(6)
			}
			config.Logf("Done")
			err = outputTree(config.output, t)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL, MongoDB or redis URL with data to grow the tree (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input dataset (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the generated tree will be written (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.labelFeature), "label", "l", "Model", "name of the feature the generated tree should classify samples by")
	cmd.PersistentFlags().BoolVar(&(config.memoryIntensiveDataset), "memory-intensive", false, "force the use of memory-intensive partitioning to decrease time at the cost of increasing memory use")
	cmd.PersistentFlags().BoolVar(&(config.cpuIntensiveDataset), "cpu-intensive", false, "force the use of cpu-intensive partitioning to decrease memory use at the cost of increasing time")
	cmd.PersistentFlags().BoolVar(&(config.skipBadRows), "skip-bad-rows", false, "skip CSV rows with missing or invalid values instead of failing the read")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if gcc.labelFeature == "" {
		return fmt.Errorf("required label flag was not set")
	}
	if gcc.cpuIntensiveDataset && gcc.memoryIntensiveDataset {
		return fmt.Errorf("cannot set both memory-intensive and cpu-intensive flags at the same time")
	}
	return nil
}

func (gcc *growCmdConfig) datasetGenerator() csv.DatasetGenerator {
	if gcc.memoryIntensiveDataset {
		return csv.DatasetGenerator(dataset.NewMemoryIntensive)
	}
	if gcc.cpuIntensiveDataset {
		return csv.DatasetGenerator(dataset.NewCPUIntensive)
	}
	return csv.DatasetGenerator(dataset.New)
}

func (gcc *growCmdConfig) trainingDataset(ctx context.Context, features []*feature.Feature) (dataset.Dataset, error) {
	var f *os.File
	if gcc.dataInput == "" {
		gcc.Logf("Reading training dataset from STDIN...")
		f = os.Stdin
	} else {
		if strings.HasPrefix(gcc.dataInput, "postgresql://") {
			return gcc.postgreSQLTrainingDataset(ctx, features)
		}
		if strings.HasPrefix(gcc.dataInput, "mongodb://") {
			return gcc.mongoDBTrainingDataset(ctx, features)
		}
		if strings.HasPrefix(gcc.dataInput, "redis://") {
			return gcc.redisTrainingDataset(ctx, features)
		}
		if strings.HasSuffix(gcc.dataInput, ".db") {
			return gcc.sqlite3TrainingDataset(ctx, features)
		}
		gcc.Logf("Opening %s to read training dataset...", gcc.dataInput)
		var err error
		f, err = os.Open(gcc.dataInput)
		if err != nil {
			return nil, fmt.Errorf("opening training dataset at %s: %v", gcc.dataInput, err)
		}
		defer f.Close()
	}
	trainingDataset, err := gcc.readCSVDataset(f, features)
	if err != nil {
		return nil, fmt.Errorf("reading training dataset: %v", err)
	}
	return trainingDataset, nil
}

func (gcc *growCmdConfig) readCSVDataset(f *os.File, features []*feature.Feature) (dataset.Dataset, error) {
	if !gcc.skipBadRows {
		return csv.ReadDataset(f, features, gcc.datasetGenerator())
	}
	samples := []dataset.Sample{}
	err := csv.ReadDatasetBySample(f, features, func(_ int, s dataset.Sample, parseErr error) (bool, error) {
		if parseErr != nil {
			gcc.Logf("Skipping row: %v", parseErr)
			return true, nil
		}
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return gcc.datasetGenerator()(samples), nil
}

func (gcc *growCmdConfig) sqlite3TrainingDataset(ctx context.Context, features []*feature.Feature) (dataset.Dataset, error) {
	gcc.Logf("Creating SQLite3 adapter for file %s to read training dataset...", gcc.dataInput)
	adapter, err := sqlite3adapter.New(gcc.dataInput, gcc.maxDBConns)
	if err != nil {
		return nil, err
	}
	gcc.Logf("Opening dataset over SQLite3 adapter for file %s to read training dataset...", gcc.dataInput)
	return sqldataset.Open(ctx, adapter, features)
}

func (gcc *growCmdConfig) postgreSQLTrainingDataset(ctx context.Context, features []*feature.Feature) (dataset.Dataset, error) {
	gcc.Logf("Creating PostgreSQL adapter for url %s to read training dataset...", gcc.dataInput)
	adapter, err := pgadapter.New(gcc.dataInput)
	if err != nil {
		return nil, err
	}
	gcc.Logf("Opening dataset over PostgreSQL adapter for url %s to read training dataset...", gcc.dataInput)
	return sqldataset.Open(ctx, adapter, features)
}

func (gcc *growCmdConfig) mongoDBTrainingDataset(ctx context.Context, features []*feature.Feature) (dataset.Dataset, error) {
	gcc.Logf("Dialing MongoDB at %s to read training dataset...", gcc.dataInput)
	session, err := mgo.Dial(gcc.dataInput)
	if err != nil {
		return nil, fmt.Errorf("dialing MongoDB at %s: %v", gcc.dataInput, err)
	}
	gcc.Logf("Opening dataset over MongoDB session for url %s to read training dataset...", gcc.dataInput)
	return mongodataset.Open(ctx, session, features)
}

func (gcc *growCmdConfig) redisTrainingDataset(ctx context.Context, features []*feature.Feature) (dataset.Dataset, error) {
	gcc.Logf("Connecting to redis at %s to read training dataset...", gcc.dataInput)
	opts, err := redis.ParseURL(gcc.dataInput)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url %s: %v", gcc.dataInput, err)
	}
	gcc.Logf("Opening dataset over redis client for url %s to read training dataset...", gcc.dataInput)
	return redisdataset.Open(ctx, redis.NewClient(opts), redisKeyPrefix, features)
}

func outputTree(outputPath string, t tree.Node) error {
	var f *os.File
	var err error
	if outputPath == "" {
		f = os.Stdout
	} else {
		f, err = os.Create(outputPath)
		if err != nil {
			return err
		}
	}
	defer f.Close()
	return tree.Fprint(f, t)
}
