package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/dataset/csv"
	"github.com/XRotoX/sdlc-models/feature/yaml"
	"github.com/spf13/cobra"
)

type splitCmdConfig struct {
	*datasetCmdConfig
	splitOutput      string
	splitProbability int
}

func splitCmd(datasetConfig *datasetCmdConfig) *cobra.Command {
	config := &splitCmdConfig{datasetCmdConfig: datasetConfig}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a dataset into two datasets",
		Long:  `Split a dataset into an output dataset and a split dataset, assigning each sample at random according to a given probability`,
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

			config.Logf("Creating %s to dump split dataset...", config.splitOutput)
			splitOutputFile, err := os.Create(config.splitOutput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			defer splitOutputFile.Close()
			config.Logf("Preparing to write split output dataset...")
			splitOutput, err := csv.NewWriter(splitOutputFile, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}

			inputStream, errStream, err := config.InputStream(features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}

			randomizer := rand.New(rand.NewSource(time.Now().UnixNano()))
			for s := range inputStream {
				var destination sampleWriter = output
				if (100 * randomizer.Float32()) <= float32(config.splitProbability) {
					destination = splitOutput
				}
				_, err = destination.Write(config.Context(), []dataset.Sample{s})
				if err != nil {
					config.ContextCancelFunc()()
					break
				}
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			err = <-errStream
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			config.Logf("Flushing output dataset...")
			err = output.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
			config.Logf("Flushing split dataset...")
			err = splitOutput.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(10)
			}
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.splitOutput), "split-output", "s", "", "path to a CSV file to dump the samples assigned to the split dataset (required)")
	cmd.PersistentFlags().IntVarP(&(config.splitProbability), "split-probability", "p", 20, "probability as an integer percentage that a sample of the input dataset ends up in the split dataset")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	err := scc.datasetCmdConfig.Validate()
	if err != nil {
		return err
	}
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if scc.splitProbability < 0 || scc.splitProbability > 100 {
		return fmt.Errorf("split-probability must be between 0 and 100")
	}
	return nil
}
