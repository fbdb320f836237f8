package csv

import (
	"context"
	"strings"
	"testing"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/feature"
	"github.com/stretchr/testify/require"
)

var (
	testRequirements = feature.NewCategoryFeature("Requirements", []string{"stable", "volatile"})
	testTeamSize     = feature.NewNumberFeature("TeamSize")
	testModel        = feature.NewCategoryFeature("Model", []string{"Waterfall", "Agile"})
	testFeatures     = []*feature.Feature{testRequirements, testTeamSize, testModel}
)

const testCSV = `Requirements,TeamSize,Model
stable,30,Waterfall
volatile,5,Agile
`

func TestReadDataset(t *testing.T) {
	ctx := context.Background()
	ds, err := ReadDataset(strings.NewReader(testCSV), testFeatures, dataset.New)
	require.NoError(t, err)

	count, err := ds.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	counts, err := ds.CountFeatureValues(ctx, testModel)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"Waterfall": 1, "Agile": 1}, counts)

	samples, err := ds.Samples(ctx)
	require.NoError(t, err)
	v, err := samples[0].ValueFor(ctx, testTeamSize)
	require.NoError(t, err)
	require.Equal(t, 30.0, v.Number())
}

func TestReadDatasetWithUnknownHeaderFeature(t *testing.T) {
	_, err := ReadDataset(strings.NewReader("Budget\n100\n"), testFeatures, dataset.New)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown feature")
}

func TestReadDatasetWithUndefinedValue(t *testing.T) {
	in := "Requirements,TeamSize,Model\nstable,?,Waterfall\n"
	_, err := ReadDataset(strings.NewReader(in), testFeatures, dataset.New)
	require.Error(t, err)
}

func TestReadDatasetWithInvalidValue(t *testing.T) {
	in := "Requirements,TeamSize,Model\nchaotic,30,Waterfall\n"
	_, err := ReadDataset(strings.NewReader(in), testFeatures, dataset.New)
	require.Error(t, err)
}

func TestReadDatasetBySampleSkipsBadRows(t *testing.T) {
	in := "Requirements,TeamSize,Model\n" +
		"stable,30,Waterfall\n" +
		"stable,?,Waterfall\n" +
		"volatile,not-a-number,Agile\n" +
		"volatile,5,Agile\n"
	var samples []dataset.Sample
	var skipped int
	err := ReadDatasetBySample(strings.NewReader(in), testFeatures, func(_ int, s dataset.Sample, parseErr error) (bool, error) {
		if parseErr != nil {
			skipped++
			return true, nil
		}
		samples = append(samples, s)
		return true, nil
	})
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Equal(t, 2, skipped)
}

func TestReadDatasetBySampleStopsWhenLambdaReturnsFalse(t *testing.T) {
	var rows int
	err := ReadDatasetBySample(strings.NewReader(testCSV), testFeatures, func(_ int, s dataset.Sample, parseErr error) (bool, error) {
		rows++
		return false, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, rows)
}

func TestWriter(t *testing.T) {
	ctx := context.Background()
	var sb strings.Builder
	w, err := NewWriter(&sb, testFeatures)
	require.NoError(t, err)

	samples := []dataset.Sample{
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"TeamSize":     feature.NewNumber(30),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("volatile"),
			"Model":        feature.NewCategory("Agile"),
		}),
	}
	n, err := w.Write(ctx, samples)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, w.Count())
	require.NoError(t, w.Flush())

	expected := "Requirements,TeamSize,Model\n" +
		"stable,30,Waterfall\n" +
		"volatile,?,Agile\n"
	require.Equal(t, expected, sb.String())
}

func TestReadDatasetRoundTripsWriterOutput(t *testing.T) {
	ctx := context.Background()
	ds, err := ReadDataset(strings.NewReader(testCSV), testFeatures, dataset.New)
	require.NoError(t, err)
	samples, err := ds.Samples(ctx)
	require.NoError(t, err)

	var sb strings.Builder
	w, err := NewWriter(&sb, testFeatures)
	require.NoError(t, err)
	_, err = w.Write(ctx, samples)
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	require.Equal(t, testCSV, sb.String())
}
