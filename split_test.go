package sdlc

import (
	"context"
	"testing"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/feature"
	"github.com/stretchr/testify/require"
)

var (
	testRequirements = feature.NewCategoryFeature("Requirements", []string{"stable", "volatile"})
	testTeamSize     = feature.NewNumberFeature("TeamSize")
	testModel        = feature.NewCategoryFeature("Model", []string{"Waterfall", "Agile", "Spiral"})
	testFeatures     = []*feature.Feature{testRequirements, testTeamSize, testModel}
)

func testTrainingDataset() dataset.Dataset {
	return dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"TeamSize":     feature.NewNumber(30),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"TeamSize":     feature.NewNumber(25),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("volatile"),
			"TeamSize":     feature.NewNumber(5),
			"Model":        feature.NewCategory("Agile"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("volatile"),
			"TeamSize":     feature.NewNumber(8),
			"Model":        feature.NewCategory("Agile"),
		}),
	})
}

func TestInformationGain(t *testing.T) {
	ctx := context.Background()
	ds := testTrainingDataset()
	parentGini, err := ds.Gini(ctx, testModel)
	require.NoError(t, err)
	require.InDelta(t, 0.5, parentGini, 1e-9)

	q := feature.NewQuestion(testRequirements, feature.NewCategory("stable"))
	trueSide, falseSide, err := ds.Partition(ctx, q)
	require.NoError(t, err)

	gain, err := InformationGain(ctx, trueSide, falseSide, parentGini, testModel)
	require.NoError(t, err)
	require.InDelta(t, 0.5, gain, 1e-9)
}

func TestInformationGainOfUselessSplit(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"Model":        feature.NewCategory("Agile"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("volatile"),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("volatile"),
			"Model":        feature.NewCategory("Agile"),
		}),
	})
	parentGini, err := ds.Gini(ctx, testModel)
	require.NoError(t, err)

	q := feature.NewQuestion(testRequirements, feature.NewCategory("stable"))
	trueSide, falseSide, err := ds.Partition(ctx, q)
	require.NoError(t, err)

	gain, err := InformationGain(ctx, trueSide, falseSide, parentGini, testModel)
	require.NoError(t, err)
	require.InDelta(t, 0.0, gain, 1e-9)
}

func TestFindBestSplit(t *testing.T) {
	ctx := context.Background()
	gain, question, err := FindBestSplit(ctx, testTrainingDataset(), testModel, testFeatures)
	require.NoError(t, err)
	require.InDelta(t, 0.5, gain, 1e-9)
	require.NotNil(t, question)
	// both Requirements questions reach the same gain: the last
	// enumerated value wins the tie
	require.Equal(t, "Requirements == volatile?", question.String())
}

func TestFindBestSplitLastTieWinsAcrossFeatures(t *testing.T) {
	ctx := context.Background()
	process := feature.NewCategoryFeature("Process", []string{"plan-driven", "iterative"})
	ds := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"Process":      feature.NewCategory("plan-driven"),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("volatile"),
			"Process":      feature.NewCategory("iterative"),
			"Model":        feature.NewCategory("Agile"),
		}),
	})
	features := []*feature.Feature{testRequirements, process, testModel}
	gain, question, err := FindBestSplit(ctx, ds, testModel, features)
	require.NoError(t, err)
	require.InDelta(t, 0.5, gain, 1e-9)
	require.NotNil(t, question)
	require.Equal(t, "Process", question.Feature().Name())
}

func TestFindBestSplitWithNoInformativeFeature(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"Model":        feature.NewCategory("Agile"),
		}),
	})
	gain, question, err := FindBestSplit(ctx, ds, testModel, testFeatures)
	require.NoError(t, err)
	require.Equal(t, 0.0, gain)
	require.Nil(t, question)
}

func TestFindBestSplitNeverSplitsOnTheLabel(t *testing.T) {
	ctx := context.Background()
	// the label always separates itself perfectly, so any question
	// returned must be on another feature
	gain, question, err := FindBestSplit(ctx, testTrainingDataset(), testModel, testFeatures)
	require.NoError(t, err)
	require.True(t, gain > 0)
	require.NotNil(t, question)
	require.NotEqual(t, testModel.Name(), question.Feature().Name())
}
