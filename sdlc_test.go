package sdlc

import (
	"context"
	"testing"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/feature"
	"github.com/XRotoX/sdlc-models/tree"
	"github.com/stretchr/testify/require"
)

func TestGrow(t *testing.T) {
	ctx := context.Background()
	root, err := Grow(ctx, testTrainingDataset(), testModel, testFeatures)
	require.NoError(t, err)

	decision, ok := root.(*tree.Decision)
	require.True(t, ok)
	require.Equal(t, "Requirements == volatile?", decision.Question.String())

	trueLeaf, ok := decision.True.(*tree.Leaf)
	require.True(t, ok)
	require.Equal(t, map[string]int{"Agile": 2}, trueLeaf.Counts())

	falseLeaf, ok := decision.False.(*tree.Leaf)
	require.True(t, ok)
	require.Equal(t, map[string]int{"Waterfall": 2}, falseLeaf.Counts())
}

func TestGrowOnPureDataset(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"TeamSize":     feature.NewNumber(30),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("volatile"),
			"TeamSize":     feature.NewNumber(5),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"TeamSize":     feature.NewNumber(12),
			"Model":        feature.NewCategory("Waterfall"),
		}),
	})
	root, err := Grow(ctx, ds, testModel, testFeatures)
	require.NoError(t, err)

	leaf, ok := root.(*tree.Leaf)
	require.True(t, ok)
	require.Equal(t, map[string]int{"Waterfall": 3}, leaf.Counts())
	require.Equal(t, 3, leaf.Weight())
}

func TestGrowOnEmptyDataset(t *testing.T) {
	ctx := context.Background()
	_, err := Grow(ctx, dataset.New(nil), testModel, testFeatures)
	require.Error(t, err)
}

func TestGrowIsDeterministic(t *testing.T) {
	ctx := context.Background()
	samples := []dataset.Sample{
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"TeamSize":     feature.NewNumber(30),
			"Model":        feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("volatile"),
			"TeamSize":     feature.NewNumber(5),
			"Model":        feature.NewCategory("Agile"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("stable"),
			"TeamSize":     feature.NewNumber(40),
			"Model":        feature.NewCategory("Spiral"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"Requirements": feature.NewCategory("volatile"),
			"TeamSize":     feature.NewNumber(8),
			"Model":        feature.NewCategory("Agile"),
		}),
	}
	first, err := Grow(ctx, dataset.New(samples), testModel, testFeatures)
	require.NoError(t, err)
	second, err := Grow(ctx, dataset.New(samples), testModel, testFeatures)
	require.NoError(t, err)
	require.Equal(t, tree.Sprint(first), tree.Sprint(second))
}

func TestGrowSeparatesUniqueSamples(t *testing.T) {
	ctx := context.Background()
	ds := dataset.New([]dataset.Sample{
		dataset.NewSample(map[string]feature.Value{
			"TeamSize": feature.NewNumber(30),
			"Model":    feature.NewCategory("Waterfall"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"TeamSize": feature.NewNumber(5),
			"Model":    feature.NewCategory("Agile"),
		}),
		dataset.NewSample(map[string]feature.Value{
			"TeamSize": feature.NewNumber(40),
			"Model":    feature.NewCategory("Spiral"),
		}),
	})
	root, err := Grow(ctx, ds, testModel, testFeatures)
	require.NoError(t, err)

	leaves := collectLeaves(root)
	require.Len(t, leaves, 3)
	for _, leaf := range leaves {
		require.Equal(t, 1, leaf.Weight())
	}
}

func collectLeaves(n tree.Node) []*tree.Leaf {
	switch n := n.(type) {
	case *tree.Leaf:
		return []*tree.Leaf{n}
	case *tree.Decision:
		return append(collectLeaves(n.True), collectLeaves(n.False)...)
	}
	return nil
}
