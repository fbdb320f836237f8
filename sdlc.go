// Package sdlc grows binary decision-tree classifiers over tabular
// datasets. A tree is grown by recursively asking, at every node,
// the equality question that most reduces the Gini impurity of the
// label over the samples that reached the node, until no question
// improves on it; the samples' label distribution then becomes a
// leaf. The package was written to identify the software
// development lifecycle model a project follows from its observable
// traits, but nothing in it is specific to that dataset.
package sdlc

import (
	"context"
	"fmt"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/feature"
	"github.com/XRotoX/sdlc-models/tree"
)

// Grow takes a context, a dataset, the label feature to predict
// and the features available for splitting, and returns the root
// node of the decision tree grown from the dataset.
//
// When FindBestSplit finds no question with positive gain the
// samples become a Leaf holding their label counts; otherwise the
// dataset is partitioned by the best question and Grow recurses on
// both sides, which are strictly smaller in impurity, so the
// recursion terminates. There is no depth or size limit: a dataset
// where every sample is unique recurses until every leaf holds a
// single sample.
//
// Growing the same dataset twice produces structurally identical
// trees: nothing in the search is randomized.
//
// An empty dataset is a precondition violation, reported as an
// error: the recursion itself never produces one, since only
// questions with two non-empty sides are selected.
func Grow(ctx context.Context, ds dataset.Dataset, label *feature.Feature, features []*feature.Feature) (tree.Node, error) {
	count, err := ds.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("growing tree: dataset has no samples")
	}
	return grow(ctx, ds, label, features)
}

func grow(ctx context.Context, ds dataset.Dataset, label *feature.Feature, features []*feature.Feature) (tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gain, question, err := FindBestSplit(ctx, ds, label, features)
	if err != nil {
		return nil, err
	}
	if gain == 0 {
		counts, err := ds.CountFeatureValues(ctx, label)
		if err != nil {
			return nil, err
		}
		return tree.NewLeaf(counts), nil
	}
	trueSide, falseSide, err := ds.Partition(ctx, *question)
	if err != nil {
		return nil, err
	}
	trueBranch, err := grow(ctx, trueSide, label, features)
	if err != nil {
		return nil, err
	}
	falseBranch, err := grow(ctx, falseSide, label, features)
	if err != nil {
		return nil, err
	}
	return tree.NewDecision(*question, trueBranch, falseBranch), nil
}
