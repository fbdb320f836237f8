package sdlc

import (
	"context"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/feature"
)

// InformationGain takes a context, the two sides of a candidate
// split, the Gini impurity of the dataset they partition and the
// label feature, and returns the reduction in impurity the split
// achieves: the parent impurity minus the impurity of each side
// weighted by its share of the samples.
// Both sides must hold at least one sample; an empty side makes
// its Gini method return dataset.ErrNoRows.
func InformationGain(ctx context.Context, trueSide, falseSide dataset.Dataset, parentGini float64, label *feature.Feature) (float64, error) {
	trueCount, err := trueSide.Count(ctx)
	if err != nil {
		return 0, err
	}
	falseCount, err := falseSide.Count(ctx)
	if err != nil {
		return 0, err
	}
	trueGini, err := trueSide.Gini(ctx, label)
	if err != nil {
		return 0, err
	}
	falseGini, err := falseSide.Gini(ctx, label)
	if err != nil {
		return 0, err
	}
	p := float64(trueCount) / float64(trueCount+falseCount)
	return parentGini - p*trueGini - (1-p)*falseGini, nil
}

// FindBestSplit takes a context, a dataset, the label feature and
// the features available for splitting, and exhaustively scores
// every (feature, distinct value) question on the dataset: each
// candidate partitions the dataset and, when both sides are
// non-empty, is scored by its information gain. It returns the
// highest gain found and the question that produced it, or 0 and
// nil when no candidate reduces the impurity.
//
// Among candidates with equal gain the last one enumerated wins:
// the tie-break decides which of several equally good questions
// shapes the tree, so it is part of the behavior, not an accident.
// The search recomputes every partition and impurity on every
// call; with the recursion in Grow this makes induction
// O(rows × features × values) per level, which is accepted.
func FindBestSplit(ctx context.Context, ds dataset.Dataset, label *feature.Feature, features []*feature.Feature) (float64, *feature.Question, error) {
	currentGini, err := ds.Gini(ctx, label)
	if err != nil {
		return 0, nil, err
	}
	bestGain := 0.0
	var bestQuestion *feature.Question
	for _, f := range features {
		if f.Name() == label.Name() {
			continue
		}
		values, err := ds.FeatureValues(ctx, f)
		if err != nil {
			return 0, nil, err
		}
		for _, v := range values {
			if err := ctx.Err(); err != nil {
				return 0, nil, err
			}
			q := feature.NewQuestion(f, v)
			trueSide, falseSide, err := ds.Partition(ctx, q)
			if err != nil {
				return 0, nil, err
			}
			trueCount, err := trueSide.Count(ctx)
			if err != nil {
				return 0, nil, err
			}
			falseCount, err := falseSide.Count(ctx)
			if err != nil {
				return 0, nil, err
			}
			if trueCount == 0 || falseCount == 0 {
				continue
			}
			gain, err := InformationGain(ctx, trueSide, falseSide, currentGini, label)
			if err != nil {
				return 0, nil, err
			}
			if gain > 0 && gain >= bestGain {
				q := q
				bestGain, bestQuestion = gain, &q
			}
		}
	}
	return bestGain, bestQuestion, nil
}
