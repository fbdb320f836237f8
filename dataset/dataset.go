package dataset

import (
	"context"

	"github.com/XRotoX/sdlc-models/feature"
)

const sampleCountThresholdForDatasetImplementation = 1000

/*
Error represents an error related with datasets
*/
type Error string

/*
ErrNoRows is the error returned by the Gini method of a dataset
when the dataset holds no samples: the impurity of an empty dataset
is undefined. Callers partitioning a dataset must check both sides
are non-empty before asking for their impurity.
*/
const ErrNoRows = Error("gini impurity is undefined for a dataset with no samples")

func (e Error) Error() string {
	return string(e)
}

/*
Sample is an item of a dataset: a mapping from features to values.
It is the feature package's Sample, re-exported here for
convenience.
*/
type Sample = feature.Sample

/*
Dataset represents an immutable view over an ordered collection of
samples sharing the same features.

Its Gini method returns the Gini impurity of the view for a given
label feature: the probability that two samples drawn at random
from it carry different labels. It returns ErrNoRows on a view with
no samples.

Its FeatureValues method returns the distinct defined values the
view holds for a feature, without duplicates. The order is not part
of the contract, but implementations return first-appearance order
so that growing a tree twice from the same view selects the same
splits.

Its CountFeatureValues method returns how many samples hold each
distinct value of a feature, keyed by the value's string form.

Its Partition method takes a Question and returns two sub-views:
one with the samples that match it and one with the rest. Samples
keep their relative order on both sides, neither side aliases
mutable state of the other, and a side that ends up with no samples
is an explicit empty view, not an error.
*/
type Dataset interface {
	Count(context.Context) (int, error)
	Samples(context.Context) ([]Sample, error)
	Gini(ctx context.Context, label *feature.Feature) (float64, error)
	FeatureValues(ctx context.Context, f *feature.Feature) ([]feature.Value, error)
	CountFeatureValues(ctx context.Context, f *feature.Feature) (map[string]int, error)
	Partition(ctx context.Context, q feature.Question) (Dataset, Dataset, error)
}

/*
GiniFromCounts computes the Gini impurity of a label distribution:
1 minus the sum over labels of the squared probability of drawing
that label. It returns ErrNoRows when the counts add up to zero.
Dataset implementations use it to derive their Gini method from
their CountFeatureValues method.
*/
func GiniFromCounts(counts map[string]int) (float64, error) {
	var total float64
	for _, c := range counts {
		total += float64(c)
	}
	if total == 0 {
		return 0, ErrNoRows
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / total
		impurity -= p * p
	}
	return impurity, nil
}
