package dataset

import (
	"context"

	"github.com/XRotoX/sdlc-models/feature"
)

type memoryIntensivePartitioningDataset struct {
	gini    *float64
	samples []Sample
}

type branch struct {
	question feature.Question
	wanted   bool
}

type cpuIntensivePartitioningDataset struct {
	gini    *float64
	count   *int
	samples []Sample
	path    []branch
}

/*
New takes a slice of samples and returns a dataset built with them.
The dataset will be a CPU-intensive one when the number of samples
is over sampleCountThresholdForDatasetImplementation
*/
func New(samples []Sample) Dataset {
	if len(samples) > sampleCountThresholdForDatasetImplementation {
		return &cpuIntensivePartitioningDataset{samples: samples}
	}
	return &memoryIntensivePartitioningDataset{samples: samples}
}

/*
NewMemoryIntensive takes a slice of samples and returns a Dataset
built with them. A memory-intensive dataset copies sample slices
when partitioning, so every view owns its rows outright at the cost
of increased memory.
*/
func NewMemoryIntensive(samples []Sample) Dataset {
	return &memoryIntensivePartitioningDataset{samples: samples}
}

/*
NewCPUIntensive takes a slice of samples and returns a Dataset
built with them. A cpu-intensive dataset does not copy samples when
partitioning: each view keeps the original slice plus the path of
questions and answers that defines it, and re-applies that path on
every traversal. This trades CPU time for a drastic reduction in
memory use on large datasets.
*/
func NewCPUIntensive(samples []Sample) Dataset {
	return &cpuIntensivePartitioningDataset{samples: samples}
}

func (ds *memoryIntensivePartitioningDataset) Count(ctx context.Context) (int, error) {
	return len(ds.samples), nil
}

func (ds *memoryIntensivePartitioningDataset) Samples(ctx context.Context) ([]Sample, error) {
	return ds.samples, nil
}

func (ds *memoryIntensivePartitioningDataset) Gini(ctx context.Context, label *feature.Feature) (float64, error) {
	if ds.gini != nil {
		return *ds.gini, nil
	}
	if len(ds.samples) == 0 {
		return 0, ErrNoRows
	}
	counts, err := ds.CountFeatureValues(ctx, label)
	if err != nil {
		return 0, err
	}
	result, err := GiniFromCounts(counts)
	if err != nil {
		return 0, err
	}
	ds.gini = &result
	return result, nil
}

func (ds *memoryIntensivePartitioningDataset) FeatureValues(ctx context.Context, f *feature.Feature) ([]feature.Value, error) {
	result := []feature.Value{}
	encountered := make(map[string]bool)
	for _, s := range ds.samples {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		if !v.Defined() {
			continue
		}
		if !encountered[v.String()] {
			encountered[v.String()] = true
			result = append(result, v)
		}
	}
	return result, nil
}

func (ds *memoryIntensivePartitioningDataset) CountFeatureValues(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	result := make(map[string]int)
	for _, s := range ds.samples {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		if v.Defined() {
			result[v.String()]++
		}
	}
	return result, nil
}

func (ds *memoryIntensivePartitioningDataset) Partition(ctx context.Context, q feature.Question) (Dataset, Dataset, error) {
	var trueSamples, falseSamples []Sample
	for _, s := range ds.samples {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		ok, err := q.Match(ctx, s)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			trueSamples = append(trueSamples, s)
		} else {
			falseSamples = append(falseSamples, s)
		}
	}
	return &memoryIntensivePartitioningDataset{samples: trueSamples},
		&memoryIntensivePartitioningDataset{samples: falseSamples},
		nil
}

func (ds *cpuIntensivePartitioningDataset) Count(ctx context.Context) (int, error) {
	if ds.count != nil {
		return *ds.count, nil
	}
	var length int
	err := ds.iterate(ctx, func(Sample) (bool, error) {
		length++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	ds.count = &length
	return length, nil
}

func (ds *cpuIntensivePartitioningDataset) Samples(ctx context.Context) ([]Sample, error) {
	var samples []Sample
	err := ds.iterate(ctx, func(s Sample) (bool, error) {
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (ds *cpuIntensivePartitioningDataset) Gini(ctx context.Context, label *feature.Feature) (float64, error) {
	if ds.gini != nil {
		return *ds.gini, nil
	}
	counts, err := ds.CountFeatureValues(ctx, label)
	if err != nil {
		return 0, err
	}
	result, err := GiniFromCounts(counts)
	if err != nil {
		return 0, err
	}
	ds.gini = &result
	return result, nil
}

func (ds *cpuIntensivePartitioningDataset) FeatureValues(ctx context.Context, f *feature.Feature) ([]feature.Value, error) {
	result := []feature.Value{}
	encountered := make(map[string]bool)
	err := ds.iterate(ctx, func(s Sample) (bool, error) {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return false, err
		}
		if v.Defined() && !encountered[v.String()] {
			encountered[v.String()] = true
			result = append(result, v)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ds *cpuIntensivePartitioningDataset) CountFeatureValues(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	result := make(map[string]int)
	err := ds.iterate(ctx, func(s Sample) (bool, error) {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return false, err
		}
		if v.Defined() {
			result[v.String()]++
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ds *cpuIntensivePartitioningDataset) Partition(ctx context.Context, q feature.Question) (Dataset, Dataset, error) {
	truePath := append(append([]branch{}, ds.path...), branch{q, true})
	falsePath := append(append([]branch{}, ds.path...), branch{q, false})
	return &cpuIntensivePartitioningDataset{samples: ds.samples, path: truePath},
		&cpuIntensivePartitioningDataset{samples: ds.samples, path: falsePath},
		nil
}

func (ds *cpuIntensivePartitioningDataset) iterate(ctx context.Context, lambda func(Sample) (bool, error)) error {
	for _, s := range ds.samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		skip := false
		for _, b := range ds.path {
			ok, err := b.question.Match(ctx, s)
			if err != nil {
				return err
			}
			if ok != b.wanted {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		ok, err := lambda(s)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}
