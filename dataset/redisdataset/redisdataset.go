/*
Package redisdataset provides an implementation of dataset.Dataset
backed by a redis DB. Each sample is stored as a hash under
prefix:sample:<id> with one field per defined feature value, and a
prefix:ids list keeps insertion order. Redis cannot evaluate
partition questions server-side, so views keep the path of questions
and answers that defines them and filter while scanning, the way the
CPU-intensive in-memory dataset does.
*/
package redisdataset

import (
	"context"
	"fmt"
	"strconv"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/feature"
	redis "gopkg.in/redis.v5"
)

/*
Dataset is a dataset.Dataset to which samples can be added and from
which samples can be sequentially read.
*/
type Dataset interface {
	dataset.Dataset
	Write(context.Context, []dataset.Sample) (int, error)
	Read(context.Context) (<-chan dataset.Sample, <-chan error)
}

type pathBranch struct {
	question feature.Question
	wanted   bool
}

type redisDataset struct {
	rc       *redis.Client
	prefix   string
	features []*feature.Feature
	path     []pathBranch
	count    *int
	gini     *float64
}

/*
Open takes a redis client, a key prefix and a slice of features and
returns a Dataset over the samples stored under the prefix.
*/
func Open(ctx context.Context, rc *redis.Client, prefix string, features []*feature.Feature) (Dataset, error) {
	return &redisDataset{rc: rc, prefix: prefix, features: features}, nil
}

func (ds *redisDataset) Count(ctx context.Context) (int, error) {
	if ds.count != nil {
		return *ds.count, nil
	}
	var length int
	err := ds.iterate(ctx, func(dataset.Sample) (bool, error) {
		length++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	ds.count = &length
	return length, nil
}

func (ds *redisDataset) Samples(ctx context.Context) ([]dataset.Sample, error) {
	var samples []dataset.Sample
	err := ds.iterate(ctx, func(s dataset.Sample) (bool, error) {
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (ds *redisDataset) Gini(ctx context.Context, label *feature.Feature) (float64, error) {
	if ds.gini != nil {
		return *ds.gini, nil
	}
	counts, err := ds.CountFeatureValues(ctx, label)
	if err != nil {
		return 0, err
	}
	result, err := dataset.GiniFromCounts(counts)
	if err != nil {
		return 0, err
	}
	ds.gini = &result
	return result, nil
}

func (ds *redisDataset) FeatureValues(ctx context.Context, f *feature.Feature) ([]feature.Value, error) {
	result := []feature.Value{}
	encountered := make(map[string]bool)
	err := ds.iterate(ctx, func(s dataset.Sample) (bool, error) {
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

func (ds *redisDataset) CountFeatureValues(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	result := make(map[string]int)
	err := ds.iterate(ctx, func(s dataset.Sample) (bool, error) {
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

func (ds *redisDataset) Partition(ctx context.Context, q feature.Question) (dataset.Dataset, dataset.Dataset, error) {
	truePath := append(append([]pathBranch{}, ds.path...), pathBranch{q, true})
	falsePath := append(append([]pathBranch{}, ds.path...), pathBranch{q, false})
	return &redisDataset{rc: ds.rc, prefix: ds.prefix, features: ds.features, path: truePath},
		&redisDataset{rc: ds.rc, prefix: ds.prefix, features: ds.features, path: falsePath},
		nil
}

/*
Read returns a channel on which the view's samples are sent in
insertion order and a channel on which at most one error is sent
once the sample channel is closed.
*/
func (ds *redisDataset) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	sampleStream := make(chan dataset.Sample)
	errStream := make(chan error, 1)
	go func() {
		defer close(sampleStream)
		defer close(errStream)
		err := ds.iterate(ctx, func(s dataset.Sample) (bool, error) {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case sampleStream <- s:
			}
			return true, nil
		})
		if err != nil {
			errStream <- err
		}
	}()
	return sampleStream, errStream
}

/*
Write takes a slice of samples and stores each as a hash under a
fresh id, returning the number of samples stored and an error if not
all of them could be.
*/
func (ds *redisDataset) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	for n, s := range samples {
		fields := make(map[string]string)
		for _, f := range ds.features {
			v, err := s.ValueFor(ctx, f)
			if err != nil {
				return n, err
			}
			if !v.Defined() {
				continue
			}
			if f.Kind() == feature.Number {
				fields[f.Name()] = strconv.FormatFloat(v.Number(), 'g', -1, 64)
			} else {
				fields[f.Name()] = v.Category()
			}
		}
		id, err := ds.rc.Incr(ds.nextIDKey()).Result()
		if err != nil {
			return n, fmt.Errorf("storing sample %d: obtaining id: %v", n, err)
		}
		key := ds.sampleKey(strconv.FormatInt(id, 10))
		if len(fields) > 0 {
			if err := ds.rc.HMSet(key, fields).Err(); err != nil {
				return n, fmt.Errorf("storing sample %d as %s: %v", n, key, err)
			}
		}
		if err := ds.rc.RPush(ds.idsKey(), strconv.FormatInt(id, 10)).Err(); err != nil {
			return n, fmt.Errorf("storing sample %d as %s: registering id: %v", n, key, err)
		}
	}
	return len(samples), nil
}

func (ds *redisDataset) iterate(ctx context.Context, lambda func(dataset.Sample) (bool, error)) error {
	ids, err := ds.rc.LRange(ds.idsKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("listing sample ids: %v", err)
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields, err := ds.rc.HGetAll(ds.sampleKey(id)).Result()
		if err != nil {
			return fmt.Errorf("retrieving sample %s: %v", id, err)
		}
		s, err := ds.parseSample(fields)
		if err != nil {
			return fmt.Errorf("retrieving sample %s: %v", id, err)
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

func (ds *redisDataset) parseSample(fields map[string]string) (dataset.Sample, error) {
	featureValues := make(map[string]feature.Value)
	for _, f := range ds.features {
		raw, ok := fields[f.Name()]
		if !ok {
			continue
		}
		if f.Kind() == feature.Number {
			number, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing %q as number for feature %s: %v", raw, f.Name(), err)
			}
			featureValues[f.Name()] = feature.NewNumber(number)
		} else {
			featureValues[f.Name()] = feature.NewCategory(raw)
		}
	}
	return dataset.NewSample(featureValues), nil
}

func (ds *redisDataset) idsKey() string {
	return fmt.Sprintf("%s:ids", ds.prefix)
}

func (ds *redisDataset) nextIDKey() string {
	return fmt.Sprintf("%s:next-id", ds.prefix)
}

func (ds *redisDataset) sampleKey(id string) string {
	return fmt.Sprintf("%s:sample:%s", ds.prefix, id)
}
