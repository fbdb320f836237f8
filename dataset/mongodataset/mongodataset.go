/*
Package mongodataset provides an implementation of dataset.Dataset
that uses a MongoDB database as backend. Samples live as documents
of a samples collection with one field per defined feature value;
partitioning appends conditions to the query instead of copying
documents, so counting and grouping run as aggregation pipelines on
the database.
*/
package mongodataset

import (
	"context"
	"fmt"

	"github.com/XRotoX/sdlc-models/dataset"
	"github.com/XRotoX/sdlc-models/feature"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const samplesCollectionName = "samples"

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

type mongoDataset struct {
	session  *mgo.Session
	features []*feature.Feature
	path     []pathBranch
	count    *int
	gini     *float64
}

/*
Open takes a MongoDB session and a slice of features and returns a
Dataset over the samples collection of the session's default
database.
*/
func Open(ctx context.Context, session *mgo.Session, features []*feature.Feature) (Dataset, error) {
	return &mongoDataset{session: session, features: features}, nil
}

func (ds *mongoDataset) Count(ctx context.Context) (int, error) {
	if ds.count != nil {
		return *ds.count, nil
	}
	count, err := ds.samplesCollection().Find(ds.query()).Count()
	if err != nil {
		return 0, fmt.Errorf("counting samples: %v", err)
	}
	ds.count = &count
	return count, nil
}

func (ds *mongoDataset) Gini(ctx context.Context, label *feature.Feature) (float64, error) {
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

func (ds *mongoDataset) FeatureValues(ctx context.Context, f *feature.Feature) ([]feature.Value, error) {
	pipeline := []bson.M{
		{"$match": ds.query()},
		{"$group": bson.M{"_id": fmt.Sprintf("$%s", f.Name())}},
		{"$sort": bson.M{"_id": 1}},
	}
	iter := ds.samplesCollection().Pipe(pipeline).Iter()
	defer iter.Close()
	var doc bson.M
	var result []feature.Value
	for iter.Next(&doc) {
		v, ok := valueFromRaw(f, doc["_id"])
		if ok {
			result = append(result, v)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing values of %s: %v", f.Name(), err)
	}
	return result, nil
}

func (ds *mongoDataset) CountFeatureValues(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	pipeline := []bson.M{
		{"$match": ds.query()},
		{"$group": bson.M{"_id": fmt.Sprintf("$%s", f.Name()), "count": bson.M{"$sum": 1}}},
	}
	iter := ds.samplesCollection().Pipe(pipeline).Iter()
	defer iter.Close()
	var doc bson.M
	result := make(map[string]int)
	for iter.Next(&doc) {
		v, ok := valueFromRaw(f, doc["_id"])
		if !ok {
			continue
		}
		count, ok := doc["count"].(int)
		if !ok {
			return nil, fmt.Errorf("counting values of %s: aggregation returned a %T instead of an int as count", f.Name(), doc["count"])
		}
		result[v.String()] = count
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("counting values of %s: %v", f.Name(), err)
	}
	return result, nil
}

func (ds *mongoDataset) Samples(ctx context.Context) ([]dataset.Sample, error) {
	var samples []dataset.Sample
	count, err := ds.Count(ctx)
	if err == nil {
		samples = make([]dataset.Sample, 0, count)
	}
	sampleStream, errStream := ds.Read(ctx)
	for s := range sampleStream {
		samples = append(samples, s)
	}
	return samples, <-errStream
}

func (ds *mongoDataset) Partition(ctx context.Context, q feature.Question) (dataset.Dataset, dataset.Dataset, error) {
	truePath := append(append([]pathBranch{}, ds.path...), pathBranch{q, true})
	falsePath := append(append([]pathBranch{}, ds.path...), pathBranch{q, false})
	return &mongoDataset{session: ds.session, features: ds.features, path: truePath},
		&mongoDataset{session: ds.session, features: ds.features, path: falsePath},
		nil
}

/*
Read returns a channel on which the dataset's samples are sent in
insertion order and a channel on which at most one error is sent
once the sample channel is closed.
*/
func (ds *mongoDataset) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	sampleStream := make(chan dataset.Sample)
	errStream := make(chan error, 1)
	go func() {
		defer close(sampleStream)
		defer close(errStream)
		iter := ds.samplesCollection().Find(ds.query()).Sort("_id").Iter()
		defer iter.Close()
		var doc bson.M
		for iter.Next(&doc) {
			featureValues := make(map[string]feature.Value)
			for _, f := range ds.features {
				v, ok := valueFromRaw(f, doc[f.Name()])
				if ok {
					featureValues[f.Name()] = v
				}
			}
			select {
			case <-ctx.Done():
				errStream <- ctx.Err()
				return
			case sampleStream <- dataset.NewSample(featureValues):
			}
		}
		if err := iter.Err(); err != nil {
			errStream <- fmt.Errorf("reading samples: %v", err)
		}
	}()
	return sampleStream, errStream
}

/*
Write takes a slice of samples and inserts them as documents on the
samples collection, returning the number of samples inserted and an
error if not all of them could be.
*/
func (ds *mongoDataset) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	for n, s := range samples {
		doc := make(bson.M)
		for _, f := range ds.features {
			v, err := s.ValueFor(ctx, f)
			if err != nil {
				return n, err
			}
			if !v.Defined() {
				continue
			}
			if f.Kind() == feature.Number {
				doc[f.Name()] = v.Number()
			} else {
				doc[f.Name()] = v.Category()
			}
		}
		if err := ds.samplesCollection().Insert(doc); err != nil {
			return n, fmt.Errorf("inserting sample %d: %v", n, err)
		}
	}
	return len(samples), nil
}

func (ds *mongoDataset) samplesCollection() *mgo.Collection {
	return ds.session.DB("").C(samplesCollectionName)
}

/*
query builds the selector matching the samples of this view: one
condition per branch of the partition path. The false side of a
question must include samples with no value for its feature, which
$ne already does: it matches documents where the field is absent.
*/
func (ds *mongoDataset) query() bson.M {
	if len(ds.path) == 0 {
		return bson.M{}
	}
	conditions := make([]bson.M, 0, len(ds.path))
	for _, b := range ds.path {
		name := b.question.Feature().Name()
		var raw interface{}
		if b.question.Feature().Kind() == feature.Number {
			raw = b.question.Value().Number()
		} else {
			raw = b.question.Value().Category()
		}
		if b.wanted {
			conditions = append(conditions, bson.M{name: raw})
		} else {
			conditions = append(conditions, bson.M{name: bson.M{"$ne": raw}})
		}
	}
	if len(conditions) == 1 {
		return conditions[0]
	}
	return bson.M{"$and": conditions}
}

func valueFromRaw(f *feature.Feature, raw interface{}) (feature.Value, bool) {
	if raw == nil {
		return feature.Value{}, false
	}
	switch v := raw.(type) {
	case float64:
		return feature.NewNumber(v), true
	case int:
		return feature.NewNumber(float64(v)), true
	case int64:
		return feature.NewNumber(float64(v)), true
	case string:
		return feature.NewCategory(v), true
	}
	return feature.Value{}, false
}
