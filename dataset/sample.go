package dataset

import (
	"context"
	"fmt"

	"github.com/XRotoX/sdlc-models/feature"
)

type sample struct {
	featureValues map[string]feature.Value
}

/*
NewSample takes a map of feature names to values and returns a
Sample holding them. Features absent from the map have an undefined
value.
*/
func NewSample(featureValues map[string]feature.Value) Sample {
	return &sample{featureValues}
}

func (s *sample) ValueFor(ctx context.Context, f *feature.Feature) (feature.Value, error) {
	return s.featureValues[f.Name()], nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.featureValues)
}
