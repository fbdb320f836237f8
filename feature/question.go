package feature

import (
	"context"
	"fmt"
)

/*
Sample is an interface for something a Question can be asked about.

Its ValueFor method returns the value corresponding to the feature
passed as parameter. An undefined (zero) Value indicates the sample
has no value for the feature.
*/
type Sample interface {
	ValueFor(context.Context, *Feature) (Value, error)
}

/*
Question represents an equality test on a feature: "is the sample's
value for this feature equal to this value?". It is the predicate a
decision node uses to split a dataset into its true and false
branches. Questions are immutable once constructed.
*/
type Question struct {
	feature *Feature
	value   Value
}

/*
NewQuestion takes a feature and a value and returns the Question
asking whether a sample's value for the feature equals the given
value.
*/
func NewQuestion(f *Feature, v Value) Question {
	return Question{feature: f, value: v}
}

/*
Feature returns the feature the question asks about.
*/
func (q Question) Feature() *Feature {
	return q.feature
}

/*
Value returns the value the question compares against.
*/
func (q Question) Value() Value {
	return q.value
}

/*
Match takes a context and a sample and returns whether the sample's
value for the question's feature equals the question's value, or an
error if the value cannot be obtained. Samples with no value for
the feature never match.
*/
func (q Question) Match(ctx context.Context, s Sample) (bool, error) {
	v, err := s.ValueFor(ctx, q.feature)
	if err != nil {
		return false, err
	}
	return v.Equal(q.value), nil
}

func (q Question) String() string {
	return fmt.Sprintf("%s == %v?", q.feature.Name(), q.value)
}
