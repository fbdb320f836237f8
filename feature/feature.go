package feature

import "fmt"

/*
Kind identifies the type of value a feature can take:
a number or a category label.
*/
type Kind int

const (
	// Number is the kind of features whose values are numeric
	Number Kind = iota
	// Category is the kind of features whose values are labels
	// from a finite set
	Category
)

func (k Kind) String() string {
	if k == Number {
		return "number"
	}
	return "category"
}

/*
Feature represents a named column of a dataset: a property that
can be observed on every sample.
*/
type Feature struct {
	name            string
	kind            Kind
	availableValues []string
}

/*
NewNumberFeature takes a name string and returns a feature whose
values are numbers.
*/
func NewNumberFeature(name string) *Feature {
	return &Feature{name: name, kind: Number}
}

/*
NewCategoryFeature takes a name string and a slice of available
value strings and returns a feature whose values are category
labels among the given available values. An empty or nil slice
of available values leaves the feature unconstrained.
*/
func NewCategoryFeature(name string, availableValues []string) *Feature {
	return &Feature{name: name, kind: Category, availableValues: availableValues}
}

/*
Name returns a string with the name of the feature
*/
func (f *Feature) Name() string {
	return f.name
}

/*
Kind returns the kind of the feature: Number or Category
*/
func (f *Feature) Kind() Kind {
	return f.kind
}

/*
AvailableValues returns a string slice with the category labels
available for the feature, or nil for number features and for
unconstrained category features.
*/
func (f *Feature) AvailableValues() []string {
	return f.availableValues
}

/*
Valid receives a Value and returns a boolean and an error. When the
value is of the feature's kind and, for constrained category
features, among its available values, the method returns true and
nil. Otherwise it returns false and an error describing the reason.
Undefined values are always valid here: whether they are accepted
at all is a loader policy.
*/
func (f *Feature) Valid(v Value) (bool, error) {
	if !v.Defined() {
		return true, nil
	}
	if v.Kind() != f.kind {
		return false, fmt.Errorf("%s feature %s got %s value %v", f.kind, f.name, v.Kind(), v)
	}
	if f.kind == Category && len(f.availableValues) > 0 {
		for _, av := range f.availableValues {
			if av == v.Category() {
				return true, nil
			}
		}
		return false, fmt.Errorf("category feature %s got unknown value %s", f.name, v.Category())
	}
	return true, nil
}

func (f *Feature) String() string {
	return f.name
}
