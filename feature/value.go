package feature

import "strconv"

/*
Value is a tagged union over the kinds of values a feature can
take: a float64 number or a category label string. The zero Value
is undefined: it has no kind and equals no value, not even another
undefined one.

Values are compared exclusively through Equal: two values are equal
when both are defined, share the same kind and hold the same number
or category label.
*/
type Value struct {
	kind     Kind
	defined  bool
	number   float64
	category string
}

/*
NewNumber takes a float64 and returns a number Value holding it.
*/
func NewNumber(n float64) Value {
	return Value{kind: Number, defined: true, number: n}
}

/*
NewCategory takes a string and returns a category Value holding it.
*/
func NewCategory(c string) Value {
	return Value{kind: Category, defined: true, category: c}
}

/*
Defined returns whether the value holds anything at all. The zero
Value is not defined.
*/
func (v Value) Defined() bool {
	return v.defined
}

/*
Kind returns the kind of the value. It is only meaningful for
defined values.
*/
func (v Value) Kind() Kind {
	return v.kind
}

/*
Number returns the float64 held by a number value, or 0 for
category and undefined values.
*/
func (v Value) Number() float64 {
	if v.kind != Number {
		return 0
	}
	return v.number
}

/*
Category returns the label held by a category value, or "" for
number and undefined values.
*/
func (v Value) Category() string {
	if v.kind != Category {
		return ""
	}
	return v.category
}

/*
Equal returns whether the value and the given one are both defined,
of the same kind and hold the same number or category label.
*/
func (v Value) Equal(other Value) bool {
	if !v.defined || !other.defined || v.kind != other.kind {
		return false
	}
	if v.kind == Number {
		return v.number == other.number
	}
	return v.category == other.category
}

func (v Value) String() string {
	if !v.defined {
		return "?"
	}
	if v.kind == Number {
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	}
	return v.category
}
