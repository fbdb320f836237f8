package feature

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type mapSample map[string]Value

func (s mapSample) ValueFor(ctx context.Context, f *Feature) (Value, error) {
	return s[f.Name()], nil
}

func TestValueEqual(t *testing.T) {
	require.True(t, NewNumber(2.5).Equal(NewNumber(2.5)))
	require.False(t, NewNumber(2.5).Equal(NewNumber(3)))
	require.True(t, NewCategory("agile").Equal(NewCategory("agile")))
	require.False(t, NewCategory("agile").Equal(NewCategory("waterfall")))
	require.False(t, NewNumber(0).Equal(NewCategory("")))
	require.False(t, NewCategory("").Equal(NewNumber(0)))
}

func TestUndefinedValueEqualsNothing(t *testing.T) {
	var undefined Value
	require.False(t, undefined.Defined())
	require.False(t, undefined.Equal(undefined))
	require.False(t, undefined.Equal(NewNumber(0)))
	require.False(t, NewNumber(0).Equal(undefined))
	require.False(t, undefined.Equal(NewCategory("")))
	require.False(t, NewCategory("").Equal(undefined))
}

func TestValueString(t *testing.T) {
	require.Equal(t, "2.5", NewNumber(2.5).String())
	require.Equal(t, "12", NewNumber(12).String())
	require.Equal(t, "agile", NewCategory("agile").String())
	var undefined Value
	require.Equal(t, "?", undefined.String())
}

func TestQuestionMatch(t *testing.T) {
	ctx := context.Background()
	requirements := NewCategoryFeature("Requirements", []string{"stable", "volatile"})
	q := NewQuestion(requirements, NewCategory("stable"))

	matches, err := q.Match(ctx, mapSample{"Requirements": NewCategory("stable")})
	require.NoError(t, err)
	require.True(t, matches)

	matches, err = q.Match(ctx, mapSample{"Requirements": NewCategory("volatile")})
	require.NoError(t, err)
	require.False(t, matches)
}

func TestQuestionMatchOnSampleWithoutValue(t *testing.T) {
	ctx := context.Background()
	teamSize := NewNumberFeature("TeamSize")
	q := NewQuestion(teamSize, NewNumber(5))

	matches, err := q.Match(ctx, mapSample{})
	require.NoError(t, err)
	require.False(t, matches)
}

func TestQuestionString(t *testing.T) {
	requirements := NewCategoryFeature("Requirements", nil)
	q := NewQuestion(requirements, NewCategory("stable"))
	require.Equal(t, "Requirements == stable?", q.String())

	teamSize := NewNumberFeature("TeamSize")
	q = NewQuestion(teamSize, NewNumber(5))
	require.Equal(t, "TeamSize == 5?", q.String())
}

func TestFeatureValid(t *testing.T) {
	requirements := NewCategoryFeature("Requirements", []string{"stable", "volatile"})
	ok, err := requirements.Valid(NewCategory("stable"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = requirements.Valid(NewCategory("unheard-of"))
	require.Error(t, err)
	require.False(t, ok)

	ok, err = requirements.Valid(NewNumber(1))
	require.Error(t, err)
	require.False(t, ok)

	teamSize := NewNumberFeature("TeamSize")
	ok, err = teamSize.Valid(NewNumber(12))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = teamSize.Valid(NewCategory("12"))
	require.Error(t, err)
	require.False(t, ok)
}

func TestUnconstrainedCategoryFeatureAcceptsAnyLabel(t *testing.T) {
	model := NewCategoryFeature("Model", nil)
	ok, err := model.Valid(NewCategory("anything"))
	require.NoError(t, err)
	require.True(t, ok)
}
