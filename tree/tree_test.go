package tree

import (
	"strings"
	"testing"

	"github.com/XRotoX/sdlc-models/feature"
	"github.com/stretchr/testify/require"
)

func TestNewLeafCopiesCounts(t *testing.T) {
	counts := map[string]int{"Waterfall": 2, "Agile": 1}
	leaf := NewLeaf(counts)
	counts["Waterfall"] = 100
	require.Equal(t, 2, leaf.CountFor("Waterfall"))
	require.Equal(t, 3, leaf.Weight())
}

func TestLeafString(t *testing.T) {
	leaf := NewLeaf(map[string]int{"Waterfall": 2, "Agile": 1, "Spiral": 4})
	require.Equal(t, "{Agile: 1, Spiral: 4, Waterfall: 2}", leaf.String())
}

func TestLeafCountForUnknownLabel(t *testing.T) {
	leaf := NewLeaf(map[string]int{"Waterfall": 2})
	require.Equal(t, 0, leaf.CountFor("Agile"))
}

func TestFprint(t *testing.T) {
	requirements := feature.NewCategoryFeature("Requirements", []string{"stable", "volatile"})
	q := feature.NewQuestion(requirements, feature.NewCategory("stable"))
	root := NewDecision(q,
		NewLeaf(map[string]int{"Waterfall": 2}),
		NewLeaf(map[string]int{"Agile": 2}),
	)

	var sb strings.Builder
	err := Fprint(&sb, root)
	require.NoError(t, err)
	expected := "Requirements == stable?\n" +
		"--> true:\n" +
		"  predict {Waterfall: 2}\n" +
		"--> false:\n" +
		"  predict {Agile: 2}\n"
	require.Equal(t, expected, sb.String())
}

func TestFprintNestedDecision(t *testing.T) {
	requirements := feature.NewCategoryFeature("Requirements", []string{"stable", "volatile"})
	teamSize := feature.NewNumberFeature("TeamSize")
	root := NewDecision(feature.NewQuestion(requirements, feature.NewCategory("stable")),
		NewDecision(feature.NewQuestion(teamSize, feature.NewNumber(30)),
			NewLeaf(map[string]int{"Waterfall": 1}),
			NewLeaf(map[string]int{"Spiral": 1}),
		),
		NewLeaf(map[string]int{"Agile": 2}),
	)

	expected := "Requirements == stable?\n" +
		"--> true:\n" +
		"  TeamSize == 30?\n" +
		"  --> true:\n" +
		"    predict {Waterfall: 1}\n" +
		"  --> false:\n" +
		"    predict {Spiral: 1}\n" +
		"--> false:\n" +
		"  predict {Agile: 2}\n"
	require.Equal(t, expected, Sprint(root))
}
