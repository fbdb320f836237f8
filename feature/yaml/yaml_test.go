package yaml

import (
	"testing"

	"github.com/XRotoX/sdlc-models/feature"
	"github.com/stretchr/testify/require"
)

const testMetadata = `
features:
  Requirements:
    - stable
    - volatile
  TeamSize: number
  Model:
    - Waterfall
    - Agile
    - Spiral
`

func TestReadFeatures(t *testing.T) {
	features, err := ReadFeatures([]byte(testMetadata))
	require.NoError(t, err)
	require.Len(t, features, 3)

	require.Equal(t, "Requirements", features[0].Name())
	require.Equal(t, feature.Category, features[0].Kind())
	require.Equal(t, []string{"stable", "volatile"}, features[0].AvailableValues())

	require.Equal(t, "TeamSize", features[1].Name())
	require.Equal(t, feature.Number, features[1].Kind())

	require.Equal(t, "Model", features[2].Name())
	require.Equal(t, feature.Category, features[2].Kind())
	require.Equal(t, []string{"Waterfall", "Agile", "Spiral"}, features[2].AvailableValues())
}

func TestReadFeaturesKeepsDeclarationOrder(t *testing.T) {
	features, err := ReadFeatures([]byte(testMetadata))
	require.NoError(t, err)
	names := make([]string, 0, len(features))
	for _, f := range features {
		names = append(names, f.Name())
	}
	require.Equal(t, []string{"Requirements", "TeamSize", "Model"}, names)
}

func TestReadFeaturesWithUnknownKind(t *testing.T) {
	_, err := ReadFeatures([]byte("features:\n  TeamSize: integer\n"))
	require.Error(t, err)
}

func TestReadFeaturesWithoutFeatureInformation(t *testing.T) {
	_, err := ReadFeatures([]byte("something: else\n"))
	require.Error(t, err)
}
