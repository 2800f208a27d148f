package ginroute

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTemplateWithEnumConstraint(testingT *testing.T) {
	parsed, parseErr := ParseTemplate("colors/{color:enum(My.Namespace.ColorsEnum)}")
	require.NoError(testingT, parseErr)
	require.Equal(testingT, "/colors/:color", parsed.GinPath())
	require.Len(testingT, parsed.Segments, 2)
	require.Equal(testingT, "colors", parsed.Segments[0].Literal)
	require.False(testingT, parsed.Segments[0].IsParameter())
	require.Equal(testingT, "color", parsed.Segments[1].Parameter)
	require.Equal(testingT, []ConstraintReference{{Token: "enum", Argument: "My.Namespace.ColorsEnum"}}, parsed.Segments[1].Constraints)
}

func TestParseTemplateVariants(testingT *testing.T) {
	testCases := []struct {
		name                string
		template            string
		expectedGinPath     string
		expectedConstraints [][]ConstraintReference
	}{
		{
			name:            "root",
			template:        "/",
			expectedGinPath: "/",
		},
		{
			name:                "nested enumeration",
			template:            "/swatches/{finish:enum(palette.Swatch+Finish)}/",
			expectedGinPath:     "/swatches/:finish",
			expectedConstraints: [][]ConstraintReference{nil, {{Token: "enum", Argument: "palette.Swatch+Finish"}}},
		},
		{
			name:            "chained constraints",
			template:        "items/{kind:enum(a.Kind):nonempty}/{id}",
			expectedGinPath: "/items/:kind/:id",
			expectedConstraints: [][]ConstraintReference{
				nil,
				{{Token: "enum", Argument: "a.Kind"}, {Token: "nonempty"}},
				nil,
			},
		},
		{
			name:                "catch all",
			template:            "files/{*path}",
			expectedGinPath:     "/files/*path",
			expectedConstraints: [][]ConstraintReference{nil, nil},
		},
	}

	for _, testCase := range testCases {
		testingT.Run(testCase.name, func(testingT *testing.T) {
			parsed, parseErr := ParseTemplate(testCase.template)
			require.NoError(testingT, parseErr)
			require.Equal(testingT, testCase.expectedGinPath, parsed.GinPath())
			for segmentIndex, expectedConstraints := range testCase.expectedConstraints {
				require.Equal(testingT, expectedConstraints, parsed.Segments[segmentIndex].Constraints)
			}
		})
	}
}

func TestParseTemplateRejectsMalformedTemplates(testingT *testing.T) {
	malformedTemplates := []string{
		"colors//{color}",
		"colors/x{color}",
		"colors/{color}x",
		"colors/{}",
		"colors/{color:}",
		"colors/{color:enum(palette.Color}",
		"colors/{color:enum(a)b}",
		"colors/{*path}/tail",
		"colors/{id}/{id}",
		"colors/:color",
		"colors/{co lor}",
	}

	for _, malformedTemplate := range malformedTemplates {
		testingT.Run(malformedTemplate, func(testingT *testing.T) {
			_, parseErr := ParseTemplate(malformedTemplate)
			require.ErrorIs(testingT, parseErr, ErrInvalidTemplate)
		})
	}
}
