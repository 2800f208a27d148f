package ginroute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/enumroute/pkg/enumconstraint"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/routeconstraint"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

func newTestTypeRegistry(testingT *testing.T) *typeregistry.Registry {
	testingT.Helper()
	registry := typeregistry.NewRegistry()
	require.NoError(testingT, registry.Register(typeregistry.Type{
		Name:    "palette.Color",
		Kind:    typeregistry.KindEnumeration,
		Members: []string{"Red", "Green", "Blue"},
	}))
	require.NoError(testingT, registry.Register(typeregistry.StructOf("palette.Swatch")))
	return registry
}

func TestDefaultConstraintResolverBuildsEnumConstraints(testingT *testing.T) {
	constraintResolver := NewDefaultConstraintResolver(newTestTypeRegistry(testingT))
	require.Equal(testingT, []string{ConstraintTokenEnum}, constraintResolver.Tokens())

	matcher, resolveErr := constraintResolver.Resolve(ConstraintReference{Token: "ENUM", Argument: "palette.Color"})
	require.NoError(testingT, resolveErr)
	require.True(testingT, matcher.Match("color", routeconstraint.RouteValues{"color": "red"}, routeconstraint.DirectionIncoming))
}

func TestDefaultConstraintResolverSurfacesConstructionErrors(testingT *testing.T) {
	constraintResolver := NewDefaultConstraintResolver(newTestTypeRegistry(testingT))

	_, missingErr := constraintResolver.Resolve(ConstraintReference{Token: ConstraintTokenEnum, Argument: "NotARealType"})
	require.ErrorIs(testingT, missingErr, ErrInvalidConstraint)
	require.ErrorIs(testingT, missingErr, enumconstraint.ErrInvalidArgument)
	require.ErrorIs(testingT, missingErr, enumconstraint.ErrTypeNotFound)

	_, structErr := constraintResolver.Resolve(ConstraintReference{Token: ConstraintTokenEnum, Argument: "palette.Swatch"})
	require.ErrorIs(testingT, structErr, enumconstraint.ErrNotEnumeration)

	_, unknownErr := constraintResolver.Resolve(ConstraintReference{Token: "regex", Argument: ".*"})
	require.ErrorIs(testingT, unknownErr, ErrUnknownConstraint)
}

func TestConstraintResolverRegister(testingT *testing.T) {
	constraintResolver := NewConstraintResolver()
	alwaysTrue := func(string) (routeconstraint.Matcher, error) {
		return routeconstraint.MatcherFunc(func(string, routeconstraint.RouteValues, routeconstraint.Direction) bool {
			return true
		}), nil
	}

	require.NoError(testingT, constraintResolver.Register(" Any ", alwaysTrue))
	require.ErrorIs(testingT, constraintResolver.Register("any", alwaysTrue), ErrDuplicateConstraint)
	require.ErrorIs(testingT, constraintResolver.Register("", alwaysTrue), ErrInvalidConstraint)
	require.ErrorIs(testingT, constraintResolver.Register("none", nil), ErrNilFactory)
	require.Equal(testingT, []string{"any"}, constraintResolver.Tokens())

	require.NoError(testingT, constraintResolver.Register("broken", func(string) (routeconstraint.Matcher, error) {
		return nil, errors.New("boom")
	}))
	_, brokenErr := constraintResolver.Resolve(ConstraintReference{Token: "broken"})
	require.ErrorIs(testingT, brokenErr, ErrInvalidConstraint)
	require.Contains(testingT, brokenErr.Error(), "boom")

	require.NoError(testingT, constraintResolver.Register("empty", func(string) (routeconstraint.Matcher, error) {
		return nil, nil
	}))
	_, emptyErr := constraintResolver.Resolve(ConstraintReference{Token: "empty"})
	require.ErrorIs(testingT, emptyErr, ErrInvalidConstraint)
}
