// Package enumconstraint provides a route constraint that accepts a path value only when
// it names a member of a registered enumeration, ignoring case.
//
// Register it with a ginroute.ConstraintResolver under the "enum" token and reference
// it from a route template:
//
//	colors/{color:enum(palette.Color)}
//
// Enumerations declared inside another type use the "+" separator, for example
// palette.Swatch+Finish.
package enumconstraint

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MarkoPoloResearchLab/enumroute/pkg/routeconstraint"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

const (
	errorMessageInvalidArgument = "enumconstraint: invalid argument"
	errorMessageTypeNotFound    = "type could not be resolved"
	errorMessageNotEnumeration  = "argument is not an enumeration type"
	errorMessageNilRegistry     = "type registry is nil"
)

var (
	// ErrInvalidArgument is wrapped by every construction failure.
	ErrInvalidArgument = errors.New(errorMessageInvalidArgument)
	// ErrTypeNotFound indicates the type name did not resolve to any type.
	ErrTypeNotFound = errors.New(errorMessageTypeNotFound)
	// ErrNotEnumeration indicates the type name resolved to a type that is not an enumeration.
	ErrNotEnumeration = errors.New(errorMessageNotEnumeration)
)

// Constraint matches route values against the member names of one enumeration.
// It never changes after New returns.
type Constraint struct {
	typeName          string
	memberNames       []string
	lowerMemberNames []string
}

// New resolves typeName through resolver and captures its member names.
func New(typeName string, resolver typeregistry.Resolver) (*Constraint, error) {
	if resolver == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, errorMessageNilRegistry)
	}

	typeDescriptor, found := resolver.Resolve(typeName)
	if !found {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidArgument, ErrTypeNotFound, typeName)
	}
	if !typeDescriptor.IsEnumeration() {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidArgument, ErrNotEnumeration, typeName)
	}

	memberNames := typeDescriptor.MemberNames()
	lowerMemberNames := make([]string, 0, len(memberNames))
	for _, memberName := range memberNames {
		lowerMemberNames = append(lowerMemberNames, lowerCase(memberName))
	}

	return &Constraint{
		typeName:          typeDescriptor.Name,
		memberNames:       memberNames,
		lowerMemberNames: lowerMemberNames,
	}, nil
}

// TypeName returns the resolved enumeration name.
func (constraint *Constraint) TypeName() string {
	return constraint.typeName
}

// MemberNames returns a copy of the member names in declared order.
func (constraint *Constraint) MemberNames() []string {
	memberNames := make([]string, len(constraint.memberNames))
	copy(memberNames, constraint.memberNames)
	return memberNames
}

// MatchValue reports whether candidate names a member. Empty input never matches.
func (constraint *Constraint) MatchValue(candidate string) bool {
	_, matched := constraint.CanonicalName(candidate)
	return matched
}

// CanonicalName returns the declared spelling of the member candidate names.
func (constraint *Constraint) CanonicalName(candidate string) (string, bool) {
	if candidate == "" {
		return "", false
	}
	lowerCandidate := lowerCase(candidate)
	for memberIndex, lowerMemberName := range constraint.lowerMemberNames {
		if lowerMemberName == lowerCandidate {
			return constraint.memberNames[memberIndex], true
		}
	}
	return "", false
}

// Match implements routeconstraint.Matcher. Only non-empty string values can match,
// and the direction does not change the outcome.
func (constraint *Constraint) Match(parameterName string, routeValues routeconstraint.RouteValues, _ routeconstraint.Direction) bool {
	stringValue, present := routeconstraint.StringValue(parameterName, routeValues)
	if !present {
		return false
	}
	return constraint.MatchValue(stringValue)
}

// lowerCase lowercases value with root-locale rules. İ and ı keep their identity
// and ß is never expanded to ss. A Caser keeps state, so each call gets its own.
func lowerCase(value string) string {
	return cases.Lower(language.Und).String(value)
}
