package ginroute

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/MarkoPoloResearchLab/enumroute/pkg/enumconstraint"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/routeconstraint"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

const (
	// ConstraintTokenEnum is the template token bound to enumeration membership.
	ConstraintTokenEnum = "enum"

	errorMessageUnknownConstraint   = "ginroute: unknown constraint"
	errorMessageDuplicateConstraint = "ginroute: duplicate constraint"
	errorMessageInvalidConstraint   = "ginroute: invalid constraint"
	errorMessageNilFactory          = "ginroute: nil constraint factory"
)

var (
	// ErrUnknownConstraint indicates a template referenced a token with no registered factory.
	ErrUnknownConstraint = errors.New(errorMessageUnknownConstraint)
	// ErrDuplicateConstraint indicates a token was registered twice.
	ErrDuplicateConstraint = errors.New(errorMessageDuplicateConstraint)
	// ErrInvalidConstraint wraps factory failures.
	ErrInvalidConstraint = errors.New(errorMessageInvalidConstraint)
	// ErrNilFactory indicates a nil factory was registered.
	ErrNilFactory = errors.New(errorMessageNilFactory)
)

// ConstraintFactory builds a matcher from the argument written in a route template.
type ConstraintFactory func(argument string) (routeconstraint.Matcher, error)

// ConstraintResolver maps template tokens to constraint factories.
type ConstraintResolver struct {
	mutex     sync.RWMutex
	factories map[string]ConstraintFactory
}

// NewConstraintResolver creates a resolver with no constraints.
func NewConstraintResolver() *ConstraintResolver {
	return &ConstraintResolver{factories: make(map[string]ConstraintFactory)}
}

// NewDefaultConstraintResolver creates a resolver with the enum constraint bound to typeResolver.
func NewDefaultConstraintResolver(typeResolver typeregistry.Resolver) *ConstraintResolver {
	constraintResolver := NewConstraintResolver()
	constraintResolver.factories[ConstraintTokenEnum] = EnumConstraintFactory(typeResolver)
	return constraintResolver
}

// EnumConstraintFactory builds enumeration membership constraints resolved through typeResolver.
func EnumConstraintFactory(typeResolver typeregistry.Resolver) ConstraintFactory {
	return func(argument string) (routeconstraint.Matcher, error) {
		constraint, constructErr := enumconstraint.New(argument, typeResolver)
		if constructErr != nil {
			return nil, constructErr
		}
		return constraint, nil
	}
}

// Register binds token to factory. Tokens are case-insensitive.
func (constraintResolver *ConstraintResolver) Register(token string, factory ConstraintFactory) error {
	normalizedToken := normalizeToken(token)
	if normalizedToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidConstraint)
	}
	if factory == nil {
		return fmt.Errorf("%w: %s", ErrNilFactory, normalizedToken)
	}

	constraintResolver.mutex.Lock()
	defer constraintResolver.mutex.Unlock()
	if _, exists := constraintResolver.factories[normalizedToken]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateConstraint, normalizedToken)
	}
	constraintResolver.factories[normalizedToken] = factory
	return nil
}

// Resolve builds the matcher for one template constraint reference.
func (constraintResolver *ConstraintResolver) Resolve(reference ConstraintReference) (routeconstraint.Matcher, error) {
	normalizedToken := normalizeToken(reference.Token)

	constraintResolver.mutex.RLock()
	factory, found := constraintResolver.factories[normalizedToken]
	constraintResolver.mutex.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConstraint, reference.Token)
	}

	matcher, factoryErr := factory(reference.Argument)
	if factoryErr != nil {
		return nil, fmt.Errorf("%w: %s(%s): %w", ErrInvalidConstraint, normalizedToken, reference.Argument, factoryErr)
	}
	if matcher == nil {
		return nil, fmt.Errorf("%w: %s(%s): factory returned no matcher", ErrInvalidConstraint, normalizedToken, reference.Argument)
	}
	return matcher, nil
}

// Tokens lists the registered tokens in sorted order.
func (constraintResolver *ConstraintResolver) Tokens() []string {
	constraintResolver.mutex.RLock()
	defer constraintResolver.mutex.RUnlock()
	tokens := make([]string, 0, len(constraintResolver.factories))
	for token := range constraintResolver.factories {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
