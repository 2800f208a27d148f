// Package routeconstraint defines the predicate contract route constraints implement.
package routeconstraint

// Direction tells a constraint whether it validates an incoming request or a URL being generated.
type Direction int

const (
	DirectionIncoming Direction = iota
	DirectionURLGeneration
)

// String returns the log label of the direction.
func (direction Direction) String() string {
	switch direction {
	case DirectionIncoming:
		return "incoming"
	case DirectionURLGeneration:
		return "url_generation"
	default:
		return "unknown"
	}
}

// RouteValues maps route parameter names to the values extracted for a request.
type RouteValues map[string]any

// Matcher validates a single route parameter. Implementations look up parameterName
// in routeValues and ignore every other entry.
type Matcher interface {
	Match(parameterName string, routeValues RouteValues, direction Direction) bool
}

// MatcherFunc adapts an ordinary function to a Matcher.
type MatcherFunc func(parameterName string, routeValues RouteValues, direction Direction) bool

// Match calls matcherFunc.
func (matcherFunc MatcherFunc) Match(parameterName string, routeValues RouteValues, direction Direction) bool {
	return matcherFunc(parameterName, routeValues, direction)
}

// StringValue returns the named route value when it is a non-empty string.
func StringValue(parameterName string, routeValues RouteValues) (string, bool) {
	rawValue, found := routeValues[parameterName]
	if !found || rawValue == nil {
		return "", false
	}
	stringValue, isString := rawValue.(string)
	if !isString || stringValue == "" {
		return "", false
	}
	return stringValue, true
}
