// Package ginroute registers gin routes from templates with inline constraints such as
// {color:enum(palette.Color)} and generates URLs that honor the same constraints.
package ginroute

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/enumroute/pkg/routeconstraint"
)

const (
	// RouteNameContextKey holds the matched route name in the gin context.
	RouteNameContextKey = "ginroute.route_name"
	// ErrorCodeConstraintFailed is the error code returned when a constraint rejects a request.
	ErrorCodeConstraintFailed = "route_constraint_failed"

	errorMessageDuplicateRoute      = "ginroute: duplicate route name"
	errorMessageUnknownRoute        = "ginroute: unknown route"
	errorMessageMissingRouteValue   = "ginroute: missing route value"
	errorMessageConstraintRejected  = "ginroute: route value rejected by constraint"
	errorMessageNilConstraintSource = "ginroute: nil constraint resolver"

	logEventConstraintRejected = "route constraint rejected"
	logFieldRoute              = "route"
	logFieldTemplate           = "template"
	logFieldParameter          = "parameter"
	logFieldConstraint         = "constraint"
	logFieldDirection          = "direction"
)

var (
	// ErrDuplicateRoute indicates a route name was registered twice.
	ErrDuplicateRoute = errors.New(errorMessageDuplicateRoute)
	// ErrUnknownRoute indicates URL generation for a route name that was never registered.
	ErrUnknownRoute = errors.New(errorMessageUnknownRoute)
	// ErrMissingRouteValue indicates URL generation without a value for a template parameter.
	ErrMissingRouteValue = errors.New(errorMessageMissingRouteValue)
	// ErrConstraintRejected indicates URL generation with a value a constraint does not accept.
	ErrConstraintRejected = errors.New(errorMessageConstraintRejected)
	// ErrNilConstraintResolver indicates a Router was created without a constraint resolver.
	ErrNilConstraintResolver = errors.New(errorMessageNilConstraintSource)
)

// Evaluation describes one constraint check.
type Evaluation struct {
	RouteName       string
	Template        string
	ParameterName   string
	ConstraintToken string
	Direction       routeconstraint.Direction
	Accepted        bool
}

// Observer receives every constraint evaluation.
type Observer interface {
	ObserveConstraint(evaluation Evaluation)
}

type routerGroup interface {
	gin.IRouter
	BasePath() string
}

type constraintBinding struct {
	parameterName string
	token         string
	matcher       routeconstraint.Matcher
}

// Route is a registered template route.
type Route struct {
	Name     string
	Method   string
	BasePath string
	Template Template
	bindings []constraintBinding
}

// Path returns the full gin path pattern including the group base path.
func (route *Route) Path() string {
	return joinPaths(route.BasePath, route.Template.GinPath())
}

type routeTable struct {
	mutex  sync.RWMutex
	routes map[string]*Route
}

// Router registers template routes on a gin router or group.
type Router struct {
	group              routerGroup
	constraintResolver *ConstraintResolver
	table              *routeTable
	logger             *zap.Logger
	observer           Observer
}

// Option customizes a Router.
type Option func(*Router)

// WithLogger sets the logger used for constraint rejections.
func WithLogger(logger *zap.Logger) Option {
	return func(router *Router) {
		if logger != nil {
			router.logger = logger
		}
	}
}

// WithObserver sets the observer notified of every constraint evaluation.
func WithObserver(observer Observer) Option {
	return func(router *Router) {
		router.observer = observer
	}
}

// NewRouter creates a Router over a gin engine or group.
func NewRouter(group routerGroup, constraintResolver *ConstraintResolver, options ...Option) (*Router, error) {
	if constraintResolver == nil {
		return nil, ErrNilConstraintResolver
	}
	router := &Router{
		group:              group,
		constraintResolver: constraintResolver,
		table:              &routeTable{routes: make(map[string]*Route)},
		logger:             zap.NewNop(),
	}
	for _, option := range options {
		option(router)
	}
	return router, nil
}

// Group returns a Router for a gin sub-group sharing this router's route names.
func (router *Router) Group(relativePath string, handlers ...gin.HandlerFunc) *Router {
	return &Router{
		group:              router.group.Group(relativePath, handlers...),
		constraintResolver: router.constraintResolver,
		table:              router.table,
		logger:             router.logger,
		observer:           router.observer,
	}
}

// Use adds middleware to the underlying gin group.
func (router *Router) Use(handlers ...gin.HandlerFunc) {
	router.group.Use(handlers...)
}

// GET registers a GET route.
func (router *Router) GET(template string, routeName string, handlers ...gin.HandlerFunc) (*Route, error) {
	return router.Handle(http.MethodGet, template, routeName, handlers...)
}

// POST registers a POST route.
func (router *Router) POST(template string, routeName string, handlers ...gin.HandlerFunc) (*Route, error) {
	return router.Handle(http.MethodPost, template, routeName, handlers...)
}

// Handle parses template, resolves its constraints and registers the gin route.
// Configuration problems surface here rather than per request. An empty routeName
// registers a route that cannot be used for URL generation.
func (router *Router) Handle(method string, template string, routeName string, handlers ...gin.HandlerFunc) (*Route, error) {
	parsedTemplate, parseErr := ParseTemplate(template)
	if parseErr != nil {
		return nil, parseErr
	}

	route := &Route{
		Name:     routeName,
		Method:   method,
		BasePath: router.group.BasePath(),
		Template: parsedTemplate,
	}
	for _, segment := range parsedTemplate.Segments {
		for _, reference := range segment.Constraints {
			matcher, resolveErr := router.constraintResolver.Resolve(reference)
			if resolveErr != nil {
				return nil, fmt.Errorf("route %q: %w", template, resolveErr)
			}
			route.bindings = append(route.bindings, constraintBinding{
				parameterName: segment.Parameter,
				token:         normalizeToken(reference.Token),
				matcher:       matcher,
			})
		}
	}

	if routeName != "" {
		router.table.mutex.Lock()
		if _, exists := router.table.routes[routeName]; exists {
			router.table.mutex.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, routeName)
		}
		router.table.routes[routeName] = route
		router.table.mutex.Unlock()
	}

	chain := make([]gin.HandlerFunc, 0, len(handlers)+1)
	chain = append(chain, router.constraintMiddleware(route))
	chain = append(chain, handlers...)
	router.group.Handle(method, parsedTemplate.GinPath(), chain...)
	return route, nil
}

// Route returns the named route.
func (router *Router) Route(routeName string) (*Route, bool) {
	router.table.mutex.RLock()
	defer router.table.mutex.RUnlock()
	route, found := router.table.routes[routeName]
	return route, found
}

// URL builds the path of the named route from routeValues. Every constraint is checked
// in the URL generation direction before the path is produced, and a catch-all value is
// checked without its leading slash, as it is for incoming requests.
func (router *Router) URL(routeName string, routeValues routeconstraint.RouteValues) (string, error) {
	route, found := router.Route(routeName)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, routeName)
	}

	constraintValues := make(routeconstraint.RouteValues, len(routeValues))
	for parameterName, rawValue := range routeValues {
		constraintValues[parameterName] = rawValue
	}
	pathSegments := make([]string, 0, len(route.Template.Segments))
	for _, segment := range route.Template.Segments {
		if !segment.IsParameter() {
			pathSegments = append(pathSegments, segment.Literal)
			continue
		}
		rawValue, present := routeValues[segment.Parameter]
		if !present || rawValue == nil {
			return "", fmt.Errorf("%w: %s", ErrMissingRouteValue, segment.Parameter)
		}
		formattedValue := fmt.Sprint(rawValue)
		if formattedValue == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingRouteValue, segment.Parameter)
		}
		if stringValue, isString := rawValue.(string); isString && segment.CatchAll {
			constraintValues[segment.Parameter] = strings.TrimPrefix(stringValue, pathSeparator)
		}
		pathSegments = append(pathSegments, escapeSegmentValue(formattedValue, segment.CatchAll))
	}

	for _, binding := range route.bindings {
		if !router.evaluate(route, binding, constraintValues, routeconstraint.DirectionURLGeneration) {
			return "", fmt.Errorf("%w: %s(%s)", ErrConstraintRejected, binding.token, binding.parameterName)
		}
	}

	return joinPaths(route.BasePath, pathSeparator+strings.Join(pathSegments, pathSeparator)), nil
}

func (router *Router) constraintMiddleware(route *Route) gin.HandlerFunc {
	return func(context *gin.Context) {
		if len(route.bindings) > 0 {
			routeValues := routeValuesFromParams(route, context.Params)
			for _, binding := range route.bindings {
				if router.evaluate(route, binding, routeValues, routeconstraint.DirectionIncoming) {
					continue
				}
				context.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error":     ErrorCodeConstraintFailed,
					"parameter": binding.parameterName,
				})
				return
			}
		}
		if route.Name != "" {
			context.Set(RouteNameContextKey, route.Name)
		}
		context.Next()
	}
}

func (router *Router) evaluate(route *Route, binding constraintBinding, routeValues routeconstraint.RouteValues, direction routeconstraint.Direction) bool {
	accepted := binding.matcher.Match(binding.parameterName, routeValues, direction)
	if router.observer != nil {
		router.observer.ObserveConstraint(Evaluation{
			RouteName:       route.Name,
			Template:        route.Template.Raw,
			ParameterName:   binding.parameterName,
			ConstraintToken: binding.token,
			Direction:       direction,
			Accepted:        accepted,
		})
	}
	if !accepted {
		router.logger.Debug(logEventConstraintRejected,
			zap.String(logFieldRoute, route.Name),
			zap.String(logFieldTemplate, route.Template.Raw),
			zap.String(logFieldParameter, binding.parameterName),
			zap.String(logFieldConstraint, binding.token),
			zap.Stringer(logFieldDirection, direction),
		)
	}
	return accepted
}

// routeValuesFromParams converts gin params. Catch-all values lose gin's leading slash.
func routeValuesFromParams(route *Route, params gin.Params) routeconstraint.RouteValues {
	catchAllParameter := ""
	if segmentCount := len(route.Template.Segments); segmentCount > 0 && route.Template.Segments[segmentCount-1].CatchAll {
		catchAllParameter = route.Template.Segments[segmentCount-1].Parameter
	}
	routeValues := make(routeconstraint.RouteValues, len(params))
	for _, param := range params {
		if param.Key == catchAllParameter {
			routeValues[param.Key] = strings.TrimPrefix(param.Value, pathSeparator)
			continue
		}
		routeValues[param.Key] = param.Value
	}
	return routeValues
}

func escapeSegmentValue(value string, catchAll bool) string {
	if !catchAll {
		return url.PathEscape(value)
	}
	parts := strings.Split(strings.TrimPrefix(value, pathSeparator), pathSeparator)
	for partIndex, part := range parts {
		parts[partIndex] = url.PathEscape(part)
	}
	return strings.Join(parts, pathSeparator)
}

func joinPaths(basePath string, relativePath string) string {
	trimmedBase := strings.TrimSuffix(basePath, pathSeparator)
	if relativePath == pathSeparator {
		if trimmedBase == "" {
			return pathSeparator
		}
		return trimmedBase
	}
	return trimmedBase + relativePath
}
