package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/enumroute/pkg/enumconstraint"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/ginroute"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/routeconstraint"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

const (
	responseKeyError        = "error"
	responseKeyEnumerations = "enumerations"
	responseKeyName         = "name"
	responseKeyURL          = "url"
	responseKeyRoute        = "route"

	errorCodeInvalidRouteValue = "invalid_route_value"
	errorCodeUnknownRoute      = "unknown_route"
	errorCodeNotFound          = "not_found"

	logEventGenerateURL = "generate url"
)

// EnumerationLister lists every enumeration a registry can resolve.
type EnumerationLister interface {
	Enumerations() []typeregistry.Type
}

// URLGenerator builds constrained route URLs.
type URLGenerator interface {
	URL(routeName string, routeValues routeconstraint.RouteValues) (string, error)
}

type enumerationResponse struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// EnumerationHandlers serves enumeration metadata and constrained member routes.
type EnumerationHandlers struct {
	resolver typeregistry.Resolver
	lister   EnumerationLister
}

// NewEnumerationHandlers creates EnumerationHandlers.
func NewEnumerationHandlers(registry *typeregistry.Registry) *EnumerationHandlers {
	return &EnumerationHandlers{resolver: registry, lister: registry}
}

// ListEnumerations responds with every resolvable enumeration and its members.
func (handlers *EnumerationHandlers) ListEnumerations(context *gin.Context) {
	enumerations := handlers.lister.Enumerations()
	response := make([]enumerationResponse, 0, len(enumerations))
	for _, enumeration := range enumerations {
		response = append(response, enumerationResponse{Name: enumeration.Name, Members: enumeration.MemberNames()})
	}
	context.JSON(http.StatusOK, gin.H{responseKeyEnumerations: response})
}

// GetEnumeration responds with the enumeration named by the "name" parameter.
func (handlers *EnumerationHandlers) GetEnumeration(context *gin.Context) {
	typeName := context.Param(responseKeyName)
	enumeration, found := handlers.resolver.Resolve(typeName)
	if !found || !enumeration.IsEnumeration() {
		context.JSON(http.StatusNotFound, gin.H{responseKeyError: errorCodeNotFound, responseKeyName: typeName})
		return
	}
	context.JSON(http.StatusOK, enumerationResponse{Name: enumeration.Name, Members: enumeration.MemberNames()})
}

// MemberHandler responds with the declared spelling of the member named by parameterName.
// The route is expected to carry an enum constraint for the same type, so a miss here
// only happens when the handler is mounted without one.
func (handlers *EnumerationHandlers) MemberHandler(parameterName string, typeName string) (gin.HandlerFunc, error) {
	constraint, constructErr := enumconstraint.New(typeName, handlers.resolver)
	if constructErr != nil {
		return nil, constructErr
	}
	return func(context *gin.Context) {
		canonicalName, matched := constraint.CanonicalName(context.Param(parameterName))
		if !matched {
			context.JSON(http.StatusNotFound, gin.H{responseKeyError: errorCodeNotFound})
			return
		}
		context.JSON(http.StatusOK, gin.H{parameterName: canonicalName})
	}, nil
}

// LinkHandlers generates URLs for constrained routes.
type LinkHandlers struct {
	generator URLGenerator
	logger    *zap.Logger
}

// NewLinkHandlers creates LinkHandlers.
func NewLinkHandlers(generator URLGenerator, logger *zap.Logger) *LinkHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkHandlers{generator: generator, logger: logger}
}

// LinkHandler responds with the URL of targetRouteName built from the request's parameterName value.
func (handlers *LinkHandlers) LinkHandler(targetRouteName string, parameterName string) gin.HandlerFunc {
	return func(context *gin.Context) {
		generatedURL, generateErr := handlers.generator.URL(targetRouteName, routeconstraint.RouteValues{
			parameterName: context.Param(parameterName),
		})
		switch {
		case generateErr == nil:
			context.JSON(http.StatusOK, gin.H{responseKeyURL: generatedURL, responseKeyRoute: targetRouteName})
		case errors.Is(generateErr, ginroute.ErrConstraintRejected), errors.Is(generateErr, ginroute.ErrMissingRouteValue):
			context.JSON(http.StatusUnprocessableEntity, gin.H{responseKeyError: errorCodeInvalidRouteValue})
		default:
			handlers.logger.Error(logEventGenerateURL, zap.String(responseKeyRoute, targetRouteName), zap.Error(generateErr))
			context.JSON(http.StatusInternalServerError, gin.H{responseKeyError: errorCodeUnknownRoute})
		}
	}
}
