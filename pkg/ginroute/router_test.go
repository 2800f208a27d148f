package ginroute

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/enumroute/pkg/routeconstraint"
)

const (
	testColorRouteName    = "color"
	testColorTemplate     = "colors/{color:enum(palette.Color)}"
	testFilesRouteName    = "files"
	testFilesTemplate     = "files/{*path}"
	testAPIGroupPath      = "/api"
	testResponseKeyColor  = "color"
	testResponseKeyRoute  = "route"
	testResponseKeyError  = "error"
	testResponseKeyParam  = "parameter"
	testResponseKeyPath   = "path"
	testUnknownRouteName  = "missing"
	testGeneratedColorURL = "/api/colors/Green"
)

type recordingObserver struct {
	mutex       sync.Mutex
	evaluations []Evaluation
}

func (observer *recordingObserver) ObserveConstraint(evaluation Evaluation) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.evaluations = append(observer.evaluations, evaluation)
}

func newTestRouter(testingT *testing.T, options ...Option) (*gin.Engine, *Router) {
	testingT.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	rootRouter, routerErr := NewRouter(engine, NewDefaultConstraintResolver(newTestTypeRegistry(testingT)), options...)
	require.NoError(testingT, routerErr)

	apiRouter := rootRouter.Group(testAPIGroupPath)
	_, colorErr := apiRouter.GET(testColorTemplate, testColorRouteName, func(context *gin.Context) {
		routeName, _ := context.Get(RouteNameContextKey)
		context.JSON(http.StatusOK, gin.H{
			testResponseKeyColor: context.Param("color"),
			testResponseKeyRoute: routeName,
		})
	})
	require.NoError(testingT, colorErr)

	_, filesErr := apiRouter.GET(testFilesTemplate, testFilesRouteName, func(context *gin.Context) {
		context.JSON(http.StatusOK, gin.H{testResponseKeyPath: context.Param("path")})
	})
	require.NoError(testingT, filesErr)

	return engine, rootRouter
}

func performRequest(engine *gin.Engine, method string, target string) (*httptest.ResponseRecorder, map[string]any) {
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	var payload map[string]any
	_ = json.Unmarshal(recorder.Body.Bytes(), &payload)
	return recorder, payload
}

func TestRouterAcceptsEnumerationMembersInAnyCase(testingT *testing.T) {
	engine, _ := newTestRouter(testingT)

	for _, candidate := range []string{"green", "GREEN", "Green"} {
		recorder, payload := performRequest(engine, http.MethodGet, "/api/colors/"+candidate)
		require.Equal(testingT, http.StatusOK, recorder.Code)
		require.Equal(testingT, candidate, payload[testResponseKeyColor])
		require.Equal(testingT, testColorRouteName, payload[testResponseKeyRoute])
	}
}

func TestRouterRejectsNonMembers(testingT *testing.T) {
	observer := &recordingObserver{}
	engine, _ := newTestRouter(testingT, WithObserver(observer))

	recorder, payload := performRequest(engine, http.MethodGet, "/api/colors/Purple")
	require.Equal(testingT, http.StatusNotFound, recorder.Code)
	require.Equal(testingT, ErrorCodeConstraintFailed, payload[testResponseKeyError])
	require.Equal(testingT, "color", payload[testResponseKeyParam])

	require.Len(testingT, observer.evaluations, 1)
	evaluation := observer.evaluations[0]
	require.False(testingT, evaluation.Accepted)
	require.Equal(testingT, testColorRouteName, evaluation.RouteName)
	require.Equal(testingT, testColorTemplate, evaluation.Template)
	require.Equal(testingT, ConstraintTokenEnum, evaluation.ConstraintToken)
	require.Equal(testingT, routeconstraint.DirectionIncoming, evaluation.Direction)
}

func TestRouterPassesUnconstrainedCatchAll(testingT *testing.T) {
	engine, _ := newTestRouter(testingT)

	recorder, payload := performRequest(engine, http.MethodGet, "/api/files/a/b.txt")
	require.Equal(testingT, http.StatusOK, recorder.Code)
	require.Equal(testingT, "/a/b.txt", payload[testResponseKeyPath])
}

func TestRouterRejectsMisconfiguredRoutesAtRegistration(testingT *testing.T) {
	gin.SetMode(gin.TestMode)
	router, routerErr := NewRouter(gin.New(), NewDefaultConstraintResolver(newTestTypeRegistry(testingT)))
	require.NoError(testingT, routerErr)

	_, missingTypeErr := router.GET("colors/{color:enum(NotARealType)}", "missing-type")
	require.ErrorIs(testingT, missingTypeErr, ErrInvalidConstraint)
	require.Contains(testingT, missingTypeErr.Error(), "NotARealType")

	_, structErr := router.GET("swatches/{swatch:enum(palette.Swatch)}", "struct-type")
	require.ErrorIs(testingT, structErr, ErrInvalidConstraint)

	_, unknownErr := router.GET("items/{id:regex(.*)}", "unknown")
	require.ErrorIs(testingT, unknownErr, ErrUnknownConstraint)

	_, templateErr := router.GET("items/{id", "bad")
	require.ErrorIs(testingT, templateErr, ErrInvalidTemplate)

	_, firstErr := router.GET("first/{color:enum(palette.Color)}", testColorRouteName)
	require.NoError(testingT, firstErr)
	_, duplicateErr := router.POST("second/{color:enum(palette.Color)}", testColorRouteName)
	require.ErrorIs(testingT, duplicateErr, ErrDuplicateRoute)

	_, nilResolverErr := NewRouter(gin.New(), nil)
	require.ErrorIs(testingT, nilResolverErr, ErrNilConstraintResolver)
}

func TestRouterURLValidatesInGenerationDirection(testingT *testing.T) {
	observer := &recordingObserver{}
	_, router := newTestRouter(testingT, WithObserver(observer))

	generatedURL, generateErr := router.URL(testColorRouteName, routeconstraint.RouteValues{"color": "Green"})
	require.NoError(testingT, generateErr)
	require.Equal(testingT, testGeneratedColorURL, generatedURL)
	require.Len(testingT, observer.evaluations, 1)
	require.Equal(testingT, routeconstraint.DirectionURLGeneration, observer.evaluations[0].Direction)
	require.True(testingT, observer.evaluations[0].Accepted)

	_, rejectedErr := router.URL(testColorRouteName, routeconstraint.RouteValues{"color": "Purple"})
	require.ErrorIs(testingT, rejectedErr, ErrConstraintRejected)

	_, nonStringErr := router.URL(testColorRouteName, routeconstraint.RouteValues{"color": 3})
	require.ErrorIs(testingT, nonStringErr, ErrConstraintRejected)

	_, missingErr := router.URL(testColorRouteName, routeconstraint.RouteValues{})
	require.ErrorIs(testingT, missingErr, ErrMissingRouteValue)

	_, emptyErr := router.URL(testColorRouteName, routeconstraint.RouteValues{"color": ""})
	require.ErrorIs(testingT, emptyErr, ErrMissingRouteValue)

	_, unknownErr := router.URL(testUnknownRouteName, nil)
	require.ErrorIs(testingT, unknownErr, ErrUnknownRoute)
}

func TestRouterURLEscapesValues(testingT *testing.T) {
	_, router := newTestRouter(testingT)

	generatedURL, generateErr := router.URL(testFilesRouteName, routeconstraint.RouteValues{"path": "/docs/a b.txt"})
	require.NoError(testingT, generateErr)
	require.Equal(testingT, "/api/files/docs/a%20b.txt", generatedURL)

	route, found := router.Route(testFilesRouteName)
	require.True(testingT, found)
	require.Equal(testingT, "/api/files/*path", route.Path())
}

func TestJoinPaths(testingT *testing.T) {
	require.Equal(testingT, "/", joinPaths("/", "/"))
	require.Equal(testingT, "/api", joinPaths("/api/", "/"))
	require.Equal(testingT, "/api/colors", joinPaths("/api", "/colors"))
	require.Equal(testingT, "/colors", joinPaths("/", "/colors"))
}

func TestRouterChecksCatchAllWithoutLeadingSlashInBothDirections(testingT *testing.T) {
	gin.SetMode(gin.TestMode)
	var (
		mutex      sync.Mutex
		seenValues = map[routeconstraint.Direction]any{}
	)
	constraintResolver := NewConstraintResolver()
	require.NoError(testingT, constraintResolver.Register("record", func(string) (routeconstraint.Matcher, error) {
		return routeconstraint.MatcherFunc(func(parameterName string, routeValues routeconstraint.RouteValues, direction routeconstraint.Direction) bool {
			mutex.Lock()
			defer mutex.Unlock()
			seenValues[direction] = routeValues[parameterName]
			return true
		}), nil
	}))

	engine := gin.New()
	router, routerErr := NewRouter(engine, constraintResolver)
	require.NoError(testingT, routerErr)
	_, registerErr := router.GET("docs/{*path:record}", "docs", func(context *gin.Context) {
		context.Status(http.StatusNoContent)
	})
	require.NoError(testingT, registerErr)

	recorder, _ := performRequest(engine, http.MethodGet, "/docs/guides/intro.md")
	require.Equal(testingT, http.StatusNoContent, recorder.Code)

	generatedURL, generateErr := router.URL("docs", routeconstraint.RouteValues{"path": "/guides/intro.md"})
	require.NoError(testingT, generateErr)
	require.Equal(testingT, "/docs/guides/intro.md", generatedURL)

	require.Equal(testingT, "guides/intro.md", seenValues[routeconstraint.DirectionIncoming])
	require.Equal(testingT, seenValues[routeconstraint.DirectionIncoming], seenValues[routeconstraint.DirectionURLGeneration])
}
