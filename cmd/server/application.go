package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/enumroute/internal/catalog"
	"github.com/MarkoPoloResearchLab/enumroute/internal/httpapi"
	"github.com/MarkoPoloResearchLab/enumroute/internal/palette"
	"github.com/MarkoPoloResearchLab/enumroute/internal/storage"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/ginroute"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

const (
	corsOriginWildcard      = "*"
	corsHeaderAuthorization = "Authorization"
	corsHeaderContentType   = "Content-Type"
	corsHeaderRequestID     = httpapi.HeaderRequestID
	httpMethodGet           = "GET"
	httpMethodOptions       = "OPTIONS"
)

var (
	corsAllowedMethods = []string{httpMethodGet, httpMethodOptions}
	corsAllowedHeaders = []string{corsHeaderAuthorization, corsHeaderContentType, corsHeaderRequestID}
	corsExposedHeaders = []string{corsHeaderContentType, corsHeaderRequestID}
)

// buildTypeRegistry registers the palette types directly and adds the catalog and database
// modules, in that order, as fallbacks.
func buildTypeRegistry(serverConfig ServerConfig, database *gorm.DB) (*typeregistry.Registry, error) {
	registry := typeregistry.NewRegistry()
	if registerErr := palette.Register(registry); registerErr != nil {
		return nil, registerErr
	}

	if serverConfig.CatalogPath != "" {
		catalogModule, catalogErr := catalog.LoadFile(serverConfig.CatalogPath)
		if catalogErr != nil {
			return nil, catalogErr
		}
		if addErr := registry.AddModule(catalogModule); addErr != nil {
			return nil, addErr
		}
	}

	if database != nil {
		databaseModule, databaseErr := storage.LoadModule(database, storage.DefaultModuleName)
		if databaseErr != nil {
			return nil, databaseErr
		}
		if addErr := registry.AddModule(databaseModule); addErr != nil {
			return nil, addErr
		}
	}

	return registry, nil
}

func buildEngine(serverConfig ServerConfig, registry *typeregistry.Registry, logger *zap.Logger) (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpapi.RequestID())
	engine.Use(httpapi.RequestLogger(logger))
	corsConfig := cors.Config{
		AllowOrigins:     serverConfig.CORSAllowedOrigins,
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    corsExposedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if corsErr := corsConfig.Validate(); corsErr != nil {
		return nil, corsErr
	}
	engine.Use(cors.New(corsConfig))

	constraintMetrics, metricsErr := httpapi.NewConstraintMetrics(prometheus.NewRegistry())
	if metricsErr != nil {
		return nil, metricsErr
	}
	engine.GET(metricsRoute, constraintMetrics.Handler())

	router, routerErr := ginroute.NewRouter(
		engine,
		ginroute.NewDefaultConstraintResolver(registry),
		ginroute.WithLogger(logger),
		ginroute.WithObserver(constraintMetrics),
	)
	if routerErr != nil {
		return nil, routerErr
	}

	if routesErr := registerAPIRoutes(router, registry, logger); routesErr != nil {
		return nil, routesErr
	}

	return engine, nil
}
