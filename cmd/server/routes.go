package main

import (
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/enumroute/internal/httpapi"
	"github.com/MarkoPoloResearchLab/enumroute/internal/palette"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/ginroute"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

const (
	metricsRoute = "/metrics"

	apiRoutePrefix         = "/api"
	apiRouteEnumerations   = "enumerations"
	apiRouteEnumeration    = "enumerations/{name}"
	apiRouteColor          = "colors/{color:enum(palette.Color)}"
	apiRouteFinish         = "swatches/{finish:enum(palette.Swatch+Finish)}"
	apiRouteColorLink      = "links/colors/{color}"
	routeNameColor         = "color"
	routeNameFinish        = "finish"
	routeParameterColor    = "color"
	routeParameterFinish   = "finish"
	routeNameUnaddressable = ""
)

func registerAPIRoutes(router *ginroute.Router, registry *typeregistry.Registry, logger *zap.Logger) error {
	enumerationHandlers := httpapi.NewEnumerationHandlers(registry)
	linkHandlers := httpapi.NewLinkHandlers(router, logger)

	colorHandler, colorHandlerErr := enumerationHandlers.MemberHandler(routeParameterColor, palette.TypeNameColor)
	if colorHandlerErr != nil {
		return colorHandlerErr
	}
	finishHandler, finishHandlerErr := enumerationHandlers.MemberHandler(routeParameterFinish, palette.TypeNameFinish)
	if finishHandlerErr != nil {
		return finishHandlerErr
	}

	apiGroup := router.Group(apiRoutePrefix)
	if _, routeErr := apiGroup.GET(apiRouteEnumerations, routeNameUnaddressable, enumerationHandlers.ListEnumerations); routeErr != nil {
		return routeErr
	}
	if _, routeErr := apiGroup.GET(apiRouteEnumeration, routeNameUnaddressable, enumerationHandlers.GetEnumeration); routeErr != nil {
		return routeErr
	}
	if _, routeErr := apiGroup.GET(apiRouteColor, routeNameColor, colorHandler); routeErr != nil {
		return routeErr
	}
	if _, routeErr := apiGroup.GET(apiRouteFinish, routeNameFinish, finishHandler); routeErr != nil {
		return routeErr
	}
	if _, routeErr := apiGroup.GET(apiRouteColorLink, routeNameUnaddressable, linkHandlers.LinkHandler(routeNameColor, routeParameterColor)); routeErr != nil {
		return routeErr
	}

	return nil
}
