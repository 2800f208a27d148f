// Package palette declares the enumerations the server exposes through constrained routes.
package palette

import "github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"

const (
	ModuleName = "palette"

	TypeNameColor  = "palette.Color"
	TypeNameSwatch = "palette.Swatch"
)

// TypeNameFinish is nested inside Swatch.
var TypeNameFinish = typeregistry.NestedName(TypeNameSwatch, "Finish")

type Color string

const (
	ColorRed   Color = "Red"
	ColorGreen Color = "Green"
	ColorBlue  Color = "Blue"
)

// Colors lists every Color in declared order.
func Colors() []Color {
	return []Color{ColorRed, ColorGreen, ColorBlue}
}

type Finish string

const (
	FinishMatte Finish = "Matte"
	FinishGloss Finish = "Gloss"
	FinishSatin Finish = "Satin"
)

// Finishes lists every Finish in declared order.
func Finishes() []Finish {
	return []Finish{FinishMatte, FinishGloss, FinishSatin}
}

// Swatch pairs a color with a finish. It is registered as a plain type so a route
// that names it as an enumeration fails at startup.
type Swatch struct {
	Color  Color
	Finish Finish
}

// Register adds the palette types to registry's primary table.
func Register(registry *typeregistry.Registry) error {
	types := []typeregistry.Type{
		typeregistry.EnumerationOf(TypeNameColor, Colors()...),
		typeregistry.EnumerationOf(TypeNameFinish, Finishes()...),
		typeregistry.StructOf(TypeNameSwatch),
	}
	for _, typeDescriptor := range types {
		if registerErr := registry.Register(typeDescriptor); registerErr != nil {
			return registerErr
		}
	}
	return nil
}
