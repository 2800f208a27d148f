package ginroute

import (
	"errors"
	"fmt"
	"strings"
)

const (
	pathSeparator         = "/"
	parameterOpen         = '{'
	parameterClose        = '}'
	constraintSeparator   = ':'
	argumentOpen          = '('
	argumentClose         = ')'
	catchAllMarker        = "*"
	ginParameterPrefix    = ":"
	ginCatchAllPrefix     = "*"
	errorMessageTemplate  = "ginroute: invalid route template"
	templateErrorWithPart = "%w: %q: %s"
)

// ErrInvalidTemplate is wrapped by every template parsing failure.
var ErrInvalidTemplate = errors.New(errorMessageTemplate)

// ConstraintReference is one constraint attached to a template parameter, such as enum(palette.Color).
type ConstraintReference struct {
	Token    string
	Argument string
}

// Segment is one slash-separated part of a route template.
type Segment struct {
	Literal     string
	Parameter   string
	CatchAll    bool
	Constraints []ConstraintReference
}

// IsParameter reports whether the segment captures a value.
func (segment Segment) IsParameter() bool {
	return segment.Parameter != ""
}

// Template is a parsed route template.
type Template struct {
	Raw      string
	Segments []Segment
}

// GinPath returns the path pattern gin understands, e.g. /colors/:color.
func (template Template) GinPath() string {
	if len(template.Segments) == 0 {
		return pathSeparator
	}
	var builder strings.Builder
	for _, segment := range template.Segments {
		builder.WriteString(pathSeparator)
		switch {
		case segment.CatchAll:
			builder.WriteString(ginCatchAllPrefix + segment.Parameter)
		case segment.IsParameter():
			builder.WriteString(ginParameterPrefix + segment.Parameter)
		default:
			builder.WriteString(segment.Literal)
		}
	}
	return builder.String()
}

// ParseTemplate parses templates such as "colors/{color:enum(palette.Color)}".
// Parameters occupy a whole segment, may chain constraints with ':' and a final
// segment may be a catch-all written {*name}.
func ParseTemplate(rawTemplate string) (Template, error) {
	trimmedTemplate := strings.Trim(strings.TrimSpace(rawTemplate), pathSeparator)
	parsed := Template{Raw: rawTemplate}
	if trimmedTemplate == "" {
		return parsed, nil
	}

	rawSegments := strings.Split(trimmedTemplate, pathSeparator)
	seenParameters := make(map[string]struct{}, len(rawSegments))
	for segmentIndex, rawSegment := range rawSegments {
		segment, segmentErr := parseSegment(rawTemplate, rawSegment)
		if segmentErr != nil {
			return Template{}, segmentErr
		}
		if segment.CatchAll && segmentIndex != len(rawSegments)-1 {
			return Template{}, fmt.Errorf(templateErrorWithPart, ErrInvalidTemplate, rawTemplate, "catch-all parameter must be the last segment")
		}
		if segment.IsParameter() {
			if _, duplicate := seenParameters[segment.Parameter]; duplicate {
				return Template{}, fmt.Errorf(templateErrorWithPart, ErrInvalidTemplate, rawTemplate, "duplicate parameter "+segment.Parameter)
			}
			seenParameters[segment.Parameter] = struct{}{}
		}
		parsed.Segments = append(parsed.Segments, segment)
	}
	return parsed, nil
}

func parseSegment(rawTemplate string, rawSegment string) (Segment, error) {
	if rawSegment == "" {
		return Segment{}, fmt.Errorf(templateErrorWithPart, ErrInvalidTemplate, rawTemplate, "empty segment")
	}

	opensParameter := rawSegment[0] == parameterOpen
	closesParameter := rawSegment[len(rawSegment)-1] == parameterClose
	if !opensParameter && !closesParameter {
		if strings.ContainsAny(rawSegment, "{}:*") {
			return Segment{}, fmt.Errorf(templateErrorWithPart, ErrInvalidTemplate, rawTemplate, "reserved character in literal segment "+rawSegment)
		}
		return Segment{Literal: rawSegment}, nil
	}
	if !opensParameter || !closesParameter || len(rawSegment) < 3 {
		return Segment{}, fmt.Errorf(templateErrorWithPart, ErrInvalidTemplate, rawTemplate, "parameter must fill the whole segment "+rawSegment)
	}

	body := rawSegment[1 : len(rawSegment)-1]
	nameEnd := strings.IndexByte(body, constraintSeparator)
	if nameEnd < 0 {
		nameEnd = len(body)
	}

	segment := Segment{Parameter: strings.TrimSpace(body[:nameEnd])}
	if strings.HasPrefix(segment.Parameter, catchAllMarker) {
		segment.CatchAll = true
		segment.Parameter = strings.TrimPrefix(segment.Parameter, catchAllMarker)
	}
	if segment.Parameter == "" || strings.ContainsAny(segment.Parameter, "{}()*/ ") {
		return Segment{}, fmt.Errorf(templateErrorWithPart, ErrInvalidTemplate, rawTemplate, "invalid parameter name in "+rawSegment)
	}

	constraints, constraintsErr := parseConstraints(body[nameEnd:])
	if constraintsErr != nil {
		return Segment{}, fmt.Errorf(templateErrorWithPart, ErrInvalidTemplate, rawTemplate, constraintsErr.Error())
	}
	segment.Constraints = constraints
	return segment, nil
}

// parseConstraints reads ":token(argument):token" sequences. Arguments cannot nest parentheses.
func parseConstraints(remainder string) ([]ConstraintReference, error) {
	var constraints []ConstraintReference
	for remainder != "" {
		if remainder[0] != constraintSeparator {
			return nil, fmt.Errorf("unexpected %q after constraint", remainder)
		}
		remainder = remainder[1:]

		tokenEnd := strings.IndexAny(remainder, ":(")
		if tokenEnd < 0 {
			tokenEnd = len(remainder)
		}
		reference := ConstraintReference{Token: strings.TrimSpace(remainder[:tokenEnd])}
		if reference.Token == "" {
			return nil, errors.New("empty constraint name")
		}
		remainder = remainder[tokenEnd:]

		if remainder != "" && remainder[0] == argumentOpen {
			argumentEnd := strings.IndexByte(remainder, argumentClose)
			if argumentEnd < 0 {
				return nil, fmt.Errorf("unterminated argument for constraint %s", reference.Token)
			}
			reference.Argument = strings.TrimSpace(remainder[1:argumentEnd])
			remainder = remainder[argumentEnd+1:]
		}
		constraints = append(constraints, reference)
	}
	return constraints, nil
}
