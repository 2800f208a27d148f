// Package catalog loads enumeration declarations from a YAML file.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

const (
	defaultModuleName = "catalog"

	errorMessageReadCatalog      = "catalog: read file"
	errorMessageParseCatalog     = "catalog: parse yaml"
	errorMessageInvalidCatalog   = "catalog: invalid catalog"
	errorMessageMissingTypeName  = "entry without a name"
	errorMessageMissingMembers   = "enumeration has no members"
	errorMessageDuplicateMember  = "duplicate member"
	errorMessageDuplicateTypeKey = "duplicate type"
)

// ErrInvalidCatalog is wrapped by every validation failure.
var ErrInvalidCatalog = errors.New(errorMessageInvalidCatalog)

type stringList []string

// UnmarshalYAML accepts either a scalar or a sequence of scalars.
func (list *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*list = nil
		return nil
	}
	switch node.Kind {
	case yaml.ScalarNode:
		value := strings.TrimSpace(node.Value)
		if value == "" {
			*list = nil
			return nil
		}
		*list = []string{value}
		return nil
	case yaml.SequenceNode:
		entries := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			if child == nil {
				continue
			}
			value := strings.TrimSpace(child.Value)
			if value == "" {
				continue
			}
			entries = append(entries, value)
		}
		*list = entries
		return nil
	default:
		return fmt.Errorf("unsupported yaml node kind %d for list", node.Kind)
	}
}

type enumerationDocument struct {
	Name    string     `yaml:"name"`
	Members stringList `yaml:"members"`
}

type catalogDocument struct {
	Module       string                `yaml:"module"`
	Enumerations []enumerationDocument `yaml:"enumerations"`
	Types        stringList            `yaml:"types"`
}

// LoadFile reads and parses the catalog at path.
func LoadFile(path string) (*typeregistry.StaticModule, error) {
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageReadCatalog, readErr)
	}
	return Parse(content)
}

// Parse builds a module from catalog YAML. Member order follows the file.
func Parse(content []byte) (*typeregistry.StaticModule, error) {
	var document catalogDocument
	if unmarshalErr := yaml.Unmarshal(content, &document); unmarshalErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageParseCatalog, unmarshalErr)
	}

	moduleName := strings.TrimSpace(document.Module)
	if moduleName == "" {
		moduleName = defaultModuleName
	}

	seenTypes := make(map[string]struct{}, len(document.Enumerations)+len(document.Types))
	types := make([]typeregistry.Type, 0, len(document.Enumerations)+len(document.Types))
	for _, enumeration := range document.Enumerations {
		typeDescriptor, validationErr := enumerationType(enumeration)
		if validationErr != nil {
			return nil, validationErr
		}
		if _, duplicate := seenTypes[typeDescriptor.Name]; duplicate {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidCatalog, errorMessageDuplicateTypeKey, typeDescriptor.Name)
		}
		seenTypes[typeDescriptor.Name] = struct{}{}
		types = append(types, typeDescriptor)
	}
	for _, typeName := range document.Types {
		if _, duplicate := seenTypes[typeName]; duplicate {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidCatalog, errorMessageDuplicateTypeKey, typeName)
		}
		seenTypes[typeName] = struct{}{}
		types = append(types, typeregistry.StructOf(typeName))
	}

	return typeregistry.NewStaticModule(moduleName, types...), nil
}

func enumerationType(enumeration enumerationDocument) (typeregistry.Type, error) {
	typeName := strings.TrimSpace(enumeration.Name)
	if typeName == "" {
		return typeregistry.Type{}, fmt.Errorf("%w: %s", ErrInvalidCatalog, errorMessageMissingTypeName)
	}
	if len(enumeration.Members) == 0 {
		return typeregistry.Type{}, fmt.Errorf("%w: %s: %s", ErrInvalidCatalog, errorMessageMissingMembers, typeName)
	}

	lowerCaser := cases.Lower(language.Und)
	seenMembers := make(map[string]struct{}, len(enumeration.Members))
	for _, memberName := range enumeration.Members {
		lowerMemberName := lowerCaser.String(memberName)
		if _, duplicate := seenMembers[lowerMemberName]; duplicate {
			return typeregistry.Type{}, fmt.Errorf("%w: %s: %s.%s", ErrInvalidCatalog, errorMessageDuplicateMember, typeName, memberName)
		}
		seenMembers[lowerMemberName] = struct{}{}
	}

	return typeregistry.Type{
		Name:    typeName,
		Kind:    typeregistry.KindEnumeration,
		Members: []string(enumeration.Members),
	}, nil
}
