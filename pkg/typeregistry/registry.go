// Package typeregistry resolves type names to descriptors. A Registry checks its own
// table first and then each added Module in the order the modules were added.
package typeregistry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	// NestedTypeSeparator joins an enclosing type name with a nested type name.
	NestedTypeSeparator = "+"

	errorMessageEmptyTypeName     = "typeregistry: empty type name"
	errorMessageDuplicateTypeName = "typeregistry: duplicate type name"
	errorMessageNilModule         = "typeregistry: nil module"
)

var (
	// ErrEmptyTypeName indicates a type was registered without a name.
	ErrEmptyTypeName = errors.New(errorMessageEmptyTypeName)
	// ErrDuplicateTypeName indicates a type name was registered twice in the primary table.
	ErrDuplicateTypeName = errors.New(errorMessageDuplicateTypeName)
	// ErrNilModule indicates a nil module was added to a registry.
	ErrNilModule = errors.New(errorMessageNilModule)
)

// Module is a source of types that a Registry scans when its primary table has no entry.
type Module interface {
	Name() string
	LookupType(typeName string) (Type, bool)
}

// ListableModule is a Module that can enumerate every type it provides.
type ListableModule interface {
	Module
	Types() []Type
}

// Resolver resolves a qualified type name to a type descriptor.
type Resolver interface {
	Resolve(typeName string) (Type, bool)
}

// Registry resolves type names against a primary table first and then against every
// added module in the order the modules were added.
type Registry struct {
	mutex   sync.RWMutex
	primary map[string]Type
	modules []Module
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{primary: make(map[string]Type)}
}

// NestedName builds the qualified name of a type declared inside another type.
func NestedName(enclosingTypeName string, nestedTypeName string) string {
	return enclosingTypeName + NestedTypeSeparator + nestedTypeName
}

// Register adds a type to the primary table.
func (registry *Registry) Register(typeDescriptor Type) error {
	trimmedName := strings.TrimSpace(typeDescriptor.Name)
	if trimmedName == "" {
		return ErrEmptyTypeName
	}
	typeDescriptor.Name = trimmedName

	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	if _, exists := registry.primary[trimmedName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTypeName, trimmedName)
	}
	registry.primary[trimmedName] = typeDescriptor.clone()
	return nil
}

// AddModule appends a module to the fallback scan list.
func (registry *Registry) AddModule(module Module) error {
	if module == nil {
		return ErrNilModule
	}
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.modules = append(registry.modules, module)
	return nil
}

// Modules returns the names of the added modules in scan order.
func (registry *Registry) Modules() []string {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	moduleNames := make([]string, 0, len(registry.modules))
	for _, module := range registry.modules {
		moduleNames = append(moduleNames, module.Name())
	}
	return moduleNames
}

// Resolve looks the name up in the primary table, then scans the modules.
func (registry *Registry) Resolve(typeName string) (Type, bool) {
	trimmedName := strings.TrimSpace(typeName)
	if trimmedName == "" {
		return Type{}, false
	}

	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	if typeDescriptor, found := registry.primary[trimmedName]; found {
		return typeDescriptor.clone(), true
	}
	for _, module := range registry.modules {
		if typeDescriptor, found := module.LookupType(trimmedName); found {
			return typeDescriptor.clone(), true
		}
	}
	return Type{}, false
}

// Enumerations returns every enumeration visible through Resolve, sorted by name.
// Types shadowed by the primary table or an earlier module are skipped. Modules that
// cannot list their types contribute nothing.
func (registry *Registry) Enumerations() []Type {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	seen := make(map[string]struct{}, len(registry.primary))
	var enumerations []Type
	for typeName, typeDescriptor := range registry.primary {
		seen[typeName] = struct{}{}
		if typeDescriptor.IsEnumeration() {
			enumerations = append(enumerations, typeDescriptor.clone())
		}
	}
	for _, module := range registry.modules {
		listableModule, listable := module.(ListableModule)
		if !listable {
			continue
		}
		for _, typeDescriptor := range listableModule.Types() {
			if _, shadowed := seen[typeDescriptor.Name]; shadowed {
				continue
			}
			seen[typeDescriptor.Name] = struct{}{}
			if typeDescriptor.IsEnumeration() {
				enumerations = append(enumerations, typeDescriptor.clone())
			}
		}
	}

	sort.Slice(enumerations, func(left int, right int) bool {
		return enumerations[left].Name < enumerations[right].Name
	})
	return enumerations
}
