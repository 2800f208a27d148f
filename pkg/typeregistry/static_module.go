package typeregistry

// StaticModule is an in-memory Module built from a fixed list of types.
type StaticModule struct {
	moduleName string
	types      map[string]Type
	order      []string
}

// NewStaticModule creates a StaticModule. Later types replace earlier ones with the same name.
func NewStaticModule(moduleName string, types ...Type) *StaticModule {
	module := &StaticModule{
		moduleName: moduleName,
		types:      make(map[string]Type, len(types)),
	}
	for _, typeDescriptor := range types {
		if _, exists := module.types[typeDescriptor.Name]; !exists {
			module.order = append(module.order, typeDescriptor.Name)
		}
		module.types[typeDescriptor.Name] = typeDescriptor.clone()
	}
	return module
}

// Name returns the module name.
func (module *StaticModule) Name() string {
	return module.moduleName
}

// LookupType returns the type with the given name.
func (module *StaticModule) LookupType(typeName string) (Type, bool) {
	typeDescriptor, found := module.types[typeName]
	if !found {
		return Type{}, false
	}
	return typeDescriptor.clone(), true
}

// Types returns every type in the order it was first declared.
func (module *StaticModule) Types() []Type {
	types := make([]Type, 0, len(module.order))
	for _, typeName := range module.order {
		types = append(types, module.types[typeName].clone())
	}
	return types
}
