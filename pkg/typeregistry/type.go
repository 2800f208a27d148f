package typeregistry

// Kind classifies a registered type.
type Kind string

const (
	KindEnumeration Kind = "enumeration"
	KindStruct      Kind = "struct"
	KindInterface   Kind = "interface"
)

// Type describes a named type known to a Registry. Members is only meaningful for
// enumerations and keeps the declared order.
type Type struct {
	Name    string
	Kind    Kind
	Members []string
}

// IsEnumeration reports whether the type is an enumeration.
func (typeDescriptor Type) IsEnumeration() bool {
	return typeDescriptor.Kind == KindEnumeration
}

// MemberNames returns a copy of the member names in declared order.
func (typeDescriptor Type) MemberNames() []string {
	memberNames := make([]string, len(typeDescriptor.Members))
	copy(memberNames, typeDescriptor.Members)
	return memberNames
}

func (typeDescriptor Type) clone() Type {
	typeDescriptor.Members = typeDescriptor.MemberNames()
	return typeDescriptor
}

// EnumerationOf describes a Go string enumeration whose constants are passed in
// declared order.
func EnumerationOf[T ~string](typeName string, members ...T) Type {
	memberNames := make([]string, 0, len(members))
	for _, member := range members {
		memberNames = append(memberNames, string(member))
	}
	return Type{Name: typeName, Kind: KindEnumeration, Members: memberNames}
}

// StructOf describes a non-enumeration type.
func StructOf(typeName string) Type {
	return Type{Name: typeName, Kind: KindStruct}
}
