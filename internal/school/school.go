package school

// School is one record in the directory: a map from attribute to value plus
// its database identity. Every attribute is always present in the map; absent
// data is represented by null values, never by missing keys.
type School struct {
	ID         int
	DistrictID int

	values map[*Attribute]Value
}

// New returns a school with every attribute at its default value.
func New() *School {
	s := &School{values: make(map[*Attribute]Value, len(attributes))}
	for _, a := range attributes {
		s.values[a] = a.Default
	}
	return s
}

// Get returns the value of the given attribute.
func (s *School) Get(a *Attribute) Value { return s.values[a] }

// Put sets the value of the given attribute.
func (s *School) Put(a *Attribute, v Value) {
	v.Kind = a.Kind
	s.values[a] = v
}

// Str returns the string payload of the attribute, or "" when null.
func (s *School) Str(a *Attribute) string { return s.values[a].Str }

// StrPtr returns the string payload as a pointer, nil when null.
func (s *School) StrPtr(a *Attribute) *string { v := s.values[a]; return v.StringPtr() }

// Bool returns the boolean payload of the attribute; null reads as false.
func (s *School) Bool(a *Attribute) bool { v := s.values[a]; return !v.Null && v.Bool }

// IsEffectivelyNull reports whether the attribute holds no usable data.
func (s *School) IsEffectivelyNull(a *Attribute) bool {
	return a.IsEffectivelyNull(s.values[a])
}

// DisplayName returns the school's name, or the missing-name placeholder.
func (s *School) DisplayName() string {
	if s.IsEffectivelyNull(Name) {
		return MissingNameSubstitution
	}
	return s.Str(Name)
}

// Incoming is a school parsed from an organization's listing, not yet
// reconciled against the directory.
type Incoming struct {
	School
	Org *Organization
}

// NewIncoming returns a fresh incoming school for the given organization.
func NewIncoming(org *Organization) *Incoming {
	return &Incoming{School: *New(), Org: org}
}
