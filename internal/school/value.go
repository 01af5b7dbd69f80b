package school

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the data type an attribute carries.
type Kind int

const (
	KindString Kind = iota
	KindURL
	KindInt
	KindDouble
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindURL:
		return "url"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a typed attribute value. Exactly one of the payload fields is
// meaningful, selected by Kind; Null indicates the absence of any payload.
// URLs are carried as their raw string form and only parsed when compared.
type Value struct {
	Kind Kind
	Null bool

	Str   string
	Int   int
	Float float64
	Bool  bool
	Time  time.Time
}

// Null returns the null value of the given kind.
func NullValue(k Kind) Value {
	return Value{Kind: k, Null: true}
}

func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func URLValue(s string) Value     { return Value{Kind: KindURL, Str: s} }
func IntValue(i int) Value        { return Value{Kind: KindInt, Int: i} }
func DoubleValue(f float64) Value { return Value{Kind: KindDouble, Float: f} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func DateValue(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// StringPtrValue maps a nil pointer to the null string value.
func StringPtrValue(s *string) Value {
	if s == nil {
		return NullValue(KindString)
	}
	return StringValue(*s)
}

// Equal reports structural equality: same kind, and either both null or the
// same payload. Dates compare by instant; calendar-day comparison is a
// matching concern, not a value concern.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Null || o.Null {
		return v.Null == o.Null
	}
	switch v.Kind {
	case KindString, KindURL:
		return v.Str == o.Str
	case KindInt:
		return v.Int == o.Int
	case KindDouble:
		return v.Float == o.Float
	case KindBool:
		return v.Bool == o.Bool
	case KindDate:
		return v.Time.Equal(o.Time)
	}
	return false
}

// StringPtr returns the string payload, or nil when the value is null.
// Only meaningful for string and URL kinds.
func (v Value) StringPtr() *string {
	if v.Null {
		return nil
	}
	s := v.Str
	return &s
}

// Display renders the value for logs and prompts.
func (v Value) Display() string {
	if v.Null {
		return "<null>"
	}
	switch v.Kind {
	case KindString, KindURL:
		return v.Str
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindDouble:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindDate:
		return v.Time.Format("2006-01-02")
	}
	return "<?>"
}

// isNullText reports whether a string payload should be treated as absent:
// blank, or the literal word "null" left behind by upstream exports.
func isNullText(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, "null")
}
