package school

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIsEffectivelyNull(t *testing.T) {
	tests := []struct {
		name string
		attr *Attribute
		v    Value
		want bool
	}{
		{"actual null", Phone, NullValue(KindString), true},
		{"blank string", Phone, StringValue("   "), true},
		{"literal null word", Phone, StringValue("null"), true},
		{"literal NULL word", Phone, StringValue(" NULL "), true},
		{"real string", Phone, StringValue("555-0100"), false},
		{"missing name placeholder", Name, StringValue("MISSING NAME"), true},
		{"placeholder ignores case", Name, StringValue("missing name"), true},
		{"placeholder only applies to name", Bio, StringValue("MISSING NAME"), false},
		{"real url", WebsiteURL, URLValue("example.org"), false},
		{"zero int is data", Enrollment, IntValue(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.attr.IsEffectivelyNull(tt.v))
		})
	}
}

func TestClean(t *testing.T) {
	log := zap.NewNop()

	t.Run("over-long string truncated", func(t *testing.T) {
		long := strings.Repeat("5", Phone.MaxLength+5)
		got := Phone.Clean(StringValue(long), log)
		assert.Len(t, got.Str, Phone.MaxLength)
	})

	t.Run("short string untouched", func(t *testing.T) {
		got := Phone.Clean(StringValue("555-0100"), log)
		assert.Equal(t, "555-0100", got.Str)
	})

	t.Run("null passes through", func(t *testing.T) {
		got := Phone.Clean(NullValue(KindString), log)
		assert.True(t, got.Null)
	})

	t.Run("unbounded kinds untouched", func(t *testing.T) {
		got := Enrollment.Clean(IntValue(250), log)
		assert.Equal(t, 250, got.Int)
	})
}

func TestAutomatedExclusionReason(t *testing.T) {
	tests := []struct {
		nameMissing, websiteMissing bool
		want                        *string
	}{
		{true, true, strPtr(ReasonMissingNameAndWebsite)},
		{true, false, strPtr(ReasonMissingName)},
		{false, true, strPtr(ReasonMissingWebsite)},
		{false, false, nil},
	}
	for _, tt := range tests {
		got := AutomatedExclusionReason(tt.nameMissing, tt.websiteMissing)
		if tt.want == nil {
			assert.Nil(t, got)
			continue
		}
		require.NotNil(t, got)
		assert.Equal(t, *tt.want, *got)
		assert.True(t, IsAutomatedExclusionReason(*got))
	}
	assert.False(t, IsAutomatedExclusionReason("Closed in 2019."))
}

func TestValueEqual(t *testing.T) {
	east := time.FixedZone("east", 5*3600)
	assert.True(t, StringValue("a").Equal(StringValue("a")))
	assert.False(t, StringValue("a").Equal(StringValue("b")))
	assert.False(t, StringValue("a").Equal(URLValue("a")), "kinds must match")
	assert.True(t, NullValue(KindInt).Equal(NullValue(KindInt)))
	assert.False(t, NullValue(KindString).Equal(StringValue("")))
	assert.True(t,
		DateValue(time.Date(2020, 5, 1, 5, 0, 0, 0, time.UTC)).
			Equal(DateValue(time.Date(2020, 5, 1, 10, 0, 0, 0, east))),
		"dates compare by instant")
}

func TestStringPtrValue(t *testing.T) {
	assert.True(t, StringPtrValue(nil).Null)
	v := StringPtrValue(strPtr("x"))
	assert.False(t, v.Null)
	assert.Equal(t, "x", v.Str)
}

func TestSchoolDefaults(t *testing.T) {
	s := New()
	assert.True(t, s.Get(Name).Null)
	assert.False(t, s.Bool(IsExcluded), "excluded defaults to false, not null")
	assert.False(t, s.Get(IsExcluded).Null)
	assert.Equal(t, MissingNameSubstitution, s.DisplayName())

	s.Put(Name, StringValue("Veritas Academy"))
	assert.Equal(t, "Veritas Academy", s.DisplayName())
}

func TestPutForcesKind(t *testing.T) {
	s := New()
	s.Put(WebsiteURL, StringValue("example.org"))
	assert.Equal(t, KindURL, s.Get(WebsiteURL).Kind)
}

func TestAttributeRegistry(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range Attributes() {
		assert.False(t, seen[a.Name], "duplicate attribute %s", a.Name)
		seen[a.Name] = true
		byName, ok := AttributeByName(a.Name)
		require.True(t, ok)
		assert.Same(t, a, byName)
	}
}

func strPtr(s string) *string { return &s }
