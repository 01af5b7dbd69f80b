package match

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

func resolved(a *school.Attribute) AttributeComparison {
	return AttributeComparison{Attribute: a, Level: Exact, Preference: PrefExisting}
}

func unresolved(a *school.Attribute) AttributeComparison {
	return ofNone(a, true)
}

func TestRecordComparisonResolvableCount(t *testing.T) {
	in, ex := pair()
	rc := NewRecordComparison(in, ex)
	assert.Equal(t, 0, rc.ResolvableCount())

	rc.Put(resolved(school.Name))
	rc.Put(resolved(school.Phone))
	assert.Equal(t, 2, rc.ResolvableCount())

	// Replacing a resolvable verdict with an unresolvable one must not leak
	// the old count.
	rc.Put(unresolved(school.Phone))
	assert.Equal(t, 1, rc.ResolvableCount())

	rc.Put(resolved(school.Phone))
	assert.Equal(t, 2, rc.ResolvableCount())
}

func TestAllResolvable(t *testing.T) {
	in, ex := pair()
	rc := NewRecordComparison(in, ex)
	assert.False(t, rc.AllResolvable(), "nothing compared yet")

	for _, a := range school.Attributes() {
		rc.Put(resolved(a))
	}
	assert.True(t, rc.AllResolvable())

	rc.Put(unresolved(school.Bio))
	assert.False(t, rc.AllResolvable())
	assert.Equal(t, []*school.Attribute{school.Bio}, rc.Unresolved())
}

func TestIsProbableMatch(t *testing.T) {
	t.Run("related website suffices", func(t *testing.T) {
		in, ex := pair()
		rc := NewRecordComparison(in, ex)
		rc.Put(AttributeComparison{Attribute: school.WebsiteURL, Level: Related, NonNullValues: true})
		assert.True(t, rc.IsProbableMatch(school.WebsiteURL))
	})

	t.Run("match without data on both sides does not count", func(t *testing.T) {
		in, ex := pair()
		rc := NewRecordComparison(in, ex)
		rc.Put(AttributeComparison{Attribute: school.WebsiteURL, Level: Exact, NonNullValues: false})
		assert.False(t, rc.IsProbableMatch(school.WebsiteURL))
	})

	t.Run("related page url is not enough", func(t *testing.T) {
		in, ex := pair()
		rc := NewRecordComparison(in, ex)
		rc.Put(AttributeComparison{Attribute: school.AccsPageURL, Level: Related, NonNullValues: true})
		assert.False(t, rc.IsProbableMatch(school.AccsPageURL))

		rc.Put(AttributeComparison{Attribute: school.AccsPageURL, Level: Indicator, NonNullValues: true})
		assert.True(t, rc.IsProbableMatch(school.AccsPageURL))
	})

	t.Run("uncompared attributes are skipped", func(t *testing.T) {
		in, ex := pair()
		rc := NewRecordComparison(in, ex)
		assert.False(t, rc.IsProbableMatch(school.WebsiteURL, school.Phone))
	})
}

func TestAttributeValue(t *testing.T) {
	in, ex := pair()
	ex.Put(school.Phone, school.StringValue("555-0100"))
	rc := NewRecordComparison(in, ex)

	t.Run("not compared", func(t *testing.T) {
		_, err := rc.AttributeValue(school.Phone)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotCompared))
	})

	t.Run("unresolved", func(t *testing.T) {
		rc.Put(unresolved(school.Phone))
		_, err := rc.AttributeValue(school.Phone)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnresolvedAttribute))
	})

	t.Run("resolved to existing", func(t *testing.T) {
		rc.Put(resolved(school.Phone))
		v, err := rc.AttributeValue(school.Phone)
		require.NoError(t, err)
		assert.Equal(t, "555-0100", v.Str)
	})

	t.Run("resolved to other", func(t *testing.T) {
		cmp := unresolved(school.Phone)
		cmp.Resolve(PrefOther, school.StringValue("555-0199"))
		rc.Put(cmp)
		v, err := rc.AttributeValue(school.Phone)
		require.NoError(t, err)
		assert.Equal(t, "555-0199", v.Str)
	})
}

func TestApplyToExisting(t *testing.T) {
	in, ex := pair()
	in.Put(school.Name, school.StringValue("Veritas Academy"))
	in.Put(school.Phone, school.StringValue("555-0100"))
	ex.Put(school.Name, school.StringValue("veritas academy"))

	rc := NewRecordComparison(in, ex)
	name := AttributeComparison{Attribute: school.Name, Level: Indicator, Preference: PrefIncoming}
	rc.Put(name)
	rc.Put(AttributeComparison{Attribute: school.Phone, Level: None, Preference: PrefIncoming})
	rc.Put(resolved(school.Bio))

	require.NoError(t, rc.ApplyToExisting(zap.NewNop()))
	assert.Equal(t, "Veritas Academy", ex.Str(school.Name))
	assert.Equal(t, "555-0100", ex.Str(school.Phone))
	assert.True(t, ex.Get(school.Bio).Null, "existing-preferred values untouched")
}

func TestDifferingAndUpdatableAttributes(t *testing.T) {
	in, ex := pair()
	rc := NewRecordComparison(in, ex)
	rc.Put(resolved(school.Name))
	rc.Put(AttributeComparison{Attribute: school.Phone, Level: Indicator, Preference: PrefIncoming})
	rc.Put(AttributeComparison{Attribute: school.Bio, Level: None, Preference: PrefNone})

	assert.Equal(t, []*school.Attribute{school.Phone, school.Bio}, rc.DifferingAttributes())
	assert.Equal(t, []*school.Attribute{school.Phone, school.Bio}, rc.AttributesToUpdate())
}
