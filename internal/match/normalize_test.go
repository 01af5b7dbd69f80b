package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

func TestNormalizeValue(t *testing.T) {
	c := testComparator()
	rec := school.New()

	tests := []struct {
		name string
		attr *school.Attribute
		in   school.Value
		want school.Value
	}{
		{
			name: "null name becomes the placeholder",
			attr: school.Name,
			in:   school.NullValue(school.KindString),
			want: school.StringValue(school.MissingNameSubstitution),
		},
		{
			name: "url canonicalized",
			attr: school.WebsiteURL,
			in:   school.URLValue("https://www.Example.org/About/"),
			want: school.URLValue("http://example.org/about"),
		},
		{
			name: "grades canonicalized",
			attr: school.GradesOffered,
			in:   school.StringValue("kindergarten through 5th"),
			want: school.StringValue("K–5"),
		},
		{
			name: "email lowercased",
			attr: school.Email,
			in:   school.StringValue(" Office@Example.ORG "),
			want: school.StringValue("office@example.org"),
		},
		{
			name: "person name title cased",
			attr: school.HeadmasterName,
			in:   school.StringValue("jANE de SMITH"),
			want: school.StringValue("Jane De Smith"),
		},
		{
			name: "country synonym",
			attr: school.Country,
			in:   school.StringValue("U.S.A."),
			want: school.StringValue("United States"),
		},
		{
			name: "state in the country column",
			attr: school.Country,
			in:   school.StringValue("Texas"),
			want: school.StringValue("United States"),
		},
		{
			name: "junk country dropped",
			attr: school.Country,
			in:   school.StringValue("N/A"),
			want: school.NullValue(school.KindString),
		},
		{
			name: "foreign country title cased",
			attr: school.Country,
			in:   school.StringValue("canada"),
			want: school.StringValue("Canada"),
		},
		{
			name: "plain string trimmed",
			attr: school.TuitionRange,
			in:   school.StringValue("  $5,000-$9,000 "),
			want: school.StringValue("$5,000-$9,000"),
		},
		{
			name: "non-string kinds untouched",
			attr: school.Enrollment,
			in:   school.IntValue(250),
			want: school.IntValue(250),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.NormalizeValue(tt.attr, tt.in, rec)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want.Display(), got.Display())
		})
	}
}

func TestNormalizeRecordExclusion(t *testing.T) {
	c := testComparator()

	t.Run("missing website forces automated exclusion", func(t *testing.T) {
		s := school.New()
		s.Put(school.Name, school.StringValue("Veritas Academy"))
		c.NormalizeRecord(s)
		assert.True(t, s.Bool(school.IsExcluded))
		assert.Equal(t, school.ReasonMissingWebsite, s.Str(school.ExcludedReason))
	})

	t.Run("manual reason survives automated exclusion", func(t *testing.T) {
		s := school.New()
		s.Put(school.Name, school.StringValue("Veritas Academy"))
		s.Put(school.IsExcluded, school.BoolValue(true))
		s.Put(school.ExcludedReason, school.StringValue("Closed in 2019."))
		c.NormalizeRecord(s)
		assert.True(t, s.Bool(school.IsExcluded))
		assert.Equal(t, "Closed in 2019.", s.Str(school.ExcludedReason))
	})

	t.Run("unexcluded record carries no reason", func(t *testing.T) {
		s := school.New()
		s.Put(school.Name, school.StringValue("Veritas Academy"))
		s.Put(school.WebsiteURL, school.URLValue("example.org"))
		s.Put(school.ExcludedReason, school.StringValue("Stale."))
		c.NormalizeRecord(s)
		assert.False(t, s.Bool(school.IsExcluded))
		assert.True(t, s.Get(school.ExcludedReason).Null)
	})

	t.Run("stale automated reason on manual exclusion cleared", func(t *testing.T) {
		s := school.New()
		s.Put(school.Name, school.StringValue("Veritas Academy"))
		s.Put(school.WebsiteURL, school.URLValue("example.org"))
		s.Put(school.IsExcluded, school.BoolValue(true))
		s.Put(school.ExcludedReason, school.StringValue(school.ReasonMissingWebsite))
		c.NormalizeRecord(s)
		assert.True(t, s.Bool(school.IsExcluded))
		assert.True(t, s.Get(school.ExcludedReason).Null)
	})
}
