package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIdentify(t *testing.T) {
	log := zap.NewNop()

	tests := []struct {
		name string
		text string
		want []Level
	}{
		{
			name: "simple range with dash",
			text: "PreK - 8",
			want: []Level{PreK, K, First, Second, Third, Fourth, Fifth, Sixth, Seventh, Eighth},
		},
		{
			name: "range with thru",
			text: "K thru 12",
			want: []Level{K, First, Second, Third, Fourth, Fifth, Sixth, Seventh,
				Eighth, Ninth, Tenth, Eleventh, Twelfth},
		},
		{
			name: "named span",
			text: "elementary",
			want: []Level{K, First, Second, Third, Fourth, Fifth},
		},
		{
			name: "comma separated list",
			text: "Grades 9, 10, 11",
			want: []Level{Ninth, Tenth, Eleventh},
		},
		{
			name: "ordinal suffixes",
			text: "1st through 5th grade",
			want: []Level{First, Second, Third, Fourth, Fifth},
		},
		{
			name: "kindergarten word",
			text: "Kindergarten and 1st",
			want: []Level{K, First},
		},
		{
			name: "span to explicit grade",
			text: "middle school - 12",
			want: []Level{Sixth, Seventh, Eighth, Ninth, Tenth, Eleventh, Twelfth},
		},
		{
			name: "list without range indicator",
			text: "K and 3rd",
			want: []Level{K, Third},
		},
		{
			name: "duplicates collapse",
			text: "K, K, kindergarten",
			want: []Level{K},
		},
		{
			name: "non-standard levels never fill ranges",
			text: "nursery - 1",
			want: []Level{Nursery, PreK, K, First},
		},
		{
			name: "unicode dash",
			text: "6–8",
			want: []Level{Sixth, Seventh, Eighth},
		},
		{
			name: "empty text",
			text: "",
			want: []Level{},
		},
		{
			name: "no recognizable grades",
			text: "call for details",
			want: []Level{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Identify(tt.text, log)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifyResumesAfterUnknownToken(t *testing.T) {
	got := Identify("xyzzy 3rd - 5th", zap.NewNop())
	assert.Equal(t, []Level{Third, Fourth, Fifth}, got)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		levels []Level
		want   string
	}{
		{
			name:   "long run collapses to range",
			levels: []Level{K, First, Second, Third, Fourth, Fifth},
			want:   "K–5",
		},
		{
			name:   "prek anchors a range",
			levels: []Level{PreK, K, First, Second, Third, Fourth, Fifth, Sixth, Seventh, Eighth},
			want:   "PreK–8",
		},
		{
			name:   "short run stays individual",
			levels: []Level{Ninth, Tenth},
			want:   "9th, 10th",
		},
		{
			name:   "gap splits runs",
			levels: []Level{K, First, Third, Fourth, Fifth},
			want:   "K, 1st, 3–5",
		},
		{
			name:   "non-standard level listed on its own",
			levels: []Level{Nursery, K, First, Second, Third},
			want:   "Nursery School, K–3",
		},
		{
			name:   "unsorted input",
			levels: []Level{Fifth, K, Third, First, Second, Fourth},
			want:   "K–5",
		},
		{
			name:   "single level",
			levels: []Level{Twelfth},
			want:   "12th",
		},
		{
			name:   "empty",
			levels: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.levels))
		})
	}
}

func TestIdentifyNormalizeRoundTrip(t *testing.T) {
	// Two spellings of the same span canonicalize identically.
	log := zap.NewNop()
	a := Identify("K-5", log)
	b := Identify("kindergarten through fifth grade", log)
	assert.True(t, Equal(a, b))
	assert.Equal(t, Normalize(a), Normalize(b))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal([]Level{K, First}, []Level{K, First}))
	assert.False(t, Equal([]Level{K}, []Level{K, First}))
	assert.False(t, Equal([]Level{K, Second}, []Level{K, First}))
}
