package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/address"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/correction"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/match"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// echoNormalizer treats every address as already canonical.
type echoNormalizer struct{}

var _ address.Normalizer = echoNormalizer{}

func (echoNormalizer) Normalize(addr *string) (*string, error) { return addr, nil }

func (echoNormalizer) NormalizeBulk(addrs []*string) ([]*string, error) { return addrs, nil }

func (echoNormalizer) NormalizeCity(city, addr *string) (*string, error) { return city, nil }

func (echoNormalizer) NormalizeState(state, addr *string) (*string, error) { return state, nil }

func (echoNormalizer) Compare(incoming, existing *string) (address.Comparison, error) {
	if incoming != nil && existing != nil && *incoming == *existing {
		return address.Comparison{Match: address.MatchExact, Normalized: existing}, nil
	}
	return address.Comparison{Match: address.MatchNone, Normalized: existing}, nil
}

func (e echoNormalizer) CompareBulk(incoming *string, existing []*string) ([]address.Comparison, error) {
	out := make([]address.Comparison, len(existing))
	for i, ex := range existing {
		out[i], _ = e.Compare(incoming, ex)
	}
	return out, nil
}

// fakeStore records every persistence call and hands out sequential ids.
type fakeStore struct {
	insertedSchools   []*school.School
	updatedSchools    []*school.School
	insertedDistricts []*school.District
	updatedDistricts  []*school.District
	orgLinks          map[int][]int

	nextID int
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{orgLinks: make(map[int][]int)}
}

func (s *fakeStore) InsertSchool(sc *school.School) error {
	s.nextID++
	sc.ID = s.nextID
	s.insertedSchools = append(s.insertedSchools, sc)
	return nil
}

func (s *fakeStore) UpdateSchool(sc *school.School) error {
	s.updatedSchools = append(s.updatedSchools, sc)
	return nil
}

func (s *fakeStore) InsertDistrict(d *school.District) error {
	s.nextID++
	d.ID = s.nextID
	s.insertedDistricts = append(s.insertedDistricts, d)
	return nil
}

func (s *fakeStore) UpdateDistrict(d *school.District) error {
	s.updatedDistricts = append(s.updatedDistricts, d)
	return nil
}

func (s *fakeStore) UpsertDistrictOrganization(districtID int, org *school.Organization) error {
	s.orgLinks[districtID] = append(s.orgLinks[districtID], org.ID)
	return nil
}

type sliceSource []*school.Incoming

func (s sliceSource) Schools() ([]*school.Incoming, error) { return s, nil }

func testPipeline(store *fakeStore, cache *Cache) *Pipeline {
	log := zap.NewNop()
	cmp := match.NewComparator(echoNormalizer{}, log)
	identifier := match.NewIdentifier(cmp, correction.NewManager(nil, log), nil, nil, log)
	return New(store, cmp, identifier, cache, log)
}

func newIncoming(name, website string) *school.Incoming {
	in := school.NewIncoming(school.ACCS)
	if name != "" {
		in.Put(school.Name, school.StringValue(name))
	}
	if website != "" {
		in.Put(school.WebsiteURL, school.URLValue(website))
	}
	return in
}

func TestValidate(t *testing.T) {
	store := newFakeStore()
	p := testPipeline(store, NewCache(nil, nil))

	t.Run("website settles the derived flag", func(t *testing.T) {
		in := newIncoming("Veritas Academy", "https://www.Example.org/")
		p.Validate(in)
		assert.True(t, in.Bool(school.HasWebsite))
		assert.Equal(t, "http://example.org", in.Str(school.WebsiteURL))
		assert.False(t, in.Bool(school.IsExcluded))
	})

	t.Run("unparseable website is dropped", func(t *testing.T) {
		in := newIncoming("Veritas Academy", "not a real url")
		p.Validate(in)
		assert.True(t, in.IsEffectivelyNull(school.WebsiteURL))
		assert.False(t, in.Bool(school.HasWebsite))
		assert.True(t, in.Bool(school.IsExcluded))
		assert.Equal(t, school.ReasonMissingWebsite, in.Str(school.ExcludedReason))
	})

	t.Run("missing name substitutes the placeholder", func(t *testing.T) {
		in := newIncoming("", "example.org")
		p.Validate(in)
		assert.Equal(t, school.MissingNameSubstitution, in.Str(school.Name))
		assert.True(t, in.Bool(school.IsExcluded))
		assert.Equal(t, school.ReasonMissingName, in.Str(school.ExcludedReason))
	})

	t.Run("email lowercased and name trimmed", func(t *testing.T) {
		in := newIncoming("  Veritas Academy ", "example.org")
		in.Put(school.Email, school.StringValue(" Office@Example.ORG "))
		p.Validate(in)
		assert.Equal(t, "Veritas Academy", in.Str(school.Name))
		assert.Equal(t, "office@example.org", in.Str(school.Email))
	})
}

func TestCommitNoMatch(t *testing.T) {
	store := newFakeStore()
	cache := NewCache(nil, nil)
	p := testPipeline(store, cache)

	in := newIncoming("Veritas Academy", "http://example.org")
	require.NoError(t, p.Commit(in, match.Result{Kind: match.NoMatch}))

	require.Len(t, store.insertedDistricts, 1)
	d := store.insertedDistricts[0]
	require.NotNil(t, d.Name)
	assert.Equal(t, "Veritas Academy", *d.Name)

	require.Len(t, store.insertedSchools, 1)
	assert.Equal(t, d.ID, in.DistrictID)
	assert.Equal(t, []int{school.ACCS.ID}, store.orgLinks[d.ID])

	assert.Len(t, cache.Schools, 1)
	got, err := cache.District(d.ID)
	require.NoError(t, err)
	assert.Same(t, d, got)
}

func TestCommitSchoolMatch(t *testing.T) {
	store := newFakeStore()
	ex := school.New()
	ex.ID = 3
	ex.DistrictID = 7
	ex.Put(school.Name, school.StringValue("Veritas Academy"))
	cache := NewCache([]*school.School{ex}, []*school.District{{ID: 7}})
	p := testPipeline(store, cache)

	in := newIncoming("Veritas Academy", "")
	in.Put(school.Phone, school.StringValue("555-0100"))

	rc := match.NewRecordComparison(in, ex)
	rc.Put(match.AttributeComparison{
		Attribute: school.Name, Level: match.Exact, Preference: match.PrefExisting,
	})
	rc.Put(match.AttributeComparison{
		Attribute: school.Phone, Level: match.None, Preference: match.PrefIncoming,
	})

	require.NoError(t, p.Commit(in, match.Result{Kind: match.SchoolMatch, Comparison: rc}))

	assert.Equal(t, "555-0100", ex.Str(school.Phone), "preferred value written in place")
	require.Len(t, store.updatedSchools, 1)
	assert.Same(t, ex, store.updatedSchools[0])
	assert.Empty(t, store.insertedSchools)
	assert.Equal(t, 7, in.DistrictID)
	assert.Equal(t, []int{school.ACCS.ID}, store.orgLinks[7])
}

func TestCommitDistrictMatch(t *testing.T) {
	t.Run("with identity correction", func(t *testing.T) {
		store := newFakeStore()
		cache := NewCache(nil, []*school.District{{ID: 5}})
		p := testPipeline(store, cache)
		d, _ := cache.District(5)

		name := "Great Oak Academy"
		in := newIncoming("Great Oak Lower", "greatoak.org")
		result := match.Result{Kind: match.DistrictMatch, District: d, DistrictName: &name}
		require.NoError(t, p.Commit(in, result))

		require.Len(t, store.updatedDistricts, 1)
		require.NotNil(t, d.Name)
		assert.Equal(t, name, *d.Name)
		require.Len(t, store.insertedSchools, 1)
		assert.Equal(t, 5, in.DistrictID)
	})

	t.Run("without correction the district is untouched", func(t *testing.T) {
		store := newFakeStore()
		cache := NewCache(nil, []*school.District{{ID: 5}})
		p := testPipeline(store, cache)
		d, _ := cache.District(5)

		in := newIncoming("Great Oak Lower", "greatoak.org")
		require.NoError(t, p.Commit(in, match.Result{Kind: match.DistrictMatch, District: d}))
		assert.Empty(t, store.updatedDistricts)
		require.Len(t, store.insertedSchools, 1)
	})
}

func TestCommitOmit(t *testing.T) {
	store := newFakeStore()
	p := testPipeline(store, NewCache(nil, nil))

	in := newIncoming("Veritas Academy", "")
	err := p.Commit(in, match.Result{Kind: match.Omit})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommitOmit)
	assert.Empty(t, store.insertedSchools)
	assert.Empty(t, store.insertedDistricts)
}

func TestRunAgainstEmptyDirectory(t *testing.T) {
	store := newFakeStore()
	cache := NewCache(nil, nil)
	p := testPipeline(store, cache)

	source := sliceSource{
		newIncoming("Veritas Academy", "example.org"),
		newIncoming("Great Oak Lower", "greatoak.org"),
	}

	tally, err := p.Run(source)
	require.NoError(t, err)
	assert.Equal(t, 2, tally.Processed)
	assert.Equal(t, 2, tally.NewDistricts)
	assert.Zero(t, tally.SchoolMatches)
	assert.Len(t, cache.Schools, 2)
	assert.Len(t, store.insertedDistricts, 2)
}
