// Package pipeline drives one reconciliation run: validate each incoming
// record, identify its match, and commit the outcome to the directory.
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/extract"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/match"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/urlutil"
)

// ErrCommitOmit is returned when an omitted record reaches the commit step;
// omitted records must never touch the directory.
var ErrCommitOmit = errors.New("omitted record must not be committed")

// Store is the persistence surface the pipeline needs.
type Store interface {
	InsertSchool(*school.School) error
	UpdateSchool(*school.School) error
	InsertDistrict(*school.District) error
	UpdateDistrict(*school.District) error
	UpsertDistrictOrganization(districtID int, org *school.Organization) error
}

// Cache is the in-memory copy of the directory a run works against. Matched
// schools are updated in place, so the cache stays current through a run
// without reloading.
type Cache struct {
	Schools   []*school.School
	districts map[int]*school.District
}

func NewCache(schools []*school.School, districts []*school.District) *Cache {
	c := &Cache{Schools: schools, districts: make(map[int]*school.District, len(districts))}
	for _, d := range districts {
		c.districts[d.ID] = d
	}
	return c
}

// District implements match.DistrictLookup.
func (c *Cache) District(id int) (*school.District, error) {
	d, ok := c.districts[id]
	if !ok {
		return nil, fmt.Errorf("district %d is not cached", id)
	}
	return d, nil
}

// AddDistrict registers a newly created district.
func (c *Cache) AddDistrict(d *school.District) { c.districts[d.ID] = d }

// AddSchool registers a newly inserted school.
func (c *Cache) AddSchool(s *school.School) { c.Schools = append(c.Schools, s) }

// Districts returns the cached districts.
func (c *Cache) Districts() []*school.District {
	out := make([]*school.District, 0, len(c.districts))
	for _, d := range c.districts {
		out = append(out, d)
	}
	return out
}

// Tally counts the outcomes of one run.
type Tally struct {
	Processed     int
	NewDistricts  int
	SchoolMatches int
	DistrictJoins int
	Omitted       int
}

// Pipeline owns one run's collaborators.
type Pipeline struct {
	store      Store
	cmp        *match.Comparator
	identifier *match.Identifier
	cache      *Cache
	log        *zap.Logger
}

func New(store Store, cmp *match.Comparator, identifier *match.Identifier,
	cache *Cache, log *zap.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		cmp:        cmp,
		identifier: identifier,
		cache:      cache,
		log:        log,
	}
}

// Run reconciles every school the source produces.
func (p *Pipeline) Run(source extract.Source) (Tally, error) {
	var tally Tally

	incoming, err := source.Schools()
	if err != nil {
		return tally, err
	}
	p.log.Info("starting reconciliation run", zap.Int("records", len(incoming)))

	for _, in := range incoming {
		tally.Processed++

		p.Validate(in)

		result, err := p.identifier.Identify(in, p.cache.Schools, p.cache)
		if err != nil {
			return tally, fmt.Errorf("matching %q: %w", in.DisplayName(), err)
		}
		if result.Kind == match.Omit {
			p.log.Info("record omitted", zap.String("school", in.DisplayName()))
			tally.Omitted++
			continue
		}

		if err := p.Commit(in, result); err != nil {
			return tally, fmt.Errorf("committing %q: %w", in.DisplayName(), err)
		}
		switch result.Kind {
		case match.NoMatch:
			tally.NewDistricts++
		case match.SchoolMatch:
			tally.SchoolMatches++
		case match.DistrictMatch:
			tally.DistrictJoins++
		}
	}

	p.log.Info("reconciliation run complete",
		zap.Int("processed", tally.Processed),
		zap.Int("new_districts", tally.NewDistricts),
		zap.Int("school_matches", tally.SchoolMatches),
		zap.Int("district_joins", tally.DistrictJoins),
		zap.Int("omitted", tally.Omitted))
	return tally, nil
}

// Validate normalizes an incoming record and settles its derived attributes:
// an unparseable website URL is dropped with a warning, the has-website flag
// follows the URL, and a record missing its identifying attributes is
// excluded with the matching automated reason.
func (p *Pipeline) Validate(in *school.Incoming) {
	if !in.IsEffectivelyNull(school.WebsiteURL) {
		if _, err := urlutil.Create(in.Str(school.WebsiteURL)); err != nil {
			p.log.Warn("dropping unparseable website url",
				zap.String("school", in.DisplayName()),
				zap.String("url", in.Str(school.WebsiteURL)))
			in.Put(school.WebsiteURL, school.NullValue(school.KindURL))
		}
	}
	in.Put(school.HasWebsite, school.BoolValue(!in.IsEffectivelyNull(school.WebsiteURL)))

	p.cmp.NormalizeRecord(&in.School)

	for _, a := range school.Attributes() {
		in.Put(a, a.Clean(in.Get(a), p.log))
	}
}

// Commit applies a match result to the store and the cache.
func (p *Pipeline) Commit(in *school.Incoming, result match.Result) error {
	switch result.Kind {
	case match.Omit:
		return ErrCommitOmit

	case match.NoMatch:
		d := school.NewDistrict(in.Str(school.Name), in.Str(school.WebsiteURL))
		if err := p.store.InsertDistrict(d); err != nil {
			return err
		}
		p.cache.AddDistrict(d)
		return p.insertSchool(in, d.ID)

	case match.SchoolMatch:
		rc := result.Comparison
		if err := rc.ApplyToExisting(p.log); err != nil {
			return err
		}
		if err := p.store.UpdateSchool(rc.Existing); err != nil {
			return err
		}
		in.DistrictID = rc.Existing.DistrictID
		return p.store.UpsertDistrictOrganization(rc.Existing.DistrictID, in.Org)

	case match.DistrictMatch:
		d := result.District
		if updateDistrict(d, result.DistrictName, result.DistrictURL) {
			if err := p.store.UpdateDistrict(d); err != nil {
				return err
			}
		}
		return p.insertSchool(in, d.ID)
	}
	return fmt.Errorf("unexpected match result %v", result.Kind)
}

func (p *Pipeline) insertSchool(in *school.Incoming, districtID int) error {
	in.DistrictID = districtID
	if err := p.store.InsertSchool(&in.School); err != nil {
		return err
	}
	p.cache.AddSchool(&in.School)
	return p.store.UpsertDistrictOrganization(districtID, in.Org)
}

// updateDistrict applies corrected identity fields, reporting whether
// anything changed.
func updateDistrict(d *school.District, name, url *string) bool {
	changed := false
	if name != nil && !strPtrEq(d.Name, name) {
		d.Name = name
		changed = true
	}
	if url != nil && !strPtrEq(d.WebsiteURL, url) {
		d.WebsiteURL = url
		changed = true
	}
	return changed
}

func strPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
