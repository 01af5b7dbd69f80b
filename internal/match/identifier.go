package match

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/correction"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// DistrictLookup resolves district ids from the cache or store.
type DistrictLookup interface {
	District(id int) (*school.District, error)
}

// Resolution is a reviewer's (or policy's) decision for one candidate
// district.
type Resolution struct {
	Kind Kind

	// Comparison is required for SchoolMatch, with every attribute
	// preference resolved.
	Comparison *RecordComparison

	// Optional corrected district identity for DistrictMatch.
	DistrictName *string
	DistrictURL  *string
}

// Resolver is the human (or scripted) decision-maker consulted when the
// automatic tiers cannot settle a match.
type Resolver interface {
	ResolveDistrict(in *school.Incoming, d *school.District, comps []*RecordComparison) (Resolution, error)
}

// Identifier runs the full match cascade: indicator screening, automatic
// full-record matching, then district-by-district resolution through
// corrections, per-organization policy, and finally the resolver.
type Identifier struct {
	cmp         *Comparator
	corrections *correction.Manager
	policies    map[*school.Organization]DistrictPolicy
	resolver    Resolver
	log         *zap.Logger
}

func NewIdentifier(cmp *Comparator, corrections *correction.Manager,
	policies map[*school.Organization]DistrictPolicy, resolver Resolver,
	log *zap.Logger) *Identifier {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Identifier{
		cmp:         cmp,
		corrections: corrections,
		policies:    policies,
		resolver:    resolver,
		log:         log,
	}
}

// Identify matches one incoming record against the cached directory.
func (id *Identifier) Identify(in *school.Incoming, cache []*school.School, districts DistrictLookup) (Result, error) {
	comps := make([]*RecordComparison, len(cache))
	for i, ex := range cache {
		comps[i] = NewRecordComparison(in, ex)
	}

	// Tier 1: screen the whole cache on the organization's indicator
	// attributes. Records sharing no indicator cannot be the same school.
	indicators := in.Org.MatchIndicatorAttributes()
	for _, a := range indicators {
		verdicts := id.cmp.CompareBulk(a, in, cache)
		for i := range cache {
			comps[i].Put(verdicts[i])
		}
	}

	var candidates []*RecordComparison
	for _, rc := range comps {
		if rc.IsProbableMatch(indicators...) {
			candidates = append(candidates, rc)
		}
	}
	if len(candidates) == 0 {
		return noMatch(), nil
	}
	id.log.Debug("indicator screening complete",
		zap.String("school", in.DisplayName()),
		zap.Int("candidates", len(candidates)))

	// Tier 2: compare candidates on everything else. A candidate whose
	// every attribute resolves on its own needs no review.
	id.compareRemaining(in, candidates, indicators)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ResolvableCount() > candidates[j].ResolvableCount()
	})
	if best := candidates[0]; best.AllResolvable() {
		id.log.Debug("automatic school match",
			zap.String("school", in.DisplayName()),
			zap.Int("existing_id", best.Existing.ID))
		return Result{Kind: SchoolMatch, Comparison: best}, nil
	}

	// Tier 3: walk the candidates' districts in strength order, resolving
	// each through corrections, policy, and finally the resolver.
	full := make(map[*school.School]*RecordComparison, len(comps))
	for _, rc := range candidates {
		full[rc.Existing] = rc
	}

	for _, d := range id.candidateDistricts(candidates, districts) {
		districtComps := id.districtComparisons(in, d, cache, comps, full, indicators)

		if corr := id.corrections.FindDistrictMatch(in, d); corr != nil {
			id.log.Debug("district match by correction",
				zap.String("school", in.DisplayName()),
				zap.Int("district_id", d.ID))
			return Result{
				Kind:         DistrictMatch,
				District:     d,
				DistrictName: corr.DistrictName(),
				DistrictURL:  corr.DistrictURL(),
			}, nil
		}

		if policy := id.policies[in.Org]; policy != nil {
			res, err := policy.Evaluate(in, d, districtComps)
			if err != nil {
				return Result{}, err
			}
			if res != nil {
				return id.applyResolution(*res, d)
			}
		}

		res, err := id.resolver.ResolveDistrict(in, d, districtComps)
		if err != nil {
			return Result{}, err
		}
		if res.Kind == NoMatch {
			continue
		}
		return id.applyResolution(res, d)
	}

	return noMatch(), nil
}

// compareRemaining fills in every non-indicator attribute for the given
// comparisons.
func (id *Identifier) compareRemaining(in *school.Incoming, comps []*RecordComparison, indicators []*school.Attribute) {
	isIndicator := make(map[*school.Attribute]bool, len(indicators))
	for _, a := range indicators {
		isIndicator[a] = true
	}
	schools := make([]*school.School, len(comps))
	for i, rc := range comps {
		schools[i] = rc.Existing
	}
	for _, a := range school.Attributes() {
		if isIndicator[a] {
			continue
		}
		verdicts := id.cmp.CompareBulk(a, in, schools)
		for i := range comps {
			comps[i].Put(verdicts[i])
		}
	}
}

// candidateDistricts returns the candidates' districts, strongest candidate
// first, without duplicates. Districts not yet persisted share id zero, so
// those coalesce by object identity rather than by id. A district that
// cannot be loaded is logged and skipped rather than aborting the whole
// match.
func (id *Identifier) candidateDistricts(candidates []*RecordComparison, districts DistrictLookup) []*school.District {
	var out []*school.District
	seenID := make(map[int]bool)
	seen := make(map[*school.District]bool)
	for _, rc := range candidates {
		did := rc.Existing.DistrictID
		if did != 0 && seenID[did] {
			continue
		}
		seenID[did] = true
		d, err := districts.District(did)
		if err != nil {
			id.log.Error("failed to load candidate district",
				zap.Int("district_id", did), zap.Error(err))
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// districtComparisons returns a full comparison for every cached school in
// the district, comparing the not-yet-screened ones on demand so the
// resolver always sees the complete picture.
func (id *Identifier) districtComparisons(in *school.Incoming, d *school.District,
	cache []*school.School, comps []*RecordComparison,
	full map[*school.School]*RecordComparison, indicators []*school.Attribute) []*RecordComparison {

	var out []*RecordComparison
	var missing []*RecordComparison
	for i, ex := range cache {
		if ex.DistrictID != d.ID {
			continue
		}
		rc := comps[i]
		out = append(out, rc)
		if full[ex] == nil {
			missing = append(missing, rc)
		}
	}
	if len(missing) > 0 {
		id.compareRemaining(in, missing, indicators)
		for _, rc := range missing {
			full[rc.Existing] = rc
		}
	}
	return out
}

// applyResolution validates a resolver or policy decision and converts it to
// a final result.
func (id *Identifier) applyResolution(res Resolution, d *school.District) (Result, error) {
	switch res.Kind {
	case Omit:
		return omitted(), nil
	case DistrictMatch:
		return Result{
			Kind:         DistrictMatch,
			District:     d,
			DistrictName: res.DistrictName,
			DistrictURL:  res.DistrictURL,
		}, nil
	case SchoolMatch:
		if res.Comparison == nil {
			return Result{}, fmt.Errorf("school match resolution carries no comparison")
		}
		if unresolved := res.Comparison.Unresolved(); len(unresolved) > 0 {
			return Result{}, fmt.Errorf("%w: %d attributes left undecided",
				ErrUnresolvedAttribute, len(unresolved))
		}
		return Result{Kind: SchoolMatch, Comparison: res.Comparison}, nil
	}
	return Result{}, fmt.Errorf("unexpected resolution kind %v", res.Kind)
}
