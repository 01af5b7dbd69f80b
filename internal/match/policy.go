package match

import (
	"strings"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/grade"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/urlutil"
	"go.uber.org/zap"
)

// DistrictPolicy can settle a candidate district automatically before the
// resolver is consulted. A nil resolution means the policy has no opinion.
type DistrictPolicy interface {
	Evaluate(in *school.Incoming, d *school.District, comps []*RecordComparison) (*Resolution, error)
}

// DefaultPolicies returns the per-organization policies in effect.
func DefaultPolicies() map[*school.Organization]DistrictPolicy {
	return map[*school.Organization]DistrictPolicy{
		school.GHI: &SplitCampusPolicy{},
	}
}

// SplitCampusPolicy recognizes one institution listed as separate campuses
// serving different grade spans, the pattern GHI listings use for academies
// split into a lower and an upper school. When an incoming school and an
// existing campus share part of their name and their website's domain,
// disagree on grade span, and leave little else unresolved, the incoming
// school is added to the campus's district under a combined name.
type SplitCampusPolicy struct {
	Log *zap.Logger
}

// maxUnresolvedForAutoJoin caps how much ambiguity the policy tolerates
// before deferring to a reviewer.
const maxUnresolvedForAutoJoin = 3

func (p *SplitCampusPolicy) Evaluate(in *school.Incoming, d *school.District, comps []*RecordComparison) (*Resolution, error) {
	for _, rc := range comps {
		shared := p.splitCampusName(in, rc)
		if shared == "" {
			continue
		}
		name := shared
		return &Resolution{Kind: DistrictMatch, DistrictName: &name}, nil
	}
	return nil, nil
}

// splitCampusName returns the combined district name when the pair looks
// like two campuses of one institution, "" otherwise.
func (p *SplitCampusPolicy) splitCampusName(in *school.Incoming, rc *RecordComparison) string {
	ex := rc.Existing
	if in.IsEffectivelyNull(school.Name) || ex.IsEffectivelyNull(school.Name) {
		return ""
	}
	if in.IsEffectivelyNull(school.WebsiteURL) || ex.IsEffectivelyNull(school.WebsiteURL) {
		return ""
	}
	if !urlutil.HostEqual(in.Str(school.WebsiteURL), ex.Str(school.WebsiteURL)) {
		return ""
	}
	if len(rc.Unresolved()) > maxUnresolvedForAutoJoin {
		return ""
	}

	shared := sharedAffix(in.Str(school.Name), ex.Str(school.Name))
	if shared == "" {
		return ""
	}

	// Same name and same site but different grade spans is the split-campus
	// signature; identical spans would be a duplicate, not a sibling.
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	gIn := grade.Identify(in.Str(school.GradesOffered), log)
	gEx := grade.Identify(ex.Str(school.GradesOffered), log)
	if len(gIn) == 0 || len(gEx) == 0 || grade.Equal(gIn, gEx) {
		return ""
	}
	return shared
}

// sharedAffix returns the longest common leading or trailing word sequence
// of two names, "" when the names are identical or share no words at either
// end.
func sharedAffix(a, b string) string {
	wa := strings.Fields(a)
	wb := strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 || strings.EqualFold(a, b) {
		return ""
	}

	var prefix []string
	for i := 0; i < len(wa) && i < len(wb); i++ {
		if !strings.EqualFold(wa[i], wb[i]) {
			break
		}
		prefix = append(prefix, wa[i])
	}

	var suffix []string
	for i := 0; i < len(wa) && i < len(wb); i++ {
		x, y := wa[len(wa)-1-i], wb[len(wb)-1-i]
		if !strings.EqualFold(x, y) {
			break
		}
		suffix = append([]string{x}, suffix...)
	}

	if len(prefix) >= len(suffix) && len(prefix) > 0 {
		return strings.Join(prefix, " ")
	}
	return strings.Join(suffix, " ")
}
