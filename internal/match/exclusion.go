package match

import (
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// compareExclusion judges the exclusion flag and reason. The pair is judged
// against what the combined record would warrant: if neither record can
// supply a name or website, exclusion with the matching automated reason is
// canonical; otherwise manually entered reasons win, and two disagreeing
// manual reasons cannot be reconciled automatically.
func (c *Comparator) compareExclusion(a *school.Attribute, in *school.Incoming, ex *school.School) AttributeComparison {
	auto := school.AutomatedExclusionReason(
		in.IsEffectivelyNull(school.Name) && ex.IsEffectivelyNull(school.Name),
		in.IsEffectivelyNull(school.WebsiteURL) && ex.IsEffectivelyNull(school.WebsiteURL),
	)

	if a == school.IsExcluded {
		return compareExcludedFlag(a, in, ex, auto != nil)
	}
	return compareExcludedReason(a, in, ex, auto)
}

func compareExcludedFlag(a *school.Attribute, in *school.Incoming, ex *school.School, want bool) AttributeComparison {
	vIn, vEx := in.Bool(a), ex.Bool(a)

	level := Indicator
	if vIn == vEx {
		level = Exact
	}
	cmp := AttributeComparison{
		Attribute: a, Level: level, NonNullValues: true,
		OtherOption:  school.NullValue(a.Kind),
		NormIncoming: school.BoolValue(want),
		NormExisting: school.BoolValue(want),
	}
	switch {
	case vEx == want:
		cmp.Preference = PrefExisting
	case vIn == want:
		cmp.Preference = PrefIncoming
	default:
		cmp.Preference = PrefOther
		cmp.OtherOption = school.BoolValue(want)
	}
	return cmp
}

func compareExcludedReason(a *school.Attribute, in *school.Incoming, ex *school.School, auto *string) AttributeComparison {
	rIn := effStrPtr(&in.School, a)
	rEx := effStrPtr(ex, a)

	manual := func(r *string) bool {
		return r != nil && !school.IsAutomatedExclusionReason(*r)
	}

	var canonical *string
	switch {
	case auto != nil:
		canonical = auto
	case !in.Bool(school.IsExcluded) && !ex.Bool(school.IsExcluded):
		// Not excluded: the reason column should be empty.
		canonical = nil
	case manual(rIn) && manual(rEx) && *rIn != *rEx:
		// Two reviewers gave different reasons; only a reviewer can pick.
		return ofNone(a, true)
	case manual(rEx):
		canonical = rEx
	case manual(rIn):
		canonical = rIn
	case rEx != nil:
		canonical = rEx
	default:
		canonical = rIn
	}

	level := Indicator
	if strPtrEq(rIn, rEx) {
		level = Exact
	}
	cmp := AttributeComparison{
		Attribute: a, Level: level,
		NonNullValues: rIn != nil && rEx != nil,
		OtherOption:   school.NullValue(a.Kind),
		NormIncoming:  school.StringPtrValue(canonical),
		NormExisting:  school.StringPtrValue(canonical),
	}
	switch {
	case strPtrEq(rEx, canonical):
		cmp.Preference = PrefExisting
	case strPtrEq(rIn, canonical):
		cmp.Preference = PrefIncoming
	default:
		cmp.Preference = PrefOther
		cmp.OtherOption = school.StringPtrValue(canonical)
	}
	return cmp
}
