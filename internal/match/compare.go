package match

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/address"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/grade"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/urlutil"
)

// coordEpsilon is the tolerance for floating-point attribute equality,
// roughly one meter of latitude.
const coordEpsilon = 1e-5

// Comparator compares attribute values between an incoming and an existing
// record. Address-based attributes go through the address collaborator;
// everything else is decided locally.
type Comparator struct {
	addr address.Normalizer
	log  *zap.Logger
}

func NewComparator(addr address.Normalizer, log *zap.Logger) *Comparator {
	return &Comparator{addr: addr, log: log}
}

// Compare produces the verdict for one attribute of one record pair.
func (c *Comparator) Compare(a *school.Attribute, in *school.Incoming, ex *school.School) AttributeComparison {
	if a.ExclusionRelated() {
		return c.compareExclusion(a, in, ex)
	}
	if a.AddressBased() {
		res, err := c.addr.Compare(effStrPtr(&in.School, a), effStrPtr(ex, a))
		if err != nil {
			c.log.Error("address comparison failed",
				zap.String("attribute", a.Name), zap.Error(err))
			return ofNone(a, !in.IsEffectivelyNull(a) && !ex.IsEffectivelyNull(a))
		}
		return c.mapAddressComparison(a, in, ex, res)
	}
	return c.compareLocal(a, in, ex)
}

// CompareBulk compares one attribute of the incoming record against many
// existing records, returning exactly one verdict per record in order.
// Address-based attributes use the collaborator's bulk call; a collaborator
// failure degrades every pair to a data-preserving non-match.
func (c *Comparator) CompareBulk(a *school.Attribute, in *school.Incoming, existing []*school.School) []AttributeComparison {
	out := make([]AttributeComparison, len(existing))

	if a.AddressBased() {
		ptrs := make([]*string, len(existing))
		for i, ex := range existing {
			ptrs[i] = effStrPtr(ex, a)
		}
		results, err := c.addr.CompareBulk(effStrPtr(&in.School, a), ptrs)
		if err != nil || len(results) != len(existing) {
			c.log.Error("bulk address comparison failed",
				zap.String("attribute", a.Name),
				zap.Int("records", len(existing)),
				zap.Error(err))
			for i, ex := range existing {
				out[i] = ofNone(a, !in.IsEffectivelyNull(a) && !ex.IsEffectivelyNull(a))
			}
			return out
		}
		for i, ex := range existing {
			out[i] = c.mapAddressComparison(a, in, ex, results[i])
		}
		return out
	}

	for i, ex := range existing {
		out[i] = c.Compare(a, in, ex)
	}
	return out
}

// compareLocal handles every attribute the collaborator is not needed for.
func (c *Comparator) compareLocal(a *school.Attribute, in *school.Incoming, ex *school.School) AttributeComparison {
	vIn, vEx := in.Get(a), ex.Get(a)
	nullIn, nullEx := a.IsEffectivelyNull(vIn), a.IsEffectivelyNull(vEx)

	// Two absent values still match; their raw spellings ("" vs "null")
	// decide whether the agreement is literal.
	if nullIn && nullEx {
		level := Indicator
		if vIn.Equal(vEx) {
			level = Exact
		}
		canonical := canonicalNull(a)
		cmp := AttributeComparison{
			Attribute: a, Level: level, NonNullValues: false,
			NormIncoming: canonical, NormExisting: canonical,
		}
		cmp.Preference, cmp.OtherOption = preferenceByNorm(vIn, vEx, canonical, canonical)
		return cmp
	}

	// One absent value: no match, keep the side that has data.
	if nullIn != nullEx {
		cmp := ofNone(a, false)
		if nullIn {
			cmp.Preference = PrefExisting
		} else {
			cmp.Preference = PrefIncoming
		}
		return cmp
	}

	switch {
	case a.Kind == school.KindDate:
		return compareDates(a, vIn, vEx)
	case a.Kind == school.KindDouble:
		return compareDoubles(a, vIn, vEx)
	case a.Kind == school.KindURL:
		return c.compareURLs(a, vIn, vEx)
	case a == school.GradesOffered:
		return c.compareGrades(a, vIn, vEx)
	case a.Kind == school.KindString:
		return compareStrings(a, vIn, vEx)
	}

	// Bools and ints: structural equality or nothing.
	if vIn.Equal(vEx) {
		return exactExisting(a, vIn, vEx)
	}
	return ofNone(a, true)
}

func compareDates(a *school.Attribute, vIn, vEx school.Value) AttributeComparison {
	y1, m1, d1 := vIn.Time.Date()
	y2, m2, d2 := vEx.Time.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return ofNone(a, true)
	}
	return exactExisting(a, vIn, vEx)
}

func compareDoubles(a *school.Attribute, vIn, vEx school.Value) AttributeComparison {
	if math.Abs(vIn.Float-vEx.Float) > coordEpsilon {
		return ofNone(a, true)
	}
	return exactExisting(a, vIn, vEx)
}

func (c *Comparator) compareURLs(a *school.Attribute, vIn, vEx school.Value) AttributeComparison {
	normIn := c.normalizeURLValue(a, vIn)
	normEx := c.normalizeURLValue(a, vEx)

	switch {
	case urlutil.Equal(vIn.Str, vEx.Str):
		level := Indicator
		if vIn.Str == vEx.Str {
			level = Exact
		}
		cmp := AttributeComparison{
			Attribute: a, Level: level, NonNullValues: true,
			NormIncoming: normIn, NormExisting: normEx,
		}
		cmp.Preference, cmp.OtherOption = preferenceByNorm(vIn, vEx, normIn, normEx)
		return cmp
	case urlutil.HostEqual(vIn.Str, vEx.Str):
		// Same site, different page. Still a matching level, so the usual
		// canonical-form rule picks a side.
		cmp := AttributeComparison{
			Attribute: a, Level: Related, NonNullValues: true,
			NormIncoming: normIn, NormExisting: normEx,
		}
		cmp.Preference, cmp.OtherOption = preferenceByNorm(vIn, vEx, normIn, normEx)
		return cmp
	}
	return ofNone(a, true)
}

func (c *Comparator) normalizeURLValue(a *school.Attribute, v school.Value) school.Value {
	norm, err := urlutil.Normalize(v.Str)
	if err != nil {
		c.log.Warn("unparseable url",
			zap.String("attribute", a.Name), zap.String("url", v.Str))
		return school.NullValue(a.Kind)
	}
	return school.URLValue(norm)
}

func (c *Comparator) compareGrades(a *school.Attribute, vIn, vEx school.Value) AttributeComparison {
	if vIn.Str == vEx.Str {
		return exactExisting(a, vIn, vEx)
	}
	gIn := grade.Identify(vIn.Str, c.log)
	gEx := grade.Identify(vEx.Str, c.log)
	if !grade.Equal(gIn, gEx) {
		return ofNone(a, true)
	}
	normIn := school.StringValue(grade.Normalize(gIn))
	normEx := school.StringValue(grade.Normalize(gEx))
	cmp := AttributeComparison{
		Attribute: a, Level: Indicator, NonNullValues: true,
		NormIncoming: normIn, NormExisting: normEx,
	}
	cmp.Preference, cmp.OtherOption = preferenceByNorm(vIn, vEx, normIn, normEx)
	return cmp
}

func compareStrings(a *school.Attribute, vIn, vEx school.Value) AttributeComparison {
	if vIn.Str == vEx.Str {
		return exactExisting(a, vIn, vEx)
	}
	tIn, tEx := strings.TrimSpace(vIn.Str), strings.TrimSpace(vEx.Str)
	if tIn == tEx {
		return AttributeComparison{
			Attribute: a, Level: Exact, NonNullValues: true,
			Preference:   PrefOther,
			OtherOption:  school.StringValue(tEx),
			NormIncoming: school.StringValue(tIn),
			NormExisting: school.StringValue(tEx),
		}
	}
	if strings.EqualFold(tIn, tEx) {
		// Same text, different casing. Neither spelling is canonical, so
		// the choice is left unresolved.
		return AttributeComparison{
			Attribute: a, Level: Indicator, NonNullValues: true,
			Preference:   PrefNone,
			OtherOption:  school.NullValue(a.Kind),
			NormIncoming: school.StringValue(tIn),
			NormExisting: school.StringValue(tEx),
		}
	}
	return ofNone(a, true)
}

// mapAddressComparison translates a collaborator verdict into an attribute
// comparison. The collaborator reports the canonical form of the existing
// side; a nil canonical form means the existing address normalizes to
// nothing. NonNullValues comes from the raw values alone: a collaborator
// failure must not erase the fact that both sides held data.
func (c *Comparator) mapAddressComparison(a *school.Attribute, in *school.Incoming, ex *school.School, res address.Comparison) AttributeComparison {
	rawIn := effStrPtr(&in.School, a)
	rawEx := effStrPtr(ex, a)
	nonNull := rawIn != nil && rawEx != nil

	if res.Error != nil {
		c.log.Error("address pair comparison failed",
			zap.String("attribute", a.Name), zap.String("cause", *res.Error))
		return ofNone(a, nonNull)
	}

	norm := res.Normalized
	cmp := AttributeComparison{
		Attribute:     a,
		Level:         parseAddressLevel(res.Match),
		NonNullValues: nonNull,
		OtherOption:   school.NullValue(a.Kind),
		NormIncoming:  school.StringPtrValue(norm),
		NormExisting:  school.StringPtrValue(norm),
	}

	if cmp.Level == None && norm == nil {
		return cmp
	}

	switch {
	case strPtrEq(rawEx, norm):
		cmp.Preference = PrefExisting
	case strPtrEq(rawIn, norm):
		cmp.Preference = PrefIncoming
	default:
		cmp.Preference = PrefOther
		cmp.OtherOption = school.StringPtrValue(norm)
	}
	return cmp
}

func parseAddressLevel(s string) Level {
	switch s {
	case address.MatchExact:
		return Exact
	case address.MatchIndicator:
		return Indicator
	case address.MatchRelated:
		return Related
	}
	return None
}

// preferenceByNorm prefers whichever side already holds the canonical form,
// the existing record winning ties; when neither does, the canonical form
// itself survives.
func preferenceByNorm(rawIn, rawEx, normIn, normEx school.Value) (Preference, school.Value) {
	if rawEx.Equal(normEx) {
		return PrefExisting, school.NullValue(rawEx.Kind)
	}
	if rawIn.Equal(normIn) {
		return PrefIncoming, school.NullValue(rawIn.Kind)
	}
	return PrefOther, normEx
}

// exactExisting is the verdict for two identical non-null values.
func exactExisting(a *school.Attribute, vIn, vEx school.Value) AttributeComparison {
	return AttributeComparison{
		Attribute: a, Level: Exact, Preference: PrefExisting,
		NonNullValues: true,
		OtherOption:   school.NullValue(a.Kind),
		NormIncoming:  vIn, NormExisting: vEx,
	}
}

// canonicalNull is the normal form of an absent value: the missing-name
// placeholder for the name attribute, a plain null otherwise.
func canonicalNull(a *school.Attribute) school.Value {
	if a == school.Name {
		return school.StringValue(school.MissingNameSubstitution)
	}
	return school.NullValue(a.Kind)
}

// effStrPtr returns the attribute's string payload, nil when effectively
// null.
func effStrPtr(s *school.School, a *school.Attribute) *string {
	if s.IsEffectivelyNull(a) {
		return nil
	}
	return s.StrPtr(a)
}

func strPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
