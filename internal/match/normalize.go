package match

import (
	"strings"

	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/grade"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// NormalizeRecord rewrites every attribute of the record to its canonical
// form: canonical URLs, canonical grade ranges, lowercase emails, title-cased
// person names, collaborator-normalized addresses, and a reconciled exclusion
// pair. Collaborator failures leave the raw value in place with a warning.
func (c *Comparator) NormalizeRecord(s *school.School) {
	for _, a := range school.Attributes() {
		if a.ExclusionRelated() {
			continue
		}
		s.Put(a, c.NormalizeValue(a, s.Get(a), s))
	}
	c.normalizeExclusion(s)
}

// NormalizeValue canonicalizes one value. rec supplies context for component
// attributes (a city is normalized in light of the full address).
func (c *Comparator) NormalizeValue(a *school.Attribute, v school.Value, rec *school.School) school.Value {
	if a.IsEffectivelyNull(v) {
		return canonicalNull(a)
	}

	switch {
	case a.Kind == school.KindURL:
		return c.normalizeURLValue(a, v)

	case a == school.GradesOffered:
		return school.StringValue(grade.Normalize(grade.Identify(v.Str, c.log)))

	case a == school.Email:
		return school.StringValue(strings.ToLower(strings.TrimSpace(v.Str)))

	case a.NameBased():
		return school.StringValue(titleCase(v.Str))

	case a.AddressBased():
		norm, err := c.addr.Normalize(v.StringPtr())
		if err != nil {
			c.log.Warn("address normalization failed",
				zap.String("attribute", a.Name), zap.Error(err))
			return v
		}
		return school.StringPtrValue(norm)

	case a == school.City:
		return c.normalizeComponent(v, rec, c.addr.NormalizeCity)

	case a == school.State:
		return c.normalizeComponent(v, rec, c.addr.NormalizeState)

	case a == school.Country:
		return normalizeCountry(v)
	}

	if a.Kind == school.KindString {
		return school.StringValue(strings.TrimSpace(v.Str))
	}
	return v
}

func (c *Comparator) normalizeComponent(v school.Value, rec *school.School,
	f func(value, addr *string) (*string, error)) school.Value {
	norm, err := f(v.StringPtr(), effStrPtr(rec, school.Address))
	if err != nil {
		c.log.Warn("component normalization failed", zap.Error(err))
		return v
	}
	return school.StringPtrValue(norm)
}

// normalizeExclusion reconciles the exclusion pair in place: an unexcluded
// record carries no reason, and a record whose name or website is missing is
// excluded with the matching automated reason unless a manual one is set.
func (c *Comparator) normalizeExclusion(s *school.School) {
	auto := school.AutomatedExclusionReason(
		s.IsEffectivelyNull(school.Name),
		s.IsEffectivelyNull(school.WebsiteURL),
	)
	excluded := s.Bool(school.IsExcluded)
	reason := effStrPtr(s, school.ExcludedReason)

	switch {
	case auto != nil:
		s.Put(school.IsExcluded, school.BoolValue(true))
		if reason == nil || school.IsAutomatedExclusionReason(*reason) {
			s.Put(school.ExcludedReason, school.StringValue(*auto))
		}
	case !excluded:
		s.Put(school.ExcludedReason, school.NullValue(school.KindString))
	case reason != nil && school.IsAutomatedExclusionReason(*reason):
		// Manually excluded but carrying a stale automated reason.
		s.Put(school.ExcludedReason, school.NullValue(school.KindString))
	}
}

var usCountryNames = map[string]bool{
	"us": true, "usa": true, "unitedstates": true,
	"unitedstatesofamerica": true, "america": true, "estadosunidos": true,
}

// usStates recognizes US state names and abbreviations that source listings
// sometimes put in the country column.
var usStates = map[string]bool{
	"alabama": true, "alaska": true, "arizona": true, "arkansas": true,
	"california": true, "colorado": true, "connecticut": true,
	"delaware": true, "florida": true, "georgia": true, "hawaii": true,
	"idaho": true, "illinois": true, "indiana": true, "iowa": true,
	"kansas": true, "kentucky": true, "louisiana": true, "maine": true,
	"maryland": true, "massachusetts": true, "michigan": true,
	"minnesota": true, "mississippi": true, "missouri": true,
	"montana": true, "nebraska": true, "nevada": true,
	"newhampshire": true, "newjersey": true, "newmexico": true,
	"newyork": true, "northcarolina": true, "northdakota": true,
	"ohio": true, "oklahoma": true, "oregon": true, "pennsylvania": true,
	"rhodeisland": true, "southcarolina": true, "southdakota": true,
	"tennessee": true, "texas": true, "utah": true, "vermont": true,
	"virginia": true, "washington": true, "westvirginia": true,
	"wisconsin": true, "wyoming": true, "districtofcolumbia": true,
}

// notACountry is junk that shows up in country columns and means nothing.
var notACountry = map[string]bool{
	"na": true, "none": true, "unknown": true, "other": true, "tbd": true,
}

func normalizeCountry(v school.Value) school.Value {
	letters := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, strings.ToLower(v.Str))

	switch {
	case letters == "":
		return school.NullValue(school.KindString)
	case usCountryNames[letters] || usStates[letters]:
		return school.StringValue("United States")
	case notACountry[letters]:
		return school.NullValue(school.KindString)
	}
	return school.StringValue(titleCase(v.Str))
}

// titleCase uppercases the first letter of each word, lowercasing the rest.
func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		lower := strings.ToLower(w)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}
