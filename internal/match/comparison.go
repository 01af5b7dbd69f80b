// Package match decides whether an incoming school record describes a school
// already in the directory, a sibling campus of one, or something new.
package match

import (
	"errors"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// Level grades how closely two values of one attribute agree. The order
// matters: lower values are stronger matches.
type Level int

const (
	// Exact values are identical.
	Exact Level = iota
	// Indicator values differ only in form (case, trailing slash, raw vs
	// canonical rendering) and denote the same datum.
	Indicator
	// Related values are plausibly connected, such as two URLs on the same
	// host, but are not the same datum.
	Related
	// None values do not match.
	None
)

func (l Level) String() string {
	switch l {
	case Exact:
		return "EXACT"
	case Indicator:
		return "INDICATOR"
	case Related:
		return "RELATED"
	}
	return "NONE"
}

// MatchesAt reports whether this level is at least as strong as the
// threshold.
func (l Level) MatchesAt(threshold Level) bool { return l <= threshold }

// Matches reports whether the level signifies any relation at all.
func (l Level) Matches() bool { return l.MatchesAt(Related) }

// Preference records which side's value should survive reconciliation.
type Preference int

const (
	// PrefNone means the comparison could not pick a side; a reviewer must.
	PrefNone Preference = iota
	// PrefIncoming keeps the incoming record's value.
	PrefIncoming
	// PrefExisting keeps the existing record's value.
	PrefExisting
	// PrefOther keeps a third value, carried in OtherOption, typically the
	// canonical form of one of the two.
	PrefOther
)

func (p Preference) String() string {
	switch p {
	case PrefIncoming:
		return "INCOMING"
	case PrefExisting:
		return "EXISTING"
	case PrefOther:
		return "OTHER"
	}
	return "NONE"
}

// ErrUnresolvedAttribute is returned when a value is requested from a
// comparison whose preference a reviewer has not resolved.
var ErrUnresolvedAttribute = errors.New("attribute preference is unresolved")

// AttributeComparison is the verdict for one attribute of one record pair.
type AttributeComparison struct {
	Attribute  *school.Attribute
	Level      Level
	Preference Preference

	// OtherOption is the surviving value when Preference is PrefOther.
	OtherOption school.Value

	// NonNullValues is true when both sides carried usable data.
	NonNullValues bool

	// Normalized views of each side, for preference resolution and review
	// display.
	NormIncoming school.Value
	NormExisting school.Value
}

// ofNone builds a no-match verdict; nonNull records whether both sides held
// data that simply failed to match.
func ofNone(a *school.Attribute, nonNull bool) AttributeComparison {
	return AttributeComparison{
		Attribute:     a,
		Level:         None,
		Preference:    PrefNone,
		OtherOption:   school.NullValue(a.Kind),
		NonNullValues: nonNull,
	}
}

// Resolvable reports whether the comparison knows which value survives.
func (c AttributeComparison) Resolvable() bool { return c.Preference != PrefNone }

// Resolve sets the preference, as chosen by a reviewer.
func (c *AttributeComparison) Resolve(p Preference, other school.Value) {
	c.Preference = p
	if p == PrefOther {
		c.OtherOption = other
	}
}

// PreferredValue returns the value that survives reconciliation for the pair
// this comparison belongs to.
func (c AttributeComparison) PreferredValue(in *school.Incoming, existing *school.School) (school.Value, error) {
	switch c.Preference {
	case PrefIncoming:
		return in.Get(c.Attribute), nil
	case PrefExisting:
		return existing.Get(c.Attribute), nil
	case PrefOther:
		return c.OtherOption, nil
	}
	return school.NullValue(c.Attribute.Kind), ErrUnresolvedAttribute
}
