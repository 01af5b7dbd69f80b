package match

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// ErrNotCompared is returned when a value is requested for an attribute this
// record pair was never compared on.
var ErrNotCompared = errors.New("attribute was not compared")

// RecordComparison aggregates the per-attribute verdicts for one incoming
// record against one existing record.
type RecordComparison struct {
	Incoming *school.Incoming
	Existing *school.School

	comparisons map[*school.Attribute]AttributeComparison
	resolvable  int
}

func NewRecordComparison(in *school.Incoming, ex *school.School) *RecordComparison {
	return &RecordComparison{
		Incoming:    in,
		Existing:    ex,
		comparisons: make(map[*school.Attribute]AttributeComparison, len(school.Attributes())),
	}
}

// Put stores one attribute verdict, keeping the resolvable count in step.
func (rc *RecordComparison) Put(cmp AttributeComparison) {
	if old, ok := rc.comparisons[cmp.Attribute]; ok && old.Resolvable() {
		rc.resolvable--
	}
	rc.comparisons[cmp.Attribute] = cmp
	if cmp.Resolvable() {
		rc.resolvable++
	}
}

// Get returns the stored verdict for one attribute.
func (rc *RecordComparison) Get(a *school.Attribute) (AttributeComparison, bool) {
	cmp, ok := rc.comparisons[a]
	return cmp, ok
}

// ResolvableCount is the number of compared attributes whose surviving value
// is known.
func (rc *RecordComparison) ResolvableCount() int { return rc.resolvable }

// AllResolvable reports whether every attribute has been compared and every
// comparison knows its surviving value. Only such a pair can be reconciled
// without a reviewer.
func (rc *RecordComparison) AllResolvable() bool {
	return len(rc.comparisons) == len(school.Attributes()) &&
		rc.resolvable == len(rc.comparisons)
}

// pageURLAttrs need stronger evidence than other indicators: two different
// pages on an organization's own site are usually two different schools.
func needsIndicator(a *school.Attribute) bool {
	return a == school.AccsPageURL || a == school.IclePageURL
}

// IsProbableMatch reports whether any of the given attributes ties the two
// records together: a match level carrying actual data on both sides.
func (rc *RecordComparison) IsProbableMatch(attrs ...*school.Attribute) bool {
	for _, a := range attrs {
		cmp, ok := rc.comparisons[a]
		if !ok || !cmp.NonNullValues {
			continue
		}
		if needsIndicator(a) {
			if cmp.Level.MatchesAt(Indicator) {
				return true
			}
			continue
		}
		if cmp.Level.Matches() {
			return true
		}
	}
	return false
}

// DifferingAttributes lists every compared attribute whose values are not an
// exact match, in registry order.
func (rc *RecordComparison) DifferingAttributes() []*school.Attribute {
	var out []*school.Attribute
	for _, a := range school.Attributes() {
		if cmp, ok := rc.comparisons[a]; ok && cmp.Level != Exact {
			out = append(out, a)
		}
	}
	return out
}

// AttributesToUpdate lists every compared attribute whose surviving value is
// not the existing record's, in registry order.
func (rc *RecordComparison) AttributesToUpdate() []*school.Attribute {
	var out []*school.Attribute
	for _, a := range school.Attributes() {
		if cmp, ok := rc.comparisons[a]; ok && cmp.Preference != PrefExisting {
			out = append(out, a)
		}
	}
	return out
}

// Unresolved lists every compared attribute still awaiting a reviewer's
// choice, in registry order.
func (rc *RecordComparison) Unresolved() []*school.Attribute {
	var out []*school.Attribute
	for _, a := range school.Attributes() {
		if cmp, ok := rc.comparisons[a]; ok && !cmp.Resolvable() {
			out = append(out, a)
		}
	}
	return out
}

// AttributeValue returns the surviving value for one attribute.
func (rc *RecordComparison) AttributeValue(a *school.Attribute) (school.Value, error) {
	cmp, ok := rc.comparisons[a]
	if !ok {
		return school.NullValue(a.Kind), fmt.Errorf("%w: %s", ErrNotCompared, a.Name)
	}
	v, err := cmp.PreferredValue(rc.Incoming, rc.Existing)
	if err != nil {
		return v, fmt.Errorf("%w: %s", err, a.Name)
	}
	return v, nil
}

// ApplyToExisting writes every surviving non-existing value onto the existing
// record in place. Since the record is the same object held by the cache, the
// cache sees the update immediately.
func (rc *RecordComparison) ApplyToExisting(log *zap.Logger) error {
	for _, a := range rc.AttributesToUpdate() {
		v, err := rc.AttributeValue(a)
		if err != nil {
			return err
		}
		rc.Existing.Put(a, a.Clean(v, log))
	}
	return nil
}
