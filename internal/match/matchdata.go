package match

import (
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// Kind is the overall outcome of identifying a match for an incoming record.
type Kind int

const (
	// NoMatch means the record is new; a fresh district is created for it.
	NoMatch Kind = iota
	// Omit means the record should be discarded without touching the
	// directory.
	Omit
	// SchoolMatch means the record describes a school already present.
	SchoolMatch
	// DistrictMatch means the record is a new sibling campus within an
	// existing district.
	DistrictMatch
)

func (k Kind) String() string {
	switch k {
	case Omit:
		return "OMIT"
	case SchoolMatch:
		return "SCHOOL_MATCH"
	case DistrictMatch:
		return "DISTRICT_MATCH"
	}
	return "NO_MATCH"
}

// Result is the outcome of matching one incoming record against the
// directory.
type Result struct {
	Kind Kind

	// Comparison is set for SchoolMatch: the reconciliation against the
	// matched school, with every preference resolved.
	Comparison *RecordComparison

	// District is set for DistrictMatch: the district gaining a campus.
	District *school.District

	// Optional corrections to the district's name and URL, applied when the
	// new campus reveals better information.
	DistrictName *string
	DistrictURL  *string
}

func noMatch() Result { return Result{Kind: NoMatch} }
func omitted() Result { return Result{Kind: Omit} }
