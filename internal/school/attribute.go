package school

import (
	"strings"

	"go.uber.org/zap"
)

// MissingNameSubstitution is stored in place of a school name when the source
// listing provided none. It is treated as null during matching.
const MissingNameSubstitution = "MISSING NAME"

// Automated exclusion reasons, set when a school is excluded because its
// identifying attributes are absent.
const (
	ReasonMissingNameAndWebsite = "Missing name and website."
	ReasonMissingName           = "Missing name."
	ReasonMissingWebsite        = "Missing website."
)

// Attribute describes one column of a school record.
type Attribute struct {
	Name      string
	Kind      Kind
	MaxLength int

	// Default is the value a fresh record carries for this attribute.
	Default Value

	addressBased     bool
	nameBased        bool
	exclusionRelated bool
}

// AddressBased attributes are normalized and compared through the address
// parser rather than as plain strings.
func (a *Attribute) AddressBased() bool { return a.addressBased }

// NameBased attributes hold a person's name and are title-cased on
// normalization.
func (a *Attribute) NameBased() bool { return a.nameBased }

// ExclusionRelated attributes record whether and why a school is excluded
// from analysis. They are compared as a pair rather than independently.
func (a *Attribute) ExclusionRelated() bool { return a.exclusionRelated }

func (a *Attribute) String() string { return a.Name }

func attr(name string, kind Kind, maxLength int) *Attribute {
	return &Attribute{Name: name, Kind: kind, MaxLength: maxLength, Default: NullValue(kind)}
}

var (
	Name               = attr("name", KindString, 100)
	Phone              = attr("phone", KindString, 20)
	Address            = attr("address", KindString, 100)
	MailingAddress     = attr("mailing_address", KindString, 100)
	City               = attr("city", KindString, 50)
	State              = attr("state", KindString, 40)
	Country            = attr("country", KindString, 30)
	WebsiteURL         = attr("website_url", KindURL, 300)
	WebsiteURLRedirect = attr("website_url_redirect", KindURL, 300)
	HasWebsite         = attr("has_website", KindBool, 0)
	ContactName        = attr("contact_name", KindString, 100)
	Email              = attr("email", KindString, 100)
	AccsAccredited     = attr("accs_accredited", KindBool, 0)
	OfficePhone        = attr("office_phone", KindString, 20)
	FaxNumber          = attr("fax_number", KindString, 20)
	DateAccredited     = attr("date_accredited", KindDate, 0)
	YearFounded        = attr("year_founded", KindInt, 0)
	GradesOffered      = attr("grades_offered", KindString, 100)
	MembershipDate     = attr("membership_date", KindDate, 0)
	Enrollment         = attr("enrollment", KindInt, 0)

	NumberOfStudentsK6               = attr("number_of_students_k_6", KindInt, 0)
	NumberOfStudentsK6NonTraditional = attr("number_of_students_k_6_non_traditional", KindInt, 0)
	ClassroomFormat                  = attr("classroom_format", KindString, 100)
	NumberOfStudents712              = attr("number_of_students_7_12", KindInt, 0)
	NumberOfStudents712NonTrad       = attr("number_of_students_7_12_non_traditional", KindInt, 0)
	NumberOfTeachers                 = attr("number_of_teachers", KindInt, 0)
	StudentTeacherRatio              = attr("student_teacher_ratio", KindString, 50)
	InternationalStudentProgram      = attr("international_student_program", KindBool, 0)
	TuitionRange                     = attr("tuition_range", KindString, 50)
	HeadmasterName                   = attr("headmaster_name", KindString, 100)
	ChurchAffiliated                 = attr("church_affiliated", KindBool, 0)
	ChairmanName                     = attr("chairman_name", KindString, 100)
	AccreditedOther                  = attr("accredited_other", KindString, 300)
	Latitude                         = attr("latitude", KindDouble, 0)
	Longitude                        = attr("longitude", KindDouble, 0)
	LatLongAccuracy                  = attr("lat_long_accuracy", KindString, 25)
	ProjectedOpening                 = attr("projected_opening", KindString, 20)
	Bio                              = attr("bio", KindString, 65535)
	AccsPageURL                      = attr("accs_page_url", KindURL, 300)
	HillsdaleAffiliationLevel        = attr("hillsdale_affiliation_level", KindString, 50)
	IclePageURL                      = attr("icle_page_url", KindURL, 300)
	IcleAffiliationLevel             = attr("icle_affiliation_level", KindString, 25)
	IsExcluded                       = attr("is_excluded", KindBool, 0)
	ExcludedReason                   = attr("excluded_reason", KindString, 100)
)

var attributes = []*Attribute{
	Name, Phone, Address, MailingAddress, City, State, Country,
	WebsiteURL, WebsiteURLRedirect, HasWebsite, ContactName, Email,
	AccsAccredited, OfficePhone, FaxNumber, DateAccredited, YearFounded,
	GradesOffered, MembershipDate, Enrollment,
	NumberOfStudentsK6, NumberOfStudentsK6NonTraditional, ClassroomFormat,
	NumberOfStudents712, NumberOfStudents712NonTrad, NumberOfTeachers,
	StudentTeacherRatio, InternationalStudentProgram, TuitionRange,
	HeadmasterName, ChurchAffiliated, ChairmanName, AccreditedOther,
	Latitude, Longitude, LatLongAccuracy, ProjectedOpening, Bio,
	AccsPageURL, HillsdaleAffiliationLevel, IclePageURL,
	IcleAffiliationLevel, IsExcluded, ExcludedReason,
}

var attributesByName = func() map[string]*Attribute {
	m := make(map[string]*Attribute, len(attributes))
	for _, a := range attributes {
		m[a.Name] = a
	}
	return m
}()

func init() {
	Address.addressBased = true
	MailingAddress.addressBased = true

	ContactName.nameBased = true
	HeadmasterName.nameBased = true
	ChairmanName.nameBased = true

	IsExcluded.exclusionRelated = true
	ExcludedReason.exclusionRelated = true

	IsExcluded.Default = BoolValue(false)
	HasWebsite.Default = BoolValue(false)
}

// Attributes returns every attribute in declaration order. Callers must not
// modify the slice.
func Attributes() []*Attribute { return attributes }

// AttributeByName looks up an attribute by its column name.
func AttributeByName(name string) (*Attribute, bool) {
	a, ok := attributesByName[name]
	return a, ok
}

// IsEffectivelyNull reports whether a value carries no usable information for
// this attribute. Besides actual nulls, that covers the missing-name
// placeholder and blank or "null" string payloads.
func (a *Attribute) IsEffectivelyNull(v Value) bool {
	if v.Null {
		return true
	}
	if a == Name && strings.EqualFold(strings.TrimSpace(v.Str), MissingNameSubstitution) {
		return true
	}
	if a.Kind == KindString || a.Kind == KindURL {
		return isNullText(v.Str)
	}
	return false
}

// Clean enforces the attribute's storage constraints, truncating over-long
// strings with a warning.
func (a *Attribute) Clean(v Value, log *zap.Logger) Value {
	if v.Null || a.MaxLength <= 0 {
		return v
	}
	if (a.Kind == KindString || a.Kind == KindURL) && len(v.Str) > a.MaxLength {
		log.Warn("truncating over-long attribute value",
			zap.String("attribute", a.Name),
			zap.Int("length", len(v.Str)),
			zap.Int("max", a.MaxLength),
		)
		v.Str = v.Str[:a.MaxLength]
	}
	return v
}

// AutomatedExclusionReason returns the canonical exclusion reason for a
// school missing its name, its website, both, or neither (nil).
func AutomatedExclusionReason(nameMissing, websiteMissing bool) *string {
	var r string
	switch {
	case nameMissing && websiteMissing:
		r = ReasonMissingNameAndWebsite
	case nameMissing:
		r = ReasonMissingName
	case websiteMissing:
		r = ReasonMissingWebsite
	default:
		return nil
	}
	return &r
}

// IsAutomatedExclusionReason reports whether the given reason is one of the
// canonical automated reasons, as opposed to one entered by a reviewer.
func IsAutomatedExclusionReason(reason string) bool {
	switch reason {
	case ReasonMissingNameAndWebsite, ReasonMissingName, ReasonMissingWebsite:
		return true
	}
	return false
}
