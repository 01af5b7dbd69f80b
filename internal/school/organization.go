package school

// Organization is one of the accrediting bodies whose listings feed the
// directory. Each organization declares which attributes are reliable
// indicators of a match for its data, and which additional attributes a
// reviewer should see when weighing one.
type Organization struct {
	ID           int
	Name         string
	Abbreviation string
	HomepageURL  string

	extraIndicators []*Attribute
}

// defaultIndicators are reliable match signals for every organization.
var defaultIndicators = []*Attribute{WebsiteURL, Address, Phone}

// MatchIndicatorAttributes returns the attributes whose agreement suggests
// two records describe the same school.
func (o *Organization) MatchIndicatorAttributes() []*Attribute {
	out := make([]*Attribute, 0, len(defaultIndicators)+len(o.extraIndicators))
	out = append(out, defaultIndicators...)
	out = append(out, o.extraIndicators...)
	return out
}

// MatchRelevantAttributes returns the attributes a reviewer should always
// see for this organization's records: the name, the exclusion pair, and the
// match indicators.
func (o *Organization) MatchRelevantAttributes() []*Attribute {
	out := []*Attribute{Name, IsExcluded, ExcludedReason}
	return append(out, o.MatchIndicatorAttributes()...)
}

func (o *Organization) String() string { return o.Abbreviation }

var (
	ACCS = &Organization{
		ID:              1,
		Name:            "Association of Classical Christian Schools",
		Abbreviation:    "ACCS",
		HomepageURL:     "https://classicalchristian.org",
		extraIndicators: []*Attribute{AccsPageURL},
	}
	GHI = &Organization{
		ID:              2,
		Name:            "Great Hearts Institute",
		Abbreviation:    "GHI",
		HomepageURL:     "https://greatheartsamerica.org",
		extraIndicators: []*Attribute{Latitude, Longitude},
	}
	Hillsdale = &Organization{
		ID:           3,
		Name:         "Hillsdale K-12 Education",
		Abbreviation: "HILLSDALE",
		HomepageURL:  "https://k12.hillsdale.edu",
	}
	ICLE = &Organization{
		ID:              4,
		Name:            "Institute for Catholic Liberal Education",
		Abbreviation:    "ICLE",
		HomepageURL:     "https://catholicliberaleducation.org",
		extraIndicators: []*Attribute{IclePageURL},
	}
	ASA = &Organization{
		ID:           5,
		Name:         "Anglican School Association",
		Abbreviation: "ASA",
		HomepageURL:  "https://anglicanschools.org",
	}
	CCLE = &Organization{
		ID:           6,
		Name:         "Consortium for Classical Lutheran Education",
		Abbreviation: "CCLE",
		HomepageURL:  "https://ccle.org",
	}
	OCSA = &Organization{
		ID:           7,
		Name:         "Orthodox Christian School Association",
		Abbreviation: "OCSA",
		HomepageURL:  "https://orthodoxschools.org",
	}
)

var organizations = []*Organization{ACCS, GHI, Hillsdale, ICLE, ASA, CCLE, OCSA}

// Organizations returns every known organization in id order.
func Organizations() []*Organization { return organizations }

// OrganizationByID looks up an organization by its database id.
func OrganizationByID(id int) (*Organization, bool) {
	for _, o := range organizations {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}
