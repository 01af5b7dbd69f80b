package school

// District groups related schools, typically multiple campuses of one
// institution. Name and WebsiteURL may both be null when the member schools
// carry no identifying information.
type District struct {
	ID         int
	Name       *string
	WebsiteURL *string
}

// NewDistrict builds an unsaved district; empty strings map to null.
func NewDistrict(name, websiteURL string) *District {
	d := &District{}
	if !isNullText(name) {
		d.Name = &name
	}
	if !isNullText(websiteURL) {
		d.WebsiteURL = &websiteURL
	}
	return d
}

// DisplayName returns the district's name or a placeholder for prompts.
func (d *District) DisplayName() string {
	if d.Name == nil {
		return MissingNameSubstitution
	}
	return *d.Name
}
