// Package correction holds manually curated match corrections: standing
// decisions recorded by reviewers so the same judgment call is never prompted
// twice.
package correction

import (
	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/urlutil"
)

// RuleType selects the predicate a rule applies.
type RuleType string

// RuleWebsiteURLDomainMatches passes when the rule's value equals the domain
// of both the district's website and the incoming school's website.
const RuleWebsiteURLDomainMatches RuleType = "WEBSITE_URL_DOMAIN_MATCHES"

// Rule is one predicate of a district-match correction.
type Rule struct {
	Type  RuleType `json:"type"`
	Value string   `json:"value"`
}

// Passes evaluates the rule for an incoming school and a candidate district.
// Unknown rule types never pass.
func (r Rule) Passes(in *school.Incoming, d *school.District, log *zap.Logger) bool {
	switch r.Type {
	case RuleWebsiteURLDomainMatches:
		if r.Value == "" {
			log.Warn("district match correction rule has no domain")
			return false
		}
		var districtURL string
		if d.WebsiteURL != nil {
			districtURL = *d.WebsiteURL
		}
		return r.Value == urlutil.Domain(districtURL) &&
			r.Value == urlutil.Domain(in.Str(school.WebsiteURL))
	}
	log.Warn("unknown district match correction rule type",
		zap.String("type", string(r.Type)))
	return false
}

// DistrictMatch is a standing decision that schools satisfying all of its
// rules belong to a particular district, optionally correcting the district's
// recorded name and URL along the way.
type DistrictMatch struct {
	Rules []Rule `json:"rules"`

	NewName    *string `json:"new_name,omitempty"`
	UseNewName bool    `json:"use_new_name,omitempty"`
	NewURL     *string `json:"new_url,omitempty"`
	UseNewURL  bool    `json:"use_new_url,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Matches reports whether every rule passes for the given pair. A correction
// with no rules matches nothing.
func (c *DistrictMatch) Matches(in *school.Incoming, d *school.District, log *zap.Logger) bool {
	if len(c.Rules) == 0 {
		return false
	}
	for _, r := range c.Rules {
		if !r.Passes(in, d, log) {
			return false
		}
	}
	return true
}

// DistrictName returns the corrected district name, or nil when the
// correction leaves it alone.
func (c *DistrictMatch) DistrictName() *string {
	if c.UseNewName {
		return c.NewName
	}
	return nil
}

// DistrictURL returns the corrected district URL, or nil when the correction
// leaves it alone.
func (c *DistrictMatch) DistrictURL() *string {
	if c.UseNewURL {
		return c.NewURL
	}
	return nil
}

// Manager holds the loaded corrections and answers lookups during matching.
type Manager struct {
	districtMatches []*DistrictMatch
	log             *zap.Logger
}

func NewManager(districtMatches []*DistrictMatch, log *zap.Logger) *Manager {
	return &Manager{districtMatches: districtMatches, log: log}
}

// FindDistrictMatch returns the first correction matching the pair, or nil.
func (m *Manager) FindDistrictMatch(in *school.Incoming, d *school.District) *DistrictMatch {
	for _, c := range m.districtMatches {
		if c.Matches(in, d, m.log) {
			return c
		}
	}
	return nil
}
