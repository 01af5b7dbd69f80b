// Package address talks to the address normalization collaborator. Addresses
// are too irregular to compare as strings, so normalization and comparison
// are delegated either to an external parser process (Client) or to
// libpostal in-process (Postal).
package address

// Match levels reported by the collaborator for a pair of addresses.
const (
	MatchExact     = "EXACT"
	MatchIndicator = "INDICATOR"
	MatchRelated   = "RELATED"
	MatchNone      = "NONE"
)

// Comparison is the collaborator's verdict on a pair of addresses.
// Normalized is the canonical form of the existing record's address, nil when
// it normalizes to nothing. Info and Error carry diagnostics only.
type Comparison struct {
	Match      string  `json:"match"`
	Normalized *string `json:"normalized"`
	Info       *string `json:"info,omitempty"`
	Error      *string `json:"error,omitempty"`
}

// Normalized is the collaborator's canonical form of one address, with its
// parsed components.
type Normalized struct {
	Normalized   *string `json:"normalized"`
	AddressLine1 *string `json:"address_line_1,omitempty"`
	AddressLine2 *string `json:"address_line_2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	Error        *string `json:"error,omitempty"`
}

// Normalizer is the matching engine's view of the collaborator.
type Normalizer interface {
	// Normalize canonicalizes one address; nil in, nil out.
	Normalize(addr *string) (*string, error)

	// NormalizeBulk canonicalizes many addresses, preserving order and
	// length.
	NormalizeBulk(addrs []*string) ([]*string, error)

	// NormalizeCity and NormalizeState canonicalize one component, with the
	// full address available for context.
	NormalizeCity(city, addr *string) (*string, error)
	NormalizeState(state, addr *string) (*string, error)

	// Compare judges one address pair.
	Compare(incoming, existing *string) (Comparison, error)

	// CompareBulk judges one incoming address against many existing ones.
	// The result always has exactly one entry per existing address, in
	// order.
	CompareBulk(incoming *string, existing []*string) ([]Comparison, error)
}

// nullComparison is the verdict when both addresses are absent: trivially the
// same, but carrying no information.
func nullComparison() Comparison {
	return Comparison{Match: MatchExact, Normalized: nil}
}

// noneComparison degrades one pair to a non-match, preserving the existing
// side's raw value as its normalized form so preference resolution still has
// something to show.
func noneComparison(existing *string) Comparison {
	return Comparison{Match: MatchNone, Normalized: existing}
}

func isNull(s *string) bool {
	return s == nil || *s == ""
}
