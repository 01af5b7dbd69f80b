package address

import (
	"strings"

	postal "github.com/openvenues/gopostal/parser"
	"go.uber.org/zap"
)

// Postal is an in-process Normalizer backed by libpostal. It is less exact
// than the external parser but needs no extra executable, which makes it the
// default for local runs.
type Postal struct {
	log *zap.Logger
}

func NewPostal(log *zap.Logger) *Postal {
	return &Postal{log: log}
}

var _ Normalizer = (*Postal)(nil)

// componentOrder fixes the canonical rendering order of parsed components.
var componentOrder = []string{
	"unit", "house", "house_number", "road", "suburb",
	"city", "state", "postcode",
}

func parse(addr string) map[string]string {
	out := make(map[string]string)
	for _, c := range postal.ParseAddress(addr) {
		out[c.Label] = strings.ToUpper(c.Value)
	}
	return out
}

func render(components map[string]string) *string {
	var parts []string
	for _, label := range componentOrder {
		if v := components[label]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	s := strings.Join(parts, " ")
	return &s
}

func (p *Postal) Normalize(addr *string) (*string, error) {
	if isNull(addr) {
		return nil, nil
	}
	return render(parse(*addr)), nil
}

func (p *Postal) NormalizeBulk(addrs []*string) ([]*string, error) {
	out := make([]*string, len(addrs))
	for i, a := range addrs {
		n, err := p.Normalize(a)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func (p *Postal) NormalizeCity(city, addr *string) (*string, error) {
	return p.normalizeComponent("city", city, addr)
}

func (p *Postal) NormalizeState(state, addr *string) (*string, error) {
	return p.normalizeComponent("state", state, addr)
}

// normalizeComponent prefers the component parsed from the full address and
// falls back to title-casing the bare value.
func (p *Postal) normalizeComponent(label string, value, addr *string) (*string, error) {
	if !isNull(addr) {
		if v := parse(*addr)[label]; v != "" {
			v = titleCase(v)
			return &v, nil
		}
	}
	if isNull(value) {
		return nil, nil
	}
	v := titleCase(*value)
	return &v, nil
}

func (p *Postal) Compare(incoming, existing *string) (Comparison, error) {
	if isNull(incoming) && isNull(existing) {
		return nullComparison(), nil
	}
	if isNull(incoming) || isNull(existing) {
		norm, _ := p.Normalize(existing)
		return Comparison{Match: MatchNone, Normalized: norm}, nil
	}

	in := parse(*incoming)
	ex := parse(*existing)
	norm := render(ex)

	return Comparison{Match: matchLevel(in, ex), Normalized: norm}, nil
}

func (p *Postal) CompareBulk(incoming *string, existing []*string) ([]Comparison, error) {
	out := make([]Comparison, len(existing))
	for i, e := range existing {
		c, err := p.Compare(incoming, e)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// matchLevel grades two parsed addresses: full component agreement is EXACT,
// agreement on the delivery point (house number + road, plus postcode when
// both have one) is INDICATOR, sharing a road or postcode is RELATED.
func matchLevel(in, ex map[string]string) string {
	same := func(label string) bool {
		return in[label] != "" && in[label] == ex[label]
	}
	differ := func(label string) bool {
		return in[label] != "" && ex[label] != "" && in[label] != ex[label]
	}

	allSame := len(in) == len(ex)
	for label, v := range in {
		if ex[label] != v {
			allSame = false
			break
		}
	}
	if allSame {
		return MatchExact
	}

	if same("house_number") && same("road") && !differ("postcode") && !differ("city") {
		return MatchIndicator
	}
	if same("road") || same("postcode") {
		return MatchRelated
	}
	return MatchNone
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
