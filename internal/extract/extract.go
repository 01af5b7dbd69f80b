// Package extract feeds incoming school records into the pipeline. Fetching
// and scraping the organizations' listings happens outside this system; this
// package reads the already-extracted records.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// Source produces the incoming schools of one extraction run.
type Source interface {
	Schools() ([]*school.Incoming, error)
}

// file is the on-disk layout of an extraction: one organization and its raw
// records, keyed by attribute name.
type file struct {
	Organization string                       `json:"organization"`
	Schools      []map[string]json.RawMessage `json:"schools"`
}

// JSONFile reads incoming schools from an extraction file.
type JSONFile struct {
	Path string
	Log  *zap.Logger
}

var _ Source = (*JSONFile)(nil)

func (j *JSONFile) Schools() ([]*school.Incoming, error) {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return nil, fmt.Errorf("reading extraction file: %w", err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing extraction file %s: %w", j.Path, err)
	}

	org, ok := organizationByName(f.Organization)
	if !ok {
		return nil, fmt.Errorf("unknown organization %q in %s", f.Organization, j.Path)
	}

	out := make([]*school.Incoming, 0, len(f.Schools))
	for i, raw := range f.Schools {
		in := school.NewIncoming(org)
		for name, rawValue := range raw {
			a, ok := school.AttributeByName(name)
			if !ok {
				j.Log.Warn("skipping unknown attribute",
					zap.String("attribute", name), zap.Int("record", i))
				continue
			}
			v, err := decodeValue(a, rawValue)
			if err != nil {
				j.Log.Warn("skipping unreadable attribute value",
					zap.String("attribute", name), zap.Int("record", i),
					zap.Error(err))
				continue
			}
			in.Put(a, v)
		}
		out = append(out, in)
	}
	return out, nil
}

func organizationByName(name string) (*school.Organization, bool) {
	for _, o := range school.Organizations() {
		if o.Abbreviation == name || o.Name == name {
			return o, true
		}
	}
	return nil, false
}

func decodeValue(a *school.Attribute, raw json.RawMessage) (school.Value, error) {
	if string(raw) == "null" {
		return school.NullValue(a.Kind), nil
	}
	switch a.Kind {
	case school.KindString, school.KindURL:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return school.Value{}, err
		}
		return school.Value{Kind: a.Kind, Str: s}, nil
	case school.KindInt:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return school.Value{}, err
		}
		return school.IntValue(n), nil
	case school.KindDouble:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return school.Value{}, err
		}
		return school.DoubleValue(f), nil
	case school.KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return school.Value{}, err
		}
		return school.BoolValue(b), nil
	case school.KindDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return school.Value{}, err
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return school.Value{}, err
		}
		return school.DateValue(t), nil
	}
	return school.Value{}, fmt.Errorf("unsupported kind %v", a.Kind)
}
