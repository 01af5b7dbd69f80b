// Package ui implements the interactive review prompt used when matching
// cannot be settled automatically.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/match"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// Terminal is a match.Resolver that prompts a reviewer on the terminal.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// NewTerminalWith is the injectable form used by tests.
func NewTerminalWith(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

var _ match.Resolver = (*Terminal)(nil)

// ResolveDistrict shows the incoming school next to every school of the
// candidate district and records the reviewer's decision.
func (t *Terminal) ResolveDistrict(in *school.Incoming, d *school.District, comps []*match.RecordComparison) (match.Resolution, error) {
	fmt.Fprintf(t.out, "\n=== Possible match: district %q (id %d) ===\n", d.DisplayName(), d.ID)
	fmt.Fprintf(t.out, "Incoming school from %s: %s\n\n", in.Org.Abbreviation, in.DisplayName())

	for i, rc := range comps {
		t.printCandidate(i+1, in, rc)
	}

	for {
		fmt.Fprintln(t.out, "Options:")
		for i := range comps {
			fmt.Fprintf(t.out, "  %d - This record IS school %d\n", i+1, i+1)
		}
		fmt.Fprintln(t.out, "  d - New school in this district")
		fmt.Fprintln(t.out, "  n - Not this district")
		fmt.Fprintln(t.out, "  o - Omit this record entirely")
		fmt.Fprint(t.out, "Your decision: ")

		choice, err := t.readLine()
		if err != nil {
			return match.Resolution{}, err
		}

		switch choice {
		case "n":
			return match.Resolution{Kind: match.NoMatch}, nil
		case "o":
			return match.Resolution{Kind: match.Omit}, nil
		case "d":
			return t.resolveDistrictMatch()
		default:
			num, err := strconv.Atoi(choice)
			if err != nil || num < 1 || num > len(comps) {
				fmt.Fprintf(t.out, "Invalid choice %q. Please try again.\n", choice)
				continue
			}
			return t.resolveSchoolMatch(in, comps[num-1])
		}
	}
}

func (t *Terminal) printCandidate(n int, in *school.Incoming, rc *match.RecordComparison) {
	fmt.Fprintf(t.out, "%d. %s (id %d)\n", n, rc.Existing.DisplayName(), rc.Existing.ID)
	for _, a := range in.Org.MatchRelevantAttributes() {
		cmp, ok := rc.Get(a)
		if !ok {
			continue
		}
		fmt.Fprintf(t.out, "   %-24s %-9s  new: %-30s  existing: %s\n",
			a.Name, cmp.Level, in.Get(a).Display(), rc.Existing.Get(a).Display())
	}
	if differing := rc.DifferingAttributes(); len(differing) > 0 {
		names := make([]string, len(differing))
		for i, a := range differing {
			names[i] = a.Name
		}
		fmt.Fprintf(t.out, "   differing: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintln(t.out)
}

// resolveDistrictMatch optionally collects a corrected district name and URL.
func (t *Terminal) resolveDistrictMatch() (match.Resolution, error) {
	res := match.Resolution{Kind: match.DistrictMatch}

	fmt.Fprint(t.out, "Corrected district name (blank to keep): ")
	name, err := t.readLine()
	if err != nil {
		return match.Resolution{}, err
	}
	if name != "" {
		res.DistrictName = &name
	}

	fmt.Fprint(t.out, "Corrected district URL (blank to keep): ")
	url, err := t.readLine()
	if err != nil {
		return match.Resolution{}, err
	}
	if url != "" {
		res.DistrictURL = &url
	}
	return res, nil
}

// resolveSchoolMatch walks the reviewer through every attribute the
// comparison could not decide. A school match cannot be returned with any
// attribute still undecided.
func (t *Terminal) resolveSchoolMatch(in *school.Incoming, rc *match.RecordComparison) (match.Resolution, error) {
	for _, a := range rc.Unresolved() {
		cmp, _ := rc.Get(a)

		fmt.Fprintf(t.out, "\nAttribute %q needs a value:\n", a.Name)
		fmt.Fprintf(t.out, "  1 - new value:      %s\n", in.Get(a).Display())
		fmt.Fprintf(t.out, "  2 - existing value: %s\n", rc.Existing.Get(a).Display())
		fmt.Fprintln(t.out, "  3 - something else")

		for {
			fmt.Fprint(t.out, "Keep which? ")
			choice, err := t.readLine()
			if err != nil {
				return match.Resolution{}, err
			}
			switch choice {
			case "1":
				cmp.Resolve(match.PrefIncoming, school.Value{})
			case "2":
				cmp.Resolve(match.PrefExisting, school.Value{})
			case "3":
				fmt.Fprint(t.out, "Enter the value: ")
				raw, err := t.readLine()
				if err != nil {
					return match.Resolution{}, err
				}
				v, err := parseValue(a, raw)
				if err != nil {
					fmt.Fprintf(t.out, "Cannot read that as %s: %v\n", a.Kind, err)
					continue
				}
				cmp.Resolve(match.PrefOther, v)
			default:
				fmt.Fprintf(t.out, "Invalid choice %q. Please try again.\n", choice)
				continue
			}
			rc.Put(cmp)
			break
		}
	}
	return match.Resolution{Kind: match.SchoolMatch, Comparison: rc}, nil
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseValue reads reviewer input as a value of the attribute's kind; blank
// input means null.
func parseValue(a *school.Attribute, raw string) (school.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return school.NullValue(a.Kind), nil
	}
	switch a.Kind {
	case school.KindString, school.KindURL:
		return school.Value{Kind: a.Kind, Str: raw}, nil
	case school.KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return school.Value{}, err
		}
		return school.IntValue(n), nil
	case school.KindDouble:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return school.Value{}, err
		}
		return school.DoubleValue(f), nil
	case school.KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return school.Value{}, err
		}
		return school.BoolValue(b), nil
	case school.KindDate:
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return school.Value{}, err
		}
		return school.DateValue(d), nil
	}
	return school.Value{}, fmt.Errorf("unsupported kind %v", a.Kind)
}
