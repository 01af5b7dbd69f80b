// Package grade parses free-form grade-range text ("PreK - 8th grade",
// "K thru 12", "elementary") into a canonical ordered set of grade levels and
// renders that set back to a single normal form.
package grade

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Level is one grade level a school may offer. The declaration order is the
// natural grade order and drives range expansion and sorting.
type Level int

const (
	Nursery Level = iota
	PreK
	VPK
	TK
	K
	First
	Second
	Third
	Fourth
	Fifth
	Sixth
	Seventh
	Eighth
	Ninth
	Tenth
	Eleventh
	Twelfth
	HigherEd
)

type levelInfo struct {
	// standard levels participate in range expansion; the others only ever
	// appear as explicit mentions or range endpoints.
	standard bool

	// name is the canonical rendering of the level on its own; rangeName is
	// the shorter form used as a range endpoint ("1" rather than "1st").
	name      string
	rangeName string

	aliases []string
}

var levels = map[Level]levelInfo{
	Nursery: {false, "Nursery School", "Nursery School",
		[]string{"nursery school", "nursery"}},
	PreK: {true, "PreK", "PreK",
		[]string{"pre-kindergarten", "prekindergarten", "pre kindergarten",
			"preschool", "pre-school", "pre-k", "prek", "pres", "pk", "p",
			"jr. k", "jr.k", "jr-k", "jrk", "jk"}},
	VPK: {false, "VPK", "VPK",
		[]string{"voluntary pre-kindergarten", "voluntary prekindergarten", "vpk"}},
	TK: {false, "TK", "TK",
		[]string{"transitional kindergarten", "tk"}},
	K: {true, "K", "K",
		[]string{"kindergarten", "kinder", "k"}},
	First:   {true, "1st", "1", []string{"first", "1st", "1"}},
	Second:  {true, "2nd", "2", []string{"second", "2nd", "2"}},
	Third:   {true, "3rd", "3", []string{"third", "3rd", "3"}},
	Fourth:  {true, "4th", "4", []string{"fourth", "4th", "4"}},
	Fifth:   {true, "5th", "5", []string{"fifth", "5th", "5"}},
	Sixth:   {true, "6th", "6", []string{"sixth", "6th", "6"}},
	Seventh: {true, "7th", "7", []string{"seventh", "7th", "7"}},
	Eighth:  {true, "8th", "8", []string{"eighth", "8th", "8"}},
	Ninth: {true, "9th", "9",
		[]string{"freshmen", "freshman", "ninth", "9th", "9"}},
	Tenth: {true, "10th", "10",
		[]string{"sophomores", "sophomore", "tenth", "10th", "10"}},
	Eleventh: {true, "11th", "11",
		[]string{"juniors", "junior", "eleventh", "jun", "11th", "11", "jr"}},
	Twelfth: {true, "12th", "12",
		[]string{"seniors", "senior", "twelfth", "sen", "12th", "12", "sr"}},
	HigherEd: {false, "Higher Ed", "Higher Ed",
		[]string{"higher education", "post-secondary", "postsecondary",
			"higher ed", "university", "college"}},
}

// Named spans of standard grades that appear in source data as single words.
var spans = map[string][]Level{
	"elementary":    levelSpan(K, Fifth),
	"elem":          levelSpan(K, Fifth),
	"middle school": levelSpan(Sixth, Eighth),
	"middle":        levelSpan(Sixth, Eighth),
	"junior high":   levelSpan(Sixth, Eighth),
	"jr high":       levelSpan(Sixth, Eighth),
	"jrh":           levelSpan(Sixth, Eighth),
	"jh":            levelSpan(Sixth, Eighth),
	"high school":   levelSpan(Ninth, Twelfth),
	"high":          levelSpan(Ninth, Twelfth),
	"hs":            levelSpan(Ninth, Twelfth),
	"secondary":     levelSpan(Sixth, Twelfth),
}

func levelSpan(from, to Level) []Level {
	var out []Level
	for l := from; l <= to; l++ {
		if levels[l].standard {
			out = append(out, l)
		}
	}
	return out
}

// alias maps one recognizable token to the levels it denotes. All aliases are
// matched longest-first so "preschool" wins over "p" and "high school" over
// "high".
type alias struct {
	text   string
	levels []Level
}

var aliases = func() []alias {
	var out []alias
	for l, info := range levels {
		for _, a := range info.aliases {
			out = append(out, alias{a, []Level{l}})
		}
	}
	for text, ls := range spans {
		out = append(out, alias{text, ls})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].text) != len(out[j].text) {
			return len(out[i].text) > len(out[j].text)
		}
		return out[i].text < out[j].text
	})
	return out
}()

// delimiters separate independent grade mentions and cancel a pending range.
var delimiters = []string{"and", "or", ",", ".", ";", ":", "/", "\\", "+", "&"}

// rangeIndicators join two grade mentions into an inclusive range. "to" must
// be followed by a space so it cannot eat the front of another token.
var rangeIndicators = []string{"through", "thru", "to ", "-"}

// dummyWords carry no grade information and are skipped outright.
var dummyWords = []string{"grades", "grade", "school", "grds", "grd"}

var (
	meaningfulRx    = regexp.MustCompile(`[a-z0-9]`)
	expansionNoteRx = regexp.MustCompile(`\s*\(exp[^)]*\)\s*$`)
)

// Standard reports whether the level participates in range expansion.
func (l Level) Standard() bool { return levels[l].standard }

// Name returns the canonical rendering of the level on its own.
func (l Level) Name() string { return levels[l].name }

func (l Level) String() string { return levels[l].name }

// Identify parses free-form grade text into an ordered, de-duplicated set of
// levels. Unrecognizable tokens are logged and skipped; text with no
// recognizable grades yields an empty slice.
func Identify(text string, log *zap.Logger) []Level {
	found := make(map[Level]bool)

	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.NewReplacer("–", "-", "—", "-", "_", "-").Replace(s)
	s = expansionNoteRx.ReplaceAllString(s, "")

	inRange := false
	last := Level(-1)

scan:
	for meaningfulRx.MatchString(s) {
		s = strings.TrimLeft(s, " \t")

		for _, d := range delimiters {
			if strings.HasPrefix(s, d) {
				s = s[len(d):]
				inRange = false
				continue scan
			}
		}
		for _, r := range rangeIndicators {
			if strings.HasPrefix(s, r) {
				s = s[len(r):]
				inRange = true
				continue scan
			}
		}
		for _, w := range dummyWords {
			if strings.HasPrefix(s, w) {
				s = s[len(w):]
				continue scan
			}
		}

		for _, a := range aliases {
			if !strings.HasPrefix(s, a.text) {
				continue
			}
			s = s[len(a.text):]

			lo := a.levels[0]
			for _, l := range a.levels {
				if l < lo {
					lo = l
				}
			}
			if inRange && last >= 0 {
				for l := last + 1; l < lo; l++ {
					if levels[l].standard {
						found[l] = true
					}
				}
			}
			for _, l := range a.levels {
				found[l] = true
				if l > last {
					last = l
				}
			}
			inRange = false
			continue scan
		}

		// Unrecognized token: drop the maximal run of same-class characters
		// so the scan can resume at the next plausible boundary.
		token := takeRun(s)
		log.Warn("unrecognized grade token",
			zap.String("token", token),
			zap.String("text", text),
		)
		s = s[len(token):]
	}

	out := make([]Level, 0, len(found))
	for l := range found {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func takeRun(s string) string {
	if s == "" {
		return s
	}
	class := charClass(rune(s[0]))
	for i := 1; i < len(s); i++ {
		if charClass(rune(s[i])) != class {
			return s[:i]
		}
	}
	return s
}

func charClass(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return 0
	case r >= 'a' && r <= 'z':
		return 1
	default:
		return 2
	}
}

// Normalize renders an ordered level set to its canonical text form.
// Consecutive runs of three or more standard levels collapse to an
// en-dash range ("K–5"); everything else is listed individually.
func Normalize(ls []Level) string {
	if len(ls) == 0 {
		return ""
	}

	sorted := append([]Level(nil), ls...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// Separate standard levels (which may form runs) from the rest.
	var parts []string
	var run []Level

	flush := func() {
		switch {
		case len(run) >= 3:
			parts = append(parts,
				levels[run[0]].rangeName+"–"+levels[run[len(run)-1]].rangeName)
		default:
			for _, l := range run {
				parts = append(parts, levels[l].name)
			}
		}
		run = nil
	}

	for _, l := range sorted {
		if !levels[l].standard {
			flush()
			parts = append(parts, levels[l].name)
			continue
		}
		if len(run) > 0 && nextStandard(run[len(run)-1]) != l {
			flush()
		}
		run = append(run, l)
	}
	flush()

	return strings.Join(parts, ", ")
}

// nextStandard returns the standard level immediately after l, skipping the
// non-standard levels that sit between PreK and K. Returns -1 past Twelfth.
func nextStandard(l Level) Level {
	for n := l + 1; n <= Twelfth; n++ {
		if levels[n].standard {
			return n
		}
	}
	return -1
}

// Equal reports whether two level lists are element-wise identical.
func Equal(a, b []Level) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
