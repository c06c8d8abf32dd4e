// Package namematch maps the loosely spelled names found in transcripts
// ("V.S.", "Kyla", "john") onto known people.
package namematch

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the minimum similarity accepted as a match
const DefaultThreshold = 0.6

var (
	punctuation = regexp.MustCompile(`[.,;:\-_/\\]+`)
	nonAlnum    = regexp.MustCompile(`[^a-z0-9\s]`)
	spaces      = regexp.MustCompile(`\s+`)

	unassigned = map[string]struct{}{"": {}, "unassigned": {}, "none": {}, "null": {}, "n a": {}, "na": {}}
)

// Normalize lowercases name, turns punctuation into spaces and collapses
// whitespace, so "V.S." and "v s" compare equal.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = punctuation.ReplaceAllString(n, " ")
	n = nonAlnum.ReplaceAllString(n, "")
	n = spaces.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// Similarity scores two names between 0 and 1
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.85
	}

	score := ratio(na, nb)

	pa, pb := strings.Fields(na), strings.Fields(nb)
	if common := commonParts(pa, pb); common > 0 {
		score = max(score, 0.5+float64(common)/float64(max(len(pa), len(pb)))*0.3)
	}

	best := 0.0
	for _, x := range pa {
		for _, y := range pb {
			// single letters are initials and say little on their own
			if len(x) > 1 && len(y) > 1 {
				best = max(best, ratio(x, y))
			}
		}
	}
	if best > 0.8 {
		score = max(score, best*0.9)
	}
	return score
}

func ratio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func commonParts(a, b []string) int {
	seen := make(map[string]struct{}, len(a))
	for _, p := range a {
		seen[p] = struct{}{}
	}
	n := 0
	for _, p := range uniq(b) {
		if _, ok := seen[p]; ok {
			n++
		}
	}
	return n
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Matcher resolves names against a fixed roster with optional aliases
type Matcher struct {
	members   []string
	aliases   map[string]string
	threshold float64
}

// NewMatcher builds a matcher. aliases maps an alias to a roster member;
// aliases naming someone outside the roster are ignored.
func NewMatcher(members []string, aliases map[string]string, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	m := &Matcher{aliases: make(map[string]string), threshold: threshold}
	roster := make(map[string]string)
	for _, name := range members {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m.members = append(m.members, name)
		roster[Normalize(name)] = name
	}
	for alias, member := range aliases {
		if canonical, ok := roster[Normalize(member)]; ok {
			m.aliases[Normalize(alias)] = canonical
		}
	}
	return m
}

// Empty reports whether the matcher has no roster
func (m *Matcher) Empty() bool {
	return m == nil || len(m.members) == 0
}

// Match returns the roster member closest to name. ok is false when name is
// a placeholder or nobody scores at least the threshold.
func (m *Matcher) Match(name string) (member string, score float64, ok bool) {
	in := Normalize(name)
	if _, skip := unassigned[in]; skip || m.Empty() {
		return "", 0, false
	}
	if canonical, found := m.aliases[in]; found {
		return canonical, 1, true
	}

	for _, candidate := range m.members {
		s := Similarity(in, candidate)
		for alias, canonical := range m.aliases {
			if canonical == candidate {
				s = max(s, Similarity(in, alias))
			}
		}
		if s > score {
			member, score = candidate, s
		}
	}
	if score < m.threshold {
		return "", score, false
	}
	return member, score, true
}
