package namematch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var team = []string{"Nikhil J Prasad", "Kailas S S", "S Govind Krishnan", "Mukundan V S"}

var aliases = map[string]string{
	"kyla": "Kailas S S",
	"v.s.": "Mukundan V S",
	"nik":  "Nikhil J Prasad",
	"zed":  "Someone Else",
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "v s", Normalize(" V.S. "))
	assert.Equal(t, "mary jane", Normalize("Mary-Jane"))
	assert.Equal(t, "obrien", Normalize("O'Brien"))
	assert.Equal(t, "", Normalize("  "))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("John Smith", "john  smith"))
	assert.Equal(t, 0.85, Similarity("Govind", "S Govind Krishnan"))
	assert.Greater(t, Similarity("Nikhl", "Nikhil J Prasad"), DefaultThreshold)
	assert.Less(t, Similarity("Bob", "Kailas S S"), DefaultThreshold)
	assert.Equal(t, 0.0, Similarity("", "Kailas"))
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher(team, aliases, 0)

	tests := []struct {
		name   string
		input  string
		member string
		ok     bool
	}{
		{"exact", "Kailas S S", "Kailas S S", true},
		{"alias", "Kyla", "Kailas S S", true},
		{"initials alias", "V.S.", "Mukundan V S", true},
		{"first name", "govind", "S Govind Krishnan", true},
		{"typo", "Nikhl", "Nikhil J Prasad", true},
		{"stranger", "Bob", "", false},
		{"placeholder", "Unassigned", "", false},
		{"n/a", "N/A", "", false},
		{"alias outside roster", "zed", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member, _, ok := m.Match(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.member, member)
		})
	}
}

func TestMatcher_EmptyRoster(t *testing.T) {
	m := NewMatcher(nil, aliases, 0)
	assert.True(t, m.Empty())
	_, _, ok := m.Match("Kyla")
	assert.False(t, ok)
}
