package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIdentical(t *testing.T) {
	result := Generate("line1\nline2", "line1\nline2")

	assert.True(t, result.Identical)
	assert.Equal(t, "No changes detected.", result.Diff)
	assert.Zero(t, result.LinesAdded)
	assert.Zero(t, result.LinesRemoved)
}

func TestGenerateSingleLineChange(t *testing.T) {
	result := Generate("line1\nline2\nline3", "line1\nlineX\nline3")

	require.False(t, result.Identical)
	assert.Equal(t, 1, result.LinesAdded)
	assert.Equal(t, 1, result.LinesRemoved)

	want := strings.Join([]string{
		"--- old",
		"+++ new",
		"  line1",
		"- line2",
		"+ lineX",
		"  line3",
	}, "\n")
	assert.Equal(t, want, result.Diff)
}

func TestGenerateAdditionsOnly(t *testing.T) {
	result := Generate("line1", "line1\nline2\nline3")

	assert.Equal(t, 2, result.LinesAdded)
	assert.Zero(t, result.LinesRemoved)
	assert.Contains(t, result.Diff, "+ line2")
	assert.Contains(t, result.Diff, "+ line3")
}

func TestGenerateRemovalsOnly(t *testing.T) {
	result := Generate("line1\nline2\nline3", "line3")

	assert.Zero(t, result.LinesAdded)
	assert.Equal(t, 2, result.LinesRemoved)
	assert.Contains(t, result.Diff, "- line1")
	assert.Contains(t, result.Diff, "- line2")
	assert.Contains(t, result.Diff, "  line3")
}

func TestGenerateCompleteRewrite(t *testing.T) {
	result := Generate("alpha\nbeta", "gamma\ndelta")

	assert.Equal(t, 2, result.LinesAdded)
	assert.Equal(t, 2, result.LinesRemoved)
}

func TestGenerateWhitespaceOnlyDifference(t *testing.T) {
	// Trailing spaces matter: the comparison is exact per line.
	result := Generate("SELECT 1", "SELECT 1 ")

	require.False(t, result.Identical)
	assert.Equal(t, 1, result.LinesAdded)
	assert.Equal(t, 1, result.LinesRemoved)
}

func TestGenerateEmptyAgainstContent(t *testing.T) {
	result := Generate("", "line1\nline2")

	require.False(t, result.Identical)
	assert.Equal(t, 2, result.LinesAdded)
	// Splitting "" yields one empty line, which is removed.
	assert.Equal(t, 1, result.LinesRemoved)
}

func TestGenerateSymmetricCounts(t *testing.T) {
	// Reversing the direction swaps added and removed counts.
	pairs := [][2]string{
		{"line1\nline2\nline3", "line1\nlineX\nline3"},
		{"alpha\nbeta", "gamma\ndelta"},
		{"one", "one\ntwo\nthree"},
		{"", "content"},
	}

	for _, pair := range pairs {
		forward := Generate(pair[0], pair[1])
		backward := Generate(pair[1], pair[0])
		assert.Equal(t, forward.LinesAdded, backward.LinesRemoved)
		assert.Equal(t, forward.LinesRemoved, backward.LinesAdded)
	}
}

func TestGenerateStableOutput(t *testing.T) {
	a := Generate("one\ntwo\nthree", "one\nthree\nfour")
	b := Generate("one\ntwo\nthree", "one\nthree\nfour")

	assert.Equal(t, a.Diff, b.Diff)
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "ADDED", LineAdded.String())
	assert.Equal(t, "REMOVED", LineRemoved.String())
	assert.Equal(t, "UNCHANGED", LineUnchanged.String())
}
