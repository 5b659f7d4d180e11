package diff

import (
	"strings"
	"time"
)

// LineKind classifies one line of a diff
type LineKind int

const (
	LineUnchanged LineKind = iota
	LineAdded
	LineRemoved
)

// String returns the string representation of a LineKind
func (k LineKind) String() string {
	switch k {
	case LineAdded:
		return "ADDED"
	case LineRemoved:
		return "REMOVED"
	default:
		return "UNCHANGED"
	}
}

// Line is one entry of a computed diff
type Line struct {
	Kind LineKind
	Text string
}

// VersionRef identifies one side of a comparison: a stored backup ID or
// the literal "current" for a live definition
type VersionRef struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// Result is a computed line-level comparison. Results are computed on
// demand and never persisted.
type Result struct {
	ObjectName   string     `json:"object_name,omitempty"`
	Old          VersionRef `json:"old_version"`
	New          VersionRef `json:"new_version"`
	Diff         string     `json:"diff"`
	LinesAdded   int        `json:"lines_added"`
	LinesRemoved int        `json:"lines_removed"`
	Identical    bool       `json:"is_identical"`
}

// noChangesText is the rendering for byte-identical inputs
const noChangesText = "No changes detected."

// Generate computes a line-level LCS diff between two text blobs.
//
// Byte-identical inputs short-circuit to an explicit no-changes result
// without building the table. On equal table scores the backtrack
// prefers emitting an added line over a removed one; this tie-break is a
// policy choice, not an algorithmic necessity, and any substitute
// algorithm must preserve it for reproducible output.
func Generate(oldText, newText string) *Result {
	if oldText == newText {
		return &Result{Diff: noChangesText, Identical: true}
	}

	lines := computeLines(splitLines(oldText), splitLines(newText))

	result := &Result{Diff: render(lines)}
	for _, line := range lines {
		switch line.Kind {
		case LineAdded:
			result.LinesAdded++
		case LineRemoved:
			result.LinesRemoved++
		}
	}
	return result
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// computeLines builds the (m+1)x(n+1) LCS table and backtracks it into
// an ordered diff sequence
func computeLines(a, b []string) []Line {
	m, n := len(a), len(b)

	table := make([][]int, m+1)
	for i := range table {
		table[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}

	var reversed []Line
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			reversed = append(reversed, Line{Kind: LineUnchanged, Text: a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || table[i][j-1] >= table[i-1][j]):
			reversed = append(reversed, Line{Kind: LineAdded, Text: b[j-1]})
			j--
		default:
			reversed = append(reversed, Line{Kind: LineRemoved, Text: a[i-1]})
			i--
		}
	}

	lines := make([]Line, len(reversed))
	for k, line := range reversed {
		lines[len(reversed)-1-k] = line
	}
	return lines
}

// render produces the unified-style text: a two-line header, then one
// line per diff entry with a two-character prefix
func render(lines []Line) string {
	var b strings.Builder
	b.WriteString("--- old\n")
	b.WriteString("+++ new\n")

	for _, line := range lines {
		switch line.Kind {
		case LineAdded:
			b.WriteString("+ ")
		case LineRemoved:
			b.WriteString("- ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(line.Text)
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
