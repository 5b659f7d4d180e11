package display

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"schema-vault/internal/backup"
	"schema-vault/internal/diff"
)

const defaultTerminalWidth = 120

// Formatter renders vault data for the terminal
type Formatter struct {
	colors *ColorSystem
}

// NewFormatter creates a formatter with the given color system
func NewFormatter(colors *ColorSystem) *Formatter {
	return &Formatter{colors: colors}
}

// terminalWidth returns the current terminal width, falling back to a
// default when stdout is not a terminal
func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 40 {
		return width
	}
	return defaultTerminalWidth
}

// FormatBackupList renders entries as an aligned table, newest first
func (f *Formatter) FormatBackupList(entries []backup.BackupEntry) string {
	if len(entries) == 0 {
		return f.colors.Sprint(RoleMuted, "No backups recorded.")
	}

	var b strings.Builder
	header := fmt.Sprintf("%-36s %-20s %-8s %-12s %s", "ID", "TIMESTAMP", "OP", "TYPE", "OBJECT")
	b.WriteString(f.colors.Sprint(RoleHeader, header))
	b.WriteString("\n")

	width := terminalWidth()
	for _, e := range entries {
		name := e.ObjectName
		if e.SchemaName != "" {
			name = e.SchemaName + "." + e.ObjectName
		}
		row := fmt.Sprintf("%-36s %-20s %-8s %-12s %s",
			e.ID,
			e.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			e.Operation,
			truncate(e.ObjectType, 12),
			name,
		)
		b.WriteString(truncate(row, width))
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// FormatDiff colorizes a rendered diff: added lines green, removed red,
// headers emphasized
func (f *Formatter) FormatDiff(result *diff.Result) string {
	if result == nil {
		return f.colors.Sprint(RoleMuted, "No comparison available.")
	}
	if result.Identical {
		return f.colors.Sprint(RoleMuted, result.Diff)
	}

	var b strings.Builder
	for _, line := range strings.Split(result.Diff, "\n") {
		switch {
		case strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ "):
			b.WriteString(f.colors.Sprint(RoleEmphasis, line))
		case strings.HasPrefix(line, "+ "):
			b.WriteString(f.colors.Sprint(RoleAdded, line))
		case strings.HasPrefix(line, "- "):
			b.WriteString(f.colors.Sprint(RoleRemoved, line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(diff.ChangeSummary(result))

	return b.String()
}

// FormatStats renders vault statistics
func (f *Formatter) FormatStats(stats backup.Stats) string {
	var b strings.Builder

	b.WriteString(f.colors.Sprint(RoleHeader, "Vault statistics"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Total backups : %d\n", stats.TotalBackups))
	b.WriteString(fmt.Sprintf("  Total size    : %s\n", formatBytes(stats.TotalBytes)))

	if stats.Oldest != nil {
		b.WriteString(fmt.Sprintf("  Oldest        : %s\n", stats.Oldest.UTC().Format(time.RFC3339)))
	}
	if stats.Newest != nil {
		b.WriteString(fmt.Sprintf("  Newest        : %s\n", stats.Newest.UTC().Format(time.RFC3339)))
	}

	if len(stats.ByCategory) > 0 {
		b.WriteString(f.colors.Sprint(RoleEmphasis, "  By category:"))
		b.WriteString("\n")
		for _, key := range sortedKeys(stats.ByCategory) {
			b.WriteString(fmt.Sprintf("    %-12s %d\n", key, stats.ByCategory[key]))
		}
	}

	if len(stats.ByOperation) > 0 {
		b.WriteString(f.colors.Sprint(RoleEmphasis, "  By operation:"))
		b.WriteString("\n")
		for _, key := range sortedKeys(stats.ByOperation) {
			b.WriteString(fmt.Sprintf("    %-12s %d\n", key, stats.ByOperation[key]))
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
