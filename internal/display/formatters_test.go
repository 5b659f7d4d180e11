package display

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-vault/internal/backup"
	"schema-vault/internal/diff"
)

func newPlainFormatter() *Formatter {
	return NewFormatter(NewColorSystem(true))
}

func TestFormatBackupListEmpty(t *testing.T) {
	out := newPlainFormatter().FormatBackupList(nil)
	assert.Equal(t, "No backups recorded.", out)
}

func TestFormatBackupList(t *testing.T) {
	entries := []backup.BackupEntry{
		{
			ID:         "backup-20240315-093045-a1b2c3d4",
			Timestamp:  time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC),
			Operation:  backup.OperationAlter,
			ObjectType: "PROCEDURE",
			ObjectName: "usp_GetOrders",
			SchemaName: "dbo",
		},
		{
			ID:         "backup-20240314-120000-e5f6a7b8",
			Timestamp:  time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC),
			Operation:  backup.OperationDrop,
			ObjectType: "VIEW",
			ObjectName: "vw_Sales",
		},
	}

	out := newPlainFormatter().FormatBackupList(entries)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "OBJECT")
	assert.Contains(t, lines[1], "backup-20240315-093045-a1b2c3d4")
	assert.Contains(t, lines[1], "2024-03-15 09:30:45")
	assert.Contains(t, lines[1], "dbo.usp_GetOrders")
	assert.Contains(t, lines[2], "DROP")
	assert.Contains(t, lines[2], "vw_Sales")
}

func TestFormatDiff(t *testing.T) {
	result := diff.Generate("line1\nline2", "line1\nlineX")
	result.ObjectName = "usp_X"
	result.Old = diff.VersionRef{ID: "backup-old"}
	result.New = diff.VersionRef{ID: "backup-new"}

	out := newPlainFormatter().FormatDiff(result)
	assert.Contains(t, out, "--- old")
	assert.Contains(t, out, "- line2")
	assert.Contains(t, out, "+ lineX")
	assert.Contains(t, out, "usp_X: 1 line(s) added, 1 line(s) removed (backup-old -> backup-new).")
}

func TestFormatDiffIdentical(t *testing.T) {
	result := diff.Generate("same", "same")
	out := newPlainFormatter().FormatDiff(result)
	assert.Equal(t, "No changes detected.", out)
}

func TestFormatDiffNil(t *testing.T) {
	assert.Equal(t, "No comparison available.", newPlainFormatter().FormatDiff(nil))
}

func TestFormatStats(t *testing.T) {
	oldest := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	stats := backup.Stats{
		TotalBackups: 12,
		ByCategory:   map[string]int{"procedures": 8, "views": 4},
		ByOperation:  map[string]int{"ALTER": 10, "DROP": 2},
		Oldest:       &oldest,
		Newest:       &newest,
		TotalBytes:   4096,
	}

	out := newPlainFormatter().FormatStats(stats)
	assert.Contains(t, out, "Total backups : 12")
	assert.Contains(t, out, "4.0 KiB")
	assert.Contains(t, out, "2024-01-01T00:00:00Z")
	assert.Contains(t, out, "procedures")
	assert.Contains(t, out, "ALTER")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "long st...", truncate("long string here", 10))
	assert.Equal(t, "abc", truncate("abc", 3))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KiB", formatBytes(1024))
	assert.Equal(t, "1.5 MiB", formatBytes(1572864))
}

func TestColorSystemDisabled(t *testing.T) {
	cs := NewColorSystem(true)
	assert.False(t, cs.Enabled())
	assert.Equal(t, "plain", cs.Sprint(RoleAdded, "plain"))
	assert.Equal(t, "x=1", cs.Sprintf(RoleError, "x=%d", 1))
}
