package backup

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryForType(t *testing.T) {
	tests := []struct {
		objectType string
		want       string
	}{
		{"PROCEDURE", CategoryProcedures},
		{"SQL_STORED_PROCEDURE", CategoryProcedures},
		{"function", CategoryFunctions},
		{"VIEW", CategoryViews},
		{"trigger", CategoryTriggers},
		{"TABLE", CategoryTables},
		{"user table", CategoryTables},
		{"SEQUENCE", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.objectType, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryForType(tt.objectType))
		})
	}
}

func TestSanitizeObjectName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "usp_GetOrders", want: "usp_GetOrders"},
		{name: "spaces and dots", in: "dbo.my proc", want: "dbo_my_proc"},
		{name: "path attempt", in: "../../etc/passwd", want: "etc_passwd"},
		{name: "unicode", in: "bestellungen_übersicht", want: "bestellungen_bersicht"},
		{name: "only junk", in: "///", want: "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeObjectName(tt.in))
		})
	}
}

func TestBackupFilename(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	assert.Equal(t, "usp_GetOrders_20240315-093045.sql", BackupFilename("usp_GetOrders", ts))
}

func TestFormatBackupContent(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	content := FormatBackupContent("usp_GetOrders", "PROCEDURE", "dbo",
		"CREATE PROCEDURE usp_GetOrders AS SELECT 1", OperationAlter, "orders_db", ts)

	assert.True(t, strings.HasPrefix(content, ContentBOM), "content must start with the BOM")
	assert.Contains(t, content, "Operation : ALTER")
	assert.Contains(t, content, "Object    : PROCEDURE dbo.usp_GetOrders")
	assert.Contains(t, content, "Database  : orders_db")
	assert.Contains(t, content, "Captured  : 2024-03-15T09:30:45Z")
	assert.True(t, strings.HasSuffix(content, "CREATE PROCEDURE usp_GetOrders AS SELECT 1"))
}

func TestExtractDefinition_RoundTrip(t *testing.T) {
	definitions := []string{
		"CREATE PROCEDURE usp_GetOrders AS SELECT 1",
		"CREATE VIEW vw_Sales AS\nSELECT *\nFROM sales",
		"\nCREATE TABLE t (id INT)",
		"line without any SQL keyword",
		"",
	}

	for _, def := range definitions {
		content := FormatBackupContent("obj", "TABLE", "", def, OperationCreate, "db", time.Now())
		assert.Equal(t, def, ExtractDefinition(content))
	}
}

func TestExtractDefinition_PatternFallback(t *testing.T) {
	// Content from an older header format without the delimiter.
	raw := "-- captured by some previous version\n-- object: usp_Foo\nCREATE PROCEDURE usp_Foo AS SELECT 1"
	assert.Equal(t, "CREATE PROCEDURE usp_Foo AS SELECT 1", ExtractDefinition(raw))

	withDefiner := "-- legacy header\nCREATE DEFINER=`root`@`%` TRIGGER trg_audit BEFORE UPDATE ON t FOR EACH ROW SET @x = 1"
	extracted := ExtractDefinition(withDefiner)
	assert.True(t, strings.HasPrefix(extracted, "CREATE DEFINER"))
}

func TestExtractDefinition_NoHeaderNoPattern(t *testing.T) {
	raw := "just some text\nwith no recognizable structure"
	assert.Equal(t, raw, ExtractDefinition(raw))

	// The BOM is still stripped.
	assert.Equal(t, raw, ExtractDefinition(ContentBOM+raw))
}

func TestStripBOM(t *testing.T) {
	assert.Equal(t, "hello", StripBOM(ContentBOM+"hello"))
	assert.Equal(t, "hello", StripBOM("hello"))
	assert.Equal(t, "", StripBOM(ContentBOM))
}

func TestContentDigest(t *testing.T) {
	a := ContentDigest("some content")
	b := ContentDigest("some content")
	c := ContentDigest("other content")

	require.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
