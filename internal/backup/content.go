package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ContentBOM is prefixed to every content file for external tool compatibility
const ContentBOM = "\uFEFF"

// headerDelimiter opens and closes the provenance block. The exact string is
// format-stable: historical content files are stripped by locating it, so it
// must not change across releases.
const headerDelimiter = "-- ============================================================"

// Category subdirectories under the vault root
const (
	CategoryProcedures = "procedures"
	CategoryFunctions  = "functions"
	CategoryViews      = "views"
	CategoryTriggers   = "triggers"
	CategoryTables     = "tables"
	CategoryOther      = "other"
)

// Categories lists all category subdirectories in layout order
var Categories = []string{
	CategoryProcedures,
	CategoryFunctions,
	CategoryViews,
	CategoryTriggers,
	CategoryTables,
	CategoryOther,
}

var (
	filenameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

	// definitionStart locates the first CREATE/ALTER statement of a known
	// object kind. Fallback tier for header stripping; tolerates header
	// formats this version no longer writes.
	definitionStart = regexp.MustCompile(`(?im)^\s*(?:CREATE|ALTER)\s+(?:OR\s+REPLACE\s+)?(?:DEFINER\s*=\s*\S+\s+)?(?:PROCEDURE|FUNCTION|VIEW|TRIGGER|TABLE)\b`)
)

// CategoryForType maps an object type to its category subdirectory.
// Matching is case-insensitive and substring-based so that variants
// like "SQL_STORED_PROCEDURE" or "user table" still land in the
// expected directory.
func CategoryForType(objectType string) string {
	t := strings.ToLower(objectType)
	switch {
	case strings.Contains(t, "procedure"):
		return CategoryProcedures
	case strings.Contains(t, "function"):
		return CategoryFunctions
	case strings.Contains(t, "view"):
		return CategoryViews
	case strings.Contains(t, "trigger"):
		return CategoryTriggers
	case strings.Contains(t, "table"):
		return CategoryTables
	default:
		return CategoryOther
	}
}

// SanitizeObjectName reduces an object name to filesystem-safe characters
func SanitizeObjectName(name string) string {
	sanitized := filenameSanitizer.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "object"
	}
	return sanitized
}

// BackupFilename derives the content file name from the object name and a
// second-granularity timestamp
func BackupFilename(objectName string, ts time.Time) string {
	return fmt.Sprintf("%s_%s.sql", SanitizeObjectName(objectName), ts.UTC().Format("20060102-150405"))
}

// FormatBackupContent renders the stored blob: BOM, delimited provenance
// header, blank line, then the raw definition unchanged.
func FormatBackupContent(objectName, objectType, schemaName, definition string, operation Operation, database string, ts time.Time) string {
	var b strings.Builder

	qualified := objectName
	if schemaName != "" {
		qualified = schemaName + "." + objectName
	}

	b.WriteString(ContentBOM)
	b.WriteString(headerDelimiter + "\n")
	b.WriteString("-- schema-vault backup\n")
	b.WriteString(fmt.Sprintf("-- Operation : %s\n", operation))
	b.WriteString(fmt.Sprintf("-- Object    : %s %s\n", strings.ToUpper(objectType), qualified))
	if database != "" {
		b.WriteString(fmt.Sprintf("-- Database  : %s\n", database))
	}
	b.WriteString(fmt.Sprintf("-- Captured  : %s\n", ts.UTC().Format(time.RFC3339)))
	b.WriteString(headerDelimiter)
	b.WriteString("\n\n")
	b.WriteString(definition)

	return b.String()
}

// ExtractDefinition strips the provenance header from stored content.
// Two explicit tiers: first the exact closing delimiter, then a pattern
// scan for the first CREATE/ALTER statement of a known kind. Content
// with neither is returned unchanged (minus the BOM).
func ExtractDefinition(raw string) string {
	text := StripBOM(raw)

	// Tier 1: exact delimiter match.
	if open := strings.Index(text, headerDelimiter); open >= 0 {
		rest := text[open+len(headerDelimiter):]
		if closing := strings.Index(rest, headerDelimiter); closing >= 0 {
			body := rest[closing+len(headerDelimiter):]
			// One newline ends the delimiter line, one separates it from
			// the definition. Anything beyond that belongs to the content.
			body = strings.TrimPrefix(body, "\n")
			body = strings.TrimPrefix(body, "\n")
			return body
		}
	}

	// Tier 2: pattern scan.
	if loc := definitionStart.FindStringIndex(text); loc != nil {
		return text[loc[0]:]
	}

	return text
}

// StripBOM removes a leading byte-order marker if present
func StripBOM(s string) string {
	return strings.TrimPrefix(s, ContentBOM)
}

// ContentDigest computes the sha256 hex digest over the full stored blob,
// header and BOM included
func ContentDigest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
