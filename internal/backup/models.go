package backup

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LogSchemaVersion is the persisted backup log schema version
const LogSchemaVersion = "1"

// Operation identifies why a definition was captured
type Operation string

const (
	OperationAlter   Operation = "ALTER"
	OperationDrop    Operation = "DROP"
	OperationCreate  Operation = "CREATE"
	OperationRestore Operation = "RESTORE"
)

// IsValid reports whether the operation is one of the known capture reasons
func (o Operation) IsValid() bool {
	switch o {
	case OperationAlter, OperationDrop, OperationCreate, OperationRestore:
		return true
	}
	return false
}

// BackupEntry is one immutable record of a captured object definition.
// Entries are only prepended to or removed from the log, never mutated.
type BackupEntry struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Operation    Operation `json:"operation"`
	ObjectType   string    `json:"object_type"`
	ObjectName   string    `json:"object_name"`
	SchemaName   string    `json:"schema_name,omitempty"`
	Database     string    `json:"database,omitempty"`
	BackupFile   string    `json:"backup_file"`
	FileHash     string    `json:"file_hash"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Validate validates the BackupEntry
func (e *BackupEntry) Validate() error {
	if e.ID == "" {
		return NewValidationError("backup entry ID is required", nil)
	}
	if e.ObjectName == "" {
		return NewValidationError("object name is required", nil)
	}
	if !e.Operation.IsValid() {
		return NewValidationError(fmt.Sprintf("invalid operation %q", e.Operation), nil)
	}
	if e.Timestamp.IsZero() {
		return NewValidationError("timestamp is required", nil)
	}
	if e.BackupFile == "" {
		return NewValidationError("backup file path is required", nil)
	}
	return nil
}

// BackupLog is the full persisted record set, newest entry first
type BackupLog struct {
	Version   string        `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Entries   []BackupEntry `json:"entries"`
}

// NewBackupLog creates an empty log with current metadata
func NewBackupLog() *BackupLog {
	now := time.Now().UTC()
	return &BackupLog{
		Version:   LogSchemaVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Entries:   []BackupEntry{},
	}
}

// Prepend inserts an entry at the head of the log (newest first)
func (l *BackupLog) Prepend(entry BackupEntry) {
	l.Entries = append([]BackupEntry{entry}, l.Entries...)
	l.UpdatedAt = time.Now().UTC()
}

// Remove deletes the entry with the given ID, preserving order.
// It reports whether an entry was removed.
func (l *BackupLog) Remove(id string) bool {
	for i, e := range l.Entries {
		if e.ID == id {
			l.Entries = append(l.Entries[:i], l.Entries[i+1:]...)
			l.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// Find returns the entry with the given ID, or nil
func (l *BackupLog) Find(id string) *BackupEntry {
	for i := range l.Entries {
		if l.Entries[i].ID == id {
			return &l.Entries[i]
		}
	}
	return nil
}

// EntriesForObject returns all entries whose object name matches,
// case-insensitively, in log order (newest first)
func (l *BackupLog) EntriesForObject(objectName string) []BackupEntry {
	var matched []BackupEntry
	for _, e := range l.Entries {
		if strings.EqualFold(e.ObjectName, objectName) {
			matched = append(matched, e)
		}
	}
	return matched
}

// ToJSON serializes the log
func (l *BackupLog) ToJSON() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Result is the outcome of a CreateBackup call. Expected failures
// (disabled configuration, I/O problems) are reported here rather
// than as Go errors so callers decide severity.
type Result struct {
	Success    bool   `json:"success"`
	BackupID   string `json:"backup_id,omitempty"`
	BackupFile string `json:"backup_file,omitempty"`
	Message    string `json:"message"`
}

// Stats summarizes the current state of the vault
type Stats struct {
	TotalBackups int            `json:"total_backups"`
	ByCategory   map[string]int `json:"by_category"`
	ByOperation  map[string]int `json:"by_operation"`
	Oldest       *time.Time     `json:"oldest,omitempty"`
	Newest       *time.Time     `json:"newest,omitempty"`
	TotalBytes   int64          `json:"total_bytes"`
}

// GenerateBackupID generates a unique backup ID: a UTC timestamp for
// sortability plus a short random suffix. Collision-resistant by
// convention, not provably unique.
func GenerateBackupID() string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	shortUUID := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("backup-%s-%s", timestamp, shortUUID)
}
