package diff

import (
	"fmt"
	"time"

	"schema-vault/internal/backup"
	"schema-vault/internal/logging"
)

// CurrentVersionID is the sentinel for the live definition fetched from
// the source system now, as opposed to a stored snapshot
const CurrentVersionID = "current"

// Source provides stored backups to compare. *backup.Manager satisfies it.
type Source interface {
	GetBackupByID(id string) *backup.BackupEntry
	GetBackupContent(id string) (string, error)
	ExtractDefinition(raw string) string
}

// Engine composes the diff algorithm with a backup source
type Engine struct {
	source Source
	logger *logging.Logger
}

// NewEngine creates a diff engine over the given backup source
func NewEngine(source Source, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Engine{source: source, logger: logger}
}

// Compare diffs two captured versions, or a captured version against a
// live definition when newID is "current". Direction is always old to
// new exactly as the caller specifies; versions are never reordered by
// timestamp. A missing backup, or "current" without supplied text,
// yields a nil result with a not-found error rather than a panic.
func (e *Engine) Compare(oldID, newID, currentText string) (*Result, error) {
	oldEntry := e.source.GetBackupByID(oldID)
	if oldEntry == nil {
		return nil, backup.NewNotFoundError(fmt.Sprintf("backup %s not found", oldID), nil)
	}

	oldContent, err := e.source.GetBackupContent(oldID)
	if err != nil {
		return nil, err
	}
	oldDef := e.source.ExtractDefinition(oldContent)

	var (
		newDef string
		newRef VersionRef
	)

	if newID == CurrentVersionID {
		if currentText == "" {
			return nil, backup.NewNotFoundError("current definition text not supplied", nil)
		}
		newDef = currentText
		newRef = VersionRef{ID: CurrentVersionID, Timestamp: time.Now().UTC()}
	} else {
		newEntry := e.source.GetBackupByID(newID)
		if newEntry == nil {
			return nil, backup.NewNotFoundError(fmt.Sprintf("backup %s not found", newID), nil)
		}

		newContent, err := e.source.GetBackupContent(newID)
		if err != nil {
			return nil, err
		}
		newDef = e.source.ExtractDefinition(newContent)
		newRef = VersionRef{ID: newEntry.ID, Timestamp: newEntry.Timestamp}
	}

	result := Generate(oldDef, newDef)
	result.ObjectName = oldEntry.ObjectName
	result.Old = VersionRef{ID: oldEntry.ID, Timestamp: oldEntry.Timestamp}
	result.New = newRef

	e.logger.Debugf("Compared %s against %s: +%d -%d",
		oldID, newRef.ID, result.LinesAdded, result.LinesRemoved)

	return result, nil
}

// ChangeSummary renders a one-paragraph human summary of a diff result
func ChangeSummary(result *Result) string {
	if result == nil {
		return "No comparison available."
	}

	name := result.ObjectName
	if name == "" {
		name = "object"
	}

	if result.Identical {
		return fmt.Sprintf("%s: no changes between %s and %s.", name, result.Old.ID, result.New.ID)
	}

	return fmt.Sprintf("%s: %d line(s) added, %d line(s) removed (%s -> %s).",
		name, result.LinesAdded, result.LinesRemoved, result.Old.ID, result.New.ID)
}
