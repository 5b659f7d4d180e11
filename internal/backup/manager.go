package backup

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"schema-vault/internal/config"
	"schema-vault/internal/logging"
)

// Manager owns the durable, queryable history of object definitions.
// Configuration is re-read from the provider on every operation, never
// cached, since it may change externally between calls.
type Manager struct {
	cfg    *config.Provider
	logger *logging.Logger
}

// NewManager creates a backup manager over the given configuration provider
func NewManager(cfg *config.Provider, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// CreateRequest describes one definition capture
type CreateRequest struct {
	ObjectName string
	ObjectType string
	SchemaName string
	Definition string
	Operation  Operation
	Database   string
}

// ListFilter narrows ListBackups results
type ListFilter struct {
	// ObjectName matches case-insensitively and exactly
	ObjectName string
	// ObjectType matches if either side contains the other, tolerating
	// differing type-naming granularity ("PROC" vs "SQL_STORED_PROCEDURE")
	ObjectType string
	// Limit caps the result; zero or negative means no cap
	Limit int
}

// store resolves the store handle for the current configuration snapshot
func (m *Manager) store(cfg config.VaultConfig) *Store {
	return NewStore(cfg.ResolvedDir(), m.logger)
}

// CreateBackup captures an object definition before a mutating operation.
// Expected failures (disabled configuration, I/O problems) come back as a
// non-success Result rather than an error; the caller decides severity.
func (m *Manager) CreateBackup(req CreateRequest) Result {
	cfg := m.cfg.Vault()

	if !cfg.Enabled {
		return Result{
			Success: true,
			Message: "backup skipped: disabled by configuration",
		}
	}

	if req.ObjectName == "" {
		return Result{Success: false, Message: "backup failed: object name is required"}
	}
	if !req.Operation.IsValid() {
		return Result{Success: false, Message: fmt.Sprintf("backup failed: invalid operation %q", req.Operation)}
	}

	store := m.store(cfg)
	if err := store.EnsureLayout(); err != nil {
		m.logger.LogBackupFailed(req.ObjectName, req.ObjectType, err)
		return Result{Success: false, Message: fmt.Sprintf("backup failed: %v", err)}
	}

	now := time.Now().UTC()
	id := GenerateBackupID()
	category := CategoryForType(req.ObjectType)

	// Filenames carry a second-granularity timestamp; rapid captures of
	// the same object collide, so a counter disambiguates.
	relative := path.Join(category, BackupFilename(req.ObjectName, now))
	for i := 1; ; i++ {
		if _, err := os.Stat(store.ContentPath(relative)); os.IsNotExist(err) {
			break
		}
		relative = path.Join(category, fmt.Sprintf("%s_%s_%d.sql",
			SanitizeObjectName(req.ObjectName), now.Format("20060102-150405"), i))
	}

	content := FormatBackupContent(req.ObjectName, req.ObjectType, req.SchemaName,
		req.Definition, req.Operation, req.Database, now)

	if err := store.WriteContent(relative, content); err != nil {
		m.logger.LogBackupFailed(req.ObjectName, req.ObjectType, err)
		return Result{Success: false, Message: fmt.Sprintf("backup failed: %v", err)}
	}

	entry := BackupEntry{
		ID:         id,
		Timestamp:  now,
		Operation:  req.Operation,
		ObjectType: req.ObjectType,
		ObjectName: req.ObjectName,
		SchemaName: req.SchemaName,
		Database:   req.Database,
		BackupFile: relative,
		FileHash:   ContentDigest(content),
		Success:    true,
	}

	log := store.Load()
	log.Prepend(entry)

	if cfg.MaxPerObject > 0 {
		evicted := m.evictExcess(store, log, req.ObjectName, cfg.MaxPerObject)
		if evicted > 0 {
			m.logger.LogEviction(req.ObjectName, evicted, cfg.MaxPerObject)
		}
	}

	if cfg.AutoCleanup && cfg.CleanupDays > 0 {
		if removed := m.cleanupLog(store, log, cfg.CleanupDays); removed > 0 {
			m.logger.Debugf("Auto-cleanup removed %d backups older than %d days", removed, cfg.CleanupDays)
		}
	}

	if err := store.Save(log); err != nil {
		m.logger.LogBackupFailed(req.ObjectName, req.ObjectType, err)
		return Result{Success: false, Message: fmt.Sprintf("backup written but log update failed: %v", err)}
	}

	m.logger.LogBackupCreated(id, req.ObjectName, req.ObjectType, string(req.Operation), len(content))

	return Result{
		Success:    true,
		BackupID:   id,
		BackupFile: relative,
		Message:    fmt.Sprintf("backup created for %s %s", strings.ToUpper(req.ObjectType), req.ObjectName),
	}
}

// evictExcess removes the oldest entries for an object beyond the cap.
// The log is newest-first, so the excess sits at the tail of the
// per-object slice. A file that fails to delete keeps its entry: the log
// is never silently orphaned from content.
func (m *Manager) evictExcess(store *Store, log *BackupLog, objectName string, maxPerObject int) int {
	matched := log.EntriesForObject(objectName)
	if len(matched) <= maxPerObject {
		return 0
	}

	evicted := 0
	for _, excess := range matched[maxPerObject:] {
		if err := store.RemoveContent(excess.BackupFile); err != nil {
			m.logger.Warnf("Keeping log entry %s: content delete failed: %v", excess.ID, err)
			continue
		}
		if log.Remove(excess.ID) {
			evicted++
		}
	}
	return evicted
}

// cleanupLog removes entries strictly older than the cutoff from an
// already-loaded log and returns the count actually removed. Entries on
// the boundary are retained.
func (m *Manager) cleanupLog(store *Store, log *BackupLog, days int) int {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var stale []BackupEntry
	for _, e := range log.Entries {
		if e.Timestamp.Before(cutoff) {
			stale = append(stale, e)
		}
	}

	removed := 0
	for _, e := range stale {
		if err := store.RemoveContent(e.BackupFile); err != nil {
			m.logger.Warnf("Keeping log entry %s: content delete failed: %v", e.ID, err)
			continue
		}
		if log.Remove(e.ID) {
			removed++
		}
	}
	return removed
}

// ListBackups returns log entries newest-first, filtered and capped
func (m *Manager) ListBackups(filter ListFilter) []BackupEntry {
	log := m.store(m.cfg.Vault()).Load()

	var matched []BackupEntry
	for _, e := range log.Entries {
		if filter.ObjectName != "" && !strings.EqualFold(e.ObjectName, filter.ObjectName) {
			continue
		}
		if filter.ObjectType != "" && !typeMatches(e.ObjectType, filter.ObjectType) {
			continue
		}
		matched = append(matched, e)
		if filter.Limit > 0 && len(matched) >= filter.Limit {
			break
		}
	}
	return matched
}

// typeMatches applies the bidirectional substring rule for object types
func typeMatches(entryType, filterType string) bool {
	a := strings.ToLower(entryType)
	b := strings.ToLower(filterType)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// GetBackupByID returns the entry with the given ID, or nil if absent
func (m *Manager) GetBackupByID(id string) *BackupEntry {
	if id == "" {
		return nil
	}
	return m.store(m.cfg.Vault()).Load().Find(id)
}

// GetBackupContent returns the stored blob for a backup with the BOM
// stripped. The log is the source of truth for existence: an entry with
// a missing file reports not-found here but remains listable.
func (m *Manager) GetBackupContent(id string) (string, error) {
	cfg := m.cfg.Vault()
	entry := m.store(cfg).Load().Find(id)
	if entry == nil {
		return "", NewNotFoundError(fmt.Sprintf("backup %s not found", id), nil)
	}

	raw, err := m.store(cfg).ReadContent(entry.BackupFile)
	if err != nil {
		return "", err
	}
	return StripBOM(raw), nil
}

// ExtractDefinition strips the provenance header from stored content
func (m *Manager) ExtractDefinition(raw string) string {
	return ExtractDefinition(raw)
}

// CleanupByAge deletes entries strictly older than now minus the given
// number of days, file and entry together, and returns the count
// actually removed
func (m *Manager) CleanupByAge(days int) (int, error) {
	if days <= 0 {
		return 0, NewValidationError("cleanup age must be positive", nil)
	}

	start := time.Now()
	cfg := m.cfg.Vault()
	store := m.store(cfg)

	log := store.Load()
	removed := m.cleanupLog(store, log, days)
	if removed > 0 {
		if err := store.Save(log); err != nil {
			return 0, err
		}
	}

	m.logger.LogCleanup(days, removed, time.Since(start))
	return removed, nil
}

// GetStats summarizes the vault: counts by category and operation, the
// oldest and newest capture times, and best-effort total on-disk bytes
// (unreadable files are skipped, not fatal)
func (m *Manager) GetStats() Stats {
	cfg := m.cfg.Vault()
	store := m.store(cfg)
	log := store.Load()

	stats := Stats{
		TotalBackups: len(log.Entries),
		ByCategory:   make(map[string]int),
		ByOperation:  make(map[string]int),
	}

	for _, e := range log.Entries {
		stats.ByCategory[CategoryForType(e.ObjectType)]++
		stats.ByOperation[string(e.Operation)]++

		ts := e.Timestamp
		if stats.Oldest == nil || ts.Before(*stats.Oldest) {
			stats.Oldest = &ts
		}
		if stats.Newest == nil || ts.After(*stats.Newest) {
			stats.Newest = &ts
		}

		if size, err := store.ContentSize(e.BackupFile); err == nil {
			stats.TotalBytes += size
		}
	}

	return stats
}
