package backup

import (
	"encoding/json"
	"os"
	"path/filepath"

	"schema-vault/internal/logging"
)

// LogFileName is the single log file at the vault root
const LogFileName = "backup-log.json"

// Store is an explicit handle on one vault directory and its log file.
// Multiple stores over different directories can coexist; callers thread
// the handle through every operation instead of sharing process state.
type Store struct {
	root   string
	logger *logging.Logger
}

// NewStore creates a store handle rooted at dir
func NewStore(dir string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Store{root: dir, logger: logger}
}

// Root returns the vault root directory
func (s *Store) Root() string {
	return s.root
}

// LogPath returns the absolute path of the log file
func (s *Store) LogPath() string {
	return filepath.Join(s.root, LogFileName)
}

// ContentPath resolves an entry's relative backup file path under the root
func (s *Store) ContentPath(relative string) string {
	return filepath.Join(s.root, filepath.FromSlash(relative))
}

// EnsureLayout creates the vault root and all category subdirectories
func (s *Store) EnsureLayout() error {
	for _, category := range Categories {
		if err := os.MkdirAll(filepath.Join(s.root, category), 0755); err != nil {
			return NewStorageError("failed to create vault directory layout", err)
		}
	}
	return nil
}

// Load reads the full backup log. A missing, unreadable, or corrupt log
// falls back to a fresh empty log rather than aborting: history must
// never block the primary operation.
func (s *Store) Load() *BackupLog {
	data, err := os.ReadFile(s.LogPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warnf("Backup log unreadable, starting fresh: %v", err)
		}
		return NewBackupLog()
	}

	var log BackupLog
	if err := json.Unmarshal(data, &log); err != nil {
		s.logger.Warnf("Backup log corrupt, starting fresh: %v", err)
		return NewBackupLog()
	}

	if log.Version == "" {
		log.Version = LogSchemaVersion
	}
	if log.Entries == nil {
		log.Entries = []BackupEntry{}
	}

	return &log
}

// Save writes the full backup log. Every write is a whole-file
// read-modify-write with no locking; concurrent writers against the same
// store can silently lose an update. Multi-writer deployments must
// serialize load-mutate-save externally.
func (s *Store) Save(log *BackupLog) error {
	data, err := log.ToJSON()
	if err != nil {
		return NewStorageError("failed to serialize backup log", err)
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return NewStorageError("failed to create vault root", err)
	}

	if err := os.WriteFile(s.LogPath(), data, 0644); err != nil {
		return NewStorageError("failed to write backup log", err)
	}

	return nil
}

// WriteContent writes a content blob to the given relative path under the root
func (s *Store) WriteContent(relative, content string) error {
	path := s.ContentPath(relative)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return NewStorageError("failed to create content directory", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return NewStorageError("failed to write content file", err)
	}
	return nil
}

// ReadContent reads a content blob by its relative path
func (s *Store) ReadContent(relative string) (string, error) {
	data, err := os.ReadFile(s.ContentPath(relative))
	if err != nil {
		if os.IsNotExist(err) {
			return "", NewNotFoundError("backup content file not found", err).WithContext("path", relative)
		}
		return "", NewStorageError("failed to read content file", err)
	}
	return string(data), nil
}

// RemoveContent deletes a content file. A missing file counts as removed.
func (s *Store) RemoveContent(relative string) error {
	if err := os.Remove(s.ContentPath(relative)); err != nil && !os.IsNotExist(err) {
		return NewStorageError("failed to delete content file", err)
	}
	return nil
}

// ContentSize returns the on-disk size of a content file, or an error if
// it cannot be read
func (s *Store) ContentSize(relative string) (int64, error) {
	info, err := os.Stat(s.ContentPath(relative))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
