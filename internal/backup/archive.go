package backup

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Uploader pushes a finished archive to a remote target. S3Target
// implements it; tests supply fakes.
type Uploader interface {
	Upload(key string, data []byte) (string, error)
}

// ExportOptions selects what to export and where
type ExportOptions struct {
	// ObjectName restricts the export to one object (case-insensitive
	// exact match); empty exports everything
	ObjectName string
	// Destination is the local output path; empty derives a timestamped
	// name in the working directory
	Destination string
}

// ExportResult reports a completed export
type ExportResult struct {
	Destination    string `json:"destination"`
	Entries        int    `json:"entries"`
	Bytes          int64  `json:"bytes"`
	RemoteLocation string `json:"remote_location,omitempty"`
}

// ExportArchive bundles the selected backups into a tar archive,
// compresses it with the configured algorithm, optionally encrypts it,
// writes it locally, and optionally uploads it through the given
// uploader (nil skips the upload).
func (m *Manager) ExportArchive(opts ExportOptions, uploader Uploader) (*ExportResult, error) {
	vaultCfg := m.cfg.Vault()
	archiveCfg := m.cfg.Archive()
	store := m.store(vaultCfg)

	log := store.Load()
	entries := log.Entries
	if opts.ObjectName != "" {
		entries = log.EntriesForObject(opts.ObjectName)
	}
	if len(entries) == 0 {
		return nil, NewArchiveError("no backups match the export selection", nil)
	}

	tarData, packed, err := m.packArchive(store, entries)
	if err != nil {
		return nil, err
	}

	compressor, err := NewCompressionManager().Get(CompressionType(archiveCfg.Compression))
	if err != nil {
		return nil, err
	}
	compressed, err := compressor.Compress(tarData)
	if err != nil {
		return nil, err
	}

	encryptor := NewEncryptor(archiveCfg.Encryption)
	payload, err := encryptor.Encrypt(compressed)
	if err != nil {
		return nil, err
	}

	destination := opts.Destination
	if destination == "" {
		name := fmt.Sprintf("schema-vault-export-%s.tar%s", time.Now().UTC().Format("20060102-150405"), compressor.Extension())
		if encryptor.Enabled() {
			name += ".enc"
		}
		destination = name
	}

	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, NewArchiveError("failed to create export directory", err)
		}
	}
	if err := os.WriteFile(destination, payload, 0644); err != nil {
		m.logger.LogArchiveExport(destination, packed, 0, err)
		return nil, NewArchiveError("failed to write archive", err)
	}

	result := &ExportResult{
		Destination: destination,
		Entries:     packed,
		Bytes:       int64(len(payload)),
	}

	if uploader != nil {
		location, err := uploader.Upload(filepath.Base(destination), payload)
		if err != nil {
			m.logger.LogArchiveExport(destination, packed, result.Bytes, err)
			return result, NewArchiveError("archive written locally but upload failed", err)
		}
		result.RemoteLocation = location
	}

	m.logger.LogArchiveExport(destination, packed, result.Bytes, nil)
	return result, nil
}

// packArchive writes the selected content files plus a manifest into a
// tar stream. Entries whose content file is missing are skipped, not
// fatal; the manifest records only what was packed.
func (m *Manager) packArchive(store *Store, entries []BackupEntry) ([]byte, int, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	manifest := NewBackupLog()
	packed := 0

	for _, entry := range entries {
		content, err := store.ReadContent(entry.BackupFile)
		if err != nil {
			m.logger.Warnf("Skipping %s in export: %v", entry.ID, err)
			continue
		}

		header := &tar.Header{
			Name:    entry.BackupFile,
			Mode:    0644,
			Size:    int64(len(content)),
			ModTime: entry.Timestamp,
		}
		if err := tw.WriteHeader(header); err != nil {
			return nil, 0, NewArchiveError("failed to write archive header", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			return nil, 0, NewArchiveError("failed to write archive content", err)
		}

		manifest.Entries = append(manifest.Entries, entry)
		packed++
	}

	if packed == 0 {
		return nil, 0, NewArchiveError("no backup content available to export", nil)
	}

	manifestData, err := manifest.ToJSON()
	if err != nil {
		return nil, 0, NewArchiveError("failed to serialize export manifest", err)
	}
	header := &tar.Header{
		Name:    LogFileName,
		Mode:    0644,
		Size:    int64(len(manifestData)),
		ModTime: time.Now().UTC(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return nil, 0, NewArchiveError("failed to write manifest header", err)
	}
	if _, err := tw.Write(manifestData); err != nil {
		return nil, 0, NewArchiveError("failed to write manifest", err)
	}

	if err := tw.Close(); err != nil {
		return nil, 0, NewArchiveError("failed to finalize archive", err)
	}

	return buf.Bytes(), packed, nil
}
