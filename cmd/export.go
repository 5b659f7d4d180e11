package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"schema-vault/internal/backup"
)

var (
	exportObject string
	exportOutput string
	exportUpload bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export backups to a compressed archive",
	Long: `Export bundles stored backups into a tar archive compressed with the
configured algorithm (gzip, zstd, or lz4), optionally encrypted, and
optionally uploaded to the configured S3 target.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportObject, "object", "", "export only backups of this object")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "archive output path")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "upload the archive to the configured S3 target")
}

func runExport(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}
	provider := buildProvider()

	var uploader backup.Uploader
	if exportUpload {
		s3cfg := provider.Archive().S3
		if !s3cfg.Enabled {
			return fmt.Errorf("S3 upload requested but vault.archive.s3 is not enabled")
		}
		uploader, err = backup.NewS3Target(s3cfg)
		if err != nil {
			return err
		}
	}

	manager := backup.NewManager(provider, logger)
	result, err := manager.ExportArchive(backup.ExportOptions{
		ObjectName:  exportObject,
		Destination: exportOutput,
	}, uploader)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d backup(s) to %s (%d bytes)\n", result.Entries, result.Destination, result.Bytes)
	if result.RemoteLocation != "" {
		fmt.Printf("Uploaded to %s\n", result.RemoteLocation)
	}
	return nil
}
