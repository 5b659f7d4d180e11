package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"schema-vault/internal/config"
	"schema-vault/internal/logging"
)

// Fetcher resolves the live definition of a named object. It is the
// external-collaborator adapter for the "current" side of a comparison;
// the backup manager itself never opens connections.
type Fetcher struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewFetcher opens a connection pool for the configured database
func NewFetcher(cfg config.DatabaseConfig, logger *logging.Logger) (*Fetcher, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	return NewFetcherWithDB(db, logger), nil
}

// NewFetcherWithDB wraps an existing connection pool; used by tests
func NewFetcherWithDB(db *sql.DB, logger *logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Fetcher{db: db, logger: logger}
}

// Close releases the connection pool
func (f *Fetcher) Close() error {
	return f.db.Close()
}

// FetchDefinition returns the current CREATE statement for the named
// object via SHOW CREATE. The result column layout varies by object
// kind, so the definition column is located by name.
func (f *Fetcher) FetchDefinition(ctx context.Context, objectType, schemaName, objectName string) (string, error) {
	kind, err := showCreateKind(objectType)
	if err != nil {
		return "", err
	}

	identifier, err := qualifiedIdentifier(schemaName, objectName)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf("SHOW CREATE %s %s", kind, identifier)
	f.logger.Debugf("Fetching live definition: %s", query)

	rows, err := f.db.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to fetch definition for %s: %w", objectName, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("failed to read result columns: %w", err)
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("failed to read definition row: %w", err)
		}
		return "", fmt.Errorf("object %s not found", objectName)
	}

	values := make([]sql.RawBytes, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}
	if err := rows.Scan(scanArgs...); err != nil {
		return "", fmt.Errorf("failed to scan definition row: %w", err)
	}

	for i, column := range columns {
		name := strings.ToLower(column)
		if strings.HasPrefix(name, "create ") || name == "sql original statement" {
			return string(values[i]), nil
		}
	}

	return "", fmt.Errorf("no definition column in SHOW CREATE %s result", kind)
}

// showCreateKind maps an object type to its SHOW CREATE keyword
func showCreateKind(objectType string) (string, error) {
	t := strings.ToLower(objectType)
	switch {
	case strings.Contains(t, "procedure"):
		return "PROCEDURE", nil
	case strings.Contains(t, "function"):
		return "FUNCTION", nil
	case strings.Contains(t, "view"):
		return "VIEW", nil
	case strings.Contains(t, "trigger"):
		return "TRIGGER", nil
	case strings.Contains(t, "table"):
		return "TABLE", nil
	default:
		return "", fmt.Errorf("unsupported object type %q", objectType)
	}
}

// qualifiedIdentifier quotes schema and object names. Backticks inside
// identifiers are rejected rather than escaped.
func qualifiedIdentifier(schemaName, objectName string) (string, error) {
	if objectName == "" {
		return "", fmt.Errorf("object name is required")
	}
	if strings.ContainsAny(objectName+schemaName, "`") {
		return "", fmt.Errorf("invalid identifier")
	}
	if schemaName == "" {
		return "`" + objectName + "`", nil
	}
	return "`" + schemaName + "`.`" + objectName + "`", nil
}
