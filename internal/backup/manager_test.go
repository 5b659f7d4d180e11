package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-vault/internal/config"
)

// newTestManager wires a manager over an isolated viper instance rooted
// in a temp directory. Returned viper can be mutated mid-test to exercise
// the re-read-on-every-operation behavior.
func newTestManager(t *testing.T) (*Manager, *viper.Viper) {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("vault.dir", t.TempDir())
	return NewManager(config.NewProvider(v), nil), v
}

func createRequest(name string) CreateRequest {
	return CreateRequest{
		ObjectName: name,
		ObjectType: "PROCEDURE",
		SchemaName: "dbo",
		Definition: fmt.Sprintf("CREATE PROCEDURE %s AS SELECT 1", name),
		Operation:  OperationAlter,
		Database:   "orders_db",
	}
}

func TestCreateBackupSuccess(t *testing.T) {
	m, v := newTestManager(t)

	result := m.CreateBackup(createRequest("usp_GetOrders"))
	require.True(t, result.Success, result.Message)
	require.NotEmpty(t, result.BackupID)
	require.NotEmpty(t, result.BackupFile)

	// Content file lands in the procedures category with BOM and header.
	full := filepath.Join(v.GetString("vault.dir"), filepath.FromSlash(result.BackupFile))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, result.BackupFile, CategoryProcedures+"/")
	assert.Contains(t, content, "CREATE PROCEDURE usp_GetOrders AS SELECT 1")

	// Log entry records the digest of the full blob.
	entry := m.GetBackupByID(result.BackupID)
	require.NotNil(t, entry)
	assert.Equal(t, ContentDigest(content), entry.FileHash)
	assert.Equal(t, OperationAlter, entry.Operation)
	assert.True(t, entry.Success)
}

func TestCreateBackupDisabled(t *testing.T) {
	m, v := newTestManager(t)
	v.Set("vault.enabled", false)

	result := m.CreateBackup(createRequest("usp_GetOrders"))
	assert.True(t, result.Success)
	assert.Empty(t, result.BackupID)
	assert.Contains(t, result.Message, "disabled")

	// Nothing was written.
	_, err := os.Stat(filepath.Join(v.GetString("vault.dir"), LogFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestCreateBackupValidation(t *testing.T) {
	m, _ := newTestManager(t)

	missing := m.CreateBackup(CreateRequest{ObjectType: "PROCEDURE", Operation: OperationAlter})
	assert.False(t, missing.Success)
	assert.Contains(t, missing.Message, "object name")

	badOp := m.CreateBackup(CreateRequest{ObjectName: "usp_X", Operation: "TRUNCATE"})
	assert.False(t, badOp.Success)
	assert.Contains(t, badOp.Message, "invalid operation")
}

func TestCreateBackupRapidCapturesGetDistinctFiles(t *testing.T) {
	m, _ := newTestManager(t)

	// Several captures within the same second must not overwrite each other.
	files := make(map[string]bool)
	for i := 0; i < 4; i++ {
		result := m.CreateBackup(createRequest("usp_GetOrders"))
		require.True(t, result.Success, result.Message)
		files[result.BackupFile] = true
	}
	assert.Len(t, files, 4)

	entries := m.ListBackups(ListFilter{ObjectName: "usp_GetOrders"})
	assert.Len(t, entries, 4)
}

func TestCreateBackupEvictsOldestBeyondCap(t *testing.T) {
	m, v := newTestManager(t)
	v.Set("vault.max_per_object", 3)

	var ids []string
	for i := 0; i < 5; i++ {
		result := m.CreateBackup(createRequest("usp_GetOrders"))
		require.True(t, result.Success, result.Message)
		ids = append(ids, result.BackupID)
	}

	entries := m.ListBackups(ListFilter{ObjectName: "usp_GetOrders"})
	require.Len(t, entries, 3)

	// Newest three survive, oldest two are gone along with their files.
	assert.Equal(t, ids[4], entries[0].ID)
	assert.Equal(t, ids[2], entries[2].ID)
	assert.Nil(t, m.GetBackupByID(ids[0]))
	assert.Nil(t, m.GetBackupByID(ids[1]))
}

func TestCreateBackupEvictionIsPerObject(t *testing.T) {
	m, v := newTestManager(t)
	v.Set("vault.max_per_object", 2)

	for i := 0; i < 3; i++ {
		require.True(t, m.CreateBackup(createRequest("usp_A")).Success)
	}
	require.True(t, m.CreateBackup(createRequest("usp_B")).Success)

	assert.Len(t, m.ListBackups(ListFilter{ObjectName: "usp_A"}), 2)
	assert.Len(t, m.ListBackups(ListFilter{ObjectName: "usp_B"}), 1)
}

func TestListBackupsFilters(t *testing.T) {
	m, _ := newTestManager(t)

	// Case-varying names of the same object all match one filter.
	var lastTwo []string
	for _, name := range []string{"usp_getorders", "USP_GETORDERS", "Usp_GetOrders", "usp_GetOrders", "USP_getOrders"} {
		result := m.CreateBackup(createRequest(name))
		require.True(t, result.Success)
		lastTwo = append(lastTwo, result.BackupID)
		if len(lastTwo) > 2 {
			lastTwo = lastTwo[1:]
		}
	}
	view := createRequest("vw_Sales")
	view.ObjectType = "VIEW"
	for i := 0; i < 3; i++ {
		require.True(t, m.CreateBackup(view).Success)
	}

	// Name filter is case-insensitive.
	assert.Len(t, m.ListBackups(ListFilter{ObjectName: "USP_GETORDERS"}), 5)

	// Type filter matches when either side contains the other.
	assert.Len(t, m.ListBackups(ListFilter{ObjectType: "proc"}), 5)
	assert.Len(t, m.ListBackups(ListFilter{ObjectType: "SQL_VIEW_DEFINITION"}), 3)

	// Limit caps newest-first: the two most recent matching entries.
	limited := m.ListBackups(ListFilter{ObjectName: "Foo", Limit: 2})
	assert.Empty(t, limited)
	limited = m.ListBackups(ListFilter{ObjectName: "usp_GetOrders", Limit: 2})
	require.Len(t, limited, 2)
	assert.Equal(t, lastTwo[1], limited[0].ID)
	assert.Equal(t, lastTwo[0], limited[1].ID)

	// No filter returns everything.
	assert.Len(t, m.ListBackups(ListFilter{}), 8)
}

func TestGetBackupByIDAbsent(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Nil(t, m.GetBackupByID("backup-missing"))
	assert.Nil(t, m.GetBackupByID(""))
}

func TestGetBackupContent(t *testing.T) {
	m, _ := newTestManager(t)

	result := m.CreateBackup(createRequest("usp_GetOrders"))
	require.True(t, result.Success)

	content, err := m.GetBackupContent(result.BackupID)
	require.NoError(t, err)
	assert.False(t, len(content) > 0 && content[0] == 0xEF, "BOM must be stripped")
	assert.Contains(t, content, "CREATE PROCEDURE usp_GetOrders AS SELECT 1")

	definition := m.ExtractDefinition(content)
	assert.Equal(t, "CREATE PROCEDURE usp_GetOrders AS SELECT 1", definition)
}

func TestGetBackupContentMissing(t *testing.T) {
	m, v := newTestManager(t)

	_, err := m.GetBackupContent("backup-missing")
	assert.True(t, IsNotFound(err))

	// An entry whose file vanished is still listable but content reads
	// report not-found.
	result := m.CreateBackup(createRequest("usp_GetOrders"))
	require.True(t, result.Success)
	require.NoError(t, os.Remove(filepath.Join(v.GetString("vault.dir"), filepath.FromSlash(result.BackupFile))))

	_, err = m.GetBackupContent(result.BackupID)
	assert.True(t, IsNotFound(err))
	assert.Len(t, m.ListBackups(ListFilter{ObjectName: "usp_GetOrders"}), 1)
}

func TestCleanupByAge(t *testing.T) {
	m, v := newTestManager(t)

	for i := 0; i < 3; i++ {
		require.True(t, m.CreateBackup(createRequest("usp_GetOrders")).Success)
	}

	// Backdate two entries past the cutoff; the third sits just inside it.
	store := NewStore(v.GetString("vault.dir"), nil)
	log := store.Load()
	require.Len(t, log.Entries, 3)
	log.Entries[0].Timestamp = time.Now().UTC().AddDate(0, 0, -31)
	log.Entries[1].Timestamp = time.Now().UTC().AddDate(0, 0, -45)
	log.Entries[2].Timestamp = time.Now().UTC().AddDate(0, 0, -30).Add(time.Minute)
	require.NoError(t, store.Save(log))

	removed, err := m.CleanupByAge(30)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	remaining := m.ListBackups(ListFilter{})
	require.Len(t, remaining, 1)

	// Surviving entry keeps its content file.
	_, err = m.GetBackupContent(remaining[0].ID)
	assert.NoError(t, err)
}

func TestCleanupByAgeValidation(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CleanupByAge(0)
	require.Error(t, err)
	_, err = m.CleanupByAge(-5)
	require.Error(t, err)
}

func TestCleanupByAgeNothingStale(t *testing.T) {
	m, _ := newTestManager(t)
	require.True(t, m.CreateBackup(createRequest("usp_GetOrders")).Success)

	removed, err := m.CleanupByAge(30)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCleanupKeepsEntryWhenFileDeleteFails(t *testing.T) {
	m, v := newTestManager(t)
	require.True(t, m.CreateBackup(createRequest("usp_GetOrders")).Success)

	store := NewStore(v.GetString("vault.dir"), nil)
	log := store.Load()
	require.Len(t, log.Entries, 1)
	log.Entries[0].Timestamp = time.Now().UTC().AddDate(0, 0, -60)

	// Point the entry at a non-empty directory so os.Remove fails with
	// something other than not-exist.
	blocked := "procedures/blocked"
	require.NoError(t, store.WriteContent(blocked+"/inner.sql", "x"))
	log.Entries[0].BackupFile = blocked
	require.NoError(t, store.Save(log))

	removed, err := m.CleanupByAge(30)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Len(t, m.ListBackups(ListFilter{}), 1)
}

func TestGetStats(t *testing.T) {
	m, _ := newTestManager(t)

	empty := m.GetStats()
	assert.Zero(t, empty.TotalBackups)
	assert.Nil(t, empty.Oldest)

	require.True(t, m.CreateBackup(createRequest("usp_A")).Success)
	view := createRequest("vw_Sales")
	view.ObjectType = "VIEW"
	view.Operation = OperationDrop
	require.True(t, m.CreateBackup(view).Success)

	stats := m.GetStats()
	assert.Equal(t, 2, stats.TotalBackups)
	assert.Equal(t, 1, stats.ByCategory[CategoryProcedures])
	assert.Equal(t, 1, stats.ByCategory[CategoryViews])
	assert.Equal(t, 1, stats.ByOperation[string(OperationAlter)])
	assert.Equal(t, 1, stats.ByOperation[string(OperationDrop)])
	require.NotNil(t, stats.Oldest)
	require.NotNil(t, stats.Newest)
	assert.Positive(t, stats.TotalBytes)
}
