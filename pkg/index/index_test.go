package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/plugmark/pkg/db"
	"github.com/jingkaihe/plugmark/pkg/db/migrations"
)

func openTestStore(t *testing.T) (*Store, *sqlx.DB) {
	t.Helper()

	sqlDB, err := db.Open(context.TODO(), filepath.Join(t.TempDir(), "storage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	runner := db.NewMigrationRunner(sqlDB)
	require.NoError(t, runner.Run(context.TODO(), migrations.All()))

	return NewStore(sqlDB), sqlDB
}

func testReceipt(name, marketplace string) Receipt {
	return Receipt{
		ID:          uuid.New().String(),
		Name:        name,
		Marketplace: marketplace,
		Version:     "1.0.0",
		Source:      "/tmp/src/" + name,
		InstalledAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestStoreRecordAndGet(t *testing.T) {
	store, _ := openTestStore(t)

	r := testReceipt("code-review", "dev-tools")
	require.NoError(t, store.Record(context.TODO(), r))

	got, err := store.Get(context.TODO(), "code-review", "dev-tools")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "1.0.0", got.Version)
}

func TestStoreRecordUpserts(t *testing.T) {
	store, _ := openTestStore(t)

	first := testReceipt("code-review", "dev-tools")
	require.NoError(t, store.Record(context.TODO(), first))

	second := testReceipt("code-review", "dev-tools")
	second.Version = "2.0.0"
	require.NoError(t, store.Record(context.TODO(), second))

	receipts, err := store.List(context.TODO())
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "2.0.0", receipts[0].Version)
}

func TestStoreGetNotInstalled(t *testing.T) {
	store, _ := openTestStore(t)

	_, err := store.Get(context.TODO(), "ghost", "dev-tools")
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestStoreRemove(t *testing.T) {
	store, _ := openTestStore(t)

	require.NoError(t, store.Record(context.TODO(), testReceipt("code-review", "dev-tools")))
	require.NoError(t, store.Remove(context.TODO(), "code-review", "dev-tools"))

	err := store.Remove(context.TODO(), "code-review", "dev-tools")
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestStoreListOrdered(t *testing.T) {
	store, _ := openTestStore(t)

	require.NoError(t, store.Record(context.TODO(), testReceipt("zeta", "b-market")))
	require.NoError(t, store.Record(context.TODO(), testReceipt("alpha", "b-market")))
	require.NoError(t, store.Record(context.TODO(), testReceipt("mid", "a-market")))

	receipts, err := store.List(context.TODO())
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	assert.Equal(t, "mid", receipts[0].Name)
	assert.Equal(t, "alpha", receipts[1].Name)
	assert.Equal(t, "zeta", receipts[2].Name)
}
