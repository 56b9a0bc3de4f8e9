package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/common"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

func snapshotOf(names ...string) Snapshot {
	s := Snapshot{RunID: uuid.New(), TakenAt: time.Now()}
	for i, n := range names {
		c := entity.NewCandidate(entity.Fields{Name: n, Email: "x@ipt.pt"}, constants.SourcePDFText, n+".pdf#text:p1:l1")
		p := entity.NewCandidate(entity.Fields{Name: n}, constants.SourceProbe, "id:"+string(rune('0'+i)))
		s.Entities = append(s.Entities, entity.FromCandidate(c, []entity.CandidateRecord{p, c}))
	}
	return s
}

func testStores(t *testing.T) map[string]SnapshotStore {
	t.Helper()
	ctx := context.Background()
	stores := map[string]SnapshotStore{}

	sq, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "db", "faculty.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	stores["sqlite"] = sq

	if dsn := os.Getenv("FT_TEST_DB_URL"); dsn != "" {
		pg, err := OpenPostgres(ctx, Config{DSN: dsn, DialTimeout: 3 * time.Second}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = pg.Close() })
		stores["postgres"] = pg
	}
	return stores
}

func TestStore_SaveReplacesPrevious(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := snapshotOf("Ana Silva", "João Santos", "Maria Costa")
			require.NoError(t, store.Save(ctx, first))
			second := snapshotOf("Rui Costa")
			require.NoError(t, store.Save(ctx, second))

			got, err := store.Latest(ctx)
			require.NoError(t, err)
			assert.Equal(t, second.RunID, got.RunID)
			require.Len(t, got.Entities, 1)
			assert.Equal(t, second.Entities[0], got.Entities[0])
			assert.WithinDuration(t, second.TakenAt, got.TakenAt, time.Millisecond)
		})
	}
}

func TestSQLiteStore_EmptyAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "faculty.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Latest(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	snap := snapshotOf("Ana Silva", "João Santos")
	require.NoError(t, store.Save(ctx, snap))
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Entities, got.Entities)
	require.Len(t, got.Entities[0].ContributingRecords, 2)
	assert.Equal(t, constants.SourceProbe, got.Entities[0].ContributingRecords[0].Provenance.SourceKind)

	var count int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_EmptySnapshot(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "faculty.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, snapshotOf("Ana Silva")))
	empty := Snapshot{RunID: uuid.New(), TakenAt: time.Now()}
	require.NoError(t, store.Save(ctx, empty))

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, empty.RunID, got.RunID)
	assert.Empty(t, got.Entities)
}
