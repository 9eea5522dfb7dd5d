package sequence

import (
	"testing"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSequenceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:sequences_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE sequences (
  name TEXT PRIMARY KEY,
  value INTEGER NOT NULL DEFAULT 0
);`).Error)
	require.NoError(t, Seed(db, models.SequencePayment, models.SequenceTransaction))
	return db
}

func TestAllocatorNextIsAscending(t *testing.T) {
	db := setupSequenceTestDB(t)
	alloc := NewAllocator()

	var last uint64
	for i := 0; i < 5; i++ {
		id, err := alloc.Next(db, models.SequencePayment)
		require.NoError(t, err)
		require.Greater(t, id, last)
		last = id
	}
	require.EqualValues(t, 5, last)
}

func TestAllocatorCountersAreIndependent(t *testing.T) {
	db := setupSequenceTestDB(t)
	alloc := NewAllocator()

	for i := 0; i < 3; i++ {
		_, err := alloc.Next(db, models.SequencePayment)
		require.NoError(t, err)
	}

	id, err := alloc.Next(db, models.SequenceTransaction)
	require.NoError(t, err)
	require.EqualValues(t, 1, id)
}

func TestAllocatorUnknownSequence(t *testing.T) {
	db := setupSequenceTestDB(t)
	alloc := NewAllocator()

	_, err := alloc.Next(db, "unknown")
	require.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupSequenceTestDB(t)
	alloc := NewAllocator()

	_, err := alloc.Next(db, models.SequencePayment)
	require.NoError(t, err)

	require.NoError(t, Seed(db, models.SequencePayment))

	id, err := alloc.Next(db, models.SequencePayment)
	require.NoError(t, err)
	require.EqualValues(t, 2, id)
}
