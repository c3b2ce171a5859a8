package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/backend/tests/testutil"
	"gorm.io/gorm"
)

func newMockDatabase(t *testing.T) (*Database, *testutil.MockDB) {
	db := testutil.NewMockDB(t)
	return &Database{DB: db.Gorm}, db
}

func TestDatabase_Stats(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.GreaterOrEqual(t, stats.WaitCount, int64(0))
	assert.GreaterOrEqual(t, stats.WaitDuration, time.Duration(0))
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestDatabase_Ping(t *testing.T) {
	mockDB := testutil.NewMockDBWithPings(t)
	defer mockDB.Close()
	db := &Database{DB: mockDB.Gorm}

	mockDB.Mock.ExpectPing()

	require.NoError(t, db.Ping(context.Background()))
	mockDB.ExpectationsWereMet(t)
}

func TestDatabase_Close(t *testing.T) {
	db, mockDB := newMockDatabase(t)

	mockDB.Mock.ExpectClose()

	require.NoError(t, db.Close())
	mockDB.ExpectationsWereMet(t)
}

func TestDatabase_Transaction(t *testing.T) {
	type Branch struct {
		ID   uint
		Name string
	}

	t.Run("commits when the callback succeeds", func(t *testing.T) {
		db, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mockDB.Mock.ExpectBegin()
		// Postgres inserts go through Query because of the RETURNING clause.
		mockDB.Mock.ExpectQuery(`INSERT INTO "branches"`).
			WithArgs("Computer Science").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mockDB.Mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&Branch{Name: "Computer Science"}).Error
		})

		require.NoError(t, err)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("rolls back when the callback fails", func(t *testing.T) {
		db, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mockDB.Mock.ExpectBegin()
		mockDB.Mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		mockDB.ExpectationsWereMet(t)
	})
}
