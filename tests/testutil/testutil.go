// Package testutil holds helpers shared by tests that need a mocked
// database connection or deterministic identifiers.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockDB bundles a GORM handle with the sqlmock controlling it.
type MockDB struct {
	Gorm *gorm.DB
	Mock sqlmock.Sqlmock
	conn *sql.DB
}

// NewMockDB opens a GORM connection backed by sqlmock through the postgres
// dialector, so query expectations match the SQL the repositories generate.
// The caller owns the connection and should defer Close.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()
	return newMockDB(t, false)
}

// NewMockDBWithPings is NewMockDB with ping monitoring enabled. GORM pings
// once while opening, so that first ping is already expected.
func NewMockDBWithPings(t *testing.T) *MockDB {
	t.Helper()
	return newMockDB(t, true)
}

func newMockDB(t *testing.T, monitorPings bool) *MockDB {
	var (
		conn *sql.DB
		mock sqlmock.Sqlmock
		err  error
	)
	if monitorPings {
		conn, mock, err = sqlmock.New(sqlmock.MonitorPingsOption(true))
	} else {
		conn, mock, err = sqlmock.New()
	}
	require.NoError(t, err, "sqlmock.New")

	if monitorPings {
		mock.ExpectPing()
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       conn,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "gorm.Open over sqlmock")

	return &MockDB{Gorm: gormDB, Mock: mock, conn: conn}
}

// Close closes the underlying connection.
func (m *MockDB) Close() error {
	return m.conn.Close()
}

// ExpectationsWereMet fails the test when queued expectations are unmet.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "unmet database expectations")
}

// NewUUID derives a stable UUID from the seed, so fixtures keep the same
// identifiers across runs and expectations can match on exact arguments.
func NewUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}
