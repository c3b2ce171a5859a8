// Package integration runs repository and API tests against a real
// PostgreSQL instance managed through testcontainers.
package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/identity"
)

// One container shared by the read-mostly repository tests. Tests that
// mutate schema-wide state start their own through NewTestDB.
var (
	sharedPG    testcontainers.Container
	sharedPGMu  sync.Mutex
	sharedPGDSN string
)

// TestDB is a migrated database handle bound to one test.
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

func startPostgres(t *testing.T, dbName string) (testcontainers.Container, string) {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("studyhub-ci"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "container connection string")
	return container, dsn
}

// NewTestDB starts a dedicated container, giving the test full isolation.
// The container terminates when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	container, dsn := startPostgres(t, "studyhub_test")
	db, sqlDB := openGorm(t, dsn)
	applyMigrations(t, sqlDB)

	tdb := &TestDB{DB: db, SqlDB: sqlDB, Container: container, DSN: dsn, t: t}
	t.Cleanup(tdb.Close)
	return tdb
}

// NewSharedTestDB reuses one container across tests in the package. Callers
// should truncate with CleanTables before seeding to avoid cross-test bleed.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedPGMu.Lock()
	defer sharedPGMu.Unlock()

	if sharedPG == nil {
		container, dsn := startPostgres(t, "studyhub_shared_test")
		sharedPG = container
		sharedPGDSN = dsn

		_, sqlDB := openGorm(t, dsn)
		applyMigrations(t, sqlDB)
		sqlDB.Close()
	}

	db, sqlDB := openGorm(t, sharedPGDSN)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, Container: sharedPG, DSN: sharedPGDSN, t: t}

	// Close only the connection; the container outlives the test.
	t.Cleanup(func() {
		if tdb.SqlDB != nil {
			tdb.SqlDB.Close()
		}
	})
	return tdb
}

// Close closes the connection and, for dedicated containers, terminates them.
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		tdb.SqlDB.Close()
	}
	if tdb.Container != nil && tdb.Container != sharedPG {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("terminate container: %v", err)
		}
	}
}

// CleanTables truncates every table except the migration bookkeeping one.
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "list tables")

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			tdb.t.Logf("truncate %s: %v", table, err)
		}
	}
}

func openGorm(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	logMode := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logMode = logger.Info
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	require.NoError(t, err, "connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "unwrap sql.DB")

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, sqlDB
}

func applyMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	migrationsPath := locateMigrationsDir()
	require.NotEmpty(t, migrationsPath, "migrations directory not found")

	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err, "migration driver")

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	require.NoError(t, err, "migrate instance")

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err, "apply migrations")
	}
}

// locateMigrationsDir walks upward from this file to the repository root.
func locateMigrationsDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// CleanupSharedContainer terminates the shared container from TestMain.
func CleanupSharedContainer() {
	sharedPGMu.Lock()
	defer sharedPGMu.Unlock()

	if sharedPG != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sharedPG.Terminate(ctx)
		sharedPG = nil
		sharedPGDSN = ""
	}
}

// SeedBranch inserts a branch and returns it. Files and subjects reference
// branches through foreign keys, so most fixtures start here.
func (tdb *TestDB) SeedBranch(name, shortName string) *catalog.Branch {
	tdb.t.Helper()

	branch, err := catalog.NewBranch(name, shortName)
	require.NoError(tdb.t, err, "Failed to build branch fixture")
	require.NoError(tdb.t, tdb.DB.Create(branch).Error, "Failed to seed branch")
	return branch
}

// SeedSubject inserts a subject together with its branch memberships.
func (tdb *TestDB) SeedSubject(name, courseCode string, branchIDs []uuid.UUID, isGlobal bool) *catalog.Subject {
	tdb.t.Helper()

	subject, err := catalog.NewSubject(name, courseCode, branchIDs, isGlobal)
	require.NoError(tdb.t, err, "Failed to build subject fixture")
	require.NoError(tdb.t, tdb.DB.Create(subject).Error, "Failed to seed subject")
	for _, branchID := range subject.BranchIDs {
		link := catalog.SubjectBranch{SubjectID: subject.ID, BranchID: branchID}
		require.NoError(tdb.t, tdb.DB.Create(&link).Error, "Failed to seed subject branch link")
	}
	return subject
}

// SeedFile inserts an active file under the given subject.
func (tdb *TestDB) SeedFile(subjectID uuid.UUID, fileName, relativePath string) *catalog.File {
	tdb.t.Helper()

	file, err := catalog.NewFile(catalog.NewFileInput{
		SubjectID:    subjectID,
		FileName:     fileName,
		FileURL:      "https://files.test/" + fileName,
		RelativePath: relativePath,
		FileType:     "pdf",
	})
	require.NoError(tdb.t, err, "Failed to build file fixture")
	require.NoError(tdb.t, tdb.DB.Create(file).Error, "Failed to seed file")
	return file
}

// SeedUser inserts a student account backed by a fake Google identity.
func (tdb *TestDB) SeedUser(email string) *identity.User {
	tdb.t.Helper()

	user, err := identity.NewUser("google-"+email, email, "Test User", "Test", "")
	require.NoError(tdb.t, err, "Failed to build user fixture")
	require.NoError(tdb.t, tdb.DB.Create(user).Error, "Failed to seed user")
	return user
}
