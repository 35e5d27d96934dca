package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

// TestDatabaseSetup holds a connection to a disposable test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema. The
// calling test is skipped when no database is configured.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolConfig{MaxConns: 5, MinConns: 1})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.migrate(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := setup.TruncateAllTables(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to truncate test database: %v", err)
	}
	t.Cleanup(setup.Close)
	return setup
}

func (t *TestDatabaseSetup) migrate(ctx context.Context) error {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", "0001_init.sql")

	schema, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = t.DB.Exec(ctx, string(schema))
	return err
}

// TruncateAllTables removes all rows from every table.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"notification_events",
		"payroll_summaries",
		"overtime_requests",
		"substitute_assignments",
		"leave_applications",
		"approval_hierarchy_edges",
		"attendance_records",
		"calendar_entries",
		"teaching_slots",
		"employees",
		"institutions",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection.
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}

func (t *TestDatabaseSetup) createEmployee(ctx context.Context, id, joinDate string) error {
	_, err := t.DB.Exec(ctx, `
		INSERT INTO employees (id, full_name, applicant_type, position_id, join_date, monthly_salary)
		VALUES ($1, 'Test Employee', 'employee', 'pos-staff', $2, 30000)
	`, id, joinDate)
	return err
}
