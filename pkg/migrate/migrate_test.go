package migrate

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jobtracker/jobtracker-backend/pkg/config"
)

func TestMigrationsContainSchemas(t *testing.T) {
	checks := map[string][]string{
		"create_identities_and_users": {
			"CREATE TABLE IF NOT EXISTS identities",
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_identities_email",
			"CREATE TABLE IF NOT EXISTS users",
			"role IN ('admin', 'moderator', 'user')",
		},
		"create_job_applications": {
			"CREATE TABLE IF NOT EXISTS job_applications",
			"status IN ('applied', 'interview', 'offer', 'rejected', 'withdrawn')",
			"CREATE INDEX IF NOT EXISTS idx_job_applications_user_created",
		},
		"create_outbox_events": {
			"CREATE TABLE IF NOT EXISTS outbox_events",
			"CREATE INDEX IF NOT EXISTS idx_outbox_events_unpublished",
		},
	}

	entries, err := fs.ReadDir(migrationsFS, DefaultDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	for suffix, statements := range checks {
		var content string
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), "_"+suffix+".sql") {
				data, err := fs.ReadFile(migrationsFS, DefaultDir+"/"+entry.Name())
				if err != nil {
					t.Fatalf("read %s: %v", entry.Name(), err)
				}
				content = string(data)
			}
		}
		if content == "" {
			t.Fatalf("no migration found for %s", suffix)
		}
		for _, sub := range statements {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", suffix, sub)
			}
		}
	}
}

func TestUpAppliesOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_up?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Up(context.Background(), sqlDB, config.DBDriverSQLite); err != nil {
		t.Fatalf("Up returned error: %v", err)
	}

	for _, table := range []string{"identities", "users", "job_applications", "outbox_events"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestGooseDialect(t *testing.T) {
	if got := gooseDialect(config.DBDriverSQLite); got != "sqlite3" {
		t.Fatalf("expected sqlite3, got %s", got)
	}
	if got := gooseDialect(config.DBDriverPostgres); got != "postgres" {
		t.Fatalf("expected postgres, got %s", got)
	}
}
