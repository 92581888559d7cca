package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(entries))
	}
	for _, e := range entries {
		body, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		if !strings.Contains(string(body), "-- +goose Up") || !strings.Contains(string(body), "-- +goose Down") {
			t.Fatalf("migration %s is missing goose annotations", e.Name())
		}
	}
}

func TestUsersMigrationEnforcesCaseInsensitiveEmail(t *testing.T) {
	body, err := fs.ReadFile(migrationsFS, migrationsDir+"/00001_create_users.sql")
	if err != nil {
		t.Fatalf("read users migration: %v", err)
	}
	if !strings.Contains(string(body), "UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email))") {
		t.Fatalf("expected unique index on lower(email)")
	}
}
