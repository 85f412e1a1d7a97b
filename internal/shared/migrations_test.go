package shared

import (
	"reflect"
	"testing"
)

func TestParseMigrationName(t *testing.T) {
	tc := []struct {
		name      string
		file      string
		version   int
		label     string
		direction string
		ok        bool
	}{
		{name: "up", file: "0001_create_songs_up.sql", version: 1, label: "create_songs", direction: "up", ok: true},
		{name: "down", file: "0012_add_index_down.sql", version: 12, label: "add_index", direction: "down", ok: true},
		{name: "no direction", file: "0001_create_songs.sql"},
		{name: "not sql", file: "0001_create_songs_up.txt"},
		{name: "bad version", file: "abcd_create_songs_up.sql"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			version, label, direction, ok := parseMigrationName(tt.file)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if version != tt.version || label != tt.label || direction != tt.direction {
				t.Errorf("got (%d, %q, %q), want (%d, %q, %q)", version, label, direction, tt.version, tt.label, tt.direction)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	script := `-- leading comment
CREATE TABLE a (id INTEGER); -- trailing
INSERT INTO a (id) VALUES (1);

`
	got := splitStatements(script)
	want := []string{"CREATE TABLE a (id INTEGER)", "INSERT INTO a (id) VALUES (1)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitStatements() = %#v, want %#v", got, want)
	}
}

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"users", "songs", "playlists", "playlist_songs", "recent_plays"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		var after int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&after); err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if after != count-1 {
			t.Errorf("expected %d applied migrations after rollback, got %d", count-1, after)
		}

		if _, err := db.Exec("SELECT 1 FROM recent_plays LIMIT 1"); err == nil {
			t.Error("recent_plays should be dropped by rolling back the latest migration")
		}
	})

	t.Run("Rollback Empty", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("CREATE TABLE schema_migrations (version INTEGER PRIMARY KEY, applied_at TIMESTAMP)"); err != nil {
			t.Fatalf("failed to create schema_migrations: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error rolling back with nothing applied")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})

	t.Run("OpenCatalog", func(t *testing.T) {
		db, err := OpenCatalog(DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			t.Fatalf("OpenCatalog() error = %v", err)
		}
		defer db.Close()

		var fk int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("failed to read pragma: %v", err)
		}
		if fk != 1 {
			t.Errorf("expected foreign keys enabled, got %d", fk)
		}
	})
}
