package platform

import (
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations() error: %v", err)
	}

	var ups, downs int
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			ups++
		case strings.HasSuffix(n, ".down.sql"):
			downs++
		default:
			t.Errorf("unexpected migration file %q", n)
		}
	}
	if ups == 0 {
		t.Fatal("expected at least one up migration")
	}
	if ups != downs {
		t.Errorf("up/down mismatch: %d up, %d down", ups, downs)
	}
}

func TestInitMigrationCreatesTables(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, table := range []string{"companies", "submissions", "esg_scores"} {
		if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("init migration does not create %s", table)
		}
	}
}

func TestNameAndSeqMigration(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/0002_name_ci_submission_seq.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, want := range []string{"lower(name)", "seq BIGSERIAL"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("migration 0002 is missing %q", want)
		}
	}
}
