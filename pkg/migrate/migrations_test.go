package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gestrans/gestrans-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := fs.Glob(migrate.Embedded, migrate.EmbeddedDir+"/*_"+suffix+".sql")
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one %s migration, found %d", suffix, len(matches))
	}
	data, err := fs.ReadFile(migrate.Embedded, matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestCarrierMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_transportadores")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transportadores",
		"id uuid PRIMARY KEY DEFAULT gen_random_uuid()",
		"ativo boolean NOT NULL DEFAULT true",
		"CHECK (nif ~ '^[0-9]{9}$')",
		"CHECK (btrim(nome) <> '')",
		"CHECK (tipo IN ('Transportador', 'Transitário'))",
		"zonacobertura text[]",
		"CREATE INDEX IF NOT EXISTS transportadores_nome_idx",
		"DROP TABLE IF EXISTS transportadores",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestReconcileMigrationFoldsLegacyColumns(t *testing.T) {
	content := readMigration(t, "reconcile_transportadores_columns")
	for _, pair := range [][2]string{
		{"tipoServico", "tiposervico"},
		{"tipoCarga", "tipocarga"},
		{"zonaCobertura", "zonacobertura"},
	} {
		if !strings.Contains(content, "('"+pair[0]+"', '"+pair[1]+"')") {
			t.Errorf("missing reconciliation of %s into %s", pair[0], pair[1])
		}
	}
	if !strings.Contains(content, "DROP COLUMN %I") {
		t.Error("legacy columns should be dropped after the merge")
	}
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded, migrate.EmbeddedDir); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("on-disk migrations invalid: %v", err)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Carrier Notes!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(filepath.Base(path), "_add_carrier_notes.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}

	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected error for name without usable characters")
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected empty dir to fail")
	}
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail")
	}

	dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20250101000000_no_down.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected missing down section to fail")
	}
}

func TestCargoMigrationMapsLegacyValues(t *testing.T) {
	content := readMigration(t, "migrate_tipocarga_values")
	for _, pair := range [][2]string{
		{"Cargas líquidas", "Líquidos"},
		{"Palete", "Outros"},
		{"Caixa", "Outros"},
		{"Cargas a granel", "Outros"},
		{"Cargas volumosas", "Outros"},
	} {
		if !strings.Contains(content, "WHEN '"+pair[0]+"' THEN '"+pair[1]+"'") {
			t.Errorf("missing mapping of %s to %s", pair[0], pair[1])
		}
	}
	if !strings.Contains(content, "ORDER BY min(m.ord)") {
		t.Error("mapped values should keep their first-seen order")
	}
}
