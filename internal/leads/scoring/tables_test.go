package scoring

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTablesOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	body := []byte("icpRegions: [APAC]\ndisposableDomains: [burner.io]\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write tables: %v", err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.ICPRegions) != 1 || tables.ICPRegions[0] != "APAC" {
		t.Fatalf("expected overridden regions, got %v", tables.ICPRegions)
	}
	if !tables.IsDisposable("burner.io") || tables.IsDisposable("mailinator.com") {
		t.Fatalf("expected disposable list to be replaced")
	}
	if tables.RegionFor("acme.de") != "EU" {
		t.Fatalf("tld regions should keep their defaults")
	}
}

func TestLoadTablesEmptyPathUsesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.Campaign.Channels) == 0 {
		t.Fatalf("expected default campaign tables")
	}
}

func TestLoadTablesRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	if err := os.WriteFile(path, []byte("icpRegions: {not: [a list"), 0o600); err != nil {
		t.Fatalf("write tables: %v", err)
	}
	if _, err := LoadTables(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
