package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestPaymentRequestsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_payment_requests.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS payment_requests",
		"CHECK (amount_cents > 0)",
		"WHERE status = 'pending'",
		"REFERENCES payment_requests(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS escrow_details",
	}
	for _, want := range checks {
		if !strings.Contains(content, want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}

func TestSequencesMigrationSeedsAllCounters(t *testing.T) {
	content := readMigration(t, "*_create_sequences.sql")

	for _, name := range []string{"'payment'", "'schedule'", "'group'", "'transaction'"} {
		if !strings.Contains(content, name) {
			t.Fatalf("sequences migration missing seed row %s", name)
		}
	}
	if !strings.Contains(content, "ON CONFLICT (name) DO NOTHING") {
		t.Fatal("sequence seed must be idempotent")
	}
}

func TestGroupsMigrationEnforcesParticipantCap(t *testing.T) {
	content := readMigration(t, "*_create_payment_groups.sql")

	if !strings.Contains(content, "participant_count <= 10") {
		t.Fatal("groups migration missing participant cap")
	}
	if !strings.Contains(content, "PRIMARY KEY (group_id, account_id)") {
		t.Fatal("participants need a composite key")
	}
}
